// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// databaseIndicators is scanned in declaration order; ties go to the
// earlier entry.
var databaseIndicators = []struct {
	db      types.Database
	phrases []string
}{
	{types.DatabasePostgreSQL, []string{"postgresql", "postgres", "pg", "psql"}},
	{types.DatabaseMySQL, []string{"mysql", "mariadb"}},
	{types.DatabaseSQLite, []string{"sqlite", "sqlite3"}},
	{types.DatabaseMongoDB, []string{"mongodb", "mongo", "nosql", "document store", "document database"}},
	{types.DatabaseDynamoDB, []string{"dynamodb", "dynamo"}},
	{types.DatabaseFirestore, []string{"firestore", "firebase"}},
}

// DatabaseResult is the database decision and the evidence behind it.
type DatabaseResult struct {
	Choice types.Database

	// Mentioned lists every database with at least one hit, in
	// declaration order.
	Mentioned []types.Database

	Span types.Span
}

// Database picks the database with the most indicator hits. With no hits it
// falls back to SQLite.
func Database(doc normalize.Document) DatabaseResult {
	res := DatabaseResult{Choice: types.DatabaseSQLite, Span: types.DocumentSpan}
	best := 0
	for _, ind := range databaseIndicators {
		n, sp := count(doc, ind.phrases)
		if n == 0 {
			continue
		}
		res.Mentioned = append(res.Mentioned, ind.db)
		if n > best {
			best = n
			res.Choice = ind.db
			res.Span = sp
		}
	}
	return res
}
