// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records extraction runs in a SQLite database so earlier
// requirements and plans can be listed, searched and reloaded.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/pdiddy/requirements-engine/pkg/types"
)

const (
	dbFile       = "history.db"
	defaultLimit = 20
)

// ErrNotFound is returned by Get when no run has the requested ID.
var ErrNotFound = errors.New("history: run not found")

// Summary is the listing view of a stored run.
type Summary struct {
	ID          string          `json:"id" yaml:"id"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
	ProjectName string          `json:"project_name" yaml:"project_name"`
	Description string          `json:"description" yaml:"description"`
	Fingerprint string          `json:"fingerprint" yaml:"fingerprint"`
	Framework   types.Framework `json:"framework" yaml:"framework"`
	Database    types.Database  `json:"database" yaml:"database"`
	Auth        types.Auth      `json:"auth" yaml:"auth"`
	EntityCount int             `json:"entity_count" yaml:"entity_count"`
}

// Run is a stored run with its requirements and, when it was planned, its plan.
type Run struct {
	Summary      `yaml:",inline"`
	Requirements *types.ProjectRequirements `json:"requirements" yaml:"requirements"`
	Plan         *types.Plan                `json:"plan,omitempty" yaml:"plan,omitempty"`
}

// Store manages the run history database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger

	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// Open opens or creates the history database at cfg.Dir/history.db and
// creates the schema if it does not exist.
func Open(cfg types.HistoryConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := cfg.Dir
	if dir == "" {
		dir = types.DefaultConfig().History.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:      db,
		logger:  logger.Named("history"),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			project_name TEXT NOT NULL,
			description TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			framework TEXT NOT NULL,
			database_name TEXT NOT NULL,
			auth TEXT NOT NULL,
			entity_count INTEGER NOT NULL,
			requirements BLOB NOT NULL,
			plan BLOB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint)`,
		`CREATE TABLE IF NOT EXISTS run_entities (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			entity TEXT NOT NULL,
			PRIMARY KEY (run_id, entity)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_entities_entity ON run_entities(entity)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *Store) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Save records one run. pl may be nil for extract-only runs.
func (s *Store) Save(ctx context.Context, req *types.ProjectRequirements, pl *types.Plan, fingerprint string) (Summary, error) {
	if req == nil {
		return Summary{}, errors.New("history: nil requirements")
	}
	reqBlob, err := msgpack.Marshal(req)
	if err != nil {
		return Summary{}, fmt.Errorf("encoding requirements: %w", err)
	}
	var planBlob []byte
	if pl != nil {
		if planBlob, err = msgpack.Marshal(pl); err != nil {
			return Summary{}, fmt.Errorf("encoding plan: %w", err)
		}
	}

	now := s.now().UTC()
	sum := Summary{
		ID:          s.newID(now),
		CreatedAt:   now,
		ProjectName: req.ProjectName,
		Description: req.Description,
		Fingerprint: fingerprint,
		Framework:   req.Framework,
		Database:    req.Database,
		Auth:        req.Auth,
		EntityCount: len(req.Entities),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, project_name, description, fingerprint,
			framework, database_name, auth, entity_count, requirements, plan)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, now.Format(time.RFC3339Nano), sum.ProjectName, sum.Description, sum.Fingerprint,
		string(sum.Framework), string(sum.Database), string(sum.Auth), sum.EntityCount,
		reqBlob, planBlob,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO run_entities (run_id, entity) VALUES (?, ?)`)
	if err != nil {
		return Summary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range req.Entities {
		if _, err := stmt.ExecContext(ctx, sum.ID, e.Name); err != nil {
			return Summary{}, fmt.Errorf("inserting entity %s: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("committing run: %w", err)
	}
	s.logger.Debug("Saved run",
		zap.String("id", sum.ID),
		zap.String("project", sum.ProjectName),
		zap.String("fingerprint", sum.Fingerprint))
	return sum, nil
}

// Get loads the run with the given ID. It returns ErrNotFound when none exists.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+`, requirements, plan FROM runs WHERE id = ?`, id)

	var (
		run      Run
		created  string
		reqBlob  []byte
		planBlob []byte
	)
	err := row.Scan(&run.ID, &created, &run.ProjectName, &run.Description, &run.Fingerprint,
		&run.Framework, &run.Database, &run.Auth, &run.EntityCount, &reqBlob, &planBlob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parsing run %s timestamp: %w", id, err)
	}

	run.Requirements = new(types.ProjectRequirements)
	if err := msgpack.Unmarshal(reqBlob, run.Requirements); err != nil {
		return nil, fmt.Errorf("decoding run %s requirements: %w", id, err)
	}
	if len(planBlob) > 0 {
		run.Plan = new(types.Plan)
		if err := msgpack.Unmarshal(planBlob, run.Plan); err != nil {
			return nil, fmt.Errorf("decoding run %s plan: %w", id, err)
		}
	}
	return &run, nil
}

const summaryColumns = `id, created_at, project_name, description, fingerprint,
	framework, database_name, auth, entity_count`

// List returns the most recent runs, newest first. A non-positive limit
// uses the default of 20.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	return s.query(ctx, `SELECT `+summaryColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limitOrDefault(limit))
}

// Search returns runs whose description or project name contains q,
// case-insensitively, newest first.
func (s *Store) Search(ctx context.Context, q string, limit int) ([]Summary, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	return s.query(ctx,
		`SELECT `+summaryColumns+` FROM runs
		 WHERE lower(description) LIKE ? ESCAPE '\' OR lower(project_name) LIKE ? ESCAPE '\'
		 ORDER BY id DESC LIMIT ?`,
		pattern, pattern, limitOrDefault(limit))
}

// ForEntity returns runs whose requirements contain the named entity,
// newest first.
func (s *Store) ForEntity(ctx context.Context, entity string, limit int) ([]Summary, error) {
	return s.query(ctx,
		`SELECT r.id, r.created_at, r.project_name, r.description, r.fingerprint,
			r.framework, r.database_name, r.auth, r.entity_count
		 FROM runs r JOIN run_entities e ON e.run_id = r.id
		 WHERE e.entity = ?
		 ORDER BY r.id DESC LIMIT ?`,
		entity, limitOrDefault(limit))
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			created string
		)
		if err := rows.Scan(&sum.ID, &created, &sum.ProjectName, &sum.Description, &sum.Fingerprint,
			&sum.Framework, &sum.Database, &sum.Auth, &sum.EntityCount); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing run %s timestamp: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
