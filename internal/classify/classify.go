// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify makes the document-level decisions about a description:
// framework, database, auth scheme, API style, optional features and the
// project name. Each decision is a pure function of the normalized text.
package classify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// Description length limits, in characters.
const (
	MinDescriptionLength = 10
	MaxDescriptionLength = 5000
)

// Signals collects every classifier result for one document. The framework
// is only scored here; the decision needs the entity count and is made by
// DecideFramework once entities are assembled.
type Signals struct {
	Framework   FrameworkScores
	Database    DatabaseResult
	Auth        AuthResult
	APIStyle    types.APIStyle
	Features    types.Features
	ProjectName string

	// Payments is set when the description mentions payment processing.
	Payments    bool
	PaymentSpan types.Span

	Diagnostics []types.Diagnostic
}

// Analyze runs every classifier over doc.
func Analyze(doc normalize.Document) Signals {
	s := Signals{
		Framework:   ScoreFramework(doc),
		Database:    Database(doc),
		Auth:        Auth(doc),
		APIStyle:    APIStyle(doc),
		Features:    Features(doc),
		ProjectName: ProjectName(doc),
	}
	s.PaymentSpan, s.Payments = findAny(doc, paymentIndicators)
	s.Diagnostics = diagnostics(doc, s)
	return s
}

func diagnostics(doc normalize.Document, s Signals) []types.Diagnostic {
	var out []types.Diagnostic
	n := utf8.RuneCountInString(strings.TrimSpace(doc.Text))
	switch {
	case n < MinDescriptionLength:
		out = append(out, types.Diagnostic{
			Code:    types.DiagDescriptionTooShort,
			Message: fmt.Sprintf("description has %d characters; at least %d are needed for reliable extraction", n, MinDescriptionLength),
			Span:    types.DocumentSpan,
		})
	case n > MaxDescriptionLength:
		out = append(out, types.Diagnostic{
			Code:    types.DiagDescriptionTooLong,
			Message: fmt.Sprintf("description has %d characters; consider splitting it (limit %d)", n, MaxDescriptionLength),
			Span:    types.DocumentSpan,
		})
	}
	if s.Auth.NoneRequested && s.Auth.UserConcept {
		out = append(out, types.Diagnostic{
			Code:    types.DiagContradictoryAuth,
			Message: "description asks for no authentication but mentions users or accounts",
			Span:    s.Auth.Span,
		})
	}
	if len(s.Database.Mentioned) > 1 {
		names := make([]string, len(s.Database.Mentioned))
		for i, d := range s.Database.Mentioned {
			names[i] = string(d)
		}
		out = append(out, types.Diagnostic{
			Code:    types.DiagMultipleDatabases,
			Message: fmt.Sprintf("several databases mentioned (%s); using %s", strings.Join(names, ", "), s.Database.Choice),
			Span:    s.Database.Span,
		})
	}
	return out
}

// count returns how many of the phrases occur in doc, and the span of the
// first one found.
func count(doc normalize.Document, phrases []string) (int, types.Span) {
	n := 0
	first := types.DocumentSpan
	for _, p := range phrases {
		sp, ok := doc.Find(p)
		if !ok {
			continue
		}
		if n == 0 || sp.Less(first) {
			first = sp
		}
		n++
	}
	return n, first
}

func findAny(doc normalize.Document, phrases []string) (types.Span, bool) {
	n, sp := count(doc, phrases)
	return sp, n > 0
}
