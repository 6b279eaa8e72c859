// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"

	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// Rule indexes for edges that do not come from the relation registry.
const (
	ReferenceRule    = 100
	ConventionalRule = 101
)

// Edge is a relationship between two raw mentions. For one-to-many edges
// Source is the parent; Owner is the side holding the foreign key and is
// empty for many-to-many.
type Edge struct {
	Source      string
	Target      string
	Owner       string
	Cardinality types.Cardinality
	Origin      string
	Precedence  int
	Rule        int
	Span        types.Span
}

// Outranks reports whether e wins over o during deduplication: higher
// precedence first, then lower rule index, then earlier span.
func (e Edge) Outranks(o Edge) bool {
	if e.Precedence != o.Precedence {
		return e.Precedence > o.Precedence
	}
	if e.Rule != o.Rule {
		return e.Rule < o.Rule
	}
	return e.Span.Less(o.Span)
}

// ReferenceEdge builds the edge implied by a "<x>_id" attribute on owner.
func ReferenceEdge(owner string, it FieldItem) Edge {
	return Edge{
		Source:      it.Reference,
		Target:      owner,
		Owner:       owner,
		Cardinality: types.OneToMany,
		Origin:      types.OriginReference,
		Precedence:  PrecedenceReference,
		Rule:        ReferenceRule,
		Span:        it.Span,
	}
}

// ConventionalEdge builds a well-known parent/child edge such as user -> post.
func ConventionalEdge(p Pair, span types.Span) Edge {
	return Edge{
		Source:      p.Parent,
		Target:      p.Child,
		Owner:       p.Child,
		Cardinality: types.OneToMany,
		Origin:      types.OriginConventional,
		Precedence:  PrecedenceConventional,
		Rule:        ConventionalRule,
		Span:        span,
	}
}

// Relationships applies every relation rule to every sentence. Edges whose
// endpoints cannot name an entity ("it belongs to them") are dropped and
// reported as diagnostics. Endpoints are not checked against the entity set
// here; the assembler resolves them.
func Relationships(doc normalize.Document, r RuleSet) ([]Edge, []types.Diagnostic) {
	var edges []Edge
	var diags []types.Diagnostic
	for _, s := range doc.Sentences {
		for ri, rule := range r.relations {
			for _, m := range rule.Match(s, r.vocab) {
				if m.From < 0 || m.To < 0 {
					continue
				}
				from, to := s.Tokens[m.From], s.Tokens[m.To]
				span := s.TokenSpan(min(m.From, m.To), max(m.From, m.To)+1)
				if bad, ok := firstNonCandidate(r.vocab, from, to); ok {
					diags = append(diags, types.Diagnostic{
						Code:    types.DiagEndpointIgnored,
						Message: fmt.Sprintf("ignored %s relationship: %q does not name an entity", rule.Name, bad),
						Span:    span,
					})
					continue
				}
				e := Edge{
					Source:      literal(from),
					Target:      literal(to),
					Cardinality: m.Cardinality,
					Origin:      rule.Origin,
					Precedence:  rule.Precedence,
					Rule:        ri,
					Span:        span,
				}
				if m.Owner >= 0 {
					e.Owner = literal(s.Tokens[m.Owner])
				}
				edges = append(edges, e)
			}
		}
	}
	return edges, diags
}

func firstNonCandidate(v Vocabulary, toks ...normalize.Token) (string, bool) {
	for _, t := range toks {
		if !candidateToken(t, v) {
			return literal(t), true
		}
	}
	return "", false
}

var (
	belongVerbs  = setOf("belongs", "belong")
	beVerbs      = setOf("is", "are")
	passiveVerbs = setOf("owned", "created", "written", "authored", "published",
		"managed", "posted", "made", "placed", "uploaded", "submitted", "assigned")
	ownVerbs     = setOf("has", "have", "contains", "contain", "owns", "own")
	relatedWords = setOf("related", "connected", "linked", "associated")
	toWith       = setOf("to", "with")
)

// matchBelongsTo: "posts belong to a user".
func matchBelongsTo(s normalize.Sentence, _ Vocabulary) []EdgeMatch {
	var out []EdgeMatch
	for i := range s.Tokens {
		if !wordIn(s, i, belongVerbs) || s.Word(i+1) != "to" {
			continue
		}
		child, parent := subjectBefore(s, i), nounAt(s, i+2)
		out = append(out, EdgeMatch{From: parent, To: child, Owner: child, Cardinality: types.OneToMany})
	}
	return out
}

// matchPassiveBy: "each post is written by an author".
func matchPassiveBy(s normalize.Sentence, _ Vocabulary) []EdgeMatch {
	var out []EdgeMatch
	for i := range s.Tokens {
		if !wordIn(s, i, beVerbs) || !wordIn(s, i+1, passiveVerbs) || s.Word(i+2) != "by" {
			continue
		}
		child, parent := subjectBefore(s, i), nounAt(s, i+3)
		out = append(out, EdgeMatch{From: parent, To: child, Owner: child, Cardinality: types.OneToMany})
	}
	return out
}

// matchHasMany: "users have many posts and comments", "each project can
// have multiple tasks". List items naming attributes are skipped.
func matchHasMany(s normalize.Sentence, v Vocabulary) []EdgeMatch {
	var out []EdgeMatch
	for i := range s.Tokens {
		if !wordIn(s, i, ownVerbs) || !wordIn(s, i+1, quantifiers) {
			continue
		}
		parent := subjectBefore(s, i)
		items, _ := parseList(s, i+1)
		for _, it := range items {
			if !it.quoted && (v.IsFieldWord(it.name(s)) || v.IsFieldWord(s.Word(it.head()))) {
				continue
			}
			child := it.head()
			out = append(out, EdgeMatch{From: parent, To: child, Owner: child, Cardinality: types.OneToMany})
		}
	}
	return out
}

// matchHasOne: "each user has one profile", "an order has a single invoice".
func matchHasOne(s normalize.Sentence, _ Vocabulary) []EdgeMatch {
	var out []EdgeMatch
	for i := range s.Tokens {
		if !wordIn(s, i, ownVerbs) {
			continue
		}
		next := s.Word(i + 1)
		if next != "one" && (next != "a" || s.Word(i+2) != "single") {
			continue
		}
		source, target := subjectBefore(s, i), nounAt(s, i+1)
		out = append(out, EdgeMatch{From: source, To: target, Owner: target, Cardinality: types.OneToOne})
	}
	return out
}

// matchPeerAnd: "students and courses are related".
func matchPeerAnd(s normalize.Sentence, _ Vocabulary) []EdgeMatch {
	var out []EdgeMatch
	for i := 1; i+1 < s.Len(); i++ {
		if s.Word(i) != "and" || !wordIn(s, i+2, beVerbs) || !wordIn(s, i+3, relatedWords) {
			continue
		}
		if s.Tokens[i-1].IsComma() || s.Tokens[i+1].IsComma() {
			continue
		}
		out = append(out, EdgeMatch{From: i - 1, To: i + 1, Owner: -1, Cardinality: types.ManyToMany})
	}
	return out
}

// matchPeerRelated: "a tag is associated with posts".
func matchPeerRelated(s normalize.Sentence, _ Vocabulary) []EdgeMatch {
	var out []EdgeMatch
	for i := range s.Tokens {
		if !wordIn(s, i, beVerbs) || !wordIn(s, i+1, relatedWords) || !wordIn(s, i+2, toWith) {
			continue
		}
		a, b := subjectBefore(s, i), nounAt(s, i+3)
		out = append(out, EdgeMatch{From: a, To: b, Owner: -1, Cardinality: types.ManyToMany})
	}
	return out
}
