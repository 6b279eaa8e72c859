// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"sort"

	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// Mention is one occurrence of a candidate entity name.
type Mention struct {
	// Raw is the mention as written: the lowercased word, or the verbatim
	// quoted literal.
	Raw   string
	Token int
	Rule  int
	Span  types.Span
}

// Key returns the grouping key of the mention.
func (m Mention) Key() string { return Key(m.Raw) }

// Name returns the canonical entity name of the mention.
func (m Mention) Name() string { return Canonicalize(m.Raw) }

// Less orders mentions by first-seen position, then rule registration order.
func (m Mention) Less(o Mention) bool {
	if m.Span.Sentence != o.Span.Sentence {
		return m.Span.Sentence < o.Span.Sentence
	}
	if m.Span.Start != o.Span.Start {
		return m.Span.Start < o.Span.Start
	}
	return m.Rule < o.Rule
}

// Entities applies every entity rule to every sentence and returns the union
// of candidate mentions, ordered by (sentence, start, rule). A token matched
// by several rules is reported once, under the earliest rule.
func Entities(doc normalize.Document, r RuleSet) []Mention {
	var out []Mention
	for _, s := range doc.Sentences {
		seen := make(map[int]bool)
		for ri, rule := range r.entities {
			if rule.Match == nil {
				continue
			}
			for _, idx := range rule.Match(s, r) {
				if idx < 0 || idx >= s.Len() || seen[idx] {
					continue
				}
				tok := s.Tokens[idx]
				if !candidateToken(tok, r.vocab) {
					continue
				}
				seen[idx] = true
				out = append(out, Mention{
					Raw:   literal(tok),
					Token: idx,
					Rule:  ri,
					Span:  s.TokenSpan(idx, idx+1),
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

var (
	declarationVerbs = setOf("create", "build", "design", "manage", "track",
		"store", "define", "add")
	modelWords = setOf("model", "models", "entity", "entities", "table",
		"tables", "collection", "collections", "resource", "resources",
		"schema", "schemas", "record", "records")
	eachWords = setOf("each", "every")
	eachVerbs = setOf("has", "have", "contains", "includes", "can", "belongs",
		"belong", "is", "must", "should", "may", "needs", "owns", "requires")
	withWords       = setOf("with", "having", "containing", "including")
	managementWords = setOf("management", "tracking", "catalog", "catalogue",
		"inventory", "scheduling", "directory", "registry")
	gerunds    = setOf("managing", "tracking", "storing", "handling", "organizing")
	infinitive = setOf("manage", "track", "store", "handle", "organize")
	thirdForms = setOf("manages", "tracks", "stores", "handles", "organizes")
)

// matchDeclaration: "create a X model", "build the X and Y tables".
func matchDeclaration(s normalize.Sentence, _ RuleSet) []int {
	var out []int
	for i := range s.Tokens {
		if !wordIn(s, i, declarationVerbs) {
			continue
		}
		j := skipDeterminers(s, i+1)
		for k := j; k < j+3 && k < s.Len(); k++ {
			if wordIn(s, k+1, modelWords) {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

// matchContainerList: "a blog with users, posts, and comments",
// "an app to manage recipes and ingredients".
func matchContainerList(s normalize.Sentence, r RuleSet) []int {
	var out []int
	for i, tok := range s.Tokens {
		if !tok.IsWord() || !r.vocab.IsAppNoun(tok.Norm) {
			continue
		}
		start := -1
		switch next := s.Word(i + 1); {
		case next == "with", gerunds[next]:
			start = i + 2
		case next == "to" && infinitive[s.Word(i+2)],
			(next == "that" || next == "which") && thirdForms[s.Word(i+2)],
			next == "for" && gerunds[s.Word(i+2)]:
			start = i + 3
		}
		if start < 0 {
			continue
		}
		items, _ := parseList(s, start)
		for _, it := range items {
			if !it.quoted && isFieldItem(s, it, r.vocab) {
				continue
			}
			out = append(out, it.head())
		}
	}
	return out
}

// matchEachEvery: "each order has", "every blog post belongs".
func matchEachEvery(s normalize.Sentence, _ RuleSet) []int {
	var out []int
	for i := range s.Tokens {
		if !wordIn(s, i, eachWords) {
			continue
		}
		for k := i + 1; k <= i+2 && k < s.Len(); k++ {
			if wordIn(s, k+1, eachVerbs) {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

// matchSubjectWith: "products with a name and price".
func matchSubjectWith(s normalize.Sentence, _ RuleSet) []int {
	var out []int
	for i := 1; i < s.Len(); i++ {
		if wordIn(s, i, withWords) && !s.Tokens[i-1].IsComma() {
			out = append(out, i-1)
		}
	}
	return out
}

// matchParticipants makes both sides of every relationship phrase an entity
// candidate, so "posts belong to authors" introduces Author.
func matchParticipants(s normalize.Sentence, r RuleSet) []int {
	var out []int
	for _, rule := range r.relations {
		for _, m := range rule.Match(s, r.vocab) {
			if m.From >= 0 {
				out = append(out, m.From)
			}
			if m.To >= 0 {
				out = append(out, m.To)
			}
		}
	}
	return out
}

// matchManagement: "inventory management", "product catalog".
func matchManagement(s normalize.Sentence, _ RuleSet) []int {
	var out []int
	for i := 1; i < s.Len(); i++ {
		if wordIn(s, i, managementWords) && s.Tokens[i-1].IsWord() {
			out = append(out, i-1)
		}
	}
	return out
}

// matchVocabulary picks up any known domain noun.
func matchVocabulary(s normalize.Sentence, r RuleSet) []int {
	var out []int
	for i, tok := range s.Tokens {
		if tok.IsWord() && r.vocab.IsEntityNoun(tok.Norm) {
			out = append(out, i)
		}
	}
	return out
}

// isFieldItem reports whether a list item names an attribute rather than an
// entity, e.g. "due dates" or "stock quantity".
func isFieldItem(s normalize.Sentence, it listItem, v Vocabulary) bool {
	name := it.name(s)
	if v.IsFieldWord(name) || v.IsFieldWord(singularLast(name)) {
		return true
	}
	ft, ref := InferType(v, name)
	return ref != "" || ft != types.FieldString || !IsCandidate(s.Word(it.head()), v)
}
