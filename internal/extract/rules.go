// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract finds entities, fields and relationships in a normalized
// description. Every pass is a pure function of a normalize.Document and a
// RuleSet; nothing here keeps state between calls, so passes may run in
// parallel.
package extract

import (
	"slices"
	"strings"
	"unicode"

	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// EntityRule proposes entity candidates in one sentence. Match returns the
// token indexes of candidate heads; the caller applies the candidate filter.
type EntityRule struct {
	Name  string
	Match func(s normalize.Sentence, r RuleSet) []int
}

// RelationRule proposes relationship edges in one sentence.
type RelationRule struct {
	Name       string
	Origin     string
	Precedence int
	Match      func(s normalize.Sentence, v Vocabulary) []EdgeMatch
}

// EdgeMatch is a raw relationship match expressed as token indexes. For
// one-to-many edges From is the parent. Owner is -1 for many-to-many.
type EdgeMatch struct {
	From, To    int
	Owner       int
	Cardinality types.Cardinality
}

// Relationship precedence, highest wins during deduplication.
const (
	PrecedenceConventional = iota
	PrecedencePeer
	PrecedenceOwnership
	PrecedenceReference
	PrecedenceMembership
)

// RuleSet is the ordered, immutable rule registry handed to every pass.
// The With* methods return modified copies.
type RuleSet struct {
	entities  []EntityRule
	relations []RelationRule
	vocab     Vocabulary
	templates bool
}

// DefaultRules returns the built-in rules with the built-in vocabulary and
// entity templates enabled.
func DefaultRules() RuleSet {
	return RuleSet{
		entities: []EntityRule{
			{Name: "declaration", Match: matchDeclaration},
			{Name: "container-list", Match: matchContainerList},
			{Name: "each-every", Match: matchEachEvery},
			{Name: "subject-with", Match: matchSubjectWith},
			{Name: "relationship-participant", Match: matchParticipants},
			{Name: "management", Match: matchManagement},
			{Name: "vocabulary", Match: matchVocabulary},
		},
		relations: []RelationRule{
			{Name: "belongs-to", Origin: types.OriginMembership, Precedence: PrecedenceMembership, Match: matchBelongsTo},
			{Name: "passive-by", Origin: types.OriginMembership, Precedence: PrecedenceMembership, Match: matchPassiveBy},
			{Name: "has-many", Origin: types.OriginOwnership, Precedence: PrecedenceOwnership, Match: matchHasMany},
			{Name: "has-one", Origin: types.OriginOwnership, Precedence: PrecedenceOwnership, Match: matchHasOne},
			{Name: "peer-and", Origin: types.OriginPeer, Precedence: PrecedencePeer, Match: matchPeerAnd},
			{Name: "peer-related", Origin: types.OriginPeer, Precedence: PrecedencePeer, Match: matchPeerRelated},
		},
		vocab:     DefaultVocabulary(),
		templates: true,
	}
}

// WithVocabulary returns a copy of r using v.
func (r RuleSet) WithVocabulary(v Vocabulary) RuleSet {
	r.entities = slices.Clone(r.entities)
	r.relations = slices.Clone(r.relations)
	r.vocab = v
	return r
}

// WithTemplates returns a copy of r with entity templates switched on or off.
func (r RuleSet) WithTemplates(on bool) RuleSet {
	r.entities = slices.Clone(r.entities)
	r.relations = slices.Clone(r.relations)
	r.templates = on
	return r
}

// WithEntityRules returns a copy of r with the given entity rules in place of
// the registered ones.
func (r RuleSet) WithEntityRules(rules ...EntityRule) RuleSet {
	r.entities = slices.Clone(rules)
	r.relations = slices.Clone(r.relations)
	return r
}

// WithRelationRules returns a copy of r with the given relationship rules.
func (r RuleSet) WithRelationRules(rules ...RelationRule) RuleSet {
	r.entities = slices.Clone(r.entities)
	r.relations = slices.Clone(rules)
	return r
}

// Vocabulary returns the rule set's vocabulary.
func (r RuleSet) Vocabulary() Vocabulary { return r.vocab }

// Templates reports whether entity templates are enabled.
func (r RuleSet) Templates() bool { return r.templates }

// EntityRuleNames returns the entity rule names in registration order.
func (r RuleSet) EntityRuleNames() []string {
	names := make([]string, len(r.entities))
	for i, rule := range r.entities {
		names[i] = rule.Name
	}
	return names
}

// Word classes shared by the matchers.
var (
	determiners = setOf("a", "an", "the", "some", "any", "each", "every", "all",
		"its", "their", "his", "her", "our", "your", "my", "this", "that",
		"these", "those", "one", "single", "own")

	pronouns = setOf("it", "they", "them", "he", "she", "we", "you", "i", "me",
		"us", "who", "which", "what", "someone", "anyone", "everyone",
		"something", "everything", "nothing", "things", "thing", "stuff")

	quantifiers = setOf("many", "multiple", "several", "various", "numerous")

	modifiers = setOf("unique", "optional", "nullable", "required")

	auxiliaries = setOf("can", "could", "may", "might", "must", "should",
		"will", "would", "also", "always", "only", "usually", "often")

	// clauseWords end a list or a noun phrase.
	clauseWords = setOf("who", "that", "which", "where", "when", "while",
		"can", "could", "should", "must", "will", "may", "might", "to", "for",
		"by", "belongs", "belong", "has", "have", "is", "are", "was", "were",
		"be", "with", "having", "containing", "including", "in", "on", "of",
		"from", "at", "into", "so", "but", "then", "also", "each", "every",
		"per", "as", "using", "via", "and", "or")

	grammarWords = setOf("and", "or", "but", "nor", "with", "having",
		"containing", "including", "has", "have", "had", "is", "are", "was",
		"were", "be", "been", "being", "do", "does", "to", "for", "of", "in",
		"on", "at", "by", "from", "into", "as", "so", "then", "than", "not",
		"also", "plus", "via", "per", "like", "such", "where", "when", "while",
		"how", "there", "here", "etc", "related", "connected", "linked",
		"associated", "belongs", "belong", "owned", "created", "written",
		"authored", "contains", "contain", "owns", "includes", "include",
		"need", "needs", "want", "wants", "allow", "allows", "let", "lets",
		"create", "build", "make", "design", "develop", "manage", "track",
		"managing", "tracking", "simple", "basic", "new", "modern", "small",
		"large", "full", "using", "use", "uses", "based", "fast", "easy",
		"good", "great", "able", "other", "more", "most", "very", "just",
		"well", "about", "between", "within", "without", "under", "over")
)

// literal returns the raw mention text of a token.
func literal(t normalize.Token) string {
	if t.Quoted {
		return t.Raw
	}
	return t.Norm
}

// IsCandidate reports whether w can name an entity.
func IsCandidate(w string, v Vocabulary) bool {
	if len(w) < 3 || isNumber(w) {
		return false
	}
	if determiners[w] || pronouns[w] || quantifiers[w] || modifiers[w] ||
		auxiliaries[w] || grammarWords[w] {
		return false
	}
	if strings.HasSuffix(w, "_id") || v.IsAppNoun(w) {
		return false
	}
	return !v.IsFieldWord(w) && !v.IsFieldWord(singular(w))
}

func candidateToken(t normalize.Token, v Vocabulary) bool {
	if t.Quoted {
		return t.Norm != ""
	}
	return t.IsWord() && IsCandidate(t.Norm, v)
}

func isNumber(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// skipDeterminers returns the first index at or after j that is not a determiner.
func skipDeterminers(s normalize.Sentence, j int) int {
	for j < s.Len() && !s.Tokens[j].Quoted && determiners[s.Word(j)] {
		j++
	}
	return j
}

// nounAt returns the head of the noun phrase starting at j, or -1. A phrase
// spans at most three words and stops at clause words and commas.
func nounAt(s normalize.Sentence, j int) int {
	j = skipDeterminers(s, j)
	if j >= s.Len() || s.Tokens[j].IsComma() {
		return -1
	}
	if s.Tokens[j].Quoted {
		return j
	}
	k := j
	for k+1 < s.Len() && k-j < 2 && continuesNoun(s.Tokens[k+1]) {
		k++
	}
	return k
}

func continuesNoun(t normalize.Token) bool {
	if !t.IsWord() {
		return false
	}
	w := t.Norm
	return !clauseWords[w] && !grammarWords[w] && !determiners[w] &&
		!quantifiers[w] && !auxiliaries[w] && !pronouns[w]
}

// subjectBefore returns the token preceding the verb at i, skipping
// auxiliaries such as "can" in "users can have many posts".
func subjectBefore(s normalize.Sentence, i int) int {
	k := i - 1
	for k >= 0 && !s.Tokens[k].Quoted && auxiliaries[s.Word(k)] {
		k--
	}
	if k < 0 || s.Tokens[k].IsComma() {
		return -1
	}
	return k
}

// listItem is one element of a comma/and/or separated list.
type listItem struct {
	words      []int
	quoted     bool
	unique     bool
	nullable   bool
	quantified bool
}

func (it listItem) head() int { return it.words[len(it.words)-1] }

func (it listItem) name(s normalize.Sentence) string {
	parts := make([]string, len(it.words))
	for i, w := range it.words {
		parts[i] = s.Tokens[w].Norm
	}
	return strings.Join(parts, "_")
}

// parseList reads list items starting at token start. It returns the items
// and the index of the token that ended the list.
func parseList(s normalize.Sentence, start int) ([]listItem, int) {
	var items []listItem
	var cur listItem
	closeItem := func() {
		if len(cur.words) > 0 {
			items = append(items, cur)
		}
		cur = listItem{}
	}

	k := start
	for ; k < s.Len(); k++ {
		t := s.Tokens[k]
		w := t.Norm
		switch {
		case t.Quoted:
			closeItem()
			cur = listItem{words: []int{k}, quoted: true}
			closeItem()
		case t.IsComma(), w == "and", w == "or":
			closeItem()
		case clauseWords[w]:
			closeItem()
			return items, k
		case determiners[w]:
		case w == "unique":
			cur.unique = true
		case w == "optional", w == "nullable":
			cur.nullable = true
		case w == "required":
			cur.nullable = false
		case quantifiers[w]:
			cur.quantified = true
		default:
			if len(cur.words) < 3 {
				cur.words = append(cur.words, k)
			}
		}
	}
	closeItem()
	return items, k
}

func wordIn(s normalize.Sentence, i int, set map[string]bool) bool {
	if i < 0 || i >= s.Len() || s.Tokens[i].Quoted {
		return false
	}
	return set[s.Word(i)]
}
