// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// FieldItem is one attribute found in a field group.
type FieldItem struct {
	Name     string
	Type     types.FieldType
	Nullable bool
	Unique   bool

	// Head is the raw head word; the assembler skips items whose head names
	// an entity ("a blog with users and posts").
	Head string

	// Reference is the raw target of a "<x>_id" item. Such items become
	// relationship edges, not fields.
	Reference string

	Span types.Span
}

// Spec converts the item to a FieldSpec.
func (it FieldItem) Spec() types.FieldSpec {
	return types.FieldSpec{Name: it.Name, Type: it.Type, Nullable: it.Nullable, Unique: it.Unique}
}

// FieldGroup is a set of attributes attached to one owner. Declared groups
// name their owner; vocabulary groups do not and are attached by the
// assembler when their sentence mentions exactly one entity.
type FieldGroup struct {
	Owner      string
	OwnerSpan  types.Span
	Vocabulary bool
	Items      []FieldItem
	Span       types.Span
}

// Sentence returns the index of the sentence the group came from.
func (g FieldGroup) Sentence() int { return g.Span.Sentence }

var (
	hasVerbs = setOf("has", "have", "contains", "contain", "includes", "include")
)

// Fields returns the declared and vocabulary field groups of every sentence
// in document order.
func Fields(doc normalize.Document, r RuleSet) []FieldGroup {
	var out []FieldGroup
	for _, s := range doc.Sentences {
		out = append(out, sentenceFields(s, r.vocab)...)
	}
	return out
}

func sentenceFields(s normalize.Sentence, v Vocabulary) []FieldGroup {
	var groups []FieldGroup
	covered := make([]bool, s.Len())

	for i := 0; i < s.Len(); i++ {
		owner := -1
		switch {
		case wordIn(s, i, withWords) && i > 0:
			owner = i - 1
		case wordIn(s, i, hasVerbs):
			owner = subjectBefore(s, i)
		}
		if owner < 0 || s.Tokens[owner].IsComma() {
			continue
		}
		items, end := parseList(s, i+1)
		for k := i; k < end; k++ {
			covered[k] = true
		}
		g := FieldGroup{
			Owner:     literal(s.Tokens[owner]),
			OwnerSpan: s.TokenSpan(owner, owner+1),
			Span:      s.TokenSpan(owner, end),
		}
		for _, it := range items {
			if it.quantified {
				continue
			}
			g.Items = append(g.Items, newFieldItem(s, it, v))
		}
		if len(g.Items) > 0 {
			groups = append(groups, g)
		}
		if end > i+1 {
			i = end - 1
		}
	}

	vg := FieldGroup{Vocabulary: true, Span: types.Span{Sentence: s.Index}}
	strong := false
	for i, tok := range s.Tokens {
		if covered[i] || !tok.IsWord() || !v.IsFieldWord(tok.Norm) {
			continue
		}
		if !weakFieldWords[tok.Norm] {
			strong = true
		}
		ft, _ := InferType(v, tok.Norm)
		vg.Items = append(vg.Items, FieldItem{
			Name: tok.Norm,
			Type: ft,
			Head: tok.Norm,
			Span: s.TokenSpan(i, i+1),
		})
	}
	if strong {
		vg.Span = s.TokenSpan(0, s.Len())
		groups = append(groups, vg)
	}
	return groups
}

func newFieldItem(s normalize.Sentence, it listItem, v Vocabulary) FieldItem {
	var name string
	if it.quoted {
		name = s.Tokens[it.head()].Norm
	} else {
		name = it.name(s)
	}
	ft, ref := InferType(v, name)
	return FieldItem{
		Name:      name,
		Type:      ft,
		Nullable:  it.nullable,
		Unique:    it.unique,
		Head:      literal(s.Tokens[it.head()]),
		Reference: ref,
		Span:      s.TokenSpan(it.words[0], it.head()+1),
	}
}

// InferType assigns a semantic type to an attribute name. For "<x>_id" names
// it returns the referenced entity x; the caller turns those into
// relationship edges. InferType never fails: unknown names are strings.
func InferType(v Vocabulary, name string) (types.FieldType, string) {
	if ft, ok := v.FieldType(name); ok {
		return ft, ""
	}
	if ref, ok := strings.CutSuffix(name, "_id"); ok && ref != "" {
		return types.FieldInteger, ref
	}
	if strings.HasSuffix(name, "_at") || strings.HasSuffix(name, "_date") {
		return types.FieldDatetime, ""
	}
	for _, p := range []string{"is_", "has_", "can_"} {
		if strings.HasPrefix(name, p) {
			return types.FieldBoolean, ""
		}
	}
	if i := strings.LastIndex(name, "_"); i >= 0 {
		if ft, ok := v.FieldType(name[i+1:]); ok {
			return ft, ""
		}
	}
	return types.FieldString, ""
}
