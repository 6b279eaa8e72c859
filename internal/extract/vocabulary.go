// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/requirements-engine/pkg/types"
)

// Pair is a conventional parent/child relationship between two entity nouns.
type Pair struct {
	Parent string `json:"parent" yaml:"parent"`
	Child  string `json:"child" yaml:"child"`
}

// Vocabulary holds the word lists the rules consult. A Vocabulary is never
// modified after construction; Merge returns a new value.
type Vocabulary struct {
	entities  map[string]bool
	appNouns  map[string]bool
	fields    map[string]types.FieldType
	templates map[string][]types.FieldSpec
	pairs     []Pair
}

// VocabularyFile is the YAML shape of a custom vocabulary.
//
//	entities: [recipe, ingredient]
//	app_nouns: [portal]
//	fields: {calories: integer}
//	pairs: [{parent: recipe, child: ingredient}]
type VocabularyFile struct {
	Entities []string                   `json:"entities" yaml:"entities"`
	AppNouns []string                   `json:"app_nouns" yaml:"app_nouns"`
	Fields   map[string]types.FieldType `json:"fields" yaml:"fields"`
	Pairs    []Pair                     `json:"pairs" yaml:"pairs"`
}

// LoadVocabulary reads a VocabularyFile from path and validates its field types.
func LoadVocabulary(path string) (VocabularyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return VocabularyFile{}, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}
	var vf VocabularyFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return VocabularyFile{}, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}
	for name, ft := range vf.Fields {
		if !ft.Valid() {
			return VocabularyFile{}, fmt.Errorf("vocabulary %s: field %q has unknown type %q", path, name, ft)
		}
	}
	return vf, nil
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	v := Vocabulary{
		entities:  setOf(entityNouns...),
		appNouns:  setOf(applicationNouns...),
		fields:    maps.Clone(fieldTypes),
		templates: make(map[string][]types.FieldSpec, len(entityTemplates)),
		pairs:     slices.Clone(conventionalPairs),
	}
	for k, fs := range entityTemplates {
		v.templates[k] = slices.Clone(fs)
	}
	return v
}

// Merge returns a copy of v extended with the words in vf.
func (v Vocabulary) Merge(vf VocabularyFile) Vocabulary {
	out := Vocabulary{
		entities:  maps.Clone(v.entities),
		appNouns:  maps.Clone(v.appNouns),
		fields:    maps.Clone(v.fields),
		templates: v.templates,
		pairs:     slices.Clone(v.pairs),
	}
	for _, e := range vf.Entities {
		out.entities[singular(e)] = true
	}
	for _, a := range vf.AppNouns {
		out.appNouns[singular(a)] = true
	}
	for name, ft := range vf.Fields {
		out.fields[name] = ft
	}
	for _, p := range vf.Pairs {
		out.pairs = append(out.pairs, Pair{Parent: singular(p.Parent), Child: singular(p.Child)})
	}
	return out
}

// IsEntityNoun reports whether the singular form of w is a known entity noun.
func (v Vocabulary) IsEntityNoun(w string) bool {
	return v.entities[singular(w)]
}

// IsAppNoun reports whether w names the application rather than a model.
func (v Vocabulary) IsAppNoun(w string) bool {
	return v.appNouns[w] || v.appNouns[singular(w)]
}

// FieldType returns the static type for an exact field name.
func (v Vocabulary) FieldType(name string) (types.FieldType, bool) {
	ft, ok := v.fields[name]
	return ft, ok
}

// IsFieldWord reports whether w is a known attribute name.
func (v Vocabulary) IsFieldWord(w string) bool {
	_, ok := v.fields[w]
	return ok
}

// Template returns conventional fields for a well-known entity key.
func (v Vocabulary) Template(key string) []types.FieldSpec {
	return v.templates[key]
}

// Pairs returns the conventional parent/child pairs.
func (v Vocabulary) Pairs() []Pair {
	return v.pairs
}

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var entityNouns = []string{
	"user", "customer", "client", "person", "member", "profile", "employee",
	"manager", "author", "student", "teacher", "patient", "doctor",
	"product", "order", "purchase", "transaction", "sale", "payment",
	"invoice", "cart", "subscription", "post", "article", "comment", "review",
	"category", "tag", "group", "project", "task", "todo", "assignment",
	"team", "organization", "company", "department", "message",
	"notification", "alert", "attachment", "photo", "album", "song",
	"playlist", "book", "supplier", "vendor", "course", "lesson", "event",
	"ticket", "booking", "reservation", "appointment", "room", "hotel",
	"recipe", "ingredient", "note", "question", "answer", "vote",
	"warehouse", "shipment", "issue", "milestone", "sprint", "channel",
	"thread", "video",
}

var applicationNouns = []string{
	"app", "application", "api", "blog", "platform", "system", "site",
	"website", "web", "service", "backend", "list", "dashboard", "page",
	"store", "shop", "tool", "portal", "database", "server",
	"software", "program", "solution", "microservice", "crud", "endpoint",
	"model", "entity", "table", "collection", "resource", "management",
	"tracking", "catalog", "catalogue", "inventory", "tracker", "feature",
	"functionality", "support", "authentication", "auth", "login", "signup",
	"registration", "admin", "panel", "interface",
}

var fieldTypes = map[string]types.FieldType{
	"id":             types.FieldInteger,
	"name":           types.FieldString,
	"title":          types.FieldString,
	"username":       types.FieldString,
	"first_name":     types.FieldString,
	"last_name":      types.FieldString,
	"full_name":      types.FieldString,
	"slug":           types.FieldString,
	"phone":          types.FieldString,
	"phone_number":   types.FieldString,
	"city":           types.FieldString,
	"country":        types.FieldString,
	"status":         types.FieldString,
	"sku":            types.FieldString,
	"url":            types.FieldString,
	"color":          types.FieldString,
	"role":           types.FieldString,
	"password":       types.FieldString,
	"password_hash":  types.FieldString,
	"avatar":         types.FieldString,
	"currency":       types.FieldString,
	"location":       types.FieldString,
	"brand":          types.FieldString,
	"isbn":           types.FieldString,
	"code":           types.FieldString,
	"address":        types.FieldString,
	"image":          types.FieldString,
	"description":    types.FieldText,
	"content":        types.FieldText,
	"body":           types.FieldText,
	"bio":            types.FieldText,
	"text":           types.FieldText,
	"summary":        types.FieldText,
	"details":        types.FieldText,
	"instructions":   types.FieldText,
	"age":            types.FieldInteger,
	"quantity":       types.FieldInteger,
	"stock":          types.FieldInteger,
	"stock_quantity": types.FieldInteger,
	"count":          types.FieldInteger,
	"views":          types.FieldInteger,
	"likes":          types.FieldInteger,
	"rating":         types.FieldInteger,
	"year":           types.FieldInteger,
	"duration":       types.FieldInteger,
	"priority":       types.FieldInteger,
	"position":       types.FieldInteger,
	"score":          types.FieldInteger,
	"capacity":       types.FieldInteger,
	"pages":          types.FieldInteger,
	"price":          types.FieldDecimal,
	"amount":         types.FieldDecimal,
	"cost":           types.FieldDecimal,
	"total":          types.FieldDecimal,
	"total_amount":   types.FieldDecimal,
	"balance":        types.FieldDecimal,
	"salary":         types.FieldDecimal,
	"weight":         types.FieldDecimal,
	"latitude":       types.FieldDecimal,
	"longitude":      types.FieldDecimal,
	"discount":       types.FieldDecimal,
	"tax":            types.FieldDecimal,
	"fee":            types.FieldDecimal,
	"active":         types.FieldBoolean,
	"completed":      types.FieldBoolean,
	"published":      types.FieldBoolean,
	"verified":       types.FieldBoolean,
	"done":           types.FieldBoolean,
	"available":      types.FieldBoolean,
	"archived":       types.FieldBoolean,
	"featured":       types.FieldBoolean,
	"paid":           types.FieldBoolean,
	"date":           types.FieldDatetime,
	"due_date":       types.FieldDatetime,
	"deadline":       types.FieldDatetime,
	"birthday":       types.FieldDatetime,
	"timestamp":      types.FieldDatetime,
	"created_at":     types.FieldDatetime,
	"updated_at":     types.FieldDatetime,
	"email":          types.FieldEmail,
	"email_address":  types.FieldEmail,
}

// weakFieldWords never start a vocabulary field group on their own; they
// are too common in ordinary prose.
var weakFieldWords = setOf("id", "text", "code", "count", "date", "total", "name", "body", "content", "position", "status", "stock", "done", "active", "available", "pages")

var entityTemplates = map[string][]types.FieldSpec{
	"user": {
		{Name: "username", Type: types.FieldString, Unique: true},
		{Name: "email", Type: types.FieldEmail, Unique: true},
		{Name: "password_hash", Type: types.FieldString},
		{Name: "is_active", Type: types.FieldBoolean},
	},
	"customer": {
		{Name: "name", Type: types.FieldString},
		{Name: "email", Type: types.FieldEmail, Unique: true},
		{Name: "phone", Type: types.FieldString, Nullable: true},
	},
	"post": {
		{Name: "title", Type: types.FieldString},
		{Name: "content", Type: types.FieldText},
		{Name: "published", Type: types.FieldBoolean},
	},
	"article": {
		{Name: "title", Type: types.FieldString},
		{Name: "content", Type: types.FieldText},
		{Name: "published", Type: types.FieldBoolean},
	},
	"comment": {
		{Name: "content", Type: types.FieldText},
	},
	"product": {
		{Name: "name", Type: types.FieldString},
		{Name: "description", Type: types.FieldText, Nullable: true},
		{Name: "price", Type: types.FieldDecimal},
		{Name: "stock_quantity", Type: types.FieldInteger},
	},
	"order": {
		{Name: "status", Type: types.FieldString},
		{Name: "total_amount", Type: types.FieldDecimal},
	},
	"task": {
		{Name: "title", Type: types.FieldString},
		{Name: "description", Type: types.FieldText, Nullable: true},
		{Name: "completed", Type: types.FieldBoolean},
		{Name: "due_date", Type: types.FieldDatetime, Nullable: true},
	},
	"todo": {
		{Name: "title", Type: types.FieldString},
		{Name: "description", Type: types.FieldText, Nullable: true},
		{Name: "completed", Type: types.FieldBoolean},
		{Name: "due_date", Type: types.FieldDatetime, Nullable: true},
	},
	"category": {
		{Name: "name", Type: types.FieldString, Unique: true},
		{Name: "description", Type: types.FieldText, Nullable: true},
	},
	"review": {
		{Name: "rating", Type: types.FieldInteger},
		{Name: "content", Type: types.FieldText, Nullable: true},
	},
}

var conventionalPairs = []Pair{
	{"user", "post"},
	{"author", "post"},
	{"author", "book"},
	{"post", "comment"},
	{"article", "comment"},
	{"product", "review"},
	{"category", "product"},
	{"customer", "order"},
	{"user", "order"},
	{"order", "payment"},
	{"project", "task"},
	{"course", "lesson"},
	{"album", "song"},
	{"playlist", "song"},
}
