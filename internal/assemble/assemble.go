// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble merges the outputs of the extraction passes into one
// validated ProjectRequirements. It is the only synchronization point of the
// pipeline: inputs are re-sorted by provenance, so the result never depends
// on the order in which the passes finished.
package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/requirements-engine/internal/classify"
	"github.com/pdiddy/requirements-engine/internal/extract"
	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// Overrides replace classifier decisions. A non-nil field bypasses the
// corresponding classifier entirely.
type Overrides struct {
	Framework *types.Framework `json:"framework,omitempty" yaml:"framework,omitempty"`
	Database  *types.Database  `json:"database,omitempty" yaml:"database,omitempty"`
	Auth      *types.Auth      `json:"auth,omitempty" yaml:"auth,omitempty"`
}

// Validate checks that every override holds a declared enum value.
func (o Overrides) Validate() error {
	if o.Framework != nil && !o.Framework.Valid() {
		return fmt.Errorf("invalid framework override %q", *o.Framework)
	}
	if o.Database != nil && !o.Database.Valid() {
		return fmt.Errorf("invalid database override %q", *o.Database)
	}
	if o.Auth != nil && !o.Auth.Valid() {
		return fmt.Errorf("invalid auth override %q", *o.Auth)
	}
	return nil
}

// Input is everything the assembler consumes.
type Input struct {
	Doc             normalize.Document
	Mentions        []extract.Mention
	Groups          []extract.FieldGroup
	Edges           []extract.Edge
	EdgeDiagnostics []types.Diagnostic
	Signals         classify.Signals
	Rules           extract.RuleSet

	// EntityThreshold is the entity count above which Django is forced.
	EntityThreshold int

	// ProjectName, when set, replaces the derived project name.
	ProjectName string
	Overrides   Overrides
}

// Assemble builds the requirements aggregate. It returns a StructuralError
// for dangling references, name collisions and entities without an id; every
// other irregularity becomes a diagnostic.
func Assemble(in Input) (*types.ProjectRequirements, error) {
	if err := in.Overrides.Validate(); err != nil {
		return nil, err
	}

	a := &assembler{vocab: in.Rules.Vocabulary(), templates: in.Rules.Templates()}
	a.collectEntities(in.Mentions)
	for _, e := range a.entities {
		a.seedFields(e)
	}
	a.mentionsBySentence(in.Mentions)

	groups := append([]extract.FieldGroup(nil), in.Groups...)
	sort.SliceStable(groups, func(i, j int) bool { return groupLess(groups[i], groups[j]) })
	edges := append([]extract.Edge(nil), in.Edges...)
	for _, g := range groups {
		refs, err := a.applyGroup(g)
		if err != nil {
			return nil, err
		}
		edges = append(edges, refs...)
	}

	for _, e := range a.entities {
		a.finishFields(e)
		if _, ok := e.field("id"); !ok {
			return nil, &MissingIdentifierError{Entity: e.name}
		}
	}

	rels, err := a.relationships(edges)
	if err != nil {
		return nil, err
	}

	req := &types.ProjectRequirements{
		ProjectName:   in.Signals.ProjectName,
		Description:   in.Doc.Text,
		Framework:     classify.DecideFramework(in.Signals.Framework, len(a.entities), in.EntityThreshold),
		Database:      in.Signals.Database.Choice,
		Auth:          in.Signals.Auth.Choice,
		APIStyle:      in.Signals.APIStyle,
		Features:      in.Signals.Features,
		Entities:      make([]types.EntitySpec, len(a.entities)),
		Relationships: rels,
	}
	if in.ProjectName != "" {
		req.ProjectName = in.ProjectName
	}
	if o := in.Overrides; o.Framework != nil {
		req.Framework = *o.Framework
	}
	if o := in.Overrides; o.Database != nil {
		req.Database = *o.Database
	}
	if o := in.Overrides; o.Auth != nil {
		req.Auth = *o.Auth
	}

	index := make(map[string]int, len(a.entities))
	for i, e := range a.entities {
		req.Entities[i] = types.EntitySpec{Name: e.name, Fields: e.fields, Span: e.span}
		index[e.name] = i
	}
	for ri, r := range rels {
		src, dst := index[r.Source], index[r.Target]
		req.Entities[src].Outgoing = append(req.Entities[src].Outgoing, ri)
		req.Entities[dst].Incoming = append(req.Entities[dst].Incoming, ri)
	}

	diags := append([]types.Diagnostic(nil), in.Signals.Diagnostics...)
	diags = append(diags, in.EdgeDiagnostics...)
	diags = append(diags, a.diags...)
	if len(a.entities) == 0 {
		diags = append(diags, types.Diagnostic{
			Code:    types.DiagNoEntities,
			Message: "no entities detected; describe the data the API manages, e.g. \"a blog with users, posts, and comments\"",
			Span:    types.DocumentSpan,
		})
	}
	if in.Signals.Payments && req.Database == types.DatabaseSQLite {
		diags = append(diags, types.Diagnostic{
			Code:    types.DiagEmbeddedDBForPayments,
			Message: "payment processing with an embedded SQLite database; consider postgresql",
			Span:    in.Signals.PaymentSpan,
		})
	}
	sortDiagnostics(diags)
	req.Diagnostics = diags
	if req.Diagnostics == nil {
		req.Diagnostics = []types.Diagnostic{}
	}
	return req, nil
}

// groupLess orders field groups by span; declared groups precede vocabulary
// groups over the same text.
func groupLess(a, b extract.FieldGroup) bool {
	if a.Span != b.Span {
		return a.Span.Less(b.Span)
	}
	if a.Vocabulary != b.Vocabulary {
		return !a.Vocabulary
	}
	return a.Owner < b.Owner
}

func sortDiagnostics(diags []types.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Span != diags[j].Span {
			return diags[i].Span.Less(diags[j].Span)
		}
		return diags[i].Code < diags[j].Code
	})
}

// entity is the assembler's working copy of one entity.
type entity struct {
	key     string
	name    string
	longest string
	span    types.Span
	fields  []types.FieldSpec

	// declared records which literal form declared each field; "" marks
	// implicit, template and indirectly attached fields.
	declared map[string]string
	decls    map[string][]declaration
}

// declaration is one explicit statement of a field.
type declaration struct {
	spec types.FieldSpec
	form string
	span types.Span
}

func (e *entity) field(name string) (int, bool) {
	for i, f := range e.fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

type assembler struct {
	vocab     extract.Vocabulary
	templates bool

	entities []*entity
	byKey    map[string]*entity

	// sentenceEntities lists the distinct entity keys mentioned in each sentence.
	sentenceEntities map[int][]string

	diags []types.Diagnostic
}

func (a *assembler) collectEntities(mentions []extract.Mention) {
	ms := append([]extract.Mention(nil), mentions...)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Less(ms[j]) })

	a.byKey = make(map[string]*entity)
	for _, m := range ms {
		key := m.Key()
		if key == "" {
			continue
		}
		e, ok := a.byKey[key]
		if !ok {
			e = &entity{key: key, longest: m.Raw, span: m.Span, declared: make(map[string]string), decls: make(map[string][]declaration)}
			a.byKey[key] = e
			a.entities = append(a.entities, e)
		}
		if len(m.Raw) > len(e.longest) {
			e.longest = m.Raw
		}
	}
	for _, e := range a.entities {
		e.name = extract.Canonicalize(e.longest)
	}
}

func (a *assembler) mentionsBySentence(mentions []extract.Mention) {
	a.sentenceEntities = make(map[int][]string)
	for _, m := range mentions {
		key := m.Key()
		if _, ok := a.byKey[key]; !ok {
			continue
		}
		s := m.Span.Sentence
		if !contains(a.sentenceEntities[s], key) {
			a.sentenceEntities[s] = append(a.sentenceEntities[s], key)
		}
	}
}

func (a *assembler) lookup(raw string) *entity {
	return a.byKey[extract.Key(raw)]
}

// seedFields adds the implicit id and the template fields.
func (a *assembler) seedFields(e *entity) {
	e.fields = append(e.fields, types.FieldSpec{Name: "id", Type: types.FieldInteger, Unique: true})
	if !a.templates {
		return
	}
	for _, f := range a.vocab.Template(e.key) {
		if _, ok := e.field(f.Name); !ok {
			e.fields = append(e.fields, f)
		}
	}
}

// finishFields reports merged field conflicts and appends the creation
// timestamp unless it was declared.
func (a *assembler) finishFields(e *entity) {
	for _, f := range e.fields {
		if d, ok := conflictDiagnostic(e, f); ok {
			a.diags = append(a.diags, d)
		}
	}
	if _, ok := e.field("created_at"); !ok {
		e.fields = append(e.fields, types.FieldSpec{Name: "created_at", Type: types.FieldDatetime})
	}
}

// applyGroup attaches a field group to its owner and returns the reference
// edges its "<x>_id" items imply.
func (a *assembler) applyGroup(g extract.FieldGroup) ([]extract.Edge, error) {
	owner, form := a.resolveOwner(g)

	var edges []extract.Edge
	var orphans []string
	for _, it := range g.Items {
		if it.Reference == "" && a.lookup(it.Head) != nil && !strings.Contains(it.Name, "_") {
			continue
		}
		if owner == nil {
			orphans = append(orphans, it.Name)
			continue
		}
		if it.Reference != "" {
			edges = append(edges, extract.ReferenceEdge(owner.longest, it))
			continue
		}
		if err := a.addField(owner, form, it); err != nil {
			return nil, err
		}
	}
	if len(orphans) > 0 {
		a.diags = append(a.diags, types.Diagnostic{
			Code:    types.DiagAttributesWithoutEntity,
			Message: fmt.Sprintf("attributes %s could not be attached to a single entity", strings.Join(orphans, ", ")),
			Span:    g.Span,
		})
	}
	return edges, nil
}

// resolveOwner finds the entity a group belongs to. A declared owner that is
// an entity is used directly and its literal form is returned; otherwise the
// group attaches to the only entity mentioned in its sentence, if any.
func (a *assembler) resolveOwner(g extract.FieldGroup) (*entity, string) {
	if !g.Vocabulary {
		if e := a.lookup(g.Owner); e != nil {
			return e, strings.ToLower(g.Owner)
		}
	}
	keys := a.sentenceEntities[g.Sentence()]
	if len(keys) == 1 {
		return a.byKey[keys[0]], ""
	}
	return nil, ""
}

// addField merges one declared attribute into e. Declared fields replace
// implicit and template fields of the same name. Conflicting declarations
// from two different literal forms of the entity name are a collision;
// within one form the declarations are merged by mergeFields and reported
// once by finishFields.
func (a *assembler) addField(e *entity, form string, it extract.FieldItem) error {
	spec := it.Spec()
	d := declaration{spec: spec, form: form, span: it.Span}
	i, ok := e.field(spec.Name)
	if !ok {
		e.fields = append(e.fields, spec)
		e.declared[spec.Name] = form
		e.decls[spec.Name] = []declaration{d}
		return nil
	}
	if _, declared := e.declared[spec.Name]; !declared {
		e.fields[i] = spec
		e.declared[spec.Name] = form
		e.decls[spec.Name] = []declaration{d}
		return nil
	}
	for _, prev := range e.decls[spec.Name] {
		if prev.spec == spec {
			continue
		}
		if prev.form != "" && form != "" && prev.form != form {
			forms := []string{prev.form, form}
			sort.Strings(forms)
			return &NameCollisionError{Name: e.name, Forms: forms, Field: spec.Name}
		}
	}
	e.decls[spec.Name] = append(e.decls[spec.Name], d)
	e.fields[i] = mergeFields(e.fields[i], spec)
	return nil
}

// mergeFields combines two declarations of one field and is commutative.
// A specific type beats string and the alphabetically first specific type
// wins; flags are ORed.
func mergeFields(x, y types.FieldSpec) types.FieldSpec {
	out := x
	if typeBefore(y.Type, x.Type) {
		out.Type = y.Type
	}
	out.Nullable = x.Nullable || y.Nullable
	out.Unique = x.Unique || y.Unique
	return out
}

func typeBefore(x, y types.FieldType) bool {
	if (x == types.FieldString) != (y == types.FieldString) {
		return y == types.FieldString
	}
	return x < y
}

// conflictDiagnostic reports a field declared more than one way within one
// literal form, or returns false when every declaration agrees.
func conflictDiagnostic(e *entity, f types.FieldSpec) (types.Diagnostic, bool) {
	decls := e.decls[f.Name]
	var variants []string
	var last types.Span
	for i, d := range decls {
		if v := describe(d.spec); !contains(variants, v) {
			variants = append(variants, v)
		}
		if i == 0 || last.Less(d.span) {
			last = d.span
		}
	}
	if len(variants) < 2 {
		return types.Diagnostic{}, false
	}
	sort.Strings(variants)
	return types.Diagnostic{
		Code:    types.DiagFieldConflict,
		Message: fmt.Sprintf("field %s.%s declared as %s; using %s", e.name, f.Name, strings.Join(variants, " and "), describe(f)),
		Span:    last,
	}, true
}

func describe(f types.FieldSpec) string {
	s := string(f.Type)
	if f.Nullable {
		s += " nullable"
	}
	if f.Unique {
		s += " unique"
	}
	return s
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
