// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Span locates a fact in ProjectRequirements.Description. Start and End are
// byte offsets into the normalized text; Sentence is -1 for document-level
// facts such as classifier decisions.
type Span struct {
	Sentence int `json:"sentence" yaml:"sentence"`
	Start    int `json:"start" yaml:"start"`
	End      int `json:"end" yaml:"end"`
}

// DocumentSpan is the span used for diagnostics that are not tied to a sentence.
var DocumentSpan = Span{Sentence: -1}

// Less orders spans by sentence, then start offset, then end offset.
func (s Span) Less(o Span) bool {
	if s.Sentence != o.Sentence {
		return s.Sentence < o.Sentence
	}
	if s.Start != o.Start {
		return s.Start < o.Start
	}
	return s.End < o.End
}

// Diagnostic codes. These strings are stable and appear in serialized output.
const (
	DiagNoEntities              = "no_entities"
	DiagDescriptionTooShort     = "description_too_short"
	DiagDescriptionTooLong      = "description_too_long"
	DiagContradictoryAuth       = "contradictory_auth"
	DiagMultipleDatabases       = "multiple_databases"
	DiagEndpointIgnored         = "relationship_endpoint_ignored"
	DiagDirectionConflict       = "relationship_direction_conflict"
	DiagFieldConflict           = "field_conflict"
	DiagAttributesWithoutEntity = "attributes_without_entity"
	DiagEmbeddedDBForPayments   = "embedded_database_for_payments"
	DiagDependencyCycle         = "dependency_cycle"
)

// Diagnostic is a non-fatal warning attached to extraction or planning output.
type Diagnostic struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Span    Span   `json:"span" yaml:"span"`
}

// FieldSpec describes one attribute of an entity.
type FieldSpec struct {
	Name     string    `json:"name" yaml:"name"`
	Type     FieldType `json:"type" yaml:"type"`
	Nullable bool      `json:"nullable" yaml:"nullable"`
	Unique   bool      `json:"unique" yaml:"unique"`
}

// Relationship origins, highest precedence first.
const (
	OriginMembership   = "membership"
	OriginReference    = "reference"
	OriginOwnership    = "ownership"
	OriginPeer         = "peer"
	OriginConventional = "conventional"
)

// RelationshipSpec is an association between two entities. For one-to-many
// edges Source is the parent and Target the child, and Owner equals Target.
// Owner is empty for many-to-many edges, which use a join table.
type RelationshipSpec struct {
	Source      string      `json:"source" yaml:"source"`
	Target      string      `json:"target" yaml:"target"`
	Cardinality Cardinality `json:"cardinality" yaml:"cardinality"`
	Owner       string      `json:"owner,omitempty" yaml:"owner,omitempty"`
	Origin      string      `json:"origin" yaml:"origin"`
	Span        Span        `json:"span" yaml:"span"`
}

// SelfReference reports whether the edge joins an entity to itself.
func (r RelationshipSpec) SelfReference() bool {
	return r.Source == r.Target
}

// EntitySpec is an extracted model. Outgoing and Incoming index into
// ProjectRequirements.Relationships.
type EntitySpec struct {
	Name     string      `json:"name" yaml:"name"`
	Fields   []FieldSpec `json:"fields" yaml:"fields"`
	Outgoing []int       `json:"outgoing,omitempty" yaml:"outgoing,omitempty"`
	Incoming []int       `json:"incoming,omitempty" yaml:"incoming,omitempty"`
	Span     Span        `json:"span" yaml:"span"`
}

// Field returns the named field and whether it exists.
func (e EntitySpec) Field(name string) (FieldSpec, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FieldNames returns the entity's field names in declaration order.
func (e EntitySpec) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// Features records optional capabilities mentioned in the description.
type Features struct {
	CORS            bool `json:"cors" yaml:"cors"`
	RateLimiting    bool `json:"rate_limiting" yaml:"rate_limiting"`
	Caching         bool `json:"caching" yaml:"caching"`
	FileUploads     bool `json:"file_uploads" yaml:"file_uploads"`
	RealTime        bool `json:"real_time" yaml:"real_time"`
	BackgroundTasks bool `json:"background_tasks" yaml:"background_tasks"`
	Containerize    bool `json:"containerize" yaml:"containerize"`
}

// ProjectRequirements is the validated aggregate produced by one extraction
// call. Planning reads it and never mutates it.
type ProjectRequirements struct {
	ProjectName   string             `json:"project_name" yaml:"project_name"`
	Description   string             `json:"description" yaml:"description"`
	Framework     Framework          `json:"framework" yaml:"framework"`
	Database      Database           `json:"database" yaml:"database"`
	Auth          Auth               `json:"auth" yaml:"auth"`
	APIStyle      APIStyle           `json:"api_style" yaml:"api_style"`
	Features      Features           `json:"features" yaml:"features"`
	Entities      []EntitySpec       `json:"entities" yaml:"entities"`
	Relationships []RelationshipSpec `json:"relationships" yaml:"relationships"`
	Diagnostics   []Diagnostic       `json:"diagnostics" yaml:"diagnostics"`
}

// Entity returns the entity with the given canonical name.
func (r *ProjectRequirements) Entity(name string) (EntitySpec, bool) {
	for _, e := range r.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return EntitySpec{}, false
}

// EntityNames returns canonical entity names in first-seen order.
func (r *ProjectRequirements) EntityNames() []string {
	names := make([]string, len(r.Entities))
	for i, e := range r.Entities {
		names[i] = e.Name
	}
	return names
}

// HasDiagnostic reports whether a diagnostic with the given code was recorded.
func (r *ProjectRequirements) HasDiagnostic(code string) bool {
	for _, d := range r.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}
