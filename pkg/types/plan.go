// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OperationKind names an endpoint operation independent of HTTP.
type OperationKind string

const (
	OpList       OperationKind = "list"
	OpCreate     OperationKind = "create"
	OpRead       OperationKind = "read"
	OpUpdate     OperationKind = "update"
	OpDelete     OperationKind = "delete"
	OpNestedList OperationKind = "nested-list"
	OpAttach     OperationKind = "attach"
	OpDetach     OperationKind = "detach"

	OpLogin    OperationKind = "login"
	OpRegister OperationKind = "register"
	OpRefresh  OperationKind = "refresh"
	OpHealth   OperationKind = "health"
	OpVersion  OperationKind = "version"
)

// Method returns the conventional HTTP verb for the operation.
func (k OperationKind) Method() string {
	switch k {
	case OpList, OpRead, OpNestedList, OpHealth, OpVersion:
		return "GET"
	case OpCreate, OpAttach, OpLogin, OpRegister, OpRefresh:
		return "POST"
	case OpUpdate:
		return "PUT"
	case OpDelete, OpDetach:
		return "DELETE"
	}
	return "GET"
}

func (k OperationKind) String() string { return string(k) }

// EndpointSpec describes one operation of the planned API. Relationship
// indexes ProjectRequirements.Relationships and is nil for plain CRUD and
// utility endpoints.
type EndpointSpec struct {
	Entity       string        `json:"entity,omitempty" yaml:"entity,omitempty"`
	Kind         OperationKind `json:"kind" yaml:"kind"`
	Method       string        `json:"method" yaml:"method"`
	Path         string        `json:"path" yaml:"path"`
	Relationship *int          `json:"relationship,omitempty" yaml:"relationship,omitempty"`
	Description  string        `json:"description" yaml:"description"`
}

// ModuleSpec is one generated module (a FastAPI router or a Django app).
type ModuleSpec struct {
	Entity    string   `json:"entity" yaml:"entity"`
	Package   string   `json:"package" yaml:"package"`
	Files     []string `json:"files" yaml:"files"`
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Layout is the directory and module structure for the chosen framework.
type Layout struct {
	Framework   Framework    `json:"framework" yaml:"framework"`
	Directories []string     `json:"directories" yaml:"directories"`
	Modules     []ModuleSpec `json:"modules" yaml:"modules"`
}

// Metrics summarizes the size of a plan.
type Metrics struct {
	EntityCount              int     `json:"entity_count" yaml:"entity_count"`
	RelationshipCount        int     `json:"relationship_count" yaml:"relationship_count"`
	EndpointCount            int     `json:"endpoint_count" yaml:"endpoint_count"`
	ComplexityScore          float64 `json:"complexity_score" yaml:"complexity_score"`
	EstimatedDevelopmentTime string  `json:"estimated_development_time" yaml:"estimated_development_time"`
	RecommendedTeamSize      string  `json:"recommended_team_size" yaml:"recommended_team_size"`
}

// Plan is the topology derived from a ProjectRequirements. It references
// entities by name only.
type Plan struct {
	BuildOrder  []string       `json:"build_order" yaml:"build_order"`
	Endpoints   []EndpointSpec `json:"endpoints" yaml:"endpoints"`
	Layout      Layout         `json:"layout" yaml:"layout"`
	Metrics     Metrics        `json:"metrics" yaml:"metrics"`
	Diagnostics []Diagnostic   `json:"diagnostics" yaml:"diagnostics"`
}
