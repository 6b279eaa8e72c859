package types

import "runtime"

// ExtractionConfig holds settings for the extraction pipeline.
type ExtractionConfig struct {
	// Workers bounds the number of extraction passes run at once
	// (default runtime.NumCPU()).
	Workers int `json:"workers" yaml:"workers"`

	// EntityThreshold is the entity count above which the admin-oriented
	// framework is forced (default 5).
	EntityThreshold int `json:"entity_threshold" yaml:"entity_threshold"`

	// EntityTemplates adds conventional fields to well-known entities
	// such as User or Product (default true).
	EntityTemplates bool `json:"entity_templates" yaml:"entity_templates"`

	// VocabularyFile is an optional YAML file extending the built-in
	// entity, field and relationship vocabularies.
	VocabularyFile string `json:"vocabulary_file,omitempty" yaml:"vocabulary_file,omitempty"`
}

// DefaultExtractionConfig returns the extraction settings used when no
// configuration file is present.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		Workers:         runtime.NumCPU(),
		EntityThreshold: 5,
		EntityTemplates: true,
	}
}

// PlanConfig holds settings for the planner.
type PlanConfig struct {
	// AuthRoutes adds login/register (and refresh for jwt) endpoints when
	// the project uses authentication (default true).
	AuthRoutes bool `json:"auth_routes" yaml:"auth_routes"`

	// UtilityRoutes adds /health and /version endpoints (default true).
	UtilityRoutes bool `json:"utility_routes" yaml:"utility_routes"`
}

// DefaultPlanConfig returns the default planner settings.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{AuthRoutes: true, UtilityRoutes: true}
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// Dir contains the history database (default ".requirements-engine").
	Dir string `json:"dir" yaml:"dir"`
}

// ServeConfig holds settings for the HTTP server.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// BatchConfig holds settings for batch processing.
type BatchConfig struct {
	// Pattern is a doublestar glob selecting description files
	// (default "descriptions/**/*.txt").
	Pattern string `json:"pattern" yaml:"pattern"`

	// OutputDir receives one <name>-plan.yaml per input (default "plans").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default "info").
	Level string `json:"level" yaml:"level"`

	// Format is "json" or "console" (default "console").
	Format string `json:"format" yaml:"format"`
}

// Config groups all settings read from requirements-engine.yaml.
type Config struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Plan       PlanConfig       `json:"plan" yaml:"plan"`
	History    HistoryConfig    `json:"history" yaml:"history"`
	Serve      ServeConfig      `json:"serve" yaml:"serve"`
	Batch      BatchConfig      `json:"batch" yaml:"batch"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// DefaultConfig returns the settings used when no configuration file is present.
func DefaultConfig() Config {
	return Config{
		Extraction: DefaultExtractionConfig(),
		Plan:       DefaultPlanConfig(),
		History:    HistoryConfig{Dir: ".requirements-engine"},
		Serve:      ServeConfig{Addr: ":8080"},
		Batch:      BatchConfig{Pattern: "descriptions/**/*.txt", OutputDir: "plans"},
		Log:        LogConfig{Level: "info", Format: "console"},
	}
}
