// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires normalization, the extraction passes, assembly and
// planning into one call. The entity, field, relationship and classifier
// passes run in parallel over the same immutable document; the assembler is
// the only point where their results meet.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/requirements-engine/internal/assemble"
	"github.com/pdiddy/requirements-engine/internal/classify"
	"github.com/pdiddy/requirements-engine/internal/extract"
	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/internal/plan"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// Overrides replace classifier decisions for one run.
type Overrides = assemble.Overrides

// Input is one extraction request.
type Input struct {
	Description string    `json:"description" yaml:"description"`
	ProjectName string    `json:"project_name,omitempty" yaml:"project_name,omitempty"`
	Overrides   Overrides `json:"overrides" yaml:"overrides"`
}

// Result bundles the requirements, their plan and the requirements fingerprint.
type Result struct {
	Requirements *types.ProjectRequirements `json:"requirements" yaml:"requirements"`
	Plan         *types.Plan                `json:"plan" yaml:"plan"`
	Fingerprint  string                     `json:"fingerprint" yaml:"fingerprint"`
}

// Pipeline runs extraction and planning with a fixed rule set and
// configuration. It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	rules      extract.RuleSet
	extraction types.ExtractionConfig
	planning   types.PlanConfig
	logger     *zap.Logger
}

// New builds a Pipeline from cfg. A configured vocabulary file is loaded and
// merged into the built-in vocabulary. A nil logger disables logging.
func New(cfg types.Config, logger *zap.Logger) (*Pipeline, error) {
	rules := extract.DefaultRules().WithTemplates(cfg.Extraction.EntityTemplates)
	if path := cfg.Extraction.VocabularyFile; path != "" {
		vf, err := extract.LoadVocabulary(path)
		if err != nil {
			return nil, fmt.Errorf("loading vocabulary: %w", err)
		}
		rules = rules.WithVocabulary(rules.Vocabulary().Merge(vf))
	}
	return NewWithRules(rules, cfg, logger), nil
}

// NewWithRules builds a Pipeline that uses rules instead of the built-in
// registry. cfg.Extraction.EntityTemplates and VocabularyFile are ignored.
func NewWithRules(rules extract.RuleSet, cfg types.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	ext := cfg.Extraction
	if ext.Workers <= 0 {
		ext.Workers = runtime.NumCPU()
	}
	if ext.EntityThreshold <= 0 {
		ext.EntityThreshold = types.DefaultExtractionConfig().EntityThreshold
	}
	return &Pipeline{
		rules:      rules,
		extraction: ext,
		planning:   cfg.Plan,
		logger:     logger.Named("pipeline"),
	}
}

// Extract turns a description into validated requirements. Structural
// failures are returned wrapped; use assemble.IsStructural or errors.As to
// inspect them.
func (p *Pipeline) Extract(in Input) (*types.ProjectRequirements, error) {
	doc := normalize.Normalize(in.Description)

	var (
		mentions []extract.Mention
		groups   []extract.FieldGroup
		edges    []extract.Edge
		ediags   []types.Diagnostic
		signals  classify.Signals
	)
	g := new(errgroup.Group)
	g.SetLimit(p.extraction.Workers)
	g.Go(func() error {
		mentions = extract.Entities(doc, p.rules)
		return nil
	})
	g.Go(func() error {
		groups = extract.Fields(doc, p.rules)
		return nil
	})
	g.Go(func() error {
		edges, ediags = extract.Relationships(doc, p.rules)
		return nil
	})
	g.Go(func() error {
		signals = classify.Analyze(doc)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction passes: %w", err)
	}

	req, err := assemble.Assemble(assemble.Input{
		Doc:             doc,
		Mentions:        mentions,
		Groups:          groups,
		Edges:           edges,
		EdgeDiagnostics: ediags,
		Signals:         signals,
		Rules:           p.rules,
		EntityThreshold: p.extraction.EntityThreshold,
		ProjectName:     in.ProjectName,
		Overrides:       in.Overrides,
	})
	if err != nil {
		p.logger.Warn("Assembly failed", zap.Int("sentences", len(doc.Sentences)), zap.Error(err))
		return nil, fmt.Errorf("assembling requirements: %w", err)
	}

	p.logger.Debug("Extracted requirements",
		zap.String("project", req.ProjectName),
		zap.Int("sentences", len(doc.Sentences)),
		zap.Int("mentions", len(mentions)),
		zap.Int("entities", len(req.Entities)),
		zap.Int("relationships", len(req.Relationships)),
		zap.Int("diagnostics", len(req.Diagnostics)),
		zap.Stringer("framework", req.Framework),
		zap.Stringer("database", req.Database),
		zap.Stringer("auth", req.Auth))
	return req, nil
}

// Plan derives the API topology of req.
func (p *Pipeline) Plan(req *types.ProjectRequirements) *types.Plan {
	pl := plan.Build(req, p.planning)
	p.logger.Debug("Planned topology",
		zap.String("project", req.ProjectName),
		zap.Strings("build_order", pl.BuildOrder),
		zap.Int("endpoints", len(pl.Endpoints)),
		zap.Float64("complexity", pl.Metrics.ComplexityScore))
	return pl
}

// Run extracts, plans and fingerprints in one call.
func (p *Pipeline) Run(in Input) (*Result, error) {
	req, err := p.Extract(in)
	if err != nil {
		return nil, err
	}
	fp, err := Fingerprint(req)
	if err != nil {
		return nil, err
	}
	return &Result{Requirements: req, Plan: p.Plan(req), Fingerprint: fp}, nil
}

// FingerprintScheme names how Fingerprint derives its value.
const FingerprintScheme = "sha256/msgpack/16"

// Fingerprint returns the first 16 hex characters of the SHA-256 of v's
// msgpack encoding. Equal requirements always produce equal fingerprints.
func Fingerprint(v any) (string, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding fingerprint: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16], nil
}
