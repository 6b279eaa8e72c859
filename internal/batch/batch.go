// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs the pipeline over every description file matching a
// glob pattern and writes one plan YAML file per input.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/requirements-engine/internal/assemble"
	"github.com/pdiddy/requirements-engine/internal/history"
	"github.com/pdiddy/requirements-engine/internal/pipeline"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// planSuffix is appended to the input's base name to form the output file.
const planSuffix = "-plan.yaml"

// Status is the outcome of processing one file.
type Status int

const (
	StatusExtracted Status = iota
	StatusSkipped
	StatusFailed
)

// Result holds the outcome of a batch run.
type Result struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of files processed.
func (r Result) Total() int {
	return r.Extracted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

func (r *Result) add(s Status) {
	switch s {
	case StatusExtracted:
		r.Extracted++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}

// Recorder stores completed runs.
type Recorder interface {
	Save(ctx context.Context, req *types.ProjectRequirements, pl *types.Plan, fingerprint string) (history.Summary, error)
}

// Batch processes description files.
type Batch struct {
	pipeline  *pipeline.Pipeline
	pattern   string
	base      string
	outputDir string
	overrides pipeline.Overrides
	recorder  Recorder
	logger    *zap.Logger
}

// Option configures a Batch.
type Option func(*Batch)

// WithOverrides applies o to every file in the batch.
func WithOverrides(o pipeline.Overrides) Option {
	return func(b *Batch) { b.overrides = o }
}

// WithRecorder saves every successful run to r.
func WithRecorder(r Recorder) Option {
	return func(b *Batch) { b.recorder = r }
}

// New builds a Batch for cfg. Empty fields fall back to DefaultConfig.
func New(p *pipeline.Pipeline, cfg types.BatchConfig, logger *zap.Logger, opts ...Option) (*Batch, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := types.DefaultConfig().Batch
	if cfg.Pattern == "" {
		cfg.Pattern = def.Pattern
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	pattern := filepath.Clean(cfg.Pattern)
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", cfg.Pattern)
	}
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))

	b := &Batch{
		pipeline:  p,
		pattern:   pattern,
		base:      filepath.FromSlash(base),
		outputDir: cfg.OutputDir,
		logger:    logger.Named("batch"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Files returns the description files matching the pattern in lexical order.
func (b *Batch) Files() ([]string, error) {
	files, err := doublestar.FilepathGlob(b.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", b.pattern, err)
	}
	slices.Sort(files)
	return files, nil
}

// OutputPath returns the plan file written for input. The input's directory
// below the pattern base is kept so equal base names do not collide.
func (b *Batch) OutputPath(input string) string {
	rel, err := filepath.Rel(b.base, input)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(input)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(b.outputDir, rel+planSuffix)
}

// Run processes every matching file, printing per-file status to w and
// returning a summary. Per-file failures are counted, not returned.
func (b *Batch) Run(ctx context.Context, w io.Writer) (Result, error) {
	files, err := b.Files()
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, f := range files {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		result.add(b.ProcessFile(ctx, f, w))
	}
	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		result.Extracted, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// ProcessFile extracts and plans one description file. A file whose plan is
// newer than the description is skipped.
func (b *Batch) ProcessFile(ctx context.Context, path string, w io.Writer) Status {
	out := b.OutputPath(path)
	changed, err := hasChanged(path, out)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
		return StatusFailed
	}
	if !changed {
		fmt.Fprintf(w, "skipped:   %s (up to date)\n", path)
		return StatusSkipped
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
		return StatusFailed
	}

	res, err := b.pipeline.Run(pipeline.Input{Description: string(data), Overrides: b.overrides})
	if err != nil {
		if se, ok := assemble.AsStructural(err); ok {
			fmt.Fprintf(w, "failed:    %s (%s: %s)\n", path, se.Kind(), strings.Join(se.Names(), ", "))
		} else {
			fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
		}
		b.logger.Warn("Extraction failed", zap.String("file", path), zap.Error(err))
		return StatusFailed
	}

	if err := writeResult(out, res); err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
		return StatusFailed
	}

	if b.recorder != nil {
		if _, err := b.recorder.Save(ctx, res.Requirements, res.Plan, res.Fingerprint); err != nil {
			fmt.Fprintf(w, "warning: %s not recorded: %v\n", path, err)
		}
	}

	fmt.Fprintf(w, "extracted: %s -> %s (%d entities, %d endpoints)\n",
		path, out, len(res.Requirements.Entities), len(res.Plan.Endpoints))
	return StatusExtracted
}

// hasChanged reports whether input is newer than output or output is missing.
func hasChanged(input, output string) (bool, error) {
	in, err := os.Stat(input)
	if err != nil {
		return false, err
	}
	outInfo, err := os.Stat(output)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return in.ModTime().After(outInfo.ModTime()), nil
}

func writeResult(path string, res *pipeline.Result) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
