// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/requirements-engine/internal/assemble"
	"github.com/pdiddy/requirements-engine/internal/history"
	"github.com/pdiddy/requirements-engine/internal/pipeline"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Extract structured requirements from a description",
	Long: `Extract reads a plain-English API description from a file (or stdin when
the argument is "-" or omitted) and prints the structured requirements:
entities with typed fields, relationships, framework, database, auth and
feature flags, plus any diagnostics.

Use --framework, --database and --auth to override the classifiers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDescription(cmd, args, false)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan [file|-]",
	Short: "Extract requirements and plan the API topology",
	Long: `Plan extracts requirements like extract does and then derives the API
topology: dependency-respecting build order, CRUD and relationship
endpoints, the directory layout for the chosen framework, and complexity
metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDescription(cmd, args, true)
	},
}

func runDescription(cmd *cobra.Command, args []string, withPlan bool) error {
	source := "-"
	if len(args) == 1 {
		source = args[0]
	}
	watch, _ := cmd.Flags().GetBool("watch")
	if watch && source == "-" {
		return fmt.Errorf("--watch requires a file argument")
	}

	in, err := inputFromFlags(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	save, _ := cmd.Flags().GetBool("save")

	cfg := loadConfig()
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var store *history.Store
	if save {
		if store, err = history.Open(cfg.History, logger); err != nil {
			return err
		}
		defer store.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	once := func() error {
		text, err := readDescription(source, cmd.InOrStdin())
		if err != nil {
			return err
		}
		in.Description = text
		return describe(ctx, p, store, in, withPlan, format, cmd.OutOrStdout())
	}

	if err := once(); err != nil {
		if !watch {
			return err
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	if !watch {
		return nil
	}
	return watchFile(ctx, source, logger, func() {
		if err := once(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	})
}

// describe runs one extraction and writes the result to w.
func describe(ctx context.Context, p *pipeline.Pipeline, store *history.Store, in pipeline.Input, withPlan bool, format string, w io.Writer) error {
	req, err := p.Extract(in)
	if err != nil {
		if se, ok := assemble.AsStructural(err); ok {
			return fmt.Errorf("%s (%s): %w", se.Kind(), strings.Join(se.Names(), ", "), err)
		}
		return err
	}
	fp, err := pipeline.Fingerprint(req)
	if err != nil {
		return err
	}
	res := &pipeline.Result{Requirements: req, Fingerprint: fp}
	if withPlan {
		res.Plan = p.Plan(req)
	}

	printDiagnostics(req.Diagnostics)
	if res.Plan != nil {
		printDiagnostics(res.Plan.Diagnostics)
	}

	if store != nil {
		sum, err := store.Save(ctx, req, res.Plan, fp)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved run %s\n", sum.ID)
	}

	if withPlan {
		return writeOutput(w, format, res)
	}
	return writeOutput(w, format, req)
}

func printDiagnostics(diags []types.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", d.Code, d.Message)
	}
}

func inputFromFlags(cmd *cobra.Command) (pipeline.Input, error) {
	framework, _ := cmd.Flags().GetString("framework")
	database, _ := cmd.Flags().GetString("database")
	auth, _ := cmd.Flags().GetString("auth")
	name, _ := cmd.Flags().GetString("name")

	o, err := pipeline.ParseOverrides(framework, database, auth)
	if err != nil {
		return pipeline.Input{}, err
	}
	return pipeline.Input{ProjectName: name, Overrides: o}, nil
}

func readDescription(source string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return "", fmt.Errorf("reading description: %w", err)
	}
	return string(data), nil
}

func writeOutput(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}

// watchFile calls fn each time path is written until ctx is cancelled.
// The parent directory is watched so editors that replace the file on
// save are still seen.
func watchFile(ctx context.Context, path string, logger *zap.Logger, fn func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Debug("Description changed", zap.String("file", path), zap.String("op", event.Op.String()))
				fn()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

func init() {
	for _, c := range []*cobra.Command{extractCmd, planCmd} {
		c.Flags().String("framework", "", "override the framework: fastapi, django")
		c.Flags().String("database", "", "override the database: sqlite, postgresql, mysql, mongodb, dynamodb, firestore")
		c.Flags().String("auth", "", "override authentication: none, jwt, session, api-key, oauth2")
		c.Flags().String("name", "", "override the derived project name")
		c.Flags().String("format", "yaml", "output format: yaml or json")
		c.Flags().Bool("watch", false, "re-run whenever the description file changes")
		c.Flags().Bool("save", false, "record the run in the history database")
		rootCmd.AddCommand(c)
	}
}
