// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/requirements-engine/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded runs (list, show, search)",
	Long: `History reads the SQLite run database written by extract --save,
plan --save, batch --save and the HTTP server.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent runs",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	entity, _ := cmd.Flags().GetString("entity")

	store, err := history.Open(loadConfig().History, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	var runs []history.Summary
	if entity != "" {
		runs, err = store.ForEntity(context.Background(), entity, limit)
	} else {
		runs, err = store.List(context.Background(), limit)
	}
	if err != nil {
		return err
	}
	return formatRuns(cmd, runs)
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search runs by description or project name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := history.Open(loadConfig().History, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}
	return formatRuns(cmd, runs)
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a recorded run with its requirements and plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	store, err := history.Open(loadConfig().History, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), format, run)
}

// --- shared helpers ---

func formatRuns(cmd *cobra.Command, runs []history.Summary) error {
	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	fmt.Fprintf(out, "%-26s  %-20s  %-24s  %-8s  %-10s  %s\n",
		"ID", "Created", "Project", "Entities", "Framework", "Description")
	fmt.Fprintln(out, strings.Repeat("-", 120))

	for _, r := range runs {
		project := r.ProjectName
		if len(project) > 24 {
			project = project[:21] + "..."
		}
		desc := strings.Join(strings.Fields(r.Description), " ")
		if len(desc) > 30 {
			desc = desc[:27] + "..."
		}
		fmt.Fprintf(out, "%-26s  %-20s  %-24s  %-8d  %-10s  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), project, r.EntityCount, r.Framework, desc)
	}

	fmt.Fprintf(out, "\n%d runs\n", len(runs))
	return nil
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = default of 20)")
	historyListCmd.Flags().String("entity", "", "only runs containing this entity")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")

	historySearchCmd.Flags().Int("limit", 0, "maximum runs to list (0 = default of 20)")
	historySearchCmd.Flags().Bool("json", false, "output runs as JSON")

	historyShowCmd.Flags().String("format", "yaml", "output format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyShowCmd)

	rootCmd.AddCommand(historyCmd)
}
