package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/pdiddy/requirements-engine/internal/pipeline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, toolchain and fingerprint scheme",
	Long: `Version reports the build version, the Go toolchain and the scheme used
for requirement fingerprints. Fingerprints recorded in the run history are
only comparable between builds that share a scheme.`,
	RunE: runVersion,
}

// buildInfo describes the running binary.
type buildInfo struct {
	Version     string `json:"version"`
	Go          string `json:"go"`
	Revision    string `json:"revision,omitempty"`
	Fingerprint string `json:"fingerprint_scheme"`
}

func currentBuild() buildInfo {
	info := buildInfo{
		Version:     version,
		Go:          runtime.Version(),
		Fingerprint: pipeline.FingerprintScheme,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Revision = s.Value
			}
		}
	}
	return info
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := currentBuild()
	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(out, "requirements-engine %s\n", info.Version)
	fmt.Fprintf(out, "  go:          %s\n", info.Go)
	if info.Revision != "" {
		fmt.Fprintf(out, "  revision:    %s\n", info.Revision)
	}
	fmt.Fprintf(out, "  fingerprint: %s\n", info.Fingerprint)
	return nil
}

func init() {
	versionCmd.Flags().Bool("json", false, "output build information as JSON")
	rootCmd.AddCommand(versionCmd)
}
