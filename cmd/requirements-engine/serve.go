// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/requirements-engine/internal/history"
	"github.com/pdiddy/requirements-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve extraction and planning over HTTP",
	Long: `Serve starts an HTTP server with POST /api/extract, POST /api/plan,
GET /api/runs, GET /api/runs/:id, GET /health and GET /version. Every
successful request is recorded in the run history unless --no-history is set.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	noHistory, _ := cmd.Flags().GetBool("no-history")

	cfg := loadConfig()
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	var hist server.History
	if !noHistory {
		store, err := history.Open(cfg.History, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		hist = store
	}

	ctx, cancel := signalContext()
	defer cancel()
	return server.New(p, hist, version, logger).Run(ctx, cfg.Serve.Addr)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Bool("no-history", false, "do not record runs")
	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
