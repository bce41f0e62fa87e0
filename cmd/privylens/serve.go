// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/privylens/internal/logger"
	"github.com/pdiddy/privylens/internal/webui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive web UI",
	Long: `Serve hosts the similarity search web UI: the search form, the ranked
result list, and the past-searches sidebar with reload and delete. Prometheus
metrics are exposed on /metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	listen, _ := cmd.Flags().GetString("listen")

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Serve.Listen = listen
	}

	log, err := logger.New(cfg.Serve.Env, cfg.Serve.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	p, archive, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer archive.Close()

	return webui.NewServer(p, archive, log).Start(cfg.Serve.Listen)
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default from config, \":8080\")")

	rootCmd.AddCommand(serveCmd)
}
