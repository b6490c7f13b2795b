package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/pipeline"
	"github.com/nao1215/phishscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Long: `Serve starts an HTTP server exposing the analyzer.

Endpoints:
  POST /analyze   body {"url": "https://example.com/"}, answers the report JSON
  GET  /healthz   liveness probe

The listen address is taken from --addr, then PHISHSCAN_ADDR or PORT (also
read from a .env file), then the configuration file.

Examples:
  # Listen on the default address (0.0.0.0:5000)
  phishscan serve

  # Listen on localhost only
  phishscan serve --addr 127.0.0.1:8080

  # Query the server
  curl -s -X POST -d '{"url":"https://www.wellsfarg0.com/"}' localhost:5000/analyze`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addConfigFlags(cmd)
	cmd.Flags().StringP("addr", "a", config.DefaultListenAddress,
		"Address to listen on")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	factory, err := pipeline.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "phishscan %s listening on %s\n", getVersion(), cfg.ListenAddress)
	return newServer(factory, logger).ListenAndServe(ctx, cfg.ListenAddress)
}

// buildServeConfig layers the serve flags over the loaded configuration.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("addr") {
		if cfg.ListenAddress, err = cmd.Flags().GetString("addr"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newServer wires a fresh pipeline per request into the HTTP server.
func newServer(factory func() *pipeline.Pipeline, logger *slog.Logger) *server.Server {
	analyze := func(ctx context.Context, rawURL string) *model.Report {
		return factory().Analyze(ctx, rawURL)
	}
	return server.New(analyze, server.WithLogger(logger))
}
