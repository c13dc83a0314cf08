package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opendisaster/simflow/internal/config"
	"github.com/opendisaster/simflow/internal/geocode"
	"github.com/opendisaster/simflow/internal/httpapi"
	"github.com/opendisaster/simflow/pkg/agents"
	"github.com/opendisaster/simflow/pkg/pipeline"
)

var version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "simflow",
	Short: "Disaster-simulation parameter extraction service",
	Long: `simflow extracts structured disaster-simulation parameters (disaster
type, geographic location) from free-text prompts by running a pipeline of
extraction agents over a shared context.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("simflow %s\n", version)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if cfg.Mapbox.AccessToken == "" {
		logger.Warn("no mapbox access token configured; location lookups will fail")
	}

	geocoder := geocode.New(cfg.Mapbox.AccessToken, geocode.WithTimeout(cfg.Mapbox.TimeoutDuration()))

	orchestrator, err := pipeline.New(
		[]pipeline.Agent{
			agents.NewDisasterType(),
			agents.NewLocation(geocoder),
		},
		pipeline.WithLogger(logger),
		pipeline.WithTracing(),
	)
	if err != nil {
		return err
	}

	server := httpapi.New(orchestrator, httpapi.Options{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server.Start()
	<-ctx.Done()

	logger.Info("shutting down")
	return server.Shutdown(context.Background())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
