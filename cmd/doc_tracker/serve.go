package main

import (
	"fmt"
	"os"
	"time"

	"github.com/huyxdang/doc-tracker-backend/internal/config"
	"github.com/huyxdang/doc-tracker-backend/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveConfigPath string
	servePort       int
	serveMaxAge     int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for comparing documents and downloading annotated copies.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().IntVar(&serveMaxAge, "artifact-max-age", 0, "Minutes to retain annotated documents for download")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}

	// CLI overrides take priority over the config file
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("artifact-max-age") {
		cfg.ArtifactMaxAgeMinutes = serveMaxAge
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		Port:                  8080,
		ArtifactMaxAgeMinutes: 60,
	})

	// The API key is optional: without it the compare endpoint degrades
	// non-rule changes to medium instead of failing.
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		ArtifactMaxAge: time.Duration(cfg.ArtifactMaxAgeMinutes) * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
