package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cardcycle/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "api",
	Short:         "Cardcycle HTTP API",
	Long:          "Serve the Cardcycle REST API and related maintenance commands.",
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads .env (if present) and the environment, then installs the
// default logger.
func loadConfig() (*config.Config, error) {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	slog.SetDefault(newLogger(cfg))

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Production() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("app", cfg.App.Name)
}
