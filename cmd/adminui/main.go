// Command adminui serves the OpenClaw admin dashboard and prints cron
// summaries from the terminal.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/openclaw/admin-ui/pkg/config"
	"github.com/openclaw/admin-ui/pkg/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "adminui",
	Short: "Local admin dashboard for the OpenClaw gateway",
	Long: `adminui exposes the gateway's on-disk state (cron jobs, sessions, logs,
workspace files, skills and settings) as a REST API and serves the web UI.

Examples:
  adminui serve --port 3001
  adminui next-up --limit 5
  adminui schedule`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ~/.config/admin-ui/config.json)")
}

// loadConfig reads the config and sets up the process logger.
func loadConfig() (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closer := utils.SetupLogger(cfg.Log.Dir, cfg.Log.Level, cfg.Log.Format)
	return cfg, logger, closer, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
