package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openclaw/admin-ui/pkg/api"
	"github.com/openclaw/admin-ui/pkg/runner"
)

var (
	serveHost      string
	servePort      int
	serveToken     string
	serveStaticDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	Long: `Run the dashboard's REST API under /api, the activity websocket,
Prometheus metrics on /metrics and the built UI from the static directory.

Flags override the config file.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Bind port")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "Bearer token required on /api routes")
	serveCmd.Flags().StringVar(&serveStaticDir, "static-dir", "", "Directory holding the built UI")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := loadConfig()
	if err != nil {
		return err
	}
	defer closer.Close()

	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveToken != "" {
		cfg.Server.AuthToken = serveToken
	}
	if serveStaticDir != "" {
		cfg.Server.StaticDir = serveStaticDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.New(cfg, runner.New(logger), logger)
	return srv.ListenAndServe(ctx)
}
