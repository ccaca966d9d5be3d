package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/komenta/internal/adapters/driven/config/file"
	"github.com/custodia-labs/komenta/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/komenta/internal/logger"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP server exposing the analysis pipeline.

Endpoints:
  GET  /ingest                 run one analysis
  GET  /history                list recent runs
  GET  /healthz                liveness probe
  POST /summaries/narratives   narrative report over supplied comments
  POST /summaries/procontra    stance report over supplied comments`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}

	cfg := configStore.Config()
	host := cfg.Server.Host
	port := cfg.Server.Port
	if serveHost != "" {
		host = serveHost
	}
	if servePort != 0 {
		port = servePort
	}

	srv := httpapi.NewServer(httpapi.Config{Host: host, Port: port},
		analysisService, historyService, summaryService)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reload the config file on change. Upstream and server settings
	// still need a restart; the client holds its key immutably.
	go func() {
		err := configStore.Watch(ctx, func(_ file.Config) {
			logger.Warn("configuration changed on disk; restart to apply upstream or server settings")
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("config watch stopped: %v", err)
		}
	}()

	cmd.Printf("Listening on %s\n", srv.Addr())
	<-ctx.Done()

	cmd.Println("Shutting down...")
	return srv.Stop()
}
