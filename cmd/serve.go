package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"s3-utils/core/config"
	"s3-utils/core/logger"
	"s3-utils/core/server"
	"s3-utils/feature/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshots and reports over HTTP",
	Long: `Starts a read-only HTTP server exposing the snapshot index and the
latest change report, both as JSON and as an HTML table.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Initialize Server over the snapshot store
		store := snapshot.NewStore(cfg.Snapshot.Dir)
		srv := server.New(cfg.Server, logg, store)

		// 4. Start Server
		go func() {
			if err := srv.Listen(); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 5. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = srv.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
