package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeatlas/internal/api"
	"codeatlas/internal/logging"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server for the dashboard",
	Long: `Serve exposes the analysis engine over HTTP. The dashboard can trigger
scans (POST /scan) and query the snapshot: stats, files, routes, pages,
modules, services, dependency edges, graph views, and search. A persisted
snapshot from a previous run is restored on startup.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:7431)")
}

func runServe(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot()
	if err != nil {
		return err
	}

	engine, store, cfg, logger, err := buildEngine(repoRoot)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	server := api.NewServer(addr, repoRoot, store, engine, logger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting Code Atlas HTTP API server", logging.Fields{
			"addr": addr,
			"repo": repoRoot,
		})
		fmt.Printf("Code Atlas HTTP API listening on http://%s\n", addr)
		fmt.Println("Press Ctrl+C to stop")
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", logging.Fields{"error": err.Error()})
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", logging.Fields{
			"signal": sig.String(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", logging.Fields{"error": err.Error()})
			return err
		}

		logger.Info("Server stopped gracefully", nil)
	}

	return nil
}
