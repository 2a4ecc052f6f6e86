package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/profiler.report/internal/api"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var dbPath string
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run history over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := ctx.requireHistory(dbPath)
			if err != nil {
				return err
			}
			defer history.Close()

			mux := api.NewServer(history).ServeMux()
			if err := history.AttachAdminRoutes(mux); err != nil {
				return fmt.Errorf("attach admin routes: %w", err)
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serveUntilDone(sigCtx, listen, api.LoggingMiddleware(mux))
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "History database (default from config)")
	cmd.Flags().StringVar(&listen, "listen", ":8080", "Listen address")

	return cmd
}

// serveUntilDone runs an HTTP server until ctx is cancelled, then shuts it
// down with a short grace period.
func serveUntilDone(ctx context.Context, addr string, h http.Handler) error {
	server := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("serving run history on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		wg.Wait()
		return err
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	wg.Wait()
	log.Printf("Graceful shutdown complete")
	return nil
}
