// Command fakebackend serves the in-memory QuickFlip API for local
// development of the CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/quickflip/internal/fakebackend"
	"github.com/dmitrijs2005/quickflip/internal/logging"
)

func main() {
	addr := flag.String("a", "127.0.0.1:8080", "listen address")
	level := flag.String("l", "info", "log level")
	flag.Parse()

	log := logging.New(logging.FormatJSON, *level, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           fakebackend.New().Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	log.Info(ctx, "fake backend listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "server failed", "error", err)
		os.Exit(1)
	}
	log.Info(context.Background(), "stopped")
}
