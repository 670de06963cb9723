package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fake-store/go-client/internal/composition/client"
	"fake-store/go-client/internal/config"
	"fake-store/go-client/internal/mockremote"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	addr := flag.String("addr", "127.0.0.1:8081", "listen address")
	logLevel := flag.String("log-level", "info", "debug | info | warn | error")
	flag.Parse()
	if *showVersion {
		fmt.Printf("fakestore-mock version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	level, err := config.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := client.DefaultLogger(os.Stdout, level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mockremote.New(mockremote.WithLogger(logger)).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("fakestore-mock starting", "addr", *addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("fakestore-mock failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("fakestore-mock shutdown failed", "error", err)
		}
	}
	logger.Info("fakestore-mock stopped", slog.String("addr", *addr))
}
