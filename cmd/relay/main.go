package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/finkeeper/internal/relay"
	"github.com/iudanet/finkeeper/internal/relay/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", ":8080", "Listen address")
	dbPath := flag.String("db", "finkeeper-relay.db", "Path to SQLite database")
	jwtSecret := flag.String("jwt-secret", "", "Secret for signing device tokens (required)")
	tokenTTL := flag.Duration("token-ttl", 365*24*time.Hour, "Device token lifetime")
	rateLimit := flag.Int("rate-limit", 120, "Requests per client per window")
	rateWindow := flag.Duration("rate-window", time.Minute, "Rate limit window")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	// Секрет обязателен: без него токены устройств не переживут рестарт
	secret := *jwtSecret
	if secret == "" {
		secret = os.Getenv("FINKEEPER_JWT_SECRET")
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "jwt secret is required: pass -jwt-secret or set FINKEEPER_JWT_SECRET")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := sqlite.New(ctx, *dbPath)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	srv := relay.NewServer(relay.Config{
		Addr:       *addr,
		Version:    Version,
		JWTSecret:  []byte(secret),
		TokenTTL:   *tokenTTL,
		RateLimit:  *rateLimit,
		RateWindow: *rateWindow,
	}, logger, store, store)

	errC := make(chan error, 1)
	go func() {
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if err != nil {
			logger.Error("relay server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}

func printVersion() {
	fmt.Printf("FinKeeper Relay\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
