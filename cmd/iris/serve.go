// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Iris Backend Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Projet-EDP-Iris/irisBackend/internal/auth"
	"github.com/Projet-EDP-Iris/irisBackend/internal/auth/memory"
	"github.com/Projet-EDP-Iris/irisBackend/internal/auth/postgres"
	"github.com/Projet-EDP-Iris/irisBackend/internal/config"
	"github.com/Projet-EDP-Iris/irisBackend/internal/httpapi"
	"github.com/Projet-EDP-Iris/irisBackend/internal/logging"
	"github.com/Projet-EDP-Iris/irisBackend/internal/observability"
	"github.com/Projet-EDP-Iris/irisBackend/internal/store"
)

// shutdownTimeout bounds graceful drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the account API server",
		Long: `Start the HTTP API server for registration, login, and profile
management, plus an observability server for metrics and health probes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	defaults := config.Default()
	cmd.Flags().String(config.KeyListenAddr, defaults.ListenAddr, "API listen address")
	cmd.Flags().String(config.KeyMetricsAddr, defaults.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String(config.KeyDatabaseURL, "", "PostgreSQL URL (empty = in-memory store, env DATABASE_URL)")
	cmd.Flags().String(config.KeySecretKey, "", "token signing secret (env IRIS_SECRET_KEY)")
	cmd.Flags().String(config.KeyAlgorithm, defaults.Algorithm, "token signing algorithm (HS256, HS384, HS512)")
	cmd.Flags().Duration(config.KeyTokenTTL, defaults.TokenTTL, "access token lifetime")
	cmd.Flags().String(config.KeyLogFormat, defaults.LogFormat, "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Setup("iris", version, cfg.LogFormat, nil)
	slog.SetDefault(logger)

	var accounts auth.AccountRepository
	if cfg.DatabaseURL == "" {
		logger.Warn("no database configured, accounts are stored in memory and lost on exit")
		accounts = memory.NewAccountRepository()
	} else {
		pool, connErr := store.Connect(ctx, cfg.DatabaseURL)
		if connErr != nil {
			return connErr
		}
		defer pool.Close()
		accounts = postgres.NewAccountRepository(pool)
	}

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:    []byte(cfg.SecretKey),
		Algorithm: cfg.Algorithm,
		TTL:       cfg.TokenTTL,
	}, nil)
	if err != nil {
		return err
	}

	guard, err := auth.NewGuard(issuer, accounts)
	if err != nil {
		return err
	}

	service, err := auth.NewAccountServiceWithLogger(accounts, auth.NewArgon2idHasher(), issuer, guard, logger)
	if err != nil {
		return err
	}

	var ready atomic.Bool

	var metrics *observability.Metrics
	var obs *observability.Server
	var obsErrCh <-chan error
	if cfg.MetricsAddr != "" {
		obs = observability.NewServer(cfg.MetricsAddr, ready.Load)
		obsErrCh, err = obs.Start()
		if err != nil {
			return err
		}
		metrics = obs.Metrics()
	}
	stopObs := func() {
		if obs == nil {
			return
		}
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if stopErr := obs.Stop(stopCtx); stopErr != nil {
			logger.Warn("observability server stop failed", "error", stopErr)
		}
	}

	api, err := httpapi.NewServer(cfg.ListenAddr, service, guard, logger, metrics)
	if err != nil {
		stopObs()
		return err
	}
	apiErrCh, err := api.Start()
	if err != nil {
		stopObs()
		return err
	}
	ready.Store(true)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-apiErrCh:
		if serveErr != nil {
			return serveErr
		}
	case serveErr := <-obsErrCh:
		if serveErr != nil {
			return serveErr
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if stopErr := api.Stop(shutdownCtx); stopErr != nil {
		return stopErr
	}
	if obs != nil {
		if stopErr := obs.Stop(shutdownCtx); stopErr != nil {
			return stopErr
		}
	}
	return nil
}
