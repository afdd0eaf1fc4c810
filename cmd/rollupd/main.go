// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// rollupd runs the rollup sequencer: it accepts transfers over HTTP, proves
// batches in the background and persists them in the batch store.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aayux/r1cs-tutorial/config"
	"github.com/aayux/r1cs-tutorial/ledger"
	"github.com/aayux/r1cs-tutorial/logger"
	"github.com/aayux/r1cs-tutorial/prover"
	"github.com/aayux/r1cs-tutorial/rollup"
	"github.com/aayux/r1cs-tutorial/sequencer"
)

func main() {
	fConfig := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*fConfig)
	if err != nil {
		log := logger.Logger()
		log.Fatal().Err(err).Msg("loading configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger.Set(logger.Logger().Level(level))
	}
	log := logger.With("rollupd")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("daemon exited")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	p, err := loadOrSetupProver(filepath.Join(cfg.DataDir, "keys"), log)
	if err != nil {
		return err
	}

	state, err := ledger.NewState(rollup.NbAccounts)
	if err != nil {
		return err
	}
	operator, err := rollup.NewOperator(state)
	if err != nil {
		return err
	}

	store, err := sequencer.OpenStore(filepath.Join(cfg.DataDir, "batches"))
	if err != nil {
		return err
	}
	defer store.Close()

	seq := sequencer.New(operator, p, store, cfg.QueueSize)
	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: sequencer.NewRouter(seq),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return seq.Run(ctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.Listen).Msg("sequencer API listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}

// loadOrSetupProver reuses keys from a previous run when present, and runs
// the trusted setup otherwise. Setup takes a while, so the keys are saved
// for the next start.
func loadOrSetupProver(keysDir string, log zerolog.Logger) (*prover.Prover, error) {
	pk, vk, err := prover.LoadKeys(keysDir)
	if err == nil {
		ccs, err := prover.Compile()
		if err != nil {
			return nil, err
		}
		log.Info().Str("dir", keysDir).Msg("loaded existing keys")
		return prover.NewFromKeys(ccs, pk, vk), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	log.Info().Msg("no keys found, running setup")
	p, err := prover.New()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(keysDir, 0o755); err != nil {
		return nil, err
	}
	if err := p.SaveKeys(keysDir); err != nil {
		return nil, err
	}
	log.Info().Str("dir", keysDir).Msg("keys written")
	return p, nil
}
