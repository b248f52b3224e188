// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mia-platform/apiboot/internal/config"
	"github.com/mia-platform/apiboot/internal/logger"
	"github.com/mia-platform/apiboot/internal/server"
)

const (
	loggerName = "apiboot:serve"
)

// options holds the resolved configuration of a serve run.
type options struct {
	config           *config.Config
	logLevelFromFlag bool
	serverFactory    func(context.Context, *config.Config) (server.Server, error)

	lock sync.Mutex
}

// validate checks the values coming from the flags.
func (o *options) validate() error {
	if o.config.ServerPort < 1 || o.config.ServerPort > 65535 {
		return fmt.Errorf("%w: %d", errInvalidPort, o.config.ServerPort)
	}
	return nil
}

// execute bootstraps the server and keeps it running until ctx is cancelled or
// an interrupt signal is received, then shuts it down.
func (o *options) execute(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	log := logger.FromContext(ctx)
	if !o.logLevelFromFlag {
		log.SetLevel(logger.LevelFromString(o.config.LogLevel))
	}
	log = log.WithName(loggerName)

	srv, err := o.serverFactory(ctx, o.config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()
	log.Info("server starting", "address", o.config.ListenAddress(), "environment", o.config.Environment)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	if err := srv.Stop(); err != nil {
		return err
	}
	if err := <-errChan; err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
