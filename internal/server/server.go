// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/apiboot/internal/config"
	"github.com/mia-platform/apiboot/internal/docs"
	"github.com/mia-platform/apiboot/internal/example"
	"github.com/mia-platform/apiboot/internal/info"
	"github.com/mia-platform/apiboot/internal/logger"
	"github.com/mia-platform/apiboot/internal/plugins"
	"github.com/mia-platform/apiboot/internal/storage"
	"github.com/mia-platform/apiboot/internal/validation"
)

const (
	loggerName = "apiboot:server"

	docsTitle       = "API Documentation"
	docsDescription = "The API description"
	docsVersion     = "1.0"

	// kept below the one second budget orchestrator probes usually get
	readinessTimeout = 300 * time.Millisecond
)

// Server is a bootstrapped application ready to listen.
type Server interface {
	Start() error
	Stop() error
}

type impServer struct {
	cfg *config.Config
	log logger.Logger

	app     *fiber.App
	storage *storage.Redis
}

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

// NewServer runs the whole bootstrap sequence and returns a server that has not started
// listening yet. Every middleware is attached before the first route is registered.
func NewServer(ctx context.Context, cfg *config.Config) (Server, error) {
	return newServer(ctx, cfg)
}

func newServer(ctx context.Context, cfg *config.Config) (*impServer, error) {
	log := logger.FromContext(ctx).WithName(loggerName)
	s := &impServer{cfg: cfg, log: log}

	var limiterStorage fiber.Storage
	if cfg.RateLimitRedisURL != "" {
		redisStorage, err := storage.NewRedis(ctx, cfg.RateLimitRedisURL)
		if err != nil {
			return nil, err
		}
		s.storage = redisStorage
		limiterStorage = redisStorage
	}

	s.app = fiber.New(fiber.Config{
		AppName:               info.AppName,
		DisableStartupMessage: cfg.DisableStartupMessage,
		ErrorHandler:          errorHandler,
	})
	s.app.Hooks().OnListen(func(fiber.ListenData) error {
		s.logEnvironment()
		return nil
	})

	s.app.Use(logger.RequestMiddlewareLogger(log, []string{statusRoutesPrefix}))
	statusRoutes(s.app, info.AppName, info.Version, s.readiness)

	if err := plugins.Register(s.app, cfg, limiterStorage); err != nil {
		s.closeStorage()
		return nil, err
	}

	s.app.Use(validation.NewPipe(validation.Options{
		Whitelist:            true,
		ForbidNonWhitelisted: true,
		ImplicitConversion:   true,
	}).Middleware())

	api := s.app.Group("/" + config.GlobalPrefix)
	example.NewModule(example.NewStore()).Mount(api)

	docConfig := docs.NewBuilder().
		SetTitle(docsTitle).
		SetDescription(docsDescription).
		SetVersion(docsVersion).
		AddTag(example.Tag).
		AddBasicAuth().
		Build()
	document := docs.CreateDocument(docConfig, s.app.GetRoutes(true), config.GlobalPrefix)
	if err := docs.Register(s.app, cfg, document); err != nil {
		s.closeStorage()
		return nil, err
	}

	docs.ConfigureAuthDocs(s.app, cfg)
	docs.ConfigureDocs(s.app, cfg)

	return s, nil
}

func (s *impServer) Start() error {
	if err := s.app.Listen(s.cfg.ListenAddress()); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *impServer) Stop() error {
	defer s.closeStorage()

	if err := s.app.ShutdownWithTimeout(s.cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

// logEnvironment reports where the service can be reached when not in production.
func (s *impServer) logEnvironment() {
	if s.cfg.IsProduction() {
		return
	}

	baseURL := s.cfg.BaseURL()
	s.log.Debug(fmt.Sprintf("%s - Environment: %s", baseURL, s.cfg.Environment), "context", "Environment")
	s.log.Debug(fmt.Sprintf("Url for OpenApi: %s%s", baseURL, docs.UIPath), "context", "Swagger")
}

func (s *impServer) readiness(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return s.storage.Ping(ctx)
}

func (s *impServer) closeStorage() {
	if s.storage == nil {
		return
	}
	if err := s.storage.Close(); err != nil {
		s.log.Warn("closing rate limit storage", "error", err.Error())
	}
}
