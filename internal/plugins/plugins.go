// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package plugins attaches the cross-cutting middleware shared by every route of the
// service: CORS policy, per client rate limiting and security headers.
package plugins

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/mia-platform/apiboot/internal/config"
)

const (
	hstsMaxAge = 31536000 // one year in seconds
)

var (
	ErrPluginRegistration = errors.New("plugin registration error")

	allowedMethods = []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPut,
		http.MethodPatch,
		http.MethodPost,
		http.MethodDelete,
	}
	allowedHeaders = []string{
		fiber.HeaderContentType,
		fiber.HeaderAccept,
		fiber.HeaderAuthorization,
	}
)

// Register installs CORS, rate limiting and security headers on router, in this order.
// It returns only after every middleware is attached, so it must run before any route is added.
// A nil storage keeps the rate limiter counters in memory.
func Register(router fiber.Router, cfg *config.Config, storage fiber.Storage) (err error) {
	if cfg == nil {
		return fmt.Errorf("%w: missing configuration", ErrPluginRegistration)
	}

	// fiber middleware constructors panic on insecure or invalid setups
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPluginRegistration, r)
		}
	}()

	router.Use(cors.New(CORSConfig(cfg)))
	router.Use(limiter.New(LimiterConfig(cfg, storage)))
	router.Use(helmet.New(HelmetConfig()))
	return nil
}

// CORSConfig allows credentials for the configured origin, or for any origin when none is set.
func CORSConfig(cfg *config.Config) cors.Config {
	corsConfig := cors.Config{
		AllowMethods:     strings.Join(allowedMethods, ","),
		AllowHeaders:     strings.Join(allowedHeaders, ","),
		AllowCredentials: true,
	}

	if cfg.CORSAllowedOrigin != "" {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigin
	} else {
		// the wildcard origin cannot be combined with credentials, reflect the caller origin instead
		corsConfig.AllowOriginsFunc = func(string) bool { return true }
	}

	return corsConfig
}

// LimiterConfig caps every client IP to cfg.RateLimitMax requests in a sliding cfg.RateLimitWindow.
func LimiterConfig(cfg *config.Config, storage fiber.Storage) limiter.Config {
	return limiter.Config{
		Max:               cfg.RateLimitMax,
		Expiration:        cfg.RateLimitWindow,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           storage,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.ErrTooManyRequests
		},
	}
}

// HelmetConfig returns the security headers policy.
func HelmetConfig() helmet.Config {
	return helmet.Config{
		XFrameOptions:             "DENY",
		ContentSecurityPolicy:     "",
		ReferrerPolicy:            "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		HSTSMaxAge:                hstsMaxAge,
		HSTSExcludeSubdomains:     false,
		HSTSPreloadEnabled:        true,
	}
}
