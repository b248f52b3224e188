// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const (
	statusRoutesPrefix = "/-/"

	statusOK = "OK"
	statusKO = "KO"
)

type statusResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// statusRoutes exposes the liveness and readiness probes; ready fails when check fails.
func statusRoutes(app *fiber.App, serviceName, version string, check func(context.Context) error) {
	app.Get(statusRoutesPrefix+"healthz", func(c *fiber.Ctx) error {
		return c.JSON(statusResponse{Status: statusOK, Name: serviceName, Version: version})
	})

	app.Get(statusRoutesPrefix+"ready", func(c *fiber.Ctx) error {
		if err := check(c.UserContext()); err != nil {
			return c.Status(http.StatusServiceUnavailable).
				JSON(statusResponse{Status: statusKO, Name: serviceName, Version: version})
		}
		return c.JSON(statusResponse{Status: statusOK, Name: serviceName, Version: version})
	})
}
