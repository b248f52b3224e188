// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package docs

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mia-platform/apiboot/internal/config"
)

const (
	// UIPath is where the Swagger UI is mounted.
	UIPath = "/docs"

	uiRealm = "API Documentation"
)

// ConfigureAuthDocs protects the documentation UI with the configured credentials.
// Without credentials the UI is left public.
func ConfigureAuthDocs(app *fiber.App, cfg *config.Config) {
	if !cfg.DocsCredentialsSet() {
		return
	}

	app.Use(UIPath, basicauth.New(basicauth.Config{
		Realm: uiRealm,
		Authorizer: func(user, password string) bool {
			return credentialsMatch(user, password, cfg.DocsUser, cfg.DocsPassword)
		},
	}))
}

// ConfigureDocs mounts the Swagger UI, reading the document from JSONPath.
func ConfigureDocs(app *fiber.App, _ *config.Config) {
	ui := adaptor.HTTPHandler(httpSwagger.Handler(
		httpSwagger.URL(JSONPath),
		httpSwagger.DeepLinking(true),
	))

	app.Get(UIPath, func(c *fiber.Ctx) error {
		return c.Redirect(UIPath+"/index.html", http.StatusMovedPermanently)
	})
	app.Get(UIPath+"/*", ui)
}
