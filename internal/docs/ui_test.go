// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package docs

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/apiboot/internal/config"
)

func newUIApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	ConfigureAuthDocs(app, cfg)
	ConfigureDocs(app, cfg)
	return app
}

func TestDocsUI(t *testing.T) {
	t.Run("ui is public without credentials", func(t *testing.T) {
		app := newUIApp(&config.Config{})
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, UIPath+"/index.html", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "api-json")
	})

	t.Run("ui root redirects to index", func(t *testing.T) {
		app := newUIApp(&config.Config{})
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, UIPath, nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
		assert.Equal(t, UIPath+"/index.html", resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("ui is protected when credentials are configured", func(t *testing.T) {
		app := newUIApp(&config.Config{DocsUser: "admin", DocsPassword: "secret"})
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, UIPath+"/index.html", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		req := httptest.NewRequest(http.MethodGet, UIPath+"/index.html", nil)
		req.Header.Set(fiber.HeaderAuthorization, basicHeader("admin:secret"))
		resp, err = app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
