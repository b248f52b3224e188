// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package docs

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/apiboot/internal/config"
)

func basicHeader(credentials string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func newDocsApp(t *testing.T, cfg *config.Config) (*fiber.App, *Document) {
	t.Helper()

	doc := CreateDocument(NewBuilder().SetTitle("API Documentation").SetVersion("1.0").Build(), testRoutes(), "api")
	app := fiber.New()
	require.NoError(t, Register(app, cfg, doc))
	return app, doc
}

func TestDocumentGate(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		config         config.Config
		authorization  string
		expectedStatus int
	}{
		"missing authorization header": {
			expectedStatus: http.StatusUnauthorized,
		},
		"any parsable credentials are accepted": {
			authorization:  basicHeader("fake:credentials"),
			expectedStatus: http.StatusOK,
		},
		"empty credentials are accepted": {
			authorization:  basicHeader(":"),
			expectedStatus: http.StatusOK,
		},
		"scheme is case insensitive": {
			authorization:  "basic " + base64.StdEncoding.EncodeToString([]byte("user:pass")),
			expectedStatus: http.StatusOK,
		},
		"invalid base64": {
			authorization:  "Basic %%%not-base64%%%",
			expectedStatus: http.StatusUnauthorized,
		},
		"missing colon separator": {
			authorization:  basicHeader("userpass"),
			expectedStatus: http.StatusUnauthorized,
		},
		"other schemes are rejected": {
			authorization:  "Bearer " + base64.StdEncoding.EncodeToString([]byte("user:pass")),
			expectedStatus: http.StatusUnauthorized,
		},
		"scheme without credentials": {
			authorization:  "Basic",
			expectedStatus: http.StatusUnauthorized,
		},
		"enforced credentials reject wrong ones": {
			config:         config.Config{DocsEnforceCredentials: true, DocsUser: "admin", DocsPassword: "secret"},
			authorization:  basicHeader("admin:wrong"),
			expectedStatus: http.StatusUnauthorized,
		},
		"enforced credentials accept the right ones": {
			config:         config.Config{DocsEnforceCredentials: true, DocsUser: "admin", DocsPassword: "secret"},
			authorization:  basicHeader("admin:secret"),
			expectedStatus: http.StatusOK,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			app, doc := newDocsApp(t, &test.config)
			req := httptest.NewRequest(http.MethodGet, JSONPath, nil)
			if test.authorization != "" {
				req.Header.Set(fiber.HeaderAuthorization, test.authorization)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, test.expectedStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			if test.expectedStatus == http.StatusUnauthorized {
				assert.Equal(t, "Basic", resp.Header.Get(fiber.HeaderWWWAuthenticate))
				assert.Equal(t, "Unauthorized", string(body))
				return
			}

			assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get(fiber.HeaderContentType))
			expected, err := json.Marshal(doc)
			require.NoError(t, err)
			assert.JSONEq(t, string(expected), string(body))
		})
	}
}

func TestYAMLDocument(t *testing.T) {
	t.Parallel()

	app, doc := newDocsApp(t, &config.Config{})

	req := httptest.NewRequest(http.MethodGet, YAMLPath, nil)
	req.Header.Set(fiber.HeaderAuthorization, basicHeader("user:pass"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get(fiber.HeaderContentType))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	expected, err := doc.YAML()
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, YAMLPath, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
