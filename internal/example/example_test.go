// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package example

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/apiboot/internal/validation"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, validation.ErrValidation) {
				return c.SendStatus(http.StatusBadRequest)
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
	app.Use(validation.NewPipe(validation.Options{
		Whitelist:            true,
		ForbidNonWhitelisted: true,
		ImplicitConversion:   true,
	}).Middleware())
	NewModule(NewStore()).Mount(app.Group("/api"))
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, payload string) (*http.Response, []byte) {
	t.Helper()

	var req *http.Request
	if payload != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestModule(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp, body := doRequest(t, app, http.MethodPost, "/api/examples", `{"name":"first","priority":"3"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created Example
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "first", created.Name)
	assert.Equal(t, 3, created.Priority)
	assert.NotEmpty(t, created.ID)

	resp, body = doRequest(t, app, http.MethodGet, "/api/examples/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched Example
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created, fetched)

	doRequest(t, app, http.MethodPost, "/api/examples", `{"name":"second"}`)
	resp, body = doRequest(t, app, http.MethodGet, "/api/examples?limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list listResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "second", list.Items[0].Name)
}

func TestModuleErrors(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		method         string
		target         string
		body           string
		expectedStatus int
	}{
		"unknown property": {
			method:         http.MethodPost,
			target:         "/api/examples",
			body:           `{"name":"first","admin":true}`,
			expectedStatus: http.StatusBadRequest,
		},
		"missing name": {
			method:         http.MethodPost,
			target:         "/api/examples",
			body:           `{"priority":1}`,
			expectedStatus: http.StatusBadRequest,
		},
		"priority out of range": {
			method:         http.MethodPost,
			target:         "/api/examples",
			body:           `{"name":"first","priority":11}`,
			expectedStatus: http.StatusBadRequest,
		},
		"limit out of range": {
			method:         http.MethodGet,
			target:         "/api/examples?limit=1000",
			expectedStatus: http.StatusBadRequest,
		},
		"unknown query parameter": {
			method:         http.MethodGet,
			target:         "/api/examples?sort=name",
			expectedStatus: http.StatusBadRequest,
		},
		"missing example": {
			method:         http.MethodGet,
			target:         "/api/examples/missing",
			expectedStatus: http.StatusNotFound,
		},
	}

	for testName, test := range testCases {
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			resp, _ := doRequest(t, newTestApp(t), test.method, test.target, test.body)
			assert.Equal(t, test.expectedStatus, resp.StatusCode)
		})
	}
}
