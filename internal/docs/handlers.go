// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package docs

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"github.com/mia-platform/apiboot/internal/config"
)

const (
	// JSONPath serves the raw document, it is not affected by the global prefix.
	JSONPath = "/api-json"
	// YAMLPath serves the document encoded as YAML, it is not affected by the global prefix.
	YAMLPath = "/api-yaml"

	challengeHeaderValue = "Basic"
)

// Gate returns the Basic authentication guard for the raw document endpoints.
// The Authorization header must carry a decodable "Basic base64(user:password)" value;
// the credentials themselves are compared only when cfg.DocsEnforceCredentials is set.
func Gate(cfg *config.Config) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Authorizer: func(user, password string) bool {
			// TODO: enforce credentials by default once the documentation consumers send them
			if !cfg.DocsEnforceCredentials {
				return true
			}
			return credentialsMatch(user, password, cfg.DocsUser, cfg.DocsPassword)
		},
		Unauthorized: unauthorized,
	})
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, challengeHeaderValue)
	return c.Status(http.StatusUnauthorized).SendString(http.StatusText(http.StatusUnauthorized))
}

func credentialsMatch(user, password, expectedUser, expectedPassword string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(expectedUser))
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(expectedPassword))
	return userMatch&passwordMatch == 1
}

// Register exposes the document as JSON and YAML on the unprefixed documentation paths,
// both behind Gate. The document is encoded once and served verbatim afterwards.
func Register(app *fiber.App, cfg *config.Config, doc *Document) error {
	jsonBody, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding json document: %w", err)
	}
	yamlBody, err := doc.YAML()
	if err != nil {
		return fmt.Errorf("encoding yaml document: %w", err)
	}

	gate := Gate(cfg)
	app.Get(JSONPath, gate, staticBody(fiber.MIMEApplicationJSON, jsonBody))
	app.Get(YAMLPath, gate, staticBody("application/yaml", yamlBody))
	return nil
}

func staticBody(contentType string, body []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(body)
	}
}
