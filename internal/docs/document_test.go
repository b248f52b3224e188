// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package docs

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func noop(*fiber.Ctx) error { return nil }

func testRoutes() []fiber.Route {
	app := fiber.New()
	api := app.Group("/api")
	api.Get("/examples", noop).Name("example.list")
	api.Post("/examples", noop).Name("example.create")
	api.Get("/examples/:id", noop).Name("example.get")
	api.Delete("/things/:id?", noop)
	app.Get("/-/healthz", noop)
	return app.GetRoutes(true)
}

func TestCreateDocument(t *testing.T) {
	t.Parallel()

	config := NewBuilder().
		SetTitle("API Documentation").
		SetDescription("The API description").
		SetVersion("1.0").
		AddTag("example").
		Build()

	doc := CreateDocument(config, testRoutes(), "api")

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, Info{Title: "API Documentation", Description: "The API description", Version: "1.0"}, doc.Info)
	assert.Equal(t, []Tag{{Name: "example"}}, doc.Tags)
	assert.Nil(t, doc.Components)

	require.Len(t, doc.Paths, 3)
	require.Contains(t, doc.Paths, "/api/examples")
	require.Contains(t, doc.Paths, "/api/examples/{id}")
	require.Contains(t, doc.Paths, "/api/things/{id}")
	assert.NotContains(t, doc.Paths, "/-/healthz")

	list := doc.Paths["/api/examples"]
	assert.Len(t, list, 2, "head routes are not documented")
	assert.Equal(t, "example.list", list["get"].OperationID)
	assert.Equal(t, []string{"example"}, list["get"].Tags)
	assert.Equal(t, "example.create", list["post"].OperationID)

	get := doc.Paths["/api/examples/{id}"]["get"]
	assert.Equal(t, []Parameter{{Name: "id", In: "path", Required: true, Schema: Schema{Type: "string"}}}, get.Parameters)

	unnamed := doc.Paths["/api/things/{id}"]["delete"]
	assert.Equal(t, "delete_api_things_id", unnamed.OperationID)
	assert.Equal(t, []string{"things"}, unnamed.Tags)
}

func TestDocumentEncoding(t *testing.T) {
	t.Parallel()

	config := NewBuilder().SetTitle("title").SetVersion("1.0").AddBasicAuth().Build()
	doc := CreateDocument(config, testRoutes(), "/api/")

	jsonBody, err := json.Marshal(doc)
	require.NoError(t, err)
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal(jsonBody, &fromJSON))
	assert.Equal(t, "3.0.3", fromJSON["openapi"])
	assert.Contains(t, fromJSON, "components")

	yamlBody, err := doc.YAML()
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(yamlBody, &fromYAML))
	assert.Equal(t, "3.0.3", fromYAML["openapi"])
	paths, ok := fromYAML["paths"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, paths, 3)
}
