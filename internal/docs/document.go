// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package docs

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"
)

const (
	openAPIVersion = "3.0.3"
)

// Document is an OpenAPI document describing the application routes.
type Document struct {
	OpenAPI    string              `json:"openapi" yaml:"openapi"`
	Info       Info                `json:"info" yaml:"info"`
	Tags       []Tag               `json:"tags,omitempty" yaml:"tags,omitempty"`
	Paths      map[string]PathItem `json:"paths" yaml:"paths"`
	Components *Components         `json:"components,omitempty" yaml:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
}

type Components struct {
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty" yaml:"securitySchemes,omitempty"`
}

// PathItem maps lowercase http methods to their operation.
type PathItem map[string]Operation

type Operation struct {
	OperationID string              `json:"operationId" yaml:"operationId"`
	Tags        []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]Response `json:"responses" yaml:"responses"`
}

type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	In       string `json:"in" yaml:"in"`
	Required bool   `json:"required" yaml:"required"`
	Schema   Schema `json:"schema" yaml:"schema"`
}

type Schema struct {
	Type string `json:"type" yaml:"type"`
}

type Response struct {
	Description string `json:"description" yaml:"description"`
}

// CreateDocument describes every route mounted under prefix. Routes named "tag.operation"
// are grouped under tag, the other ones under the first path segment after the prefix.
func CreateDocument(config Config, routes []fiber.Route, prefix string) *Document {
	doc := &Document{
		OpenAPI: openAPIVersion,
		Info: Info{
			Title:       config.Title,
			Description: config.Description,
			Version:     config.Version,
		},
		Tags:  config.Tags,
		Paths: make(map[string]PathItem),
	}
	if len(config.SecuritySchemes) > 0 {
		doc.Components = &Components{SecuritySchemes: config.SecuritySchemes}
	}

	prefix = "/" + strings.Trim(prefix, "/")
	for _, route := range routes {
		if route.Method == http.MethodHead || route.Method == http.MethodConnect {
			continue
		}
		if route.Path != prefix && !strings.HasPrefix(route.Path, prefix+"/") {
			continue
		}

		path := openAPIPath(route.Path)
		item, ok := doc.Paths[path]
		if !ok {
			item = make(PathItem)
			doc.Paths[path] = item
		}
		item[strings.ToLower(route.Method)] = operation(route, prefix)
	}

	return doc
}

// YAML returns the YAML encoding of the document.
func (d *Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

func operation(route fiber.Route, prefix string) Operation {
	op := Operation{
		OperationID: strings.ToLower(route.Method) + operationSuffix.Replace(route.Path),
		Responses: map[string]Response{
			"default": {Description: "response for " + route.Method + " " + route.Path},
		},
	}

	tag, name, named := strings.Cut(route.Name, ".")
	switch {
	case named && tag != "" && name != "":
		op.OperationID = route.Name
		op.Tags = []string{tag}
	default:
		segment, _, _ := strings.Cut(strings.TrimPrefix(strings.TrimPrefix(route.Path, prefix), "/"), "/")
		if segment != "" && !strings.HasPrefix(segment, ":") {
			op.Tags = []string{segment}
		}
	}

	for _, param := range route.Params {
		if param == "*" || param == "+" {
			continue
		}
		op.Parameters = append(op.Parameters, Parameter{
			Name:     param,
			In:       "path",
			Required: true,
			Schema:   Schema{Type: "string"},
		})
	}

	return op
}

var operationSuffix = strings.NewReplacer("/", "_", ":", "", "?", "", "*", "")

// openAPIPath converts fiber path parameters (:id, :id?) to the OpenAPI notation ({id}).
func openAPIPath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if strings.HasPrefix(segment, ":") {
			segments[i] = "{" + strings.TrimSuffix(strings.TrimPrefix(segment, ":"), "?") + "}"
		}
	}
	return strings.Join(segments, "/")
}
