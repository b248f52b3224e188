// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package docs

const (
	basicAuthSchemeName = "basic"
)

// Tag groups documented operations.
type Tag struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SecurityScheme describes an authentication mechanism accepted by the API.
type SecurityScheme struct {
	Type   string `json:"type" yaml:"type"`
	Scheme string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
}

// Config is the static part of the documentation, produced by a Builder.
type Config struct {
	Title           string
	Description     string
	Version         string
	Tags            []Tag
	SecuritySchemes map[string]SecurityScheme
}

// Builder collects the documentation metadata.
type Builder struct {
	config Config
}

func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			SecuritySchemes: make(map[string]SecurityScheme),
		},
	}
}

func (b *Builder) SetTitle(title string) *Builder {
	b.config.Title = title
	return b
}

func (b *Builder) SetDescription(description string) *Builder {
	b.config.Description = description
	return b
}

func (b *Builder) SetVersion(version string) *Builder {
	b.config.Version = version
	return b
}

// AddTag declares a tag, the optional description is used only once.
func (b *Builder) AddTag(name string, description ...string) *Builder {
	tag := Tag{Name: name}
	if len(description) > 0 {
		tag.Description = description[0]
	}
	b.config.Tags = append(b.config.Tags, tag)
	return b
}

// AddBasicAuth declares the HTTP basic security scheme.
func (b *Builder) AddBasicAuth() *Builder {
	b.config.SecuritySchemes[basicAuthSchemeName] = SecurityScheme{Type: "http", Scheme: "basic"}
	return b
}

// Build returns a copy of the collected metadata.
func (b *Builder) Build() Config {
	config := b.config
	config.Tags = append([]Tag(nil), b.config.Tags...)
	config.SecuritySchemes = make(map[string]SecurityScheme, len(b.config.SecuritySchemes))
	for name, scheme := range b.config.SecuritySchemes {
		config.SecuritySchemes[name] = scheme
	}
	return config
}
