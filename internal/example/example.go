// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package example is a sample application module mounted under the global prefix.
package example

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/apiboot/internal/logger"
	"github.com/mia-platform/apiboot/internal/validation"
)

const (
	// Tag is the documentation tag of the module operations.
	Tag = "example"

	basePath = "/examples"
)

type createRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	Description string `json:"description" validate:"max=256"`
	Priority    int    `json:"priority" validate:"min=0,max=10"`
}

type listQuery struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

type listResponse struct {
	Items []Example `json:"items"`
	Total int       `json:"total"`
}

// Module exposes the example resource.
type Module struct {
	store *Store
}

func NewModule(store *Store) *Module {
	return &Module{store: store}
}

// Mount registers the module routes on router.
func (m *Module) Mount(router fiber.Router) {
	group := router.Group(basePath)
	group.Get("", m.list).Name(Tag + ".list")
	group.Post("", m.create).Name(Tag + ".create")
	group.Get("/:id", m.get).Name(Tag + ".get")
}

func (m *Module) create(c *fiber.Ctx) error {
	var req createRequest
	if err := validation.Body(c, &req); err != nil {
		return err
	}

	example := m.store.Create(req.Name, req.Description, req.Priority)
	logger.FromContext(c.UserContext()).Debug("example created", "id", example.ID)
	return c.Status(http.StatusCreated).JSON(example)
}

func (m *Module) list(c *fiber.Ctx) error {
	query := listQuery{Limit: 20}
	if err := validation.Query(c, &query); err != nil {
		return err
	}

	items, total := m.store.List(query.Offset, query.Limit)
	return c.JSON(listResponse{Items: items, Total: total})
}

func (m *Module) get(c *fiber.Ctx) error {
	example, err := m.store.Get(c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(example)
}
