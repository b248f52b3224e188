// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package validation

import (
	"github.com/gofiber/fiber/v2"
)

// defaultPipe is used by handlers mounted without the Pipe middleware.
var defaultPipe = NewPipe(Options{Whitelist: true})

// FromCtx returns the pipe installed by Middleware, or a pipe that only strips unknown properties.
func FromCtx(c *fiber.Ctx) *Pipe {
	if pipe, ok := c.Locals(localsKey).(*Pipe); ok {
		return pipe
	}
	return defaultPipe
}

// Body decodes and validates the request body into out with the pipe installed on the request.
func Body(c *fiber.Ctx, out any) error {
	return FromCtx(c).DecodeBody(c.Body(), out)
}

// Query decodes and validates the query string into out with the pipe installed on the request.
func Query(c *fiber.Ctx, out any) error {
	return FromCtx(c).DecodeQuery(c.Queries(), out)
}
