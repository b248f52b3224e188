// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/apiboot/internal/logger"
	"github.com/mia-platform/apiboot/internal/validation"
)

// errorHandler renders every error returned by a handler as a JSON body.
// Validation errors carry the list of violations as message.
func errorHandler(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	var message any = "internal server error"

	var validationErr *validation.Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &validationErr):
		code = http.StatusBadRequest
		message = validationErr.Messages
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	default:
		logger.FromContext(c.UserContext()).Error("unhandled request error", "error", err.Error())
	}

	return c.Status(code).JSON(fiber.Map{
		"statusCode": code,
		"error":      http.StatusText(code),
		"message":    message,
	})
}
