// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package docs builds the OpenAPI document of the application routes and exposes it, together
// with the Swagger UI, on paths that live outside the global application prefix.
package docs
