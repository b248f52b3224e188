// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server bootstraps the HTTP application. NewServer builds a Fiber application and
// attaches, in order, the request logger, the status routes, the cross-cutting plugins, the
// global validation pipe, the application modules under the global prefix and the
// documentation routes; Start then binds the configured address.
package server
