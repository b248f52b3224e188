// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger wraps hclog behind a small interface that emits JSON records.
// Loggers travel through context.Context, and RequestMiddlewareLogger attaches a
// request scoped logger to every Fiber request.
package logger
