// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	forwardedHostHeaderKey = "X-Forwarded-Host"
	forwardedForHeaderKey  = "X-Forwarded-For"
	RequestIDHeaderKey     = "X-Request-Id"

	IncomingRequestMessage  = "incoming request"
	RequestCompletedMessage = "request completed"
)

// httpRecord is the http section of a request log record.
type httpRecord struct {
	Request  *requestRecord  `json:"request,omitempty"`
	Response *responseRecord `json:"response,omitempty"`
}

type userAgent struct {
	Original string `json:"original,omitempty"`
}

type requestRecord struct {
	Method    string    `json:"method,omitempty"`
	UserAgent userAgent `json:"userAgent"`
}

type responseBody struct {
	Bytes int `json:"bytes,omitempty"`
}

type responseRecord struct {
	StatusCode int          `json:"statusCode,omitempty"`
	Body       responseBody `json:"body"`
}

type hostRecord struct {
	Hostname      string `json:"hostname,omitempty"`
	ForwardedHost string `json:"forwardedHost,omitempty"`
	IP            string `json:"ip,omitempty"`
}

type urlRecord struct {
	Path string `json:"path,omitempty"`
}

// requestInfo reads the loggable fields of a fiber request and of the response
// produced for it, taking into account the error returned by the handler chain.
type requestInfo struct {
	c          *fiber.Ctx
	handlerErr error
}

func (r requestInfo) path() string {
	return string(r.c.Request().URI().RequestURI())
}

func (r requestInfo) host() hostRecord {
	return hostRecord{
		ForwardedHost: r.c.Get(forwardedHostHeaderKey),
		Hostname:      strings.Split(string(r.c.Request().Host()), ":")[0],
		IP:            r.c.Get(forwardedForHeaderKey),
	}
}

func (r requestInfo) request() *requestRecord {
	return &requestRecord{
		Method:    r.c.Method(),
		UserAgent: userAgent{Original: r.c.Get(fiber.HeaderUserAgent)},
	}
}

func (r requestInfo) fiberError() *fiber.Error {
	var fiberErr *fiber.Error
	if errors.As(r.handlerErr, &fiberErr) {
		return fiberErr
	}
	return nil
}

func (r requestInfo) response() *responseRecord {
	if fiberErr := r.fiberError(); fiberErr != nil {
		return &responseRecord{
			StatusCode: fiberErr.Code,
			Body:       responseBody{Bytes: len(fiberErr.Message)},
		}
	}

	bodySize := len(r.c.Response().Body())
	if content := r.c.GetRespHeader(fiber.HeaderContentLength); content != "" {
		if length, err := strconv.Atoi(content); err == nil {
			bodySize = length
		}
	}

	return &responseRecord{
		StatusCode: r.c.Response().StatusCode(),
		Body:       responseBody{Bytes: bodySize},
	}
}

// requestID returns the id sent by the caller or a freshly generated one.
func requestID(c *fiber.Ctx) string {
	if id := c.Get(RequestIDHeaderKey); id != "" {
		return id
	}
	return uuid.NewString()
}

// RequestMiddlewareLogger is a fiber middleware that logs every request whose path does not start
// with one of excludedPrefixes. The incoming request is logged at TRACE level, the completed one at
// INFO level with its latency. The request scoped logger is stored in the request user context.
func RequestMiddlewareLogger(logger Logger, excludedPrefixes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info := requestInfo{c: c}
		for _, prefix := range excludedPrefixes {
			if strings.HasPrefix(info.path(), prefix) {
				return c.Next()
			}
		}

		start := time.Now()
		reqID := requestID(c)
		c.Set(RequestIDHeaderKey, reqID)

		reqLogger := logger.WithName("request").With("reqId", reqID)
		c.SetUserContext(WithContext(c.UserContext(), reqLogger))

		reqLogger.Trace(IncomingRequestMessage,
			"http", httpRecord{Request: info.request()},
			"url", urlRecord{Path: info.path()},
			"host", info.host(),
		)

		info.handlerErr = c.Next()

		reqLogger.Info(RequestCompletedMessage,
			"http", httpRecord{Request: info.request(), Response: info.response()},
			"url", urlRecord{Path: info.path()},
			"host", info.host(),
			"responseTime", float64(time.Since(start).Milliseconds()),
		)

		return info.handlerErr
	}
}
