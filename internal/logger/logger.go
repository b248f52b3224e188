// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

var (
	// nullLogger is a logger that discards all log messages.
	nullLogger = &instance{log: hclog.NewNullLogger()}
)

//go:generate ${TOOLS_BIN}/stringer -type=Level
type Level int

const (
	ERROR Level = iota
	WARN
	INFO
	DEBUG
	TRACE
)

// AllLevels returns every supported level name, from the most to the least verbose.
func AllLevels() []string {
	return []string{
		TRACE.String(),
		DEBUG.String(),
		INFO.String(),
		WARN.String(),
		ERROR.String(),
	}
}

// LevelFromString parses a level name ignoring its case, falling back to INFO.
func LevelFromString(level string) Level {
	for l := ERROR; l <= TRACE; l++ {
		if strings.EqualFold(level, l.String()) {
			return l
		}
	}

	return INFO
}

func (l Level) hclogLevel() hclog.Level {
	switch l {
	case TRACE:
		return hclog.Trace
	case DEBUG:
		return hclog.Debug
	case WARN:
		return hclog.Warn
	case ERROR:
		return hclog.Error
	default:
		return hclog.Info
	}
}

// Logger describes the interface that must be implemented by all loggers
type Logger interface {
	// WithName returns a new Logger instance with the specified name.
	WithName(name string) Logger

	// With returns a new Logger instance that always emits the key/value pairs.
	With(args ...any) Logger

	// SetLevel updates the logger level.
	SetLevel(level Level)

	// Trace emit a message and key/value pairs at the TRACE level.
	Trace(msg string, args ...any)

	// Debug emit a message and key/value pairs at the DEBUG level.
	Debug(msg string, args ...any)

	// Info emit a message and key/value pairs at the INFO level.
	Info(msg string, args ...any)

	// Warn emit a message and key/value pairs at the WARN level.
	Warn(msg string, args ...any)

	// Error emit a message and key/value pairs at the ERROR level.
	Error(msg string, args ...any)
}

var _ Logger = &instance{}

// instance is the hclog backed Logger.
type instance struct {
	log hclog.Logger
}

// NewLogger creates a new logger that writes JSON records on writer at the INFO level.
func NewLogger(writer io.Writer) Logger {
	return &instance{
		log: hclog.New(&hclog.LoggerOptions{
			JSONFormat: true,
			Output:     writer,
			TimeFn:     time.Now,
			TimeFormat: time.RFC3339Nano,
			Level:      INFO.hclogLevel(),
		}),
	}
}

func (i instance) WithName(name string) Logger {
	return &instance{log: i.log.ResetNamed(name)}
}

func (i instance) With(args ...any) Logger {
	return &instance{log: i.log.With(args...)}
}

func (i instance) SetLevel(level Level) {
	i.log.SetLevel(level.hclogLevel())
}

func (i instance) Trace(msg string, args ...any) {
	i.log.Trace(msg, args...)
}

func (i instance) Debug(msg string, args ...any) {
	i.log.Debug(msg, args...)
}

func (i instance) Info(msg string, args ...any) {
	i.log.Info(msg, args...)
}

func (i instance) Warn(msg string, args ...any) {
	i.log.Warn(msg, args...)
}

func (i instance) Error(msg string, args ...any) {
	i.log.Error(msg, args...)
}
