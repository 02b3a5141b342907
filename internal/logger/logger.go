// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger wraps zerolog.Logger with the constructors and context
// helpers shared by the ingest server and the sync client.
//
// Application code passes *Logger by pointer. Request-scoped loggers carrying
// a trace id are stored in the context and recovered with FromContext or
// FromRequest.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// ClientLogFile is the name of the client log file.
const ClientLogFile = "medsync-client.log"

// NewLogger constructs a JSON logger writing to os.Stdout for the given role
// label (e.g. "server", "worker").
//
// Every entry carries the role, a timestamp and the calling function name in
// the "func" field.
func NewLogger(role string) *Logger {
	return newLogger(os.Stdout, role)
}

// NewClientLogger writes to ClientLogFile inside dir so that CLI output stays
// readable. An empty dir means the directory of the executable. If the file
// cannot be opened the logger falls back to os.Stderr.
func NewClientLogger(role, dir string) *Logger {
	if dir == "" {
		execPath, _ := os.Executable()
		dir = filepath.Dir(execPath)
	}

	var out io.Writer = os.Stderr
	logFile, err := os.OpenFile(filepath.Join(dir, ClientLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err == nil {
		out = logFile
	}

	return newLogger(out, role)
}

func newLogger(w io.Writer, role string) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	logger := zerolog.New(w).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// Nop returns a *Logger that discards all output. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a new *Logger that inherits all fields of the
// receiver and can be enriched without affecting the parent.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// WithTraceID returns a child logger tagged with trace_id.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{l.With().Str("trace_id", traceID).Logger()}
}

// WithContext stores l in ctx so that FromContext can recover it.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromRequest returns the logger attached to the request context.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}

// FromContext returns the logger attached to ctx. If none was attached,
// zerolog's default context logger is returned, so the result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
