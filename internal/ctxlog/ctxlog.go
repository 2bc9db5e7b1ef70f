// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/matt-FFFFFF/hostexec/internal/color"
)

const hostexecLogLevelEnvVar = "HOSTEXEC_LOG_LEVEL"

// ErrUnknownLevel is returned by SetLevel for an unrecognised level name.
var ErrUnknownLevel = errors.New("unknown log level")

type loggerKey struct{}

// LevelVar is shared by DefaultLogger and JSONLogger.
var LevelVar = &slog.LevelVar{}

// DefaultLogger is a pretty console logger writing to stderr.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithColour(color.EnabledFor(os.Stderr)),
	WithDestinationWriter(os.Stderr),
))

// JSONLogger writes one JSON object per record to stderr.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
	Level: LevelVar,
}))

func init() {
	LevelVar.Set(logLevelFromEnv())
}

// New creates a new context with the given logger.
// If logger is nil, it uses the default logger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// NewForWriter returns a context whose logger writes pretty, uncoloured records to w.
// It is used where stderr belongs to something else, e.g. while a prompt is active.
func NewForWriter(ctx context.Context, w io.Writer) context.Context {
	return New(ctx, slog.New(NewPrettyHandler(&slog.HandlerOptions{Level: LevelVar}, WithDestinationWriter(w))))
}

// Logger returns the logger from the context, or the default logger if not found.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Info logs an info message with the given context.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Debug logs a debug message with the given context.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Warn logs a warning message with the given context.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs an error message with the given context.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

// SetLevel sets LevelVar from a level name (DEBUG, INFO, WARN, ERROR, case-insensitive).
func SetLevel(name string) error {
	lvl, ok := parseLevel(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}

	LevelVar.Set(lvl)

	return nil
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelWarn, false
	}
}

func logLevelFromEnv() slog.Level {
	lvl, _ := parseLevel(os.Getenv(hostexecLogLevelEnvVar))
	return lvl
}
