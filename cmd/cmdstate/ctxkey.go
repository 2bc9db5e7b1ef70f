// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate carries state loaded by the root command down to its subcommands.
package cmdstate

import (
	"context"

	"github.com/matt-FFFFFF/hostexec/internal/config"
)

type settingsKey struct{}

// WithSettings returns a context carrying s.
func WithSettings(ctx context.Context, s *config.Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// Settings returns the settings stored in ctx, or empty settings if there are none.
func Settings(ctx context.Context) *config.Settings {
	if s, ok := ctx.Value(settingsKey{}).(*config.Settings); ok && s != nil {
		return s
	}

	return &config.Settings{}
}
