// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger writes to standard error using PrettyHandler, because
// standard output is reserved for the output of executed processes.
// The level is read from HOSTEXEC_LOG_LEVEL and can be changed at runtime
// through LevelVar or SetLevel.
package ctxlog
