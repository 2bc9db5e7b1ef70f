// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color decides whether ANSI colour output should be used and wraps
// strings in ANSI escape codes.
//
// NO_COLOR disables colour, FORCE_COLOR enables it, and otherwise colour is
// used only when standard output is a terminal (golang.org/x/term).
package color
