// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsColorCapable(t *testing.T) {
	t.Setenv(NoColor, "1")
	assert.False(t, isColorCapable(nil), "NO_COLOR disables colour")

	t.Setenv(ForceColor, "1")
	assert.False(t, isColorCapable(nil), "NO_COLOR wins over FORCE_COLOR")

	t.Setenv(NoColor, "")
	assert.True(t, isColorCapable(nil), "FORCE_COLOR enables colour when NO_COLOR is unset")

	t.Setenv(ForceColor, "")
	assert.False(t, isColorCapable(nil), "nil file is never a terminal")
}

func TestColorize(t *testing.T) {
	orig := Enabled()
	defer SetEnabled(orig)

	SetEnabled(false)
	assert.Equal(t, "plain", Colorize("plain", FgRed))

	SetEnabled(true)
	assert.Equal(t, "\033[1;31mbold red\033[0m", Colorize("bold red", Bold, FgRed))
	assert.Equal(t, "\033[32mok\033[0m", Colorize("ok", FgGreen))
}

func TestControlString(t *testing.T) {
	assert.Equal(t, "\033[0m", ControlString(Reset))
	assert.Equal(t, "\033[1;33m", ControlString(Bold, FgYellow))
	assert.Equal(t, "\033[m", ControlString())
}
