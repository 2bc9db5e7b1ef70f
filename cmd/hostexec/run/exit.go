// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"context"
	"errors"
	"log/slog"

	"github.com/matt-FFFFFF/hostexec/internal/jshost"
	"github.com/urfave/cli/v3"
)

// ExitError maps the outcome of a script to the CLI exit status.
// exit(code) in the script becomes that code and any other failure is 1.
func ExitError(ctx context.Context, logger *slog.Logger, err error) error {
	if err == nil {
		return nil
	}

	var ee *jshost.ExitError
	if errors.As(err, &ee) {
		if ee.Code == 0 {
			return nil
		}

		return cli.Exit("", ee.Code)
	}

	var se *jshost.ScriptError
	if errors.As(err, &se) && se.Stack != "" {
		logger.DebugContext(ctx, "script stack", "stack", se.Stack)
	}

	return cli.Exit(err.Error(), 1)
}
