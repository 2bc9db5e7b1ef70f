// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run subcommand, which executes a JavaScript file with the $EXEC globals.
package run

import (
	"context"
	"errors"

	"github.com/matt-FFFFFF/hostexec/cmd/cmdstate"
	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
	"github.com/matt-FFFFFF/hostexec/internal/fetch"
	"github.com/matt-FFFFFF/hostexec/internal/jshost"
	"github.com/urfave/cli/v3"
)

// ErrMissingScript is returned when no script is given.
var ErrMissingScript = errors.New("missing script")

// RunCmd runs a script file.
var RunCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a JavaScript file",
		ArgsUsage: "SCRIPT [ARGS...]",
		Description: `Run SCRIPT on the embedded JavaScript engine with ARGS available as $ARG.
SCRIPT is a local path or a go-getter URL, see https://github.com/hashicorp/go-getter.
A leading #! line is ignored, so scripts can be made executable.

Scripts call external programs with $EXEC(command, stdin, args...) and
read the last result from $OUT, $ERR and $EXIT. exit(code) ends the script.`,
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return cli.Exit(ErrMissingScript.Error(), 2)
	}

	script := cmd.Args().First()
	logger := ctxlog.Logger(ctx).With("command", cmd.Name, "script", script)

	h := jshost.New(ctx,
		jshost.WithInvoker(cmdstate.Settings(ctx).Invoker()),
		jshost.WithOutput(cmd.Root().Writer),
		jshost.WithArgs(cmd.Args().Tail()...),
	)

	var err error

	if fi, statErr := jshost.FsFactory().Stat(script); statErr == nil && !fi.IsDir() {
		_, err = h.RunFile(script)
	} else {
		data, fetchErr := fetch.Get(ctx, script)
		if fetchErr != nil {
			return cli.Exit(fetchErr.Error(), 1)
		}

		_, err = h.RunString(script, string(data))
	}

	return ExitError(ctx, logger, err)
}
