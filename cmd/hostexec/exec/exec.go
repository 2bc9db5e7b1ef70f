// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package exec implements the exec subcommand, which runs one command through the invoker.
package exec

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/hostexec/cmd/cmdstate"
	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
	"github.com/matt-FFFFFF/hostexec/internal/fetch"
	"github.com/matt-FFFFFF/hostexec/internal/invoker"
	"github.com/urfave/cli/v3"
)

const (
	stdinFlag     = "stdin"
	stdinFileFlag = "stdin-file"
	trimFlag      = "trim"

	stdinFromReader = "-"

	// ExitLaunchFailure is the exit code when the command could not be started, as in POSIX shells.
	ExitLaunchFailure = 127
	// ExitCanceled is the exit code when the command was killed by cancellation or a signal.
	ExitCanceled = 130
)

var (
	// ErrMissingCommand is returned when no command is given.
	ErrMissingCommand = errors.New("missing command")
	// ErrStdinConflict is returned when both stdin sources are given.
	ErrStdinConflict = errors.New("--stdin and --stdin-file are mutually exclusive")
	// ErrReadStdin is returned when the stdin payload cannot be read.
	ErrReadStdin = errors.New("failed to read stdin payload")
)

// ExecCmd runs a single command and mirrors its output and exit code.
var ExecCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Run a command and print its captured output",
		ArgsUsage: "-- COMMAND [ARGS...]",
		Description: `Run COMMAND with optional extra ARGS and print its captured standard output.
COMMAND is split into words like a shell would, without expansion or operators,
so "ls -l" and ls -l are equivalent. Put -- before COMMAND when ARGS start with a dash.

Captured standard error is relayed to stderr and the exit code mirrors the child's.
A child killed by a signal exits with 128 plus the signal number,
a command that cannot be started exits with 127.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     stdinFlag,
				Usage:    "Text to write to the command's standard input.",
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:      stdinFileFlag,
				Usage:     "File or go-getter URL whose content is written to standard input. Use - to read this process's stdin.",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.BoolFlag{
				Name:  trimFlag,
				Usage: "Remove trailing newlines from the printed output.",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return cli.Exit(ErrMissingCommand.Error(), 2)
	}

	stdin, err := readStdin(ctx, cmd)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	inv := cmdstate.Settings(ctx).Invoker()
	if cmd.Bool(trimFlag) {
		inv.TrimTrailingNewlines = true
	}

	res, err := inv.Invoke(ctx, &invoker.Request{
		Command: args[0],
		Stdin:   stdin,
		Args:    args[1:],
	})

	if res != nil {
		if _, werr := io.WriteString(cmd.Root().Writer, res.Output()); werr != nil {
			logger.Error("failed to write output", "error", werr)
		}

		if _, werr := cmd.Root().ErrWriter.Write(res.StdErr); werr != nil {
			logger.Error("failed to write error output", "error", werr)
		}
	}

	if err == nil {
		return nil
	}

	logger.Debug("invocation failed", "error", err)

	kind, _ := invoker.KindOf(err)

	switch kind {
	case invoker.KindNonZeroExit:
		return cli.Exit("", exitStatus(res))
	case invoker.KindLaunchFailure:
		return cli.Exit(err.Error(), ExitLaunchFailure)
	case invoker.KindCanceled:
		return cli.Exit(err.Error(), ExitCanceled)
	default:
		return cli.Exit(err.Error(), 1)
	}
}

// exitStatus mirrors the child's exit code. A child terminated by a signal
// exits with 128 plus the signal number, as in POSIX shells.
func exitStatus(res *invoker.Result) int {
	switch {
	case res.ExitCode >= 0:
		return res.ExitCode
	case res.Signal > 0:
		return 128 + res.Signal
	default:
		return 1
	}
}

func readStdin(ctx context.Context, cmd *cli.Command) (*string, error) {
	text, file := cmd.IsSet(stdinFlag), cmd.String(stdinFileFlag)

	switch {
	case text && file != "":
		return nil, ErrStdinConflict
	case text:
		return invoker.Text(cmd.String(stdinFlag)), nil
	case file == stdinFromReader:
		b, err := io.ReadAll(cmd.Root().Reader)
		if err != nil {
			return nil, errors.Join(ErrReadStdin, err)
		}

		return invoker.Text(string(b)), nil
	case file != "":
		b, err := fetch.Get(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadStdin, err)
		}

		return invoker.Text(string(b)), nil
	default:
		return nil, nil
	}
}
