// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repl implements the repl subcommand, an interactive JavaScript prompt with the $EXEC globals.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dop251/goja"
	"github.com/matt-FFFFFF/hostexec/cmd/cmdstate"
	"github.com/matt-FFFFFF/hostexec/cmd/hostexec/run"
	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
	"github.com/matt-FFFFFF/hostexec/internal/jshost"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	prompt      = "hostexec> "
	replName    = "<repl>"
	stdinName   = "<stdin>"
	quitCommand = "quit"
	exitCommand = "exit"
)

// ErrReadStdin is returned when a piped script cannot be read.
var ErrReadStdin = errors.New("failed to read script from stdin")

// ReplCmd starts an interactive prompt.
var ReplCmd = newCommand()

// isTerminal reports whether r is an interactive terminal.
var isTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// prompter is the part of liner.State the loop uses.
type prompter interface {
	Prompt(string) (string, error)
	AppendHistory(string)
}

var _ prompter = (*liner.State)(nil)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Start an interactive JavaScript prompt",
		Description: `Evaluate JavaScript lines in one engine with $EXEC, $OUT, $ERR, $EXIT, $ENV and print available.
Type quit or exit, or press Ctrl+C, to leave. When stdin is not a terminal,
all of it is read and run as one script.`,
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	w := cmd.Root().Writer

	h := jshost.New(ctx,
		jshost.WithInvoker(cmdstate.Settings(ctx).Invoker()),
		jshost.WithOutput(w),
	)

	in := cmd.Root().Reader
	if !isTerminal(in) {
		src, err := io.ReadAll(in)
		if err != nil {
			return cli.Exit(errors.Join(ErrReadStdin, err).Error(), 1)
		}

		_, err = h.RunString(stdinName, string(src))

		return run.ExitError(ctx, logger, err)
	}

	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)

	fmt.Fprintln(w, "Entering interactive mode, type `quit` or `exit` or press Ctrl+C to leave.") //nolint:errcheck

	return run.ExitError(ctx, logger, loop(h, line, w))
}

// loop reads and evaluates lines until the user quits, the prompt fails or the script calls exit().
func loop(h *jshost.Host, p prompter, w io.Writer) error {
	for {
		input, err := p.Prompt(prompt)

		switch {
		case err == nil:
		case errors.Is(err, liner.ErrPromptAborted):
			fmt.Fprintln(w, "Aborted") //nolint:errcheck
			return nil
		case errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("reading line: %w", err)
		}

		if input == quitCommand || input == exitCommand {
			return nil
		}

		if input == "" {
			continue
		}

		p.AppendHistory(input)

		v, err := h.RunString(replName, input)
		if err != nil {
			var ee *jshost.ExitError
			if errors.As(err, &ee) {
				return err
			}

			fmt.Fprintln(w, err.Error()) //nolint:errcheck

			continue
		}

		if v != nil && !goja.IsUndefined(v) {
			fmt.Fprintln(w, v.String()) //nolint:errcheck
		}
	}
}
