// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the hostexec command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/hostexec"
	"github.com/matt-FFFFFF/hostexec/cmd/hostexec/exec"
	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
	"github.com/matt-FFFFFF/hostexec/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd := newRootCmd()
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", hostexec.Version, hostexec.Commit)

	err := rootCmd.Run(ctx, os.Args)

	signalbroker.Stop(sigCh)

	if code := exitCode(ctx, err); code != 0 {
		os.Exit(code)
	}

	ctxlog.Debug(ctx, "command completed successfully")
}

// exitCode maps the outcome of the root command to a process exit status.
// A root context cancelled by repeated signals exits like an interrupted shell command.
func exitCode(ctx context.Context, err error) int {
	if ctx.Err() != nil {
		ctxlog.Error(ctx, "command terminated due to cancellation", "error", ctx.Err())
		return exec.ExitCanceled
	}

	if err == nil {
		return 0
	}

	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}

	ctxlog.Error(ctx, "command execution failed", "error", err)

	return 1
}
