// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/hostexec/cmd/cmdstate"
	"github.com/matt-FFFFFF/hostexec/cmd/hostexec/conform"
	"github.com/matt-FFFFFF/hostexec/cmd/hostexec/exec"
	"github.com/matt-FFFFFF/hostexec/cmd/hostexec/repl"
	"github.com/matt-FFFFFF/hostexec/cmd/hostexec/run"
	"github.com/matt-FFFFFF/hostexec/internal/config"
	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const (
	configFlag    = "config"
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"

	logFormatText = "text"
	logFormatJSON = "json"
)

var (
	// ErrLogFormat is returned for an unknown --log-format value.
	ErrLogFormat = errors.New("unknown log format, want text or json")
	// ErrLoadSettings is returned when the settings file cannot be loaded.
	ErrLoadSettings = errors.New("failed to load settings")
)

func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			exec.ExecCmd,
			run.RunCmd,
			repl.ReplCmd,
			conform.ConformCmd,
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "hostexec",
		Description: `hostexec runs external processes the way a scripting host's $EXEC builtin does:
a command line, an optional standard input payload and extra arguments go in,
captured standard output comes back, and failures carry their kind, exit code and stderr.

Use it directly with exec, from JavaScript with run and repl,
or check behaviour against declarative test vectors with conform.`,
		Usage:     "hostexec exec -- ls -l",
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Usage:     "Settings file. Defaults to " + config.DefaultPath + " when it exists.",
				Sources:   cli.EnvVars("HOSTEXEC_CONFIG"),
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:    logLevelFlag,
				Usage:   "Log level: DEBUG, INFO, WARN or ERROR.",
				Sources: cli.EnvVars("HOSTEXEC_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  logFormatFlag,
				Usage: "Log format: text or json.",
				Value: logFormatText,
			},
		},
		Before: before,
	}
}

// before configures logging and loads settings for every subcommand.
func before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if lvl := cmd.String(logLevelFlag); lvl != "" {
		if err := ctxlog.SetLevel(lvl); err != nil {
			return ctx, cli.Exit(err.Error(), 2)
		}
	}

	switch cmd.String(logFormatFlag) {
	case logFormatText, "":
	case logFormatJSON:
		ctx = ctxlog.New(ctx, ctxlog.JSONLogger)
	default:
		return ctx, cli.Exit(ErrLogFormat.Error(), 2)
	}

	s, err := config.Load(cmd.String(configFlag))
	if err != nil {
		return ctx, cli.Exit(errors.Join(ErrLoadSettings, err).Error(), 2)
	}

	ctxlog.Debug(ctx, "settings loaded", "parallelism", s.Parallelism, "timeout", s.TimeoutDuration().String())

	return cmdstate.WithSettings(ctx, s), nil
}
