// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package conform implements the conform subcommand, which runs conformance vector files.
package conform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matt-FFFFFF/hostexec/cmd/cmdstate"
	"github.com/matt-FFFFFF/hostexec/internal/color"
	"github.com/matt-FFFFFF/hostexec/internal/conformance"
	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
	"github.com/matt-FFFFFF/hostexec/internal/fetch"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag                 = "file"
	formatFlag               = "format"
	outFlag                  = "out"
	parallelismFlag          = "parallelism"
	outputSuccessDetailsFlag = "output-success-details"
	noOutputStdErrFlag       = "no-output-stderr"

	formatText = "text"
	formatJSON = "json"
)

var (
	// ErrNoFiles is returned when no vector files are given.
	ErrNoFiles = errors.New("specify at least one vector file with --file or -f")
	// ErrFormat is returned for an unknown --format value.
	ErrFormat = errors.New("unknown format, want text or json")
	// ErrLoadVectors is returned when a vector file cannot be fetched or parsed.
	ErrLoadVectors = errors.New("failed to load vector file")
	// ErrWriteReport is returned when the report cannot be written.
	ErrWriteReport = errors.New("failed to write report")
)

// ConformCmd runs vector files and reports the results.
var ConformCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "conform",
		Usage: "Run conformance vector files",
		Description: `Run the exec and script cases in one or more YAML or HCL vector files and report the results.
Vector file URLs use Hashicorp's go-getter syntax, see https://github.com/hashicorp/go-getter.

Exits with 1 when any case fails.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    fileFlag,
				Aliases: []string{"f"},
				Usage: "Vector file path or go-getter URL. " +
					"Specify multiple times to run multiple files.",
			},
			&cli.StringFlag{
				Name:     formatFlag,
				Usage:    "Report format: text or json.",
				Value:    formatText,
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:      outFlag,
				Usage:     "Write the report to this file instead of stdout.",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.IntFlag{
				Name:    parallelismFlag,
				Aliases: []string{"p"},
				Usage: "Maximum number of cases to run at once. " +
					"Defaults to the settings file value, then to the number of CPU cores.",
			},
			&cli.BoolFlag{
				Name:    outputSuccessDetailsFlag,
				Aliases: []string{"success"},
				Usage:   "Include details of passing cases in the text report",
			},
			&cli.BoolFlag{
				Name:    noOutputStdErrFlag,
				Aliases: []string{"no-stderr"},
				Usage:   "Exclude captured stderr from the text report",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	files := cmd.StringSlice(fileFlag)
	if len(files) == 0 {
		return cli.Exit(ErrNoFiles.Error(), 2)
	}

	format := cmd.String(formatFlag)
	if format != formatText && format != formatJSON {
		return cli.Exit(ErrFormat.Error(), 2)
	}

	suites := make([]*conformance.Suite, 0, len(files))

	for _, f := range files {
		s, err := loadSuite(ctx, f)
		if err != nil {
			return cli.Exit(fmt.Errorf("%w: %s: %w", ErrLoadVectors, f, err).Error(), 1)
		}

		suites = append(suites, s)
	}

	settings := cmdstate.Settings(ctx)

	runner := &conformance.Runner{
		Invoker:     settings.Invoker(),
		Parallelism: settings.Parallelism,
	}

	if p := cmd.Int(parallelismFlag); p > 0 {
		runner.Parallelism = p
	}

	report := runner.Run(ctx, suites...)

	w, colour := cmd.Root().Writer, color.Enabled()

	if out := cmd.String(outFlag); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return cli.Exit(errors.Join(ErrWriteReport, err).Error(), 1)
		}

		defer f.Close() //nolint:errcheck

		w, colour = f, false
	}

	if err := writeReport(w, report, format, colour, cmd); err != nil {
		return cli.Exit(errors.Join(ErrWriteReport, err).Error(), 1)
	}

	if err := report.Err(); err != nil {
		logger.Error("Some cases failed. See above for details.", "error", err)
		return cli.Exit("", 1)
	}

	return nil
}

// loadSuite reads local files through the conformance filesystem and fetches everything else.
func loadSuite(ctx context.Context, src string) (*conformance.Suite, error) {
	if fi, err := conformance.FsFactory().Stat(src); err == nil && !fi.IsDir() {
		return conformance.Load(ctx, src)
	}

	data, err := fetch.Get(ctx, src)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return conformance.Parse(src, data)
}

func writeReport(w io.Writer, report *conformance.Report, format string, colour bool, cmd *cli.Command) error {
	if format == formatJSON {
		return report.WriteJSON(w, colour)
	}

	if !colour {
		prev := color.Enabled()
		color.SetEnabled(false)

		defer color.SetEnabled(prev)
	}

	opts := conformance.DefaultOutputOptions()
	opts.ShowSuccessDetails = cmd.Bool(outputSuccessDetailsFlag)
	opts.IncludeStdErr = !cmd.Bool(noOutputStdErrFlag)

	return report.WriteText(w, opts)
}
