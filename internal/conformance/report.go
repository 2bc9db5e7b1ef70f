// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package conformance

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/TylerBrock/colorjson"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/hostexec/internal/color"
)

// ErrCaseFailed is matched by every error in Report.Err.
var ErrCaseFailed = errors.New("case failed")

// Report holds the results of a run, in case order.
type Report struct {
	Results []*CaseResult `json:"results"`
}

// OutputOptions controls what WriteText includes.
type OutputOptions struct {
	IncludeOutput      bool // Show captured output of failed cases
	IncludeStdErr      bool // Show captured stderr of failed cases
	ShowSuccessDetails bool // Show details for passing cases too
	Summary            bool // Append the summary box
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeOutput: true,
		IncludeStdErr: true,
		Summary:       true,
	}
}

// Counts returns the number of results per status.
func (r *Report) Counts() (passed, failed, errored int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		default:
			errored++
		}
	}

	return passed, failed, errored
}

// Err aggregates every failed or errored case, or returns nil when all passed.
func (r *Report) Err() error {
	var result *multierror.Error

	for _, res := range r.Results {
		if res.Status != StatusPass {
			result = multierror.Append(result, fmt.Errorf("%w: %s: %s", ErrCaseFailed, res.Label(), res.Reason))
		}
	}

	return result.ErrorOrNil()
}

// WriteText writes one status line per case, with details for failures.
func (r *Report) WriteText(w io.Writer, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, res := range r.Results {
		if err := writeCaseResult(w, res, options); err != nil {
			return err
		}
	}

	if !options.Summary {
		return nil
	}

	_, err := fmt.Fprintln(w, r.summary())

	return err
}

func writeCaseResult(w io.Writer, r *CaseResult, options *OutputOptions) error {
	var statusStr, labelPrefix string

	switch r.Status {
	case StatusPass:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = color.ControlString(color.Bold, color.FgGreen)
	case StatusFail:
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
	default:
		statusStr = color.Colorize("!", color.FgYellow)
		labelPrefix = color.ControlString(color.Bold, color.FgYellow)
	}

	sb := strings.Builder{}

	fmt.Fprintf(&sb, "%s %s%s%s %s(%s)%s\n",
		statusStr,
		labelPrefix,
		r.Label(),
		color.ControlString(color.Reset),
		color.ControlString(color.Faint),
		r.Duration.Round(time.Millisecond),
		color.ControlString(color.Reset),
	)

	showDetails := r.Status != StatusPass || options.ShowSuccessDetails

	if r.Reason != "" && showDetails {
		fmt.Fprintf(&sb, "  %s %s\n", color.Colorize("➜ Reason:", color.FgRed), r.Reason)
	}

	if showDetails && options.IncludeOutput && r.Output != "" {
		sb.WriteString("  ➜ Output:\n")
		sb.WriteString(formatOutput(r.Output, "     "))
	}

	if showDetails && options.IncludeStdErr && r.StdErr != "" {
		fmt.Fprintf(&sb, "  %s\n", color.Colorize("➜ Error Output:", color.FgHiRed))
		sb.WriteString(formatOutput(r.StdErr, "     "))
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func (r *Report) summary() string {
	passed, failed, errored := r.Counts()

	border := lipgloss.Color("10")
	if failed+errored > 0 {
		border = lipgloss.Color("9")
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)

	if !color.Enabled() {
		style = style.UnsetBorderForeground()
	}

	return style.Render(fmt.Sprintf("%d cases: %d passed, %d failed, %d errors", len(r.Results), passed, failed, errored))
}

// formatOutput indents each non-empty line.
func formatOutput(output, indent string) string {
	sb := strings.Builder{}

	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// WriteJSON writes the report as indented JSON, colourized when colour is true.
func (r *Report) WriteJSON(w io.Writer, colour bool) error {
	passed, failed, errored := r.Counts()

	doc := struct {
		Passed  int           `json:"passed"`
		Failed  int           `json:"failed"`
		Errors  int           `json:"errors"`
		Results []*CaseResult `json:"results"`
	}{passed, failed, errored, r.Results}

	if doc.Results == nil {
		doc.Results = []*CaseResult{}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err //nolint:wrapcheck
	}

	f := colorjson.NewFormatter()
	f.Indent = 2
	f.DisabledColor = !colour

	out, err := f.Marshal(obj)
	if err != nil {
		return err //nolint:wrapcheck
	}

	_, err = fmt.Fprintln(w, string(out))

	return err
}
