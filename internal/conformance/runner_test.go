// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package conformance

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/hostexec/internal/invoker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, name, data string) *Suite {
	t.Helper()

	s, err := Parse(name, []byte(data))
	require.NoError(t, err)

	return s
}

func TestRunner_Testdata(t *testing.T) {
	skipOnWindows(t)
	t.Setenv("HOSTEXEC_CONFORMANCE", "from-env")

	var suites []*Suite

	for _, name := range []string{"invoker.yaml", "engine.hcl"} {
		s, err := Load(t.Context(), filepath.Join("testdata", name))
		require.NoError(t, err)

		suites = append(suites, s)
	}

	report := (&Runner{Parallelism: 3}).Run(t.Context(), suites...)

	for _, r := range report.Results {
		assert.Equal(t, StatusPass, r.Status, "%s: %s", r.Label(), r.Reason)
	}

	require.NoError(t, report.Err())
}

func TestRunner_Statuses(t *testing.T) {
	skipOnWindows(t)

	s := mustParse(t, "statuses.yaml", `
cases:
  - name: wrong stdout
    command: echo actual
    expect:
      stdout: expected
  - name: wrong exit code
    command: sh -c 'exit 2'
    expect:
      exit_code: 3
  - name: unexpected failure
    command: sh -c 'exit 1'
  - name: expected failure did not happen
    command: "true"
    expect:
      error_kind: NonZeroExit
  - name: wrong kind
    command: hostexec-no-such-command
    expect:
      error_kind: NonZeroExit
  - name: script throws unexpectedly
    script: throw new Error("boom")
  - name: script missing expected error
    script: print("fine")
    expect:
      error: boom
  - name: script wrong output
    script: print("a")
    expect:
      output_contains: [b]
  - name: script exit zero passes
    script: print("bye"); exit(0)
    expect:
      output: "bye\n"
`)

	report := (&Runner{}).Run(t.Context(), s)
	require.Len(t, report.Results, 9)

	want := []Status{
		StatusFail,
		StatusFail,
		StatusError,
		StatusFail,
		StatusFail,
		StatusError,
		StatusFail,
		StatusFail,
		StatusPass,
	}

	for i, r := range report.Results {
		assert.Equal(t, s.Cases[i].Name, r.Name, "results keep case order")
		assert.Equal(t, want[i], r.Status, "%s: %s", r.Name, r.Reason)

		if r.Status != StatusPass {
			assert.NotEmpty(t, r.Reason, r.Name)
		}
	}

	assert.Contains(t, report.Results[0].Reason, `expected stdout "expected"`)
	assert.Contains(t, report.Results[1].Reason, "expected exit code 3, got 2")

	passed, failed, errored := report.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 6, failed)
	assert.Equal(t, 2, errored)
	require.ErrorIs(t, report.Err(), ErrCaseFailed)
}

func TestRunner_PreservesOrderUnderParallelism(t *testing.T) {
	skipOnWindows(t)

	s := &Suite{Name: "order"}
	for i := range 20 {
		s.Cases = append(s.Cases, &Case{
			Name:    fmt.Sprintf("c%02d", i),
			Command: fmt.Sprintf("sh -c 'sleep 0.0%d; printf %d'", 9-i%10, i),
		})
	}

	require.NoError(t, s.validate("order"))

	report := (&Runner{Parallelism: 8}).Run(t.Context(), s)
	require.Len(t, report.Results, 20)

	for i, r := range report.Results {
		assert.Equal(t, fmt.Sprintf("c%02d", i), r.Name)
		assert.Equal(t, fmt.Sprint(i), r.Output)
		assert.Equal(t, StatusPass, r.Status, r.Reason)
	}
}

func TestRunner_InvokerDefaultsAndCaseOverrides(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()

	s := mustParse(t, "defaults.yaml", `
cases:
  - name: default env
    command: sh -c 'printf %s "$FROM_RUNNER"'
    expect:
      stdout: runner
  - name: case env wins
    command: sh -c 'printf %s "$FROM_RUNNER"'
    env:
      FROM_RUNNER: case
    expect:
      stdout: case
  - name: script env
    script: print($ENV.FROM_RUNNER, $EXEC("sh -c 'printf %s \"$FROM_RUNNER\"'"))
    env:
      FROM_RUNNER: script
    expect:
      output: "script script\n"
  - name: trimmed
    command: echo padded
    expect:
      stdout: padded
`)

	s.Cases = append(s.Cases, &Case{
		Name:             "working directory",
		Type:             CaseTypeExec,
		Command:          "pwd",
		WorkingDirectory: dir,
		Expect:           &Expectation{StdoutContains: []string{filepath.Base(dir)}},
	})

	r := &Runner{
		Invoker: &invoker.Invoker{
			Env:                  map[string]string{"FROM_RUNNER": "runner"},
			TrimTrailingNewlines: true,
		},
		Parallelism: 2,
	}

	report := r.Run(t.Context(), s)

	for _, res := range report.Results {
		assert.Equal(t, StatusPass, res.Status, "%s: %s", res.Name, res.Reason)
	}

	assert.Equal(t, "runner", r.Invoker.Env["FROM_RUNNER"], "runner defaults are not mutated")
}

func TestRunner_CanceledContext(t *testing.T) {
	s := mustParse(t, "canceled.yaml", "cases:\n  - command: \"true\"\n  - command: \"true\"\n")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	report := (&Runner{Parallelism: 1}).Run(ctx, s)
	require.Len(t, report.Results, 2)

	for _, r := range report.Results {
		assert.Equal(t, StatusError, r.Status)
		assert.Contains(t, r.Reason, "context canceled")
	}
}
