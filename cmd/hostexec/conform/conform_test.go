// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package conform

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/matt-FFFFFF/hostexec/internal/color"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const passingVectors = `
name: passing
cases:
  - name: echo
    command: echo hello
    expect:
      stdout: "hello\n"
  - name: script
    script: print($EXEC('echo', null, 'hi'))
    expect:
      output: "hi\n\n"
`

const failingVectors = `
name: failing
cases:
  - name: wrong
    command: echo hello
    expect:
      stdout: "goodbye\n"
`

func writeVectors(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func runConform(t *testing.T, args ...string) (string, error) {
	t.Helper()

	stubs := gostub.Stub(&cli.OsExiter, func(int) {})
	defer stubs.Reset()

	prev := color.Enabled()
	color.SetEnabled(false)
	t.Cleanup(func() { color.SetEnabled(prev) })

	out := &bytes.Buffer{}
	root := &cli.Command{
		Name:      "hostexec",
		Writer:    out,
		ErrWriter: &bytes.Buffer{},
		Commands:  []*cli.Command{newCommand()},
	}

	err := root.Run(t.Context(), append([]string{"hostexec", "conform"}, args...))

	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()

	var ec cli.ExitCoder
	require.True(t, errors.As(err, &ec), "want exit coder, got %v", err)

	return ec.ExitCode()
}

func TestConform_Text(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires POSIX tools")
	}

	pass := writeVectors(t, "pass.yaml", passingVectors)

	out, err := runConform(t, "-f", pass, "-p", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ passing/echo")
	assert.Contains(t, out, "✓ passing/script")
	assert.Contains(t, out, "2 cases: 2 passed, 0 failed, 0 errors")
}

func TestConform_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires POSIX tools")
	}

	pass := writeVectors(t, "pass.yaml", passingVectors)
	fail := writeVectors(t, "fail.yaml", failingVectors)

	out, err := runConform(t, "-f", pass, "-f", fail)
	assert.Equal(t, 1, exitCode(t, err))

	assert.Contains(t, out, "✗ failing/wrong")
	assert.Contains(t, out, "3 cases: 2 passed, 1 failed, 0 errors")
}

func TestConform_JSONToFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires POSIX tools")
	}

	pass := writeVectors(t, "pass.yaml", passingVectors)
	report := filepath.Join(t.TempDir(), "report.json")

	out, err := runConform(t, "-f", pass, "--format", "json", "--out", report)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(report)
	require.NoError(t, err)

	var doc struct {
		Passed  int `json:"passed"`
		Results []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"results"`
	}

	require.NoError(t, json.Unmarshal(data, &doc), string(data))
	assert.Equal(t, 2, doc.Passed)
	require.Len(t, doc.Results, 2)
	assert.Equal(t, "echo", doc.Results[0].Name)
	assert.Equal(t, "pass", doc.Results[0].Status)
}

func TestConform_UsageErrors(t *testing.T) {
	pass := writeVectors(t, "pass.yaml", passingVectors)
	bad := writeVectors(t, "bad.yaml", "cases: [")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no files", args: nil, want: 2},
		{name: "bad format", args: []string{"-f", pass, "--format", "xml"}, want: 2},
		{name: "invalid vectors", args: []string{"-f", bad}, want: 1},
		{name: "missing vectors", args: []string{"-f", pass + ".missing"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runConform(t, tt.args...)
			assert.Equal(t, tt.want, exitCode(t, err))
		})
	}
}
