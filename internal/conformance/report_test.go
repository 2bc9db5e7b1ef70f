// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package conformance

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	return &Report{Results: []*CaseResult{
		{Suite: "s", Name: "ok", Type: CaseTypeExec, Status: StatusPass, Output: "hidden\n", Duration: 12 * time.Millisecond},
		{
			Suite:    "s",
			Name:     "bad",
			Type:     CaseTypeExec,
			Status:   StatusFail,
			Reason:   `expected stdout "a", got "b"`,
			ExitCode: 1,
			Output:   "line1\n\nline3\n",
			StdErr:   "warning\n",
		},
		{Suite: "s", Name: "broken", Type: CaseTypeScript, Status: StatusError, Reason: "boom"},
	}}
}

func TestReport_WriteText(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, sampleReport().WriteText(buf, nil))

	out := buf.String()

	assert.Contains(t, out, "✓ s/ok (12ms)\n")
	assert.Contains(t, out, "✗ s/bad")
	assert.Contains(t, out, "! s/broken")
	assert.Contains(t, out, `➜ Reason: expected stdout "a", got "b"`)
	assert.Contains(t, out, "  ➜ Output:\n     line1\n\n     line3\n")
	assert.Contains(t, out, "➜ Error Output:\n     warning\n")
	assert.NotContains(t, out, "hidden", "passing case details are hidden by default")
	assert.Contains(t, out, "3 cases: 1 passed, 1 failed, 1 errors")
	assert.NotContains(t, out, "\x1b[", "colour is disabled in tests")
}

func TestReport_WriteTextOptions(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, sampleReport().WriteText(buf, &OutputOptions{ShowSuccessDetails: true, IncludeOutput: true}))

	out := buf.String()

	assert.Contains(t, out, "hidden")
	assert.NotContains(t, out, "warning")
	assert.NotContains(t, out, "cases:")
}

func TestReport_WriteJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, sampleReport().WriteJSON(buf, false))

	var doc struct {
		Passed  int `json:"passed"`
		Failed  int `json:"failed"`
		Errors  int `json:"errors"`
		Results []struct {
			Suite    string `json:"suite"`
			Name     string `json:"name"`
			Status   string `json:"status"`
			Reason   string `json:"reason"`
			ExitCode int    `json:"exit_code"`
		} `json:"results"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc), buf.String())

	assert.Equal(t, 1, doc.Passed)
	assert.Equal(t, 1, doc.Failed)
	assert.Equal(t, 1, doc.Errors)
	require.Len(t, doc.Results, 3)
	assert.Equal(t, "fail", doc.Results[1].Status)
	assert.Equal(t, `expected stdout "a", got "b"`, doc.Results[1].Reason)
	assert.Equal(t, 1, doc.Results[1].ExitCode)
}

func TestReport_WriteJSONEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, (&Report{}).WriteJSON(buf, false))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []any{}, doc["results"])
}

func TestReport_Err(t *testing.T) {
	assert.NoError(t, (&Report{}).Err())

	err := sampleReport().Err()
	require.ErrorIs(t, err, ErrCaseFailed)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)
	assert.Contains(t, merr.Errors[0].Error(), "s/bad")
	assert.Contains(t, merr.Errors[1].Error(), "s/broken: boom")
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "pass", StatusPass.String())
	assert.Equal(t, "fail", StatusFail.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "Status(7)", Status(7).String())
}
