// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	stubs := gostub.Stub(&FsFactory, func() afero.Fs {
		return fs
	})
	t.Cleanup(stubs.Reset)

	return fs
}

func TestLoad(t *testing.T) {
	fs := stubFs(t, map[string]string{
		DefaultPath: `
env:
  GREETING: hello
working_directory: /work
max_output_bytes: 1048576
timeout: 1m30s
trim_trailing_newline: true
parallelism: 4
`,
	})
	require.NoError(t, fs.MkdirAll("/work", 0o755))

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"GREETING": "hello"}, s.Env)
	assert.Equal(t, 90*time.Second, s.TimeoutDuration())
	assert.Equal(t, 4, s.Parallelism)

	inv := s.Invoker()
	assert.Equal(t, "/work", inv.Dir)
	assert.Equal(t, int64(1048576), inv.MaxOutputBytes)
	assert.Equal(t, 90*time.Second, inv.Timeout)
	assert.True(t, inv.TrimTrailingNewlines)
	assert.True(t, inv.ForwardSignals)

	inv.Env["GREETING"] = "changed"
	assert.Equal(t, "hello", s.Env["GREETING"], "invoker env is a copy")
}

func TestLoad_Missing(t *testing.T) {
	stubFs(t, nil)

	s, err := Load("")
	require.NoError(t, err, "missing default file yields defaults")
	assert.Equal(t, &Settings{}, s)

	_, err = Load("/etc/hostexec.yaml")
	require.ErrorIs(t, err, ErrReadSettings, "missing explicit file is an error")
}

func TestParse_Errors(t *testing.T) {
	stubFs(t, map[string]string{"/file": "x"})

	tests := []struct {
		name     string
		data     string
		wantErr  error
		wantErrs int
	}{
		{name: "bad yaml", data: "env: [", wantErr: ErrInvalidYaml},
		{name: "unknown field", data: "timeout_seconds: 5\n", wantErr: ErrInvalidYaml},
		{name: "bad timeout", data: "timeout: soon\n", wantErr: ErrInvalidSettings, wantErrs: 1},
		{
			name: "all problems reported",
			data: `
max_output_bytes: -1
parallelism: -2
timeout: -5s
working_directory: /file
`,
			wantErr:  ErrInvalidSettings,
			wantErrs: 4,
		},
		{name: "missing working directory", data: "working_directory: /nope\n", wantErr: ErrInvalidSettings, wantErrs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.ErrorIs(t, err, tt.wantErr)

			if tt.wantErrs > 0 {
				var merr *multierror.Error
				require.ErrorAs(t, err, &merr)
				assert.Len(t, merr.Errors, tt.wantErrs)
			}
		})
	}
}
