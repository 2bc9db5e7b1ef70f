// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package invoker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind_RoundTrip(t *testing.T) {
	for _, k := range []ErrorKind{KindLaunchFailure, KindNonZeroExit, KindIOFailure, KindCanceled} {
		parsed, ok := ParseErrorKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}

	parsed, ok := ParseErrorKind("nonzeroexit")
	require.True(t, ok)
	assert.Equal(t, KindNonZeroExit, parsed)

	_, ok = ParseErrorKind("Timeout")
	assert.False(t, ok)
	assert.Equal(t, "ErrorKind(9)", ErrorKind(9).String())
}

func TestProcessExecutionError(t *testing.T) {
	cause := errors.New("exec format error")

	tests := []struct {
		name      string
		err       *ProcessExecutionError
		sentinel  error
		contains  []string
		excludes  []string
		wantCause bool
	}{
		{
			name:      "launch failure",
			err:       &ProcessExecutionError{Kind: KindLaunchFailure, Command: "foo", ExitCode: -1, Err: cause},
			sentinel:  ErrLaunchFailure,
			contains:  []string{"LaunchFailure", `"foo"`, "exec format error"},
			excludes:  []string{"exited with code"},
			wantCause: true,
		},
		{
			name:     "non-zero exit with stderr",
			err:      &ProcessExecutionError{Kind: KindNonZeroExit, Command: "ls x", ExitCode: 2, StdErr: []byte("no such file\nsecond line\n")},
			sentinel: ErrNonZeroExit,
			contains: []string{"NonZeroExit", "exited with code 2", "no such file ..."},
			excludes: []string{"second line"},
		},
		{
			name:     "canceled",
			err:      &ProcessExecutionError{Kind: KindCanceled, Command: "sleep 9", ExitCode: -1, Err: ErrSignalReceived},
			sentinel: ErrCanceled,
			contains: []string{"Canceled", "signal received"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("running script: %w", tt.err)

			assert.ErrorIs(t, wrapped, tt.sentinel)

			if tt.wantCause {
				assert.ErrorIs(t, wrapped, cause)
			}

			kind, ok := KindOf(wrapped)
			require.True(t, ok)
			assert.Equal(t, tt.err.Kind, kind)

			for _, s := range tt.contains {
				assert.Contains(t, tt.err.Error(), s)
			}

			for _, s := range tt.excludes {
				assert.NotContains(t, tt.err.Error(), s)
			}
		})
	}

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}
