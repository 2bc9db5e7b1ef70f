// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package repl

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/hostexec/internal/jshost"
	"github.com/peterh/liner"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type fakePrompter struct {
	lines   []string
	end     error
	history []string
}

func (f *fakePrompter) Prompt(string) (string, error) {
	if len(f.lines) == 0 {
		return "", f.end
	}

	l := f.lines[0]
	f.lines = f.lines[1:]

	return l, nil
}

func (f *fakePrompter) AppendHistory(s string) {
	f.history = append(f.history, s)
}

func TestLoop(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		end     error
		want    string
		wantErr bool
		history int
	}{
		{
			name:    "values are printed and state is kept",
			lines:   []string{"var x = 40", "", "x + 2", "print('hi')"},
			end:     io.EOF,
			want:    "42\nhi\n",
			history: 3,
		},
		{
			name:    "errors are printed and the loop continues",
			lines:   []string{"throw new Error('nope')", "'still here'"},
			end:     io.EOF,
			want:    "<repl>: Error: nope\nstill here\n",
			history: 2,
		},
		{
			name:  "quit stops before later lines",
			lines: []string{"quit", "print('unreachable')"},
			end:   io.EOF,
		},
		{
			name: "ctrl+c aborts",
			end:  liner.ErrPromptAborted,
			want: "Aborted\n",
		},
		{
			name:    "exit() ends the loop with its code",
			lines:   []string{"exit(4)", "print('unreachable')"},
			end:     io.EOF,
			wantErr: true,
			history: 1,
		},
		{
			name:    "prompt failure",
			end:     errors.New("tty gone"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			h := jshost.New(t.Context(), jshost.WithOutput(out))
			p := &fakePrompter{lines: tt.lines, end: tt.end}

			err := loop(h, p, out)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.want, out.String())
			assert.Len(t, p.history, tt.history)
		})
	}
}

func TestRepl_PipedStdin(t *testing.T) {
	stubs := gostub.Stub(&cli.OsExiter, func(int) {})
	defer stubs.Reset()

	tests := []struct {
		src      string
		want     string
		wantCode int
	}{
		{src: "print(1 + 1)\nprint($ARG.length)\n", want: "2\n0\n"},
		{src: "print('bye'); exit(6)", want: "bye\n", wantCode: 6},
		{src: "throw new Error('x')", wantCode: 1},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			out := &bytes.Buffer{}
			root := &cli.Command{
				Name:      "hostexec",
				Writer:    out,
				ErrWriter: &bytes.Buffer{},
				Reader:    strings.NewReader(tt.src),
				Commands:  []*cli.Command{newCommand()},
			}

			err := root.Run(t.Context(), []string{"hostexec", "repl"})

			if tt.wantCode == 0 {
				require.NoError(t, err)
			} else {
				var ec cli.ExitCoder
				require.True(t, errors.As(err, &ec))
				assert.Equal(t, tt.wantCode, ec.ExitCode())
			}

			assert.Equal(t, tt.want, out.String())
		})
	}
}
