// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package invoker

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Request describes one invocation.
type Request struct {
	Command string            // Command line; the first word is the executable, further words precede Args.
	Stdin   *string           // Standard input payload, nil closes the child's stdin immediately.
	Args    []string          // Extra arguments appended after the command line words.
	Env     map[string]string // Complete child environment. Nil inherits the host environment.
	Dir     string            // Working directory, empty for the host's.

	MaxOutputBytes       int64         // Per-stream capture limit, 0 for unlimited.
	Timeout              time.Duration // Kill the child after this long, 0 for no limit.
	TrimTrailingNewlines bool          // Result.Output drops trailing newlines, like shell command substitution.
	ForwardSignals       bool          // Relay host termination signals to the child.
}

// Text returns a pointer to s, for use as Request.Stdin.
func Text(s string) *string {
	return &s
}

// environ returns the child environment as KEY=VALUE pairs, sorted by key.
func (r *Request) environ() []string {
	if r.Env == nil {
		return os.Environ()
	}

	env := make([]string, 0, len(r.Env))
	for k, v := range r.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	slices.Sort(env)

	return env
}

// Result is the outcome of a process that ran to completion.
type Result struct {
	StdOut   []byte
	StdErr   []byte
	ExitCode int
	Signal   int // Signal number that terminated the child, 0 when it exited on its own.
	Duration time.Duration
	trim     bool
}

// Output returns standard output as text, without trailing newlines if the request asked for that.
func (r *Result) Output() string {
	if r == nil {
		return ""
	}

	if r.trim {
		return strings.TrimRight(string(r.StdOut), "\r\n")
	}

	return string(r.StdOut)
}

// envValue looks key up in a KEY=VALUE list. The last assignment wins.
func envValue(env []string, key string) string {
	var val string

	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == key {
			val = v
		}
	}

	return val
}
