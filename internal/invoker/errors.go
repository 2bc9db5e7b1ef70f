// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package invoker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLaunchFailure is matched by errors for commands that could not be started.
	ErrLaunchFailure = errors.New("launch failure")
	// ErrNonZeroExit is matched by errors for commands that exited with a non-zero status.
	ErrNonZeroExit = errors.New("non-zero exit")
	// ErrIOFailure is matched by errors for pipe creation, read or write failures.
	ErrIOFailure = errors.New("i/o failure")
	// ErrCanceled is matched by errors for commands killed by context cancellation or a repeated signal.
	ErrCanceled = errors.New("canceled")

	// ErrEmptyCommand is returned when the command is empty or only whitespace.
	ErrEmptyCommand = errors.New("command is empty")
	// ErrCommandNotFound is returned when the executable cannot be found in PATH.
	ErrCommandNotFound = errors.New("command not found")
	// ErrNotExecutable is returned when the executable exists but cannot be executed.
	ErrNotExecutable = errors.New("permission denied")
	// ErrShellSyntax is returned when the command line contains shell operators or unbalanced quotes.
	ErrShellSyntax = errors.New("unsupported shell syntax in command line")
	// ErrOutputLimit is returned when captured output exceeds the configured maximum.
	ErrOutputLimit = errors.New("output exceeds maximum size")
	// ErrInvalidArgument is returned when an argument cannot be converted to a token.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrorKind classifies a failed invocation.
type ErrorKind int

// Failure kinds.
const (
	KindLaunchFailure ErrorKind = iota + 1
	KindNonZeroExit
	KindIOFailure
	KindCanceled
)

// String returns the kind name as exposed to scripts.
func (k ErrorKind) String() string {
	switch k {
	case KindLaunchFailure:
		return "LaunchFailure"
	case KindNonZeroExit:
		return "NonZeroExit"
	case KindIOFailure:
		return "IOFailure"
	case KindCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseErrorKind is the inverse of ErrorKind.String. Matching is case-insensitive.
func ParseErrorKind(s string) (ErrorKind, bool) {
	for _, k := range []ErrorKind{KindLaunchFailure, KindNonZeroExit, KindIOFailure, KindCanceled} {
		if strings.EqualFold(k.String(), s) {
			return k, true
		}
	}

	return 0, false
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindLaunchFailure:
		return ErrLaunchFailure
	case KindNonZeroExit:
		return ErrNonZeroExit
	case KindIOFailure:
		return ErrIOFailure
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

// ProcessExecutionError describes a failed invocation.
// ExitCode is -1 when the process never started or was killed.
type ProcessExecutionError struct {
	Kind     ErrorKind
	Command  string
	ExitCode int
	StdErr   []byte
	Err      error
}

func (e *ProcessExecutionError) Error() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%s: %q", e.Kind, e.Command)

	if e.Kind == KindNonZeroExit {
		fmt.Fprintf(&sb, " exited with code %d", e.ExitCode)
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	if msg := strings.TrimSpace(string(e.StdErr)); msg != "" {
		sb.WriteString(": ")
		sb.WriteString(firstLine(msg))
	}

	return sb.String()
}

// Unwrap exposes the kind sentinel and the underlying cause.
func (e *ProcessExecutionError) Unwrap() []error {
	errs := make([]error, 0, 2)

	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// KindOf returns the kind of a *ProcessExecutionError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var pe *ProcessExecutionError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}

	return 0, false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}

	return s
}
