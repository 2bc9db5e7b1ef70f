// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jshost

import (
	"errors"
	"fmt"
)

var (
	// ErrReadScript is returned when a script file cannot be read.
	ErrReadScript = errors.New("failed to read script")
	// ErrInterrupted is the cause of a ScriptError when the host context ended mid-script.
	ErrInterrupted = errors.New("script interrupted")
)

// ScriptError is an exception that escaped a script.
// When the exception was thrown by $EXEC, Err is the *invoker.ProcessExecutionError.
type ScriptError struct {
	Name    string // Script name as given to RunString, or the file path.
	Message string // The thrown value converted to a string.
	Stack   string // Engine stack trace, may be empty.
	Err     error
}

func (e *ScriptError) Error() string {
	if e.Name == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// ExitError is returned when a script calls exit() or quit().
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("script exited with code %d", e.Code)
}
