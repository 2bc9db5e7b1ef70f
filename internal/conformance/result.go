// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package conformance

import (
	"fmt"
	"time"
)

// Status is the outcome of a case.
type Status int

const (
	// StatusPass means every expectation held.
	StatusPass Status = iota
	// StatusFail means the case ran but an expectation did not hold.
	StatusFail
	// StatusError means the case could not be evaluated, e.g. an unexpected invocation error.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText renders the status by name in JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CaseResult records how one case went.
type CaseResult struct {
	Suite    string        `json:"suite"`
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Status   Status        `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	ExitCode int           `json:"exit_code"`
	Output   string        `json:"output,omitempty"`
	StdErr   string        `json:"stderr,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Label is the suite-qualified case name.
func (r *CaseResult) Label() string {
	return r.Suite + "/" + r.Name
}

func (r *CaseResult) failf(format string, a ...any) {
	if r.Status == StatusPass {
		r.Status = StatusFail
		r.Reason = fmt.Sprintf(format, a...)
	}
}
