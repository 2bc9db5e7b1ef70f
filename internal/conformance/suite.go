// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package conformance

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/hostexec/internal/invoker"
)

// Case types.
const (
	CaseTypeExec   = "exec"
	CaseTypeScript = "script"
)

var (
	// ErrInvalidCase is returned when a case is missing required fields or has conflicting ones.
	ErrInvalidCase = errors.New("invalid case")
	// ErrNoCases is returned when a suite has no cases.
	ErrNoCases = errors.New("no cases specified")
)

// Suite is a named list of cases loaded from one vector file.
type Suite struct {
	Name  string  `yaml:"name" hcl:"name,optional"`
	Cases []*Case `yaml:"cases" hcl:"case,block"`
}

// Case is one vector.
type Case struct {
	Name string `yaml:"name" hcl:"name,label"`
	// Either exec or script. Defaults to script when Script is set and exec otherwise.
	Type string `yaml:"type,omitempty" hcl:"type,optional"`

	Command          string            `yaml:"command,omitempty" hcl:"command,optional"`
	Stdin            *string           `yaml:"stdin,omitempty" hcl:"stdin,optional"`
	Args             []string          `yaml:"args,omitempty" hcl:"args,optional"`
	Env              map[string]string `yaml:"env,omitempty" hcl:"env,optional"`
	WorkingDirectory string            `yaml:"working_directory,omitempty" hcl:"working_directory,optional"`

	Script string `yaml:"script,omitempty" hcl:"script,optional"`

	Expect *Expectation `yaml:"expect,omitempty" hcl:"expect,block"`
}

// Expectation holds the checks for a case. Unset fields are not checked.
type Expectation struct {
	// Exec cases.
	Stdout         *string  `yaml:"stdout,omitempty" hcl:"stdout,optional"`
	StdoutContains []string `yaml:"stdout_contains,omitempty" hcl:"stdout_contains,optional"`
	ExitCode       *int     `yaml:"exit_code,omitempty" hcl:"exit_code,optional"`
	ErrorKind      string   `yaml:"error_kind,omitempty" hcl:"error_kind,optional"`

	// Script cases.
	Output         *string  `yaml:"output,omitempty" hcl:"output,optional"`
	OutputContains []string `yaml:"output_contains,omitempty" hcl:"output_contains,optional"`
	Error          string   `yaml:"error,omitempty" hcl:"error,optional"`
}

// validate fills defaults and aggregates every problem found in the suite.
func (s *Suite) validate(name string) error {
	if s.Name == "" {
		s.Name = name
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("%s: %w", name, ErrNoCases)
	}

	var result error

	seen := make(map[string]struct{}, len(s.Cases))

	for i, c := range s.Cases {
		if c == nil {
			result = multierror.Append(result, fmt.Errorf("%w: case %d is empty", ErrInvalidCase, i))
			continue
		}

		if c.Name == "" {
			c.Name = fmt.Sprintf("case-%d", i+1)
		}

		if _, dup := seen[c.Name]; dup {
			result = multierror.Append(result, fmt.Errorf("%w: %s: duplicate name", ErrInvalidCase, c.Name))
		}

		seen[c.Name] = struct{}{}

		if err := c.validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result
}

func (c *Case) validate() error {
	if c.Type == "" {
		c.Type = CaseTypeExec
		if c.Script != "" {
			c.Type = CaseTypeScript
		}
	}

	if c.Expect == nil {
		c.Expect = &Expectation{}
	}

	invalid := func(format string, a ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidCase, c.Name, fmt.Sprintf(format, a...))
	}

	switch c.Type {
	case CaseTypeExec:
		if c.Command == "" {
			return invalid("exec case requires a command")
		}

		if c.Script != "" {
			return invalid("exec case cannot have a script")
		}

		if c.Expect.ErrorKind != "" {
			if _, ok := invoker.ParseErrorKind(c.Expect.ErrorKind); !ok {
				return invalid("unknown error kind %q", c.Expect.ErrorKind)
			}
		}

	case CaseTypeScript:
		if c.Script == "" {
			return invalid("script case requires a script")
		}

		if c.Command != "" || c.Stdin != nil || len(c.Args) > 0 {
			return invalid("script case cannot have command, stdin or args")
		}

	default:
		return invalid("unknown case type %q", c.Type)
	}

	return nil
}
