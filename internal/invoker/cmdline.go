// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package invoker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

// SplitCommandLine splits a command line into words using shell quoting rules.
// Variables, backticks and operators such as pipes or redirections are not interpreted;
// a line containing an unquoted operator is rejected with ErrShellSyntax.
func SplitCommandLine(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyCommand
	}

	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false

	words, err := p.Parse(line)
	if err != nil {
		return nil, errors.Join(ErrShellSyntax, err)
	}

	if p.Position >= 0 {
		return nil, fmt.Errorf("%w: operator at offset %d in %q", ErrShellSyntax, p.Position, line)
	}

	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}

	return words, nil
}
