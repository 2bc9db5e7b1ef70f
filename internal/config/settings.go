// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/hostexec/internal/invoker"
	"github.com/spf13/afero"
)

// DefaultPath is read when no settings file is named explicitly. It may be absent.
const DefaultPath = ".hostexec.yaml"

var (
	// ErrReadSettings is returned when the settings file exists but cannot be read.
	ErrReadSettings = errors.New("failed to read settings file")
	// ErrInvalidYaml is returned when the settings file cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrInvalidSettings is returned when decoded values are out of range.
	ErrInvalidSettings = errors.New("invalid settings")
)

// Settings are defaults applied to every invocation.
type Settings struct {
	Env                 map[string]string `yaml:"env,omitempty"`               // Added to the host environment
	WorkingDirectory    string            `yaml:"working_directory,omitempty"` // Child working directory
	MaxOutputBytes      int64             `yaml:"max_output_bytes,omitempty"`  // Per-stream capture limit, 0 for unlimited
	Timeout             string            `yaml:"timeout,omitempty"`           // Go duration, e.g. 30s
	TrimTrailingNewline bool              `yaml:"trim_trailing_newline,omitempty"`
	Parallelism         int               `yaml:"parallelism,omitempty"` // Conformance workers, 0 for one per CPU

	timeout time.Duration
}

// Load reads settings from path. An empty path reads DefaultPath, which may be missing;
// a missing file that was named explicitly is an error.
func Load(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := afero.ReadFile(FsFactory(), path)

	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return &Settings{}, nil
	default:
		return nil, errors.Join(ErrReadSettings, err)
	}

	return Parse(data)
}

// Parse decodes and validates settings.
func Parse(data []byte) (*Settings, error) {
	s := new(Settings)
	if err := yaml.UnmarshalWithOptions(data, s, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	if err := s.validate(); err != nil {
		return nil, errors.Join(ErrInvalidSettings, err)
	}

	return s, nil
}

func (s *Settings) validate() error {
	var result error

	if s.MaxOutputBytes < 0 {
		result = multierror.Append(result, fmt.Errorf("max_output_bytes must not be negative, got %d", s.MaxOutputBytes))
	}

	if s.Parallelism < 0 {
		result = multierror.Append(result, fmt.Errorf("parallelism must not be negative, got %d", s.Parallelism))
	}

	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)

		switch {
		case err != nil:
			result = multierror.Append(result, fmt.Errorf("timeout: %w", err))
		case d < 0:
			result = multierror.Append(result, fmt.Errorf("timeout must not be negative, got %s", s.Timeout))
		default:
			s.timeout = d
		}
	}

	if s.WorkingDirectory != "" {
		fi, err := FsFactory().Stat(s.WorkingDirectory)

		switch {
		case err != nil:
			result = multierror.Append(result, fmt.Errorf("working_directory: %w", err))
		case !fi.IsDir():
			result = multierror.Append(result, fmt.Errorf("working_directory: %s is not a directory", s.WorkingDirectory))
		}
	}

	return result
}

// TimeoutDuration returns the parsed timeout, 0 when unset.
func (s *Settings) TimeoutDuration() time.Duration {
	return s.timeout
}

// Invoker returns an invoker carrying these settings as defaults.
// It relays host termination signals to its children.
func (s *Settings) Invoker() *invoker.Invoker {
	return &invoker.Invoker{
		Env:                  maps.Clone(s.Env),
		Dir:                  s.WorkingDirectory,
		MaxOutputBytes:       s.MaxOutputBytes,
		Timeout:              s.timeout,
		TrimTrailingNewlines: s.TrimTrailingNewline,
		ForwardSignals:       true,
	}
}
