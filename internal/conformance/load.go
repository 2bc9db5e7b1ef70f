// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package conformance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
)

const hclExt = ".hcl"

var (
	// ErrReadVectors is returned when a vector file cannot be read.
	ErrReadVectors = errors.New("failed to read vector file")
	// ErrInvalidYaml is returned when a YAML vector file cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrInvalidHcl is returned when an HCL vector file cannot be parsed or decoded.
	ErrInvalidHcl = errors.New("invalid HCL")
)

// Load reads a vector file through FsFactory and parses it.
func Load(ctx context.Context, path string) (*Suite, error) {
	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return nil, errors.Join(ErrReadVectors, err)
	}

	ctxlog.Debug(ctx, "loaded vector file", "path", path, "bytes", len(data))

	return Parse(path, data)
}

// Parse decodes a vector file. Files ending in .hcl are HCL, everything else is YAML.
// The suite name defaults to the file's base name.
func Parse(name string, data []byte) (*Suite, error) {
	var (
		s   *Suite
		err error
	)

	if strings.EqualFold(filepath.Ext(name), hclExt) {
		s, err = parseHCL(name, data)
	} else {
		s, err = parseYAML(data)
	}

	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if err := s.validate(base); err != nil {
		return nil, err
	}

	return s, nil
}

func parseYAML(data []byte) (*Suite, error) {
	s := new(Suite)
	if err := yaml.UnmarshalWithOptions(data, s, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	return s, nil
}

// parseHCL decodes an HCL vector file. Expressions may refer to the host environment as env.NAME.
func parseHCL(name string, data []byte) (*Suite, error) {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, errors.Join(ErrInvalidHcl, diagErrors(diags))
	}

	s := new(Suite)
	if diags := gohcl.DecodeBody(file.Body, evalContext(), s); diags.HasErrors() {
		return nil, errors.Join(ErrInvalidHcl, diagErrors(diags))
	}

	return s, nil
}

func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && hclsyntax.ValidIdentifier(k) {
			env[k] = cty.StringVal(v)
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

func diagErrors(diags hcl.Diagnostics) error {
	var err error

	for _, e := range diags.Errs() {
		err = multierror.Append(err, e)
	}

	return err
}
