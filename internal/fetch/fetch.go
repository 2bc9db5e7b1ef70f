// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
)

const (
	subdirSeparator = "//"
	schemeSeparator = "://"
	querySeparator  = "?"
)

var (
	// ErrGetFile is returned for every failure to fetch a file.
	ErrGetFile = errors.New("failed to get file")
	// ErrEmptySource is returned when no source is given.
	ErrEmptySource = errors.New("source is empty")
	// ErrNoFileName is returned when a remote source does not name a file in its subdirectory part.
	ErrNoFileName = errors.New("remote source must name a file after //")
)

// Get returns the content of the file named by src.
// src is a local path or a go-getter URL whose subdirectory part names the file,
// e.g. git::https://example.com/repo.git//scripts/build.js?ref=v1.
// Remote sources are downloaded into a scratch directory that is removed before returning.
func Get(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, errors.Join(ErrGetFile, ErrEmptySource)
	}

	pwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetFile, err)
	}

	req := &getter.Request{
		Src:     src,
		Pwd:     pwd,
		GetMode: getter.ModeDir,
	}

	// The file getter cannot fetch single files in dir mode, so every source is
	// split into a directory to fetch and a file to read from it.
	// https://github.com/hashicorp/go-getter/issues/98
	local, err := getter.Detect(req, &getter.FileGetter{})
	if err != nil {
		return nil, errors.Join(ErrGetFile, err)
	}

	var name string

	if local {
		req.Src, name = filepath.Dir(src), filepath.Base(src)
	} else {
		var ok bool
		if req.Src, name, ok = splitGetterURL(src); !ok {
			return nil, fmt.Errorf("%w: %w: %s", ErrGetFile, ErrNoFileName, src)
		}
	}

	scratch, err := os.MkdirTemp("", "hostexec-fetch-*")
	if err != nil {
		return nil, errors.Join(ErrGetFile, err)
	}

	defer os.RemoveAll(scratch) //nolint:errcheck

	req.Dst = filepath.Join(scratch, "src")

	ctxlog.Debug(ctx, "fetching", "src", req.Src, "file", name)

	client := getter.Client{
		DisableSymlinks: true,
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrGetFile, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, name))
	if err != nil {
		return nil, errors.Join(ErrGetFile, err)
	}

	return data, nil
}

// splitGetterURL moves the file name out of the subdirectory part of a go-getter URL.
// The query string, such as ?ref=v1, stays on the returned URL.
func splitGetterURL(src string) (string, string, bool) {
	base, query, _ := strings.Cut(src, querySeparator)

	i := strings.LastIndex(base, subdirSeparator)
	if i < 0 {
		return "", "", false
	}

	if s := strings.Index(base, schemeSeparator); s >= 0 && i == s+1 {
		return "", "", false
	}

	sub := base[i+len(subdirSeparator):]
	if sub == "" || strings.HasSuffix(sub, "/") {
		return "", "", false
	}

	dir, name := path.Split(sub)

	u := base[:i]
	if dir = strings.TrimSuffix(dir, "/"); dir != "" {
		u += subdirSeparator + dir
	}

	if query != "" {
		u += querySeparator + query
	}

	return u, name, true
}
