// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package invoker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const goosWindows = "windows"

// lookPath resolves command against the PATH and PATHEXT of the child's environment,
// which may differ from the host's.
// Names containing a path separator are resolved relative to dir instead of being searched for.
func lookPath(command string, env []string, dir string) (string, error) {
	if command == "" {
		return "", ErrEmptyCommand
	}

	if strings.ContainsRune(command, '/') || strings.ContainsRune(command, filepath.Separator) {
		p := command
		if !filepath.IsAbs(p) && dir != "" {
			p = filepath.Join(dir, p)
		}

		return checkExecutable(p, env)
	}

	var lastErr error

	for _, d := range filepath.SplitList(envValue(env, "PATH")) {
		if d == "" {
			d = "."
		}

		p, err := checkExecutable(filepath.Join(d, command), env)
		if err == nil {
			return p, nil
		}

		// Remember a permission problem so it is reported instead of "not found".
		if errors.Is(err, ErrNotExecutable) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", lastErr
	}

	return "", fmt.Errorf("%w: %s", ErrCommandNotFound, command)
}

func checkExecutable(p string, env []string) (string, error) {
	for _, candidate := range candidates(p, env) {
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return "", errors.Join(ErrNotExecutable, err)
		}

		if info.IsDir() {
			continue
		}

		if runtime.GOOS != goosWindows && info.Mode()&0o111 == 0 {
			return "", fmt.Errorf("%w: %s", ErrNotExecutable, candidate)
		}

		return candidate, nil
	}

	return "", fmt.Errorf("%w: %s", ErrCommandNotFound, p)
}

// candidates adds the PATHEXT extensions on Windows when p has none.
func candidates(p string, env []string) []string {
	if runtime.GOOS != goosWindows || filepath.Ext(p) != "" {
		return []string{p}
	}

	exts := envValue(env, "PATHEXT")
	if exts == "" {
		exts = ".com;.exe;.bat;.cmd"
	}

	res := []string{p}
	for _, e := range strings.Split(strings.ToLower(exts), ";") {
		if e != "" {
			res = append(res, p+e)
		}
	}

	return res
}
