// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package conformance

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
	"github.com/matt-FFFFFF/hostexec/internal/invoker"
	"github.com/matt-FFFFFF/hostexec/internal/jshost"
)

// Runner executes suites.
type Runner struct {
	Invoker     *invoker.Invoker // Defaults for every case; nil means none.
	Parallelism int              // Maximum concurrent cases; 0 means runtime.NumCPU().
}

// Run executes every case of each suite and returns the results in case order.
func (r *Runner) Run(ctx context.Context, suites ...*Suite) *Report {
	var cases []*CaseResult

	type job struct {
		c   *Case
		res *CaseResult
	}

	var jobs []job

	for _, s := range suites {
		for _, c := range s.Cases {
			res := &CaseResult{Suite: s.Name, Name: c.Name, Type: c.Type}
			cases = append(cases, res)
			jobs = append(jobs, job{c: c, res: res})
		}
	}

	workers := r.Parallelism
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger := ctxlog.Logger(ctx).With("runnableType", "conformance")
	logger.Debug("running cases", "cases", len(jobs), "parallelism", workers)

	sem := make(chan struct{}, workers)
	wg := &sync.WaitGroup{}

	for _, j := range jobs {
		wg.Add(1)

		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
			}

			if ctx.Err() != nil {
				j.res.Status = StatusError
				j.res.Reason = context.Cause(ctx).Error()

				return
			}

			start := time.Now()

			r.runCase(ctx, j.c, j.res)

			j.res.Duration = time.Since(start)

			logger.Debug("case finished", "label", j.res.Label(), "status", j.res.Status.String())
		}()
	}

	wg.Wait()

	return &Report{Results: cases}
}

// caseInvoker layers the case's environment and working directory over the runner defaults.
func (r *Runner) caseInvoker(c *Case) *invoker.Invoker {
	inv := invoker.Invoker{}
	if r.Invoker != nil {
		inv = *r.Invoker
	}

	if len(c.Env) > 0 {
		env := maps.Clone(inv.Env)
		if env == nil {
			env = make(map[string]string, len(c.Env))
		}

		maps.Copy(env, c.Env)
		inv.Env = env
	}

	if c.WorkingDirectory != "" {
		inv.Dir = c.WorkingDirectory
	}

	return &inv
}

func (r *Runner) runCase(ctx context.Context, c *Case, res *CaseResult) {
	inv := r.caseInvoker(c)

	switch c.Type {
	case CaseTypeScript:
		runScriptCase(ctx, inv, c, res)
	default:
		runExecCase(ctx, inv, c, res)
	}
}

func runExecCase(ctx context.Context, inv *invoker.Invoker, c *Case, res *CaseResult) {
	ir, err := inv.Invoke(ctx, &invoker.Request{
		Command: c.Command,
		Stdin:   c.Stdin,
		Args:    c.Args,
	})

	res.ExitCode = -1
	if ir != nil {
		res.ExitCode = ir.ExitCode
		res.Output = ir.Output()
		res.StdErr = string(ir.StdErr)
	}

	exp := c.Expect
	kind, hasKind := invoker.KindOf(err)

	switch {
	case exp.ErrorKind != "":
		want, _ := invoker.ParseErrorKind(exp.ErrorKind)
		if !hasKind {
			res.failf("expected error kind %s, got success", want)
			return
		}

		if kind != want {
			res.failf("expected error kind %s, got %s: %v", want, kind, err)
			return
		}

	case err != nil && !(hasKind && kind == invoker.KindNonZeroExit && exp.ExitCode != nil):
		res.Status = StatusError
		res.Reason = err.Error()

		return
	}

	if exp.ExitCode != nil && *exp.ExitCode != res.ExitCode {
		res.failf("expected exit code %d, got %d", *exp.ExitCode, res.ExitCode)
	}

	checkText(res, "stdout", res.Output, exp.Stdout, exp.StdoutContains)
}

func runScriptCase(ctx context.Context, inv *invoker.Invoker, c *Case, res *CaseResult) {
	out := &bytes.Buffer{}
	host := jshost.New(ctx, jshost.WithInvoker(inv), jshost.WithOutput(out))

	_, err := host.RunString(c.Name, c.Script)

	var ee *jshost.ExitError
	if errors.As(err, &ee) {
		res.ExitCode = ee.Code
		if ee.Code == 0 {
			err = nil
		}
	}

	res.Output = out.String()
	exp := c.Expect

	switch {
	case exp.Error != "":
		if err == nil {
			res.failf("expected error containing %q, got success", exp.Error)
			return
		}

		if !strings.Contains(err.Error(), exp.Error) {
			res.failf("expected error containing %q, got %q", exp.Error, err.Error())
			return
		}

	case err != nil:
		res.Status = StatusError
		res.Reason = err.Error()

		return
	}

	checkText(res, "output", res.Output, exp.Output, exp.OutputContains)
}

func checkText(res *CaseResult, what, got string, exact *string, contains []string) {
	if exact != nil && got != *exact {
		res.failf("expected %s %q, got %q", what, *exact, got)
	}

	for _, s := range contains {
		if !strings.Contains(got, s) {
			res.failf("expected %s to contain %q, got %q", what, s, got)
		}
	}
}
