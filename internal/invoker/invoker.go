// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package invoker

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
	"github.com/matt-FFFFFF/hostexec/internal/signalbroker"
)

var (
	// ErrSignalReceived is the cause of a Canceled error when a host signal was forwarded to the child.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is the cause of a Canceled error when a repeated signal killed the child.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// Seams for tests.
var (
	startProcess  = os.StartProcess
	notifySignals = func(ctx context.Context) chan os.Signal { return signalbroker.New(ctx) }
	stopSignals   = signalbroker.Stop
	killProcess   = killGroup
)

// streamGrace bounds how long output is drained once the child was interrupted.
// Descendants that left the child's process group can hold the pipes open indefinitely.
var streamGrace = 2 * time.Second

// Func is the shape shared by every calling form of the invoker:
// a command line, an optional stdin payload and extra arguments, either variadic or as one sequence.
type Func func(ctx context.Context, command string, stdin *string, args ...any) (string, error)

var (
	_ Func = Exec
	_ Func = (*Invoker)(nil).Exec
)

// Invoker applies defaults to every request it runs. The zero value is ready to use.
type Invoker struct {
	Env                  map[string]string // Added to the host environment for requests without their own Env.
	Dir                  string
	MaxOutputBytes       int64
	Timeout              time.Duration
	TrimTrailingNewlines bool
	ForwardSignals       bool
}

var defaultInvoker = &Invoker{}

// Invoke runs req with no defaults. See (*Invoker).Invoke.
func Invoke(ctx context.Context, req *Request) (*Result, error) {
	return defaultInvoker.Invoke(ctx, req)
}

// Exec runs command with no defaults. See (*Invoker).Exec.
func Exec(ctx context.Context, command string, stdin *string, args ...any) (string, error) {
	return defaultInvoker.Exec(ctx, command, stdin, args...)
}

// Exec runs command with the optional stdin payload and extra arguments and returns its standard output.
// On a non-zero exit the output captured so far is returned together with the error.
func (inv *Invoker) Exec(ctx context.Context, command string, stdin *string, args ...any) (string, error) {
	argv, err := NormalizeArgs(args...)
	if err != nil {
		return "", err
	}

	res, err := inv.Invoke(ctx, &Request{Command: command, Stdin: stdin, Args: argv})

	return res.Output(), err
}

// Apply calls fn the way a script host applies a function value to an explicit
// receiver and argument list. The receiver is ignored.
// argv[0] is the command line, argv[1] the optional stdin (nil, string or *string),
// and any further values are extra arguments.
func Apply(ctx context.Context, fn Func, _ any, argv []any) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("%w: missing command", ErrInvalidArgument)
	}

	command, ok := argv[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: command must be a string, got %T", ErrInvalidArgument, argv[0])
	}

	var stdin *string

	if len(argv) > 1 {
		switch s := argv[1].(type) {
		case nil:
		case string:
			stdin = &s
		case *string:
			stdin = s
		default:
			return "", fmt.Errorf("%w: stdin must be a string or nil, got %T", ErrInvalidArgument, argv[1])
		}
	}

	var rest []any
	if len(argv) > 2 {
		rest = argv[2:]
	}

	return fn(ctx, command, stdin, rest...)
}

func (inv *Invoker) prepare(req *Request) *Request {
	r := *req

	if r.Env == nil && len(inv.Env) > 0 {
		r.Env = environMap(os.Environ())
		maps.Copy(r.Env, inv.Env)
	}

	if r.Dir == "" {
		r.Dir = inv.Dir
	}

	if r.MaxOutputBytes == 0 {
		r.MaxOutputBytes = inv.MaxOutputBytes
	}

	if r.Timeout == 0 {
		r.Timeout = inv.Timeout
	}

	r.TrimTrailingNewlines = r.TrimTrailingNewlines || inv.TrimTrailingNewlines
	r.ForwardSignals = r.ForwardSignals || inv.ForwardSignals

	return &r
}

// Invoke runs the request and blocks until the child exits.
// The Result is returned whenever the process started, including alongside a
// NonZeroExit, IOFailure or Canceled error; it is nil for launch failures.
func (inv *Invoker) Invoke(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		req = &Request{}
	}

	r := inv.prepare(req)
	logger := ctxlog.Logger(ctx).With("runnableType", "invoker", "command", r.Command)

	words, err := SplitCommandLine(r.Command)
	if err != nil {
		return nil, launchError(r.Command, err)
	}

	env := r.environ()

	path, err := lookPath(words[0], env, r.Dir)
	if err != nil {
		logger.Debug("command lookup failed", "error", err)
		return nil, launchError(r.Command, err)
	}

	argv := slices.Concat(words, r.Args)

	logger.Debug("command info", "path", path, "cwd", r.Dir, "args", argv[1:], "stdin", r.Stdin != nil)

	if r.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	p, err := openPipes(r.Stdin != nil)
	if err != nil {
		return nil, &ProcessExecutionError{Kind: KindIOFailure, Command: r.Command, ExitCode: -1, Err: err}
	}

	ps, err := startProcess(path, argv, &os.ProcAttr{
		Dir:   r.Dir,
		Env:   env,
		Files: p.childFiles(),
		Sys:   procSysAttr(),
	})

	p.closeChildEnds()

	if err != nil {
		closeFiles(p.in, p.out, p.err)
		logger.Debug("process start failed", "error", err)

		return nil, launchError(r.Command, err)
	}

	start := time.Now()

	logger.Debug("process started", "pid", ps.Pid)

	var (
		streams               sync.WaitGroup
		stdout, stderr        []byte
		outErr, errErr, inErr error
	)

	streams.Add(2)

	go func() {
		defer streams.Done()

		stdout, outErr = readAllUpToMax(p.out, r.MaxOutputBytes)
	}()

	go func() {
		defer streams.Done()

		stderr, errErr = readAllUpToMax(p.err, r.MaxOutputBytes)
	}()

	if p.in != nil {
		streams.Add(1)

		go func() {
			defer streams.Done()

			inErr = writeInput(p.in, *r.Stdin)
		}()
	}

	var sigCh chan os.Signal
	if r.ForwardSignals {
		sigCh = notifySignals(ctx)
		defer stopSignals(sigCh)
	}

	done := make(chan struct{})

	var (
		watchdog sync.WaitGroup
		reason   error
	)

	watchdog.Add(1)

	go func() {
		defer watchdog.Done()

		reason = watch(ctx, ps, sigCh, done)
	}()

	logger.Debug("waiting for process to finish")

	state, waitErr := ps.Wait()

	close(done)
	watchdog.Wait()

	if cause := drain(ctx, ps, &streams, p, reason != nil); reason == nil {
		reason = cause
	}

	closeFiles(p.out, p.err)

	res := &Result{
		StdOut:   stdout,
		StdErr:   stderr,
		ExitCode: -1,
		Duration: time.Since(start),
		trim:     r.TrimTrailingNewlines,
	}

	if state != nil {
		res.ExitCode = state.ExitCode()
		res.Signal = exitSignal(state)
	}

	logger.Debug("process finished", "exitCode", res.ExitCode, "stdoutBytes", len(stdout), "stderrBytes", len(stderr))

	fail := func(kind ErrorKind, cause error) (*Result, error) {
		return res, &ProcessExecutionError{
			Kind:     kind,
			Command:  r.Command,
			ExitCode: res.ExitCode,
			StdErr:   stderr,
			Err:      cause,
		}
	}

	switch {
	case reason != nil:
		res.ExitCode = -1
		return fail(KindCanceled, reason)
	case waitErr != nil:
		return fail(KindIOFailure, waitErr)
	case outErr != nil || errErr != nil || inErr != nil:
		return fail(KindIOFailure, errors.Join(outErr, errErr, inErr))
	case res.ExitCode != 0:
		return fail(KindNonZeroExit, nil)
	}

	return res, nil
}

// watch kills the process when ctx ends or a signal arrives twice, and forwards the first
// occurrence of each signal. It returns why the process was interrupted, or nil.
func watch(ctx context.Context, ps *os.Process, sigCh <-chan os.Signal, done <-chan struct{}) error {
	var reason error

	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-done:
			return reason

		case <-ctx.Done():
			ctxlog.Info(ctx, "context done, killing process", "pid", ps.Pid)
			killPs(ctx, ps)

			return context.Cause(ctx)

		case s := <-sigCh:
			if _, ok := seen[s]; ok {
				ctxlog.Info(ctx, "received duplicate signal, killing process", "signal", s.String())
				killPs(ctx, ps)

				return fmt.Errorf("%w: %s", ErrDuplicateSignalReceived, s)
			}

			seen[s] = struct{}{}
			reason = fmt.Errorf("%w: %s", ErrSignalReceived, s)

			ctxlog.Info(ctx, "received signal", "signal", s.String())

			if err := signalGroup(ps, s); err != nil {
				ctxlog.Info(ctx, "failed to send signal", "signal", s.String(), "error", err)
			}
		}
	}
}

// drain waits for the stream goroutines. If ctx ends first the process group is killed.
// Once the child was interrupted, the host ends of the pipes are closed after streamGrace
// so the readers return. It returns the cause when ctx ended while draining.
func drain(ctx context.Context, ps *os.Process, streams *sync.WaitGroup, p *pipes, interrupted bool) error {
	finished := make(chan struct{})

	go func() {
		streams.Wait()
		close(finished)
	}()

	var cause error

	if !interrupted {
		select {
		case <-finished:
			return nil
		case <-ctx.Done():
			select {
			case <-finished:
				return nil
			default:
			}

			ctxlog.Info(ctx, "context done while draining output, killing process group", "pid", ps.Pid)
			killPs(ctx, ps)

			cause = context.Cause(ctx)
		}
	}

	timer := time.NewTimer(streamGrace)
	defer timer.Stop()

	select {
	case <-finished:
	case <-timer.C:
		ctxlog.Info(ctx, "output still open after the process was interrupted, closing pipes", "pid", ps.Pid)
		closeFiles(p.in, p.out, p.err)
		<-finished
	}

	return cause
}

// killPs kills the child and the rest of its process group.
func killPs(ctx context.Context, ps *os.Process) {
	if err := killProcess(ps); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}

func launchError(command string, err error) *ProcessExecutionError {
	return &ProcessExecutionError{Kind: KindLaunchFailure, Command: command, ExitCode: -1, Err: err}
}

func environMap(env []string) map[string]string {
	m := make(map[string]string, len(env))

	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}

	return m
}
