// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jshost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/dop251/goja"
	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
	"github.com/matt-FFFFFF/hostexec/internal/invoker"
	"github.com/spf13/afero"
)

// Global names installed in every runtime.
const (
	GlobalExec = "$EXEC"
	GlobalOut  = "$OUT"
	GlobalErr  = "$ERR"
	GlobalExit = "$EXIT"
	GlobalEnv  = "$ENV"
	GlobalArg  = "$ARG"
	globalFile = "__FILE__"

	envWorkingDir = "PWD"
)

// Host is a JavaScript runtime with the process execution globals installed.
type Host struct {
	ctx    context.Context
	vm     *goja.Runtime
	inv    *invoker.Invoker
	out    io.Writer
	env    map[string]string
	args   []string
	thrown map[*goja.Object]*invoker.ProcessExecutionError
	exit   *ExitError
}

// Option configures a Host.
type Option func(*Host)

// WithInvoker sets the invoker backing $EXEC. Its Env and Dir seed $ENV.
func WithInvoker(inv *invoker.Invoker) Option {
	return func(h *Host) {
		if inv != nil {
			h.inv = inv
		}
	}
}

// WithOutput sets the writer used by print and echo. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(h *Host) {
		h.out = w
	}
}

// WithEnv replaces the environment $ENV is seeded from. The default is the process environment.
func WithEnv(env map[string]string) Option {
	return func(h *Host) {
		h.env = maps.Clone(env)
	}
}

// WithArgs sets $ARG.
func WithArgs(args ...string) Option {
	return func(h *Host) {
		h.args = args
	}
}

// New creates a Host. The runtime is interrupted when ctx ends during a run.
func New(ctx context.Context, opts ...Option) *Host {
	h := &Host{
		ctx:    ctx,
		vm:     goja.New(),
		inv:    &invoker.Invoker{},
		out:    os.Stdout,
		thrown: make(map[*goja.Object]*invoker.ProcessExecutionError),
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.env == nil {
		h.env = environMap(os.Environ())
	}

	maps.Copy(h.env, h.inv.Env)

	if h.inv.Dir != "" {
		h.env[envWorkingDir] = h.inv.Dir
	}

	h.install()

	return h
}

func (h *Host) install() {
	env := h.vm.NewObject()
	for k, v := range h.env {
		_ = env.Set(k, v)
	}

	args := make([]any, len(h.args))
	for i, a := range h.args {
		args[i] = a
	}

	argv := h.vm.NewArray(args...)

	_ = h.vm.Set(GlobalExec, h.execFunc)
	_ = h.vm.Set(GlobalOut, "")
	_ = h.vm.Set(GlobalErr, "")
	_ = h.vm.Set(GlobalExit, goja.Undefined())
	_ = h.vm.Set(GlobalEnv, env)
	_ = h.vm.Set(GlobalArg, argv)
	_ = h.vm.Set("arguments", argv)
	_ = h.vm.Set("print", h.print)
	_ = h.vm.Set("echo", h.print)
	_ = h.vm.Set("exit", h.exitFunc)
	_ = h.vm.Set("quit", h.exitFunc)
}

// Get returns the value of a global, for inspection after a run.
func (h *Host) Get(name string) goja.Value {
	return h.vm.Get(name)
}

// RunString runs src as a script named name and returns its completion value.
func (h *Host) RunString(name, src string) (goja.Value, error) {
	return h.run(name, stripShebang(src))
}

// RunFile reads path through FsFactory and runs it with __FILE__ set.
func (h *Host) RunFile(path string) (goja.Value, error) {
	b, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return nil, errors.Join(ErrReadScript, err)
	}

	_ = h.vm.Set(globalFile, path)

	return h.RunString(path, string(b))
}

func (h *Host) run(name, src string) (goja.Value, error) {
	h.exit = nil

	stop := context.AfterFunc(h.ctx, func() {
		h.vm.Interrupt(fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(h.ctx)))
	})

	defer func() {
		stop()
		h.vm.ClearInterrupt()
		clear(h.thrown)
	}()

	ctxlog.Debug(h.ctx, "running script", "name", name)

	v, err := h.vm.RunScript(name, src)

	if h.exit != nil {
		return nil, h.exit
	}

	if err != nil {
		return nil, h.scriptError(name, err)
	}

	return v, nil
}

func (h *Host) scriptError(name string, err error) error {
	var (
		ex  *goja.Exception
		ie  *goja.InterruptedError
		res = &ScriptError{Name: name, Message: err.Error()}
	)

	switch {
	case errors.As(err, &ex):
		res.Stack = ex.String()

		if v := ex.Value(); v != nil {
			res.Message = v.String()

			if obj, ok := v.(*goja.Object); ok {
				if pe, ok := h.thrown[obj]; ok {
					res.Err = pe
				}
			}
		}

	case errors.As(err, &ie):
		res.Stack = ie.String()

		if cause, ok := ie.Value().(error); ok {
			res.Message = cause.Error()
			res.Err = cause
		}

	default:
		res.Err = err
	}

	return res
}

func (h *Host) print(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, a := range call.Arguments {
		parts[i] = a.String()
	}

	if _, err := fmt.Fprintln(h.out, strings.Join(parts, " ")); err != nil {
		panic(h.vm.NewGoError(err))
	}

	return goja.Undefined()
}

func (h *Host) exitFunc(call goja.FunctionCall) goja.Value {
	code := 0
	if a := call.Argument(0); !goja.IsUndefined(a) && !goja.IsNull(a) {
		code = int(a.ToInteger())
	}

	h.exit = &ExitError{Code: code}
	h.vm.Interrupt(h.exit)

	return goja.Undefined()
}

// stripShebang comments out a leading #! line so line numbers are unchanged.
func stripShebang(src string) string {
	if strings.HasPrefix(src, "#!") {
		return "//" + src[2:]
	}

	return src
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
