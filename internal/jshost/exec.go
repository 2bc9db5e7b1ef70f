// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jshost

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/dop251/goja"
	"github.com/matt-FFFFFF/hostexec/internal/invoker"
)

const (
	processExecutionErrorName = "ProcessExecutionError"

	maxArgPrealloc = 64
)

// execFunc implements $EXEC(command, stdin?, ...args).
// Arguments after stdin may be given one by one or as a single array; both forms are equivalent.
// The receiver is ignored, so $EXEC.apply and $EXEC.call behave like a direct call.
func (h *Host) execFunc(call goja.FunctionCall) goja.Value {
	if a := call.Argument(0); goja.IsUndefined(a) || goja.IsNull(a) {
		panic(h.vm.NewTypeError("%s: command is required", GlobalExec))
	}

	req := &invoker.Request{
		Command: call.Argument(0).String(),
	}

	if a := call.Argument(1); !goja.IsUndefined(a) && !goja.IsNull(a) {
		req.Stdin = invoker.Text(a.String())
	}

	var rest []any

	if len(call.Arguments) > 2 {
		vals, err := h.argValues(call.Arguments[2:])
		if err != nil {
			panic(h.vm.NewTypeError("%s: %s", GlobalExec, err.Error()))
		}

		rest = vals
	}

	args, err := invoker.NormalizeArgs(rest...)
	if err != nil {
		panic(h.vm.NewTypeError("%s: %s", GlobalExec, err.Error()))
	}

	req.Args = args
	req.Env, req.Dir = h.childEnv()

	res, err := h.inv.Invoke(h.ctx, req)
	h.setResultGlobals(res)

	if err != nil {
		var pe *invoker.ProcessExecutionError
		if !errors.As(err, &pe) {
			panic(h.vm.NewGoError(err))
		}

		panic(h.throwable(pe))
	}

	return h.vm.ToValue(res.Output())
}

// argValues converts script values to strings, keeping arrays as nested sequences.
// Holes, undefined and null are rejected, as are arrays that contain themselves.
func (h *Host) argValues(vals []goja.Value) ([]any, error) {
	out := make([]any, 0, len(vals))

	for i, v := range vals {
		a, err := h.argValue(strconv.Itoa(i), v, nil)
		if err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	return out, nil
}

func (h *Host) argValue(path string, v goja.Value, parents []*goja.Object) (any, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, fmt.Errorf("argument %s is %s", path, undefinedName(v))
	}

	obj, ok := v.(*goja.Object)
	if !ok || obj.ClassName() != "Array" {
		return v.String(), nil
	}

	if slices.Contains(parents, obj) {
		return nil, fmt.Errorf("argument %s contains itself", path)
	}

	parents = append(parents, obj)
	n := obj.Get("length").ToInteger()
	nested := make([]any, 0, min(n, maxArgPrealloc))

	for j := range n {
		elem, err := h.argValue(path+"["+strconv.FormatInt(j, 10)+"]", obj.Get(strconv.FormatInt(j, 10)), parents)
		if err != nil {
			return nil, err
		}

		nested = append(nested, elem)
	}

	return nested, nil
}

// undefinedName names a missing value the way scripts see it. Array holes read as undefined.
func undefinedName(v goja.Value) string {
	if v == nil {
		return "undefined"
	}

	return v.String()
}

// childEnv reads $ENV at call time. A missing $ENV inherits the host environment.
func (h *Host) childEnv() (map[string]string, string) {
	v := h.vm.Get(GlobalEnv)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, h.inv.Dir
	}

	obj := v.ToObject(h.vm)
	env := make(map[string]string)

	for _, k := range obj.Keys() {
		val := obj.Get(k)
		if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
			continue
		}

		env[k] = val.String()
	}

	return env, env[envWorkingDir]
}

func (h *Host) setResultGlobals(res *invoker.Result) {
	if res == nil {
		_ = h.vm.Set(GlobalOut, "")
		_ = h.vm.Set(GlobalErr, "")
		_ = h.vm.Set(GlobalExit, -1)

		return
	}

	_ = h.vm.Set(GlobalOut, string(res.StdOut))
	_ = h.vm.Set(GlobalErr, string(res.StdErr))
	_ = h.vm.Set(GlobalExit, res.ExitCode)
}

// throwable builds the script-side ProcessExecutionError and remembers the Go error behind it.
func (h *Host) throwable(pe *invoker.ProcessExecutionError) *goja.Object {
	var obj *goja.Object

	if ctor, ok := goja.AssertConstructor(h.vm.Get("Error")); ok {
		obj, _ = ctor(nil, h.vm.ToValue(pe.Error()))
	}

	if obj == nil {
		obj = h.vm.NewObject()
		_ = obj.Set("message", pe.Error())
	}

	_ = obj.Set("name", processExecutionErrorName)
	_ = obj.Set("kind", pe.Kind.String())
	_ = obj.Set("command", pe.Command)
	_ = obj.Set("exitCode", pe.ExitCode)
	_ = obj.Set("stderr", string(pe.StdErr))

	h.thrown[obj] = pe

	return obj
}
