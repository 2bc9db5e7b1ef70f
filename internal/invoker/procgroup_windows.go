// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package invoker

import (
	"os"
	"syscall"
)

func procSysAttr() *syscall.SysProcAttr {
	return nil
}

// killGroup terminates the child. Windows has no process groups to signal,
// descendants are released by the pipe backstop instead.
func killGroup(ps *os.Process) error {
	return ps.Kill() //nolint:wrapcheck
}

func signalGroup(ps *os.Process, sig os.Signal) error {
	return ps.Signal(sig) //nolint:wrapcheck
}

func exitSignal(*os.ProcessState) int {
	return 0
}
