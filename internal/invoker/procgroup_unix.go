// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package invoker

import (
	"errors"
	"os"
	"syscall"
)

// procSysAttr starts the child as the leader of a new process group,
// so the child and everything it spawns can be signalled together.
func procSysAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killGroup sends SIGKILL to the child's process group.
// It returns os.ErrProcessDone when no member of the group is left.
func killGroup(ps *os.Process) error {
	return signalGroup(ps, syscall.SIGKILL)
}

// signalGroup delivers sig to every process in the child's group.
func signalGroup(ps *os.Process, sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return ps.Signal(sig) //nolint:wrapcheck
	}

	err := syscall.Kill(-ps.Pid, s)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}

	return err //nolint:wrapcheck
}

// exitSignal returns the signal that terminated the process, or 0.
func exitSignal(state *os.ProcessState) int {
	if state == nil {
		return 0
	}

	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0
	}

	return int(ws.Signal())
}
