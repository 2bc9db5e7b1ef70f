// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker subscribes to the signals that should terminate the host
// (SIGINT, SIGTERM, SIGQUIT) so they can be relayed to running child processes.
//
// Watch cancels a context when the same signal arrives twice.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New returns a channel subscribed to sigs, or to the termination signals when none are given.
// Call Stop when the channel is no longer read.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unsubscribes ch. The channel is not closed.
func Stop(ch chan os.Signal) {
	if ch == nil {
		return
	}

	signal.Stop(ch)
}
