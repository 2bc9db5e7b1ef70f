// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/hostexec/internal/ctxlog"
)

// Watch reads sigCh until the context ends or the channel is closed.
// The second signal of a given type unsubscribes sigCh and cancels the context.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Info(ctx, "watchdog", "detail", "received second signal of type, forcefully terminating", "signal", sig.String())
				Stop(sigCh)
				cancel()

				return
			}

			ctxlog.Info(ctx, "watchdog", "detail", "received first signal of type, forwarded to children", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
