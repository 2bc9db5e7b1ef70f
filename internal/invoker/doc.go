// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package invoker runs an external command, optionally feeding it standard input,
// and returns its captured standard output.
//
// A call is synchronous: Invoke blocks until the child exits.
// Standard output and standard error are drained while standard input is being
// written, so arbitrarily large payloads in both directions cannot deadlock on
// full pipes. Failures are reported as *ProcessExecutionError, classified by
// ErrorKind and matchable with errors.Is against ErrLaunchFailure,
// ErrNonZeroExit, ErrIOFailure and ErrCanceled.
//
// Extra arguments may be passed as individual values or as one sequence;
// NormalizeArgs flattens both forms into the same token list.
package invoker
