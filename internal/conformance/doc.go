// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package conformance runs declarative test vectors against the process invoker and the script host.
//
// A vector file is YAML or HCL and holds a suite of cases. An exec case runs one command and checks
// its captured output, exit code and error kind. A script case runs JavaScript in a fresh host and
// checks what it printed or threw.
package conformance
