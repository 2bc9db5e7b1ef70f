// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package jshost runs JavaScript on an embedded engine with shell-scripting globals:
// $EXEC to run external processes, $OUT, $ERR and $EXIT for the last result,
// $ENV for the child environment and $ARG for script arguments.
//
// A Host is bound to one engine runtime and is not safe for concurrent use.
package jshost
