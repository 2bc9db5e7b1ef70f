// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the optional YAML settings file that supplies invoker defaults.
package config
