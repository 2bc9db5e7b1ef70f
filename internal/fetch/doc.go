// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package fetch reads single files from local paths or go-getter URLs.
// See https://github.com/hashicorp/go-getter for the URL syntax.
package fetch
