// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package _default registers the default array back ends, namely generic, masked and chunked, besides the
// native one, which is always registered.
//
// To use it simply include:
//
//	import _ "github.com/gomlx/special/backends/default"
//
// If you add the tag `nochunked` it will not include the chunked back end, and with it the goroutines
// pool used to compute chunks in parallel.
package _default

import (
	_ "github.com/gomlx/special/backends/generic"
	_ "github.com/gomlx/special/backends/masked"
)
