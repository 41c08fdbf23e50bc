// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"fmt"
	"strings"
)

// ParseObjectURI splits a "scheme://bucket/key" source URI into its bucket
// and key components. defaultScheme is accepted bare (no "://") so that a
// plain "bucket/key" argument also works; any other scheme is rejected.
func ParseObjectURI(raw, defaultScheme string) (bucket, key string, err error) {
	rest := raw
	if idx := strings.Index(raw, "://"); idx >= 0 {
		scheme := raw[:idx]
		if scheme != defaultScheme {
			return "", "", fmt.Errorf("unsupported scheme %q (expected %q)", scheme, defaultScheme)
		}
		rest = raw[idx+3:]
	}

	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed object URI %q: expected %s://bucket/key", raw, defaultScheme)
	}
	return parts[0], parts[1], nil
}
