// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Config holds all runtime configuration: the blob-store collaborator
// settings (endpoint, region, credentials) plus the pipeline tunables from
// spec.md's admission, segmenting, and watchdog sections.
type Config struct {
	Source      string
	Destination string
	Scheme      string

	Endpoint        string
	Region          string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string

	MaxConcurrentRequests int64
	MaxSegmentSize        int64
	MaxPendingAppends     int64
	FileBufferSize        int64
	Timeout               time.Duration

	JSONOutput bool
}

func parseConfig(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("s3fetch", pflag.ContinueOnError)

	cfg := &Config{}
	var rawSegmentSize, rawFileBufferSize string
	var timeoutSeconds float64

	fs.StringVar(&cfg.Scheme, "scheme", "s3", "URI scheme expected for the source argument")
	fs.StringVar(&cfg.Endpoint, "endpoint", "", "S3-compatible endpoint URL (empty = AWS)")
	fs.StringVar(&cfg.Region, "region", "us-east-1", "AWS region")
	fs.StringVar(&cfg.Profile, "profile", "", "AWS named profile from ~/.aws/credentials or ~/.aws/config")
	fs.StringVar(&cfg.AccessKeyID, "access-key-id", "", "AWS access key ID (overrides profile)")
	fs.StringVar(&cfg.SecretAccessKey, "secret-access-key", "", "AWS secret access key (overrides profile)")
	fs.Int64Var(&cfg.MaxConcurrentRequests, "max-concurrent-requests", 128, "Maximum in-flight ranged GET requests")
	fs.StringVar(&rawSegmentSize, "max-segment-size", "128MB", "Maximum size of a single ranged GET (e.g. 64MB, 1GB) or named preset: XS=1MB S=4MB M=8MB L=64MB XL=256MB XXL=1GB")
	fs.Int64Var(&cfg.MaxPendingAppends, "max-pending-appends", 512, "Maximum number of fetched segments buffered awaiting their ordered write")
	fs.StringVar(&rawFileBufferSize, "file-buffer-size", "256MB", "Buffered writer size for file destinations")
	fs.Float64Var(&timeoutSeconds, "timeout", 60, "Seconds without admission progress before the transfer is aborted")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "Emit a JSON completion summary to stderr and disable the progress reporter")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	positional := fs.Args()
	if len(positional) < 1 {
		return nil, fmt.Errorf("usage: s3fetch <source-uri> [<destination>]")
	}
	cfg.Source = positional[0]
	cfg.Destination = "-"
	if len(positional) > 1 {
		cfg.Destination = positional[1]
	}

	var err error
	cfg.MaxSegmentSize, err = parseByteSize(rawSegmentSize)
	if err != nil {
		return nil, fmt.Errorf("--max-segment-size: %w", err)
	}
	if cfg.MaxSegmentSize < 1 {
		return nil, fmt.Errorf("--max-segment-size must be > 0")
	}

	cfg.FileBufferSize, err = parseByteSize(rawFileBufferSize)
	if err != nil {
		return nil, fmt.Errorf("--file-buffer-size: %w", err)
	}
	if cfg.FileBufferSize < 1 {
		return nil, fmt.Errorf("--file-buffer-size must be > 0")
	}

	if cfg.MaxConcurrentRequests < 1 {
		return nil, fmt.Errorf("--max-concurrent-requests must be >= 1")
	}
	if cfg.MaxPendingAppends < 1 {
		return nil, fmt.Errorf("--max-pending-appends must be >= 1")
	}
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("--timeout must be > 0")
	}
	cfg.Timeout = time.Duration(timeoutSeconds * float64(time.Second))

	return cfg, nil
}

// namedSizes maps single-word preset names to their byte values.
// These are checked before numeric parsing so bare letters like "M" are unambiguous.
var namedSizes = map[string]int64{
	"XS":  1 << 20,   //   1 MB
	"S":   4 << 20,   //   4 MB
	"M":   8 << 20,   //   8 MB
	"L":   64 << 20,  //  64 MB
	"XL":  256 << 20, // 256 MB
	"XXL": 1 << 30,   //   1 GB
}

// parseByteSize parses human-friendly byte size strings like "64MB", "1GiB", "512KB",
// or a named preset: XS, S, M, L, XL, XXL.
// Both SI (MB = 1024^2) and IEC (MiB = 1024^2) suffixes are treated as 1024-based.
func parseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	// Check named presets first (case-insensitive).
	if v, ok := namedSizes[strings.ToUpper(s)]; ok {
		return v, nil
	}

	suffixMap := map[string]int64{
		"B":   1,
		"KB":  1 << 10,
		"KIB": 1 << 10,
		"MB":  1 << 20,
		"MIB": 1 << 20,
		"GB":  1 << 30,
		"GIB": 1 << 30,
		"TB":  1 << 40,
		"TIB": 1 << 40,
	}

	upper := strings.ToUpper(s)
	var suffix string
	var numStr string

	for k := range suffixMap {
		if strings.HasSuffix(upper, k) {
			// Prefer the longest matching suffix
			if len(k) > len(suffix) {
				suffix = k
				numStr = strings.TrimSpace(s[:len(s)-len(k)])
			}
		}
	}

	if suffix == "" {
		// No suffix — treat as raw bytes
		numStr = s
		suffix = "B"
	}

	if numStr == "" {
		return 0, fmt.Errorf("no numeric value in %q", s)
	}

	var value float64
	if _, err := fmt.Sscanf(numStr, "%f", &value); err != nil {
		return 0, fmt.Errorf("cannot parse number %q in %q", numStr, s)
	}
	if value <= 0 {
		return 0, fmt.Errorf("value must be positive in %q", s)
	}

	multiplier := suffixMap[suffix]
	return int64(value * float64(multiplier)), nil
}
