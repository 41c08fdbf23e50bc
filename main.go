// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "usage: s3fetch [flags] <source-uri> [<destination>]\n")
		fmt.Fprintf(os.Stderr, "  <source-uri> is s3://bucket/key; destination defaults to \"-\" (stdout)\n")
		os.Exit(1)
	}

	log := newLogger()
	defer log.Sync()

	ctx := context.Background()

	bucket, key, err := ParseObjectURI(cfg.Source, cfg.Scheme)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	client, err := buildS3Client(ctx, cfg)
	if err != nil {
		log.Errorf("building S3 client: %v", err)
		os.Exit(1)
	}

	log.Infof("source endpoint: %s", endpointDisplay(cfg))
	log.Infof("object: %s://%s/%s", cfg.Scheme, bucket, key)

	dest := NewDestination(cfg.Destination)

	var progress atomic.Int64
	var onSizeKnown func(int64) func()
	if !dest.IsStdout() && !cfg.JSONOutput {
		onSizeKnown = func(size int64) func() {
			return startProgressReporter(log, size, &progress)
		}
	}

	start := time.Now()
	supervisor := NewSupervisor(client, bucket, key, cfg, log, &progress, onSizeKnown)
	result, runErr := supervisor.Run(ctx, dest)

	elapsed := time.Since(start)

	if cfg.JSONOutput {
		summary := Summary{
			Source:      cfg.Source,
			Destination: cfg.Destination,
			ObjectSize:  result.ObjectSize,
			Segments:    result.Segments,
			Elapsed:     elapsed.String(),
			Success:     runErr == nil,
		}
		if runErr != nil {
			summary.Error = runErr.Error()
		}
		printJSONSummary(summary)
	}

	if runErr != nil {
		log.Errorf("transfer failed: %v", runErr)
		os.Exit(1)
	}
}
