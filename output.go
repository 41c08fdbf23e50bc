// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// humanBytes renders a byte count using IEC units (MiB, GiB, ...), the same
// convention the original s3cp.py size announcement used.
func humanBytes(n int64) string {
	if n < 0 {
		return fmt.Sprintf("%d B", n)
	}
	return humanize.IBytes(uint64(n))
}

// Summary is the JSON completion report emitted with --json.
type Summary struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	ObjectSize  int64  `json:"object_size_bytes"`
	Segments    int    `json:"segments"`
	Elapsed     string `json:"elapsed"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

// printJSONSummary writes the completion summary to stderr, alongside every
// other diagnostic — stdout, when used as the transfer destination, must
// carry only object bytes.
func printJSONSummary(s Summary) {
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		fmt.Fprintf(os.Stderr, "JSON encode error: %v\n", err)
	}
}

// startProgressReporter spawns a goroutine that logs a transfer-rate line
// every second until the returned stop function is called. It is only
// started for file destinations with a known total size; streaming to
// stdout skips it so diagnostics never interleave with object bytes
// written to the same terminal.
func startProgressReporter(log *zap.SugaredLogger, totalBytes int64, progress *atomic.Int64) func() {
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		start := time.Now()
		prevBytes := int64(0)
		prevTime := start

		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				cur := progress.Load()
				interval := now.Sub(prevTime).Seconds()
				var rate float64
				if interval > 0 {
					rate = float64(cur-prevBytes) / interval
				}
				pct := 0.0
				if totalBytes > 0 {
					pct = float64(cur) / float64(totalBytes) * 100
				}
				log.Infof("%s / %s (%.1f%%) — %s/s", humanBytes(cur), humanBytes(totalBytes), pct, humanBytes(int64(rate)))
				prevBytes = cur
				prevTime = now
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
