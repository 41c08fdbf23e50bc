// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// pollInterval bounds how long the launch loop blocks between checks of
// TransferState.FirstFailure while waiting on admission. The spec requires
// this to be no more than one second so an abort elsewhere is observed
// promptly.
const pollInterval = 250 * time.Millisecond

// admissionResult is the outcome of one try_acquire poll.
type admissionResult int

const (
	admissionAcquired admissionResult = iota
	admissionTimeout
	admissionAborted
)

// AdmissionCapacity gates segment launch on two independent counting
// resources: in-flight ranged GET requests, and in-flight buffered
// segments awaiting an ordered write. A segment must hold both before its
// Fetcher task is spawned.
type AdmissionCapacity struct {
	requestSlots *semaphore.Weighted
	bufferSlots  *semaphore.Weighted
}

// NewAdmissionCapacity builds the two semaphores sized per configuration.
func NewAdmissionCapacity(maxConcurrentRequests, maxPendingAppends int64) *AdmissionCapacity {
	return &AdmissionCapacity{
		requestSlots: semaphore.NewWeighted(maxConcurrentRequests),
		bufferSlots:  semaphore.NewWeighted(maxPendingAppends),
	}
}

// acquireWithWatchdog polls sem.Acquire in pollInterval-sized slices,
// consulting state.FirstFailure between attempts so a failure elsewhere
// aborts pending admission immediately. deadline is the absolute wall-clock
// instant past which the caller should report a watchdog timeout.
func acquireWithWatchdog(ctx context.Context, sem *semaphore.Weighted, state *TransferState, deadline time.Time) admissionResult {
	for {
		if _, aborted := state.FirstFailure(); aborted {
			return admissionAborted
		}
		select {
		case <-ctx.Done():
			return admissionAborted
		default:
		}
		if time.Now().After(deadline) {
			return admissionTimeout
		}

		tick, cancel := context.WithTimeout(ctx, pollInterval)
		err := sem.Acquire(tick, 1)
		cancel()
		if err == nil {
			return admissionAcquired
		}
		// context.DeadlineExceeded just means this poll tick elapsed; loop
		// and check the abort flag and deadline again. A canceled parent
		// ctx is now caught directly above instead of spinning until the
		// deadline.
	}
}

// ReleaseRequest returns one request slot, as soon as the ranged GET
// completes (its body is in memory) regardless of outcome.
func (a *AdmissionCapacity) ReleaseRequest() { a.requestSlots.Release(1) }

// ReleaseBuffer returns one buffer slot, after the Ordered Writer has
// consumed the segment's bytes (or after the segment is discarded on
// failure/abort).
func (a *AdmissionCapacity) ReleaseBuffer() { a.bufferSlots.Release(1) }
