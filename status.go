// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"sync"

	"go.uber.org/zap"
)

// SegmentStatus is the per-segment lifecycle value tracked by the Supervisor.
type SegmentStatus int

const (
	StatusPending SegmentStatus = iota
	StatusFetching
	StatusAwaitingPredecessor
	StatusConcatenating
	StatusSucceeded
	StatusFailed
)

func (s SegmentStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFetching:
		return "fetching"
	case StatusAwaitingPredecessor:
		return "awaiting predecessor"
	case StatusConcatenating:
		return "concatenating"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "lost in the weeds"
	}
}

// timeoutSegment is the sentinel first-failure index used when the
// Supervisor's watchdog fires rather than any individual segment failing.
const timeoutSegment = -1

// TransferState is the process-wide mutable record shared by every task in
// a transfer. Once firstFailure is set it is never cleared, and no further
// task may transition to any non-Failed state (see SetState).
type TransferState struct {
	mu           sync.Mutex
	status       map[int]SegmentStatus
	firstFailure *int
	firstFailErr error
	log          *zap.SugaredLogger
}

// NewTransferState builds an empty status map ready to track N segments.
func NewTransferState(log *zap.SugaredLogger) *TransferState {
	return &TransferState{
		status: make(map[int]SegmentStatus),
		log:    log,
	}
}

// FirstFailure reports whether the transfer has already failed, and if so
// at which segment index (or timeoutSegment for a watchdog timeout).
func (t *TransferState) FirstFailure() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.firstFailure == nil {
		return 0, false
	}
	return *t.firstFailure, true
}

// Err returns the error that first caused the transfer to abort, if any.
func (t *TransferState) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.firstFailErr
}

// SetState performs the single guarded state transition described by the
// status/failure protocol: it atomically reads the current state, enforces
// that no segment may claim progress (or success) after a global abort, and
// elects the first Failed transition as the transfer's first failure.
//
// Callers must treat a non-nil error as errAborted and unwind without
// writing, releasing whatever capacity they hold.
func (t *TransferState) SetState(n int, s SegmentStatus, cause error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.status[n]
	if !ok {
		last = StatusPending
	}

	if t.firstFailure != nil && s != StatusFailed {
		if s != StatusSucceeded {
			t.log.Warnf("terminating segment %d after %s due to error in segment %d", n, last, *t.firstFailure)
		}
		return errAborted
	}

	if s == StatusFailed && t.firstFailure == nil {
		t.log.Errorf("segment %d failed after %s: %v", n, last, cause)
		failed := n
		t.firstFailure = &failed
		t.firstFailErr = cause
	}

	t.status[n] = s
	return nil
}

// markTimeout elects the watchdog as the transfer's first failure, unless a
// segment has already failed first.
func (t *TransferState) markTimeout(cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.firstFailure != nil {
		return
	}
	failed := timeoutSegment
	t.firstFailure = &failed
	t.firstFailErr = cause
}

// AllSucceeded reports whether exactly n segments are tracked and every one
// of them reached StatusSucceeded.
func (t *TransferState) AllSucceeded(n int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.status) != n {
		return false
	}
	for _, s := range t.status {
		if s != StatusSucceeded {
			return false
		}
	}
	return true
}
