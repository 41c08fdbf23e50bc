// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"fmt"

	"github.com/pkg/errors"
)

// ProbeError wraps a failure to determine the object's size.
type ProbeError struct {
	URI   string
	Cause error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.URI, e.Cause)
}

func (e *ProbeError) Unwrap() error { return e.Cause }

// PlanError reports that an object cannot be safely planned into segments.
type PlanError struct {
	Size  int64
	Cause error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("plan size=%d: %v", e.Size, e.Cause)
}

func (e *PlanError) Unwrap() error { return e.Cause }

// FetchError reports that the ranged GET for segment Index failed.
type FetchError struct {
	Index int
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch segment %d: %v", e.Index, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// WriteError reports a failure appending a segment, or finalizing the destination.
type WriteError struct {
	Index int // -1 for finalize-level errors not tied to one segment
	Cause error
}

func (e *WriteError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("write: %v", e.Cause)
	}
	return fmt.Sprintf("write segment %d: %v", e.Index, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

// TimeoutError reports that no admission progress was observed for the
// configured watchdog interval.
type TimeoutError struct {
	Seconds float64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("exceeded timeout of %.0fs without admission progress", e.Seconds)
}

// errAborted is the internal-only "prior errors" signal a task observes when
// another segment has already failed. It is never itself a top-level cause
// and must be unwrapped/ignored by callers before reporting to the user.
var errAborted = errors.New("aborted: prior segment failure")

func wrapProbe(uri string, cause error) error {
	return &ProbeError{URI: uri, Cause: errors.WithStack(cause)}
}

func wrapPlan(size int64, cause error) error {
	return &PlanError{Size: size, Cause: errors.WithStack(cause)}
}

func wrapFetch(index int, cause error) error {
	return &FetchError{Index: index, Cause: errors.WithStack(cause)}
}

func wrapWrite(index int, cause error) error {
	return &WriteError{Index: index, Cause: errors.WithStack(cause)}
}
