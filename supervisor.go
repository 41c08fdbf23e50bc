// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Supervisor owns the shared failure flag, per-segment status map, deadline
// watchdog, and finalization (rename of staging file on success, cleanup on
// failure) for a single transfer.
type Supervisor struct {
	client      s3API
	bucket      string
	key         string
	cfg         *Config
	log         *zap.SugaredLogger
	progress    *atomic.Int64
	onSizeKnown func(size int64) (stop func())
}

// NewSupervisor builds a Supervisor for one bucket/key transfer. progress,
// if non-nil, is incremented as segment bytes arrive, for live reporting.
// onSizeKnown, if non-nil, is invoked exactly once with the probed size
// (the size is sampled only once for the whole transfer); its returned stop
// function is deferred until Run completes.
func NewSupervisor(client s3API, bucket, key string, cfg *Config, log *zap.SugaredLogger, progress *atomic.Int64, onSizeKnown func(int64) func()) *Supervisor {
	return &Supervisor{client: client, bucket: bucket, key: key, cfg: cfg, log: log, progress: progress, onSizeKnown: onSizeKnown}
}

// Result reports the outcome of one Supervisor.Run call.
type Result struct {
	ObjectSize int64
	Segments   int
}

// Run drives the whole pipeline: probe, plan, launch-loop, finalize. It
// returns the first real error (probe, plan, fetch, write, or watchdog
// timeout); the internal "prior errors" abort signal never escapes this
// function.
func (s *Supervisor) Run(ctx context.Context, dest Destination) (Result, error) {
	size, err := ProbeSize(ctx, s.client, s.bucket, s.key)
	if err != nil {
		return Result{}, err
	}
	s.log.Infof("object size is %s (%d bytes)", humanBytes(size), size)

	if s.onSizeKnown != nil {
		if stop := s.onSizeKnown(size); stop != nil {
			defer stop()
		}
	}

	segments, err := PlanSegments(size, s.cfg.MaxSegmentSize)
	if err != nil {
		return Result{ObjectSize: size}, err
	}
	s.log.Infof("fetching %d segments", len(segments))
	result := Result{ObjectSize: size, Segments: len(segments)}

	if dest.IsStdout() {
		// nothing to stage
	} else {
		safeRemove(dest.StagingPath())
	}

	if len(segments) == 0 {
		return result, s.finalizeEmpty(dest)
	}

	writer := NewOrderedWriter(dest, int(s.cfg.FileBufferSize))
	state := NewTransferState(s.log)
	admission := NewAdmissionCapacity(s.cfg.MaxConcurrentRequests, s.cfg.MaxPendingAppends)

	group, groupCtx := errgroup.WithContext(ctx)

	deadline := time.Now().Add(s.cfg.Timeout)
	var predecessor OrderingToken

	for _, seg := range segments {
		res := acquireWithWatchdog(groupCtx, admission.requestSlots, state, deadline)
		if res == admissionAborted {
			break
		}
		if res == admissionTimeout {
			state.markTimeout(&TimeoutError{Seconds: s.cfg.Timeout.Seconds()})
			break
		}
		deadline = time.Now().Add(s.cfg.Timeout)

		res = acquireWithWatchdog(groupCtx, admission.bufferSlots, state, deadline)
		if res == admissionAborted {
			admission.ReleaseRequest()
			break
		}
		if res == admissionTimeout {
			admission.ReleaseRequest()
			state.markTimeout(&TimeoutError{Seconds: s.cfg.Timeout.Seconds()})
			break
		}
		deadline = time.Now().Add(s.cfg.Timeout)

		own := NewOrderingToken()
		pred := predecessor
		seg := seg
		group.Go(func() error {
			return s.runTask(groupCtx, seg, pred, own, writer, state, admission)
		})
		predecessor = own
	}

	groupErr := group.Wait()

	success := state.AllSucceeded(len(segments))
	if !success {
		writer.Abandon()
		if !dest.IsStdout() {
			safeRemove(dest.StagingPath())
		}
		if _, failed := state.FirstFailure(); failed {
			if cause := state.Err(); cause != nil {
				return result, cause
			}
		}
		if groupErr != nil {
			return result, groupErr
		}
		return result, &WriteError{Index: -1, Cause: os.ErrInvalid}
	}

	if err := writer.Finalize(); err != nil {
		return result, err
	}
	return result, s.finalizeSuccess(dest)
}

// finalizeSuccess performs the success-path rename (file destinations only;
// stdout needs no action) and logs completion.
func (s *Supervisor) finalizeSuccess(dest Destination) error {
	if !dest.IsStdout() {
		if err := os.Rename(dest.StagingPath(), dest.FinalPath()); err != nil {
			return wrapWrite(-1, err)
		}
	}
	s.log.Info("transfer complete")
	return nil
}

// finalizeEmpty handles the zero-segment case directly: no segment ever
// wrote to a staging file, so there is nothing to rename. File
// destinations get an empty file created straight at FinalPath; stdout
// needs no action at all.
func (s *Supervisor) finalizeEmpty(dest Destination) error {
	if !dest.IsStdout() {
		f, err := os.OpenFile(dest.FinalPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return wrapWrite(-1, err)
		}
		if err := f.Close(); err != nil {
			return wrapWrite(-1, err)
		}
	}
	s.log.Info("transfer complete")
	return nil
}

// runTask is the body of one segment's Fetcher task: fetch, await
// predecessor, write, record terminal state. Both admission slots are
// released exactly once no matter which path is taken, and the segment's
// own OrderingToken is always signaled on exit so successors never
// deadlock.
func (s *Supervisor) runTask(
	ctx context.Context,
	seg Segment,
	predecessor OrderingToken,
	own OrderingToken,
	writer *OrderedWriter,
	state *TransferState,
	admission *AdmissionCapacity,
) error {
	requestHeld := true
	bufferHeld := true
	defer func() {
		if requestHeld {
			admission.ReleaseRequest()
		}
		if bufferHeld {
			admission.ReleaseBuffer()
		}
		signalToken(own)
	}()

	if err := state.SetState(seg.Index, StatusFetching, nil); err != nil {
		return nil
	}

	data, err := FetchRange(ctx, s.client, s.bucket, s.key, seg, s.progress)
	admission.ReleaseRequest()
	requestHeld = false
	if err != nil {
		state.SetState(seg.Index, StatusFailed, err)
		return err
	}

	if err := state.SetState(seg.Index, StatusAwaitingPredecessor, nil); err != nil {
		return nil
	}
	awaitToken(predecessor)

	if err := state.SetState(seg.Index, StatusConcatenating, nil); err != nil {
		return nil
	}

	werr := writer.Append(seg.Index, data)
	admission.ReleaseBuffer()
	bufferHeld = false
	if werr != nil {
		state.SetState(seg.Index, StatusFailed, werr)
		return werr
	}

	if err := state.SetState(seg.Index, StatusSucceeded, nil); err != nil {
		return nil
	}
	return nil
}
