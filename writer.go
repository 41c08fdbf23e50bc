// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// OrderingToken is a one-shot completion signal for a single segment.
// Segment n+1's Fetcher task must receive from segment n's token before
// entering the Concatenating state. The token is closed unconditionally on
// task exit (success, failure, or abort) by signalToken.
type OrderingToken chan struct{}

// NewOrderingToken allocates an unsignaled token.
func NewOrderingToken() OrderingToken { return make(OrderingToken) }

// signalToken closes tok exactly once. Closing a closed channel panics, so
// callers must only ever call this from the one task that owns tok — the
// Supervisor hands each token to exactly one Fetcher task.
func signalToken(tok OrderingToken) { close(tok) }

// awaitToken blocks until predecessor is signaled. A nil predecessor (the
// first segment) returns immediately.
func awaitToken(predecessor OrderingToken) {
	if predecessor == nil {
		return
	}
	<-predecessor
}

// Destination abstracts the two places a transfer can land: a regular file
// (via an atomically-renamed staging file) or standard output.
type Destination interface {
	// IsStdout reports whether this destination streams to stdout.
	IsStdout() bool
	// StagingPath is the path written to during the transfer. Empty for stdout.
	StagingPath() string
	// FinalPath is the path the staging file is renamed to on success. Empty for stdout.
	FinalPath() string
}

type fileDestination struct {
	path    string
	staging string
}

func (f *fileDestination) IsStdout() bool      { return false }
func (f *fileDestination) StagingPath() string { return f.staging }
func (f *fileDestination) FinalPath() string   { return f.path }

type stdoutDestination struct{}

func (stdoutDestination) IsStdout() bool      { return true }
func (stdoutDestination) StagingPath() string { return "" }
func (stdoutDestination) FinalPath() string   { return "" }

// NewDestination builds a Destination from the CLI argument: "-" means
// stdout, anything else is a file path staged at "<path>.download".
func NewDestination(arg string) Destination {
	if arg == "-" || arg == "" {
		return stdoutDestination{}
	}
	return &fileDestination{path: arg, staging: arg + ".download"}
}

// OrderedWriter owns the destination handle exclusively and guarantees that
// bytes for segment n are appended only after segment n-1's write has
// completed. It never shares the handle across goroutines concurrently:
// Append is only ever called after the caller has awaited its predecessor
// token, which serializes all calls to it.
type OrderedWriter struct {
	dest      Destination
	fileBufSz int
	file      *os.File
	bufw      *bufio.Writer
	stdout    io.Writer
	opened    bool
}

// NewOrderedWriter prepares (but does not yet open) a writer for dest.
func NewOrderedWriter(dest Destination, fileBufferSize int) *OrderedWriter {
	return &OrderedWriter{dest: dest, fileBufSz: fileBufferSize, stdout: os.Stdout}
}

// Append writes a single segment's bytes to the destination. Callers must
// only call this after awaiting the segment's predecessor token, so calls
// arrive strictly in ascending n.
func (w *OrderedWriter) Append(n int, data []byte) error {
	if w.dest.IsStdout() {
		_, err := w.stdout.Write(data)
		if err != nil {
			return wrapWrite(n, err)
		}
		return nil
	}

	if !w.opened {
		f, err := os.OpenFile(w.dest.StagingPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return wrapWrite(n, fmt.Errorf("opening staging file: %w", err))
		}
		w.file = f
		w.bufw = bufio.NewWriterSize(f, w.fileBufSz)
		w.opened = true
	}

	if _, err := w.bufw.Write(data); err != nil {
		return wrapWrite(n, fmt.Errorf("appending: %w", err))
	}
	return nil
}

// Finalize flushes and closes the staging file (no-op for stdout). Callers
// must call this exactly once after every segment has been appended.
func (w *OrderedWriter) Finalize() error {
	if w.dest.IsStdout() || !w.opened {
		return nil
	}
	if err := w.bufw.Flush(); err != nil {
		return wrapWrite(-1, fmt.Errorf("flushing staging file: %w", err))
	}
	if err := w.file.Close(); err != nil {
		return wrapWrite(-1, fmt.Errorf("closing staging file: %w", err))
	}
	return nil
}

// Abandon closes whatever handle is open without flushing, used on the
// failure path before the staging file is removed.
func (w *OrderedWriter) Abandon() {
	if w.opened && w.file != nil {
		w.file.Close()
	}
}

// safeRemove deletes path, tolerating the case where it never existed.
func safeRemove(path string) {
	if path == "" {
		return
	}
	os.Remove(path)
}
