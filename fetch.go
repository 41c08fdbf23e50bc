// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// countingReader wraps an io.Reader and increments a shared counter as
// bytes are read, giving live byte-level progress even within a single
// large segment.
type countingReader struct {
	r       io.Reader
	counter *atomic.Int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.counter.Add(int64(n))
	}
	return n, err
}

// FetchRange issues one ranged GET with inclusive byte bounds and returns
// the body. On success the returned buffer is exactly seg.Size() bytes
// long; any transport, authentication, HTTP, or short-body error is
// reported as a *FetchError naming the segment. progress, if non-nil, is
// incremented as bytes are received.
//
// There is no retry policy: a single failed fetch is fatal to the whole
// transfer (see the Supervisor's failure protocol). The pipeline is built
// to saturate bandwidth; a hung connection is cheaper to kill than to
// back off and retry.
func FetchRange(ctx context.Context, client s3API, bucket, key string, seg Segment, progress *atomic.Int64) ([]byte, error) {
	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(seg.RangeHeader()),
	})
	if err != nil {
		return nil, wrapFetch(seg.Index, fmt.Errorf("GetObject range %s: %w", seg.RangeHeader(), err))
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if progress != nil {
		body = &countingReader{r: resp.Body, counter: progress}
	}

	buf := make([]byte, seg.Size())
	n, err := io.ReadFull(body, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, wrapFetch(seg.Index, fmt.Errorf("reading body: %w", err))
	}
	if int64(n) != seg.Size() {
		return nil, wrapFetch(seg.Index, fmt.Errorf("short body: got %d bytes, want %d", n, seg.Size()))
	}
	return buf, nil
}
