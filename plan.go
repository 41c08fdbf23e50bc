// Copyright (c) 2026 Darren Soothill <darren [at] soothill [dot] com>
// All rights reserved.
// Use of this source code is governed by the MIT License.

package main

import "fmt"

// exabyte is the precondition boundary beyond which floor-scaled segment
// boundaries lose precision when computed in float64.
const exabyte = 1 << 50

// Segment is an immutable plan entity describing one contiguous byte range
// of the source object.
type Segment struct {
	Index     int
	FirstByte int64
	LastByte  int64 // inclusive
}

// Size returns the number of bytes covered by the segment.
func (s Segment) Size() int64 {
	return s.LastByte - s.FirstByte + 1
}

// RangeHeader formats the segment bounds as an HTTP Range header value.
func (s Segment) RangeHeader() string {
	return fmt.Sprintf("bytes=%d-%d", s.FirstByte, s.LastByte)
}

// segmentBoundary computes floor(size * n / N) the way the original s3cp.py
// scaling formula does, so that segment sizes differ by at most one byte.
func segmentBoundary(n, numSegments int, size int64) int64 {
	return int64(float64(size) * (float64(n) / float64(numSegments)))
}

// PlanSegments partitions [0, size) into ceil(size/maxSegmentSize) segments
// of at most maxSegmentSize bytes each, with boundaries chosen so that no
// two segments differ in size by more than one byte.
//
// size == 0 returns (nil, nil): zero segments, an empty destination.
// size must be strictly less than 2^50 or planning fails outright, since
// the floor-scaled boundary formula loses precision past that point.
func PlanSegments(size, maxSegmentSize int64) ([]Segment, error) {
	if size < 0 {
		return nil, wrapPlan(size, fmt.Errorf("negative size"))
	}
	if size >= exabyte {
		return nil, wrapPlan(size, fmt.Errorf("size exceeds 2^50 bytes; floor-scaled planning is unsafe beyond this point"))
	}
	if maxSegmentSize <= 0 {
		return nil, wrapPlan(size, fmt.Errorf("max segment size must be positive"))
	}
	if size == 0 {
		return nil, nil
	}

	numSegments := int((size + maxSegmentSize - 1) / maxSegmentSize)

	segments := make([]Segment, numSegments)
	for n := 0; n < numSegments; n++ {
		first := segmentBoundary(n, numSegments, size)
		var last int64
		if n+1 == numSegments {
			last = size - 1
		} else {
			last = segmentBoundary(n+1, numSegments, size) - 1
		}
		segments[n] = Segment{Index: n, FirstByte: first, LastByte: last}
	}
	return segments, nil
}
