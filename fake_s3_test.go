package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 is an in-memory stand-in for the subset of *s3.Client the pipeline
// uses. It serves ranged GETs out of a fixed byte slice and can be told to
// fail specific ranges or every GET, to exercise the failure protocol
// without a network.
type fakeS3 struct {
	content []byte

	mu          sync.Mutex
	failRanges  map[string]error
	failAllGets bool
	getCalls    atomic.Int64
	headErr     error
	omitLength  bool
}

func newFakeS3(content []byte) *fakeS3 {
	return &fakeS3{content: content, failRanges: make(map[string]error)}
}

func (f *fakeS3) failRange(rng string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRanges[rng] = err
}

func (f *fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	out := &s3.HeadObjectOutput{}
	if !f.omitLength {
		n := int64(len(f.content))
		out.ContentLength = &n
	}
	return out, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.getCalls.Add(1)

	f.mu.Lock()
	failAll := f.failAllGets
	rngErr := f.failRanges[*params.Range]
	f.mu.Unlock()

	if failAll {
		return nil, fmt.Errorf("injected failure: all GETs failing")
	}
	if rngErr != nil {
		return nil, rngErr
	}

	first, last, err := parseRangeHeader(*params.Range)
	if err != nil {
		return nil, err
	}
	if first < 0 || last >= int64(len(f.content)) || first > last {
		return nil, fmt.Errorf("range out of bounds: %s", *params.Range)
	}

	body := f.content[first : last+1]
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(body))),
	}, nil
}

// parseRangeHeader parses "bytes=first-last" back into integers for the fake
// store; real S3 never needs this, only the test double does.
func parseRangeHeader(h string) (int64, int64, error) {
	h = strings.TrimPrefix(h, "bytes=")
	parts := strings.SplitN(h, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed range header %q", h)
	}
	first, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	last, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return first, last, nil
}
