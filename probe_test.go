package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeSizeReturnsContentLength(t *testing.T) {
	client := newFakeS3(make([]byte, 12345))
	size, err := ProbeSize(context.Background(), client, "bucket", "key")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), size)
}

func TestProbeSizePropagatesHeadError(t *testing.T) {
	client := newFakeS3(nil)
	client.headErr = errors.New("access denied")

	_, err := ProbeSize(context.Background(), client, "bucket", "key")
	require.Error(t, err)
	var probeErr *ProbeError
	assert.ErrorAs(t, err, &probeErr)
}

func TestProbeSizeRejectsMissingContentLength(t *testing.T) {
	client := newFakeS3(make([]byte, 10))
	client.omitLength = true

	_, err := ProbeSize(context.Background(), client, "bucket", "key")
	assert.Error(t, err)
}
