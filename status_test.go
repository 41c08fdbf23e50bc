package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLog(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return logger.Sugar()
}

func TestSetStateHappyPath(t *testing.T) {
	state := NewTransferState(testLog(t))

	require.NoError(t, state.SetState(0, StatusFetching, nil))
	require.NoError(t, state.SetState(0, StatusAwaitingPredecessor, nil))
	require.NoError(t, state.SetState(0, StatusConcatenating, nil))
	require.NoError(t, state.SetState(0, StatusSucceeded, nil))

	_, failed := state.FirstFailure()
	assert.False(t, failed)
	assert.True(t, state.AllSucceeded(1))
}

func TestSetStateElectsFirstFailure(t *testing.T) {
	state := NewTransferState(testLog(t))

	cause := errors.New("boom")
	require.NoError(t, state.SetState(2, StatusFetching, nil))
	require.NoError(t, state.SetState(2, StatusFailed, cause))

	idx, failed := state.FirstFailure()
	require.True(t, failed)
	assert.Equal(t, 2, idx)
	assert.Equal(t, cause, state.Err())
}

func TestSetStateSecondFailureDoesNotOverrideFirst(t *testing.T) {
	state := NewTransferState(testLog(t))

	first := errors.New("first failure")
	second := errors.New("second failure")
	require.NoError(t, state.SetState(1, StatusFailed, first))
	err := state.SetState(5, StatusFailed, second)
	require.NoError(t, err)

	idx, failed := state.FirstFailure()
	require.True(t, failed)
	assert.Equal(t, 1, idx)
	assert.Equal(t, first, state.Err())
}

func TestSetStateAbortsOtherSegmentsAfterFailure(t *testing.T) {
	state := NewTransferState(testLog(t))

	require.NoError(t, state.SetState(0, StatusFailed, errors.New("dead")))

	err := state.SetState(1, StatusFetching, nil)
	require.ErrorIs(t, err, errAborted)

	err = state.SetState(1, StatusConcatenating, nil)
	require.ErrorIs(t, err, errAborted)
}

func TestSetStateRejectsSuccessAfterFailure(t *testing.T) {
	// A segment already past StatusConcatenating when another segment fails
	// may not record StatusSucceeded: once a failure is recorded, no segment
	// can claim success.
	state := NewTransferState(testLog(t))

	require.NoError(t, state.SetState(0, StatusFetching, nil))
	require.NoError(t, state.SetState(0, StatusConcatenating, nil))
	require.NoError(t, state.SetState(1, StatusFailed, errors.New("dead")))

	err := state.SetState(0, StatusSucceeded, nil)
	assert.ErrorIs(t, err, errAborted)
}

func TestMarkTimeoutElectsTimeoutSegment(t *testing.T) {
	state := NewTransferState(testLog(t))

	state.markTimeout(&TimeoutError{Seconds: 60})
	idx, failed := state.FirstFailure()
	require.True(t, failed)
	assert.Equal(t, timeoutSegment, idx)
}

func TestMarkTimeoutDoesNotOverrideExistingFailure(t *testing.T) {
	state := NewTransferState(testLog(t))

	cause := errors.New("segment died first")
	require.NoError(t, state.SetState(3, StatusFailed, cause))
	state.markTimeout(&TimeoutError{Seconds: 60})

	idx, _ := state.FirstFailure()
	assert.Equal(t, 3, idx)
	assert.Equal(t, cause, state.Err())
}

func TestAllSucceededRequiresExactCount(t *testing.T) {
	state := NewTransferState(testLog(t))
	require.NoError(t, state.SetState(0, StatusSucceeded, nil))
	assert.False(t, state.AllSucceeded(2))
	assert.True(t, state.AllSucceeded(1))
}

func TestSegmentStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "lost in the weeds", SegmentStatus(99).String())
}
