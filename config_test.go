package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSizeNamedPresets(t *testing.T) {
	v, err := parseByteSize("L")
	require.NoError(t, err)
	assert.Equal(t, int64(64<<20), v)
}

func TestParseByteSizeSuffixes(t *testing.T) {
	cases := map[string]int64{
		"64MB":  64 << 20,
		"1GiB":  1 << 30,
		"512KB": 512 << 10,
		"100":   100,
	}
	for in, want := range cases {
		v, err := parseByteSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, v, in)
	}
}

func TestParseByteSizeRejectsGarbage(t *testing.T) {
	_, err := parseByteSize("not-a-size")
	assert.Error(t, err)

	_, err = parseByteSize("")
	assert.Error(t, err)

	_, err = parseByteSize("-5MB")
	assert.Error(t, err)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig([]string{"s3://bucket/key"})
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/key", cfg.Source)
	assert.Equal(t, "-", cfg.Destination)
	assert.Equal(t, int64(128), cfg.MaxConcurrentRequests)
	assert.Equal(t, int64(128<<20), cfg.MaxSegmentSize)
}

func TestParseConfigPositionalDestination(t *testing.T) {
	cfg, err := parseConfig([]string{"s3://bucket/key", "/tmp/out.bin"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out.bin", cfg.Destination)
}

func TestParseConfigRequiresSource(t *testing.T) {
	_, err := parseConfig([]string{})
	assert.Error(t, err)
}

func TestParseConfigRejectsBadSegmentSize(t *testing.T) {
	_, err := parseConfig([]string{"--max-segment-size=nonsense", "s3://bucket/key"})
	assert.Error(t, err)
}
