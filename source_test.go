package jtar

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackingReader records if it has been closed
type trackingReader struct {
	io.Reader
	closed   bool
	closeErr error
}

func (r *trackingReader) Close() error {
	r.closed = true
	return r.closeErr
}

func TestPipelineAcquire(t *testing.T) {
	data := packTar(t, tartestContent)
	td := &TelemetryData{}
	p := newPipeline(CompressionNone, NewConfig(), td, fromReader(bytes.NewReader(data)))

	r, err := p.Acquire()
	require.NoError(t, err)
	defer r.Close()

	_, err = p.Acquire()
	assert.ErrorIs(t, err, ErrPipelineAcquired)
}

func TestPipelineFromFile(t *testing.T) {
	data := compressGzip(t, packTar(t, tartestContent))
	path := writeTestFile(t, t.TempDir(), "tartest.tar.gz", data)

	td := &TelemetryData{}
	r, err := newPipeline(CompressionGzip, NewConfig(), td, fromFile(path)).Acquire()
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, packTar(t, tartestContent), got)

	require.NoError(t, r.Close())
	assert.Equal(t, int64(len(data)), td.InputSize)
	assert.Equal(t, "tar.gz", td.ExtractedType)
}

func TestPipelineFromFileMissing(t *testing.T) {
	_, err := newPipeline(CompressionNone, NewConfig(), &TelemetryData{}, fromFile("does-not-exist.tar")).Acquire()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPipelineDoesNotCloseCallerStream(t *testing.T) {
	src := &trackingReader{Reader: bytes.NewReader(packTar(t, tartestContent))}
	r, err := newPipeline(CompressionAuto, NewConfig(), &TelemetryData{}, fromReader(src)).Acquire()
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.False(t, src.closed)
}

func TestPipelineClosesAllStages(t *testing.T) {
	closeErr := errors.New("close failed")
	src := &trackingReader{Reader: bytes.NewReader(compressGzip(t, packTar(t, tartestContent))), closeErr: closeErr}
	open := func() (io.ReadCloser, error) { return src, nil }

	r, err := newPipeline(CompressionGzip, NewConfig(), &TelemetryData{}, open).Acquire()
	require.NoError(t, err)
	_, err = io.Copy(io.Discard, r)
	require.NoError(t, err)

	err = r.Close()
	assert.True(t, src.closed)
	assert.ErrorIs(t, err, closeErr)
}

func TestPipelineMaxInputSize(t *testing.T) {
	data := packTar(t, tartestContent)

	tests := []struct {
		name        string
		limit       int64
		expectError bool
	}{
		{name: "unlimited", limit: -1},
		{name: "input equals limit", limit: int64(len(data))},
		{name: "input exceeds limit", limit: int64(len(data)) - 1, expectError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			td := &TelemetryData{}
			cfg := NewConfig(WithMaxInputSize(tc.limit))
			r, err := newPipeline(CompressionNone, cfg, td, fromReader(bytes.NewReader(data))).Acquire()
			require.NoError(t, err)

			_, err = io.Copy(io.Discard, r)
			require.NoError(t, r.Close())
			if tc.expectError {
				assert.ErrorIs(t, err, ErrMaxInputSizeExceeded)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), td.InputSize)
		})
	}
}
