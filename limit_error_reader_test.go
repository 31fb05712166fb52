package jtar

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadBytes(t *testing.T) {
	tests := []struct {
		name       string
		limit      int64
		input      string
		bufferSize int
		expectN    int64
		wantErr    bool
	}{
		{
			name:       "Under limit",
			limit:      10,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
		},
		{
			name:       "At limit",
			limit:      5,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
		},
		{
			name:       "Over limit",
			limit:      4,
			input:      "12345",
			bufferSize: 5,
			expectN:    4,
		},
		{
			name:       "Under limit with buffer",
			limit:      10,
			input:      "12345",
			bufferSize: 2,
			expectN:    2,
		},
		{
			name:       "Unlimited",
			limit:      -1,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
		},
		{
			name:       "Negative limit",
			limit:      -2,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := strings.NewReader(test.input)
			l := newLimitErrorReader(r, test.limit)
			buf := make([]byte, test.bufferSize)
			n, err := l.Read(buf)
			if (err != nil) != test.wantErr {
				t.Fatalf("Read() error = %v, wantErr %v", err, test.wantErr)
			}
			if int64(n) != test.expectN {
				t.Errorf("Read() = %v, want %v", n, test.expectN)
			}
			if l.ReadBytes() != test.expectN {
				t.Errorf("ReadBytes() = %v, want %v", l.ReadBytes(), test.expectN)
			}
		})
	}
}

// TestLimitErrorReaderReadAll reads the complete input through the limit
func TestLimitErrorReaderReadAll(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		input   string
		wantErr error
	}{
		{
			name:  "input shorter than limit",
			limit: 10,
			input: "12345",
		},
		{
			name:  "input equals limit",
			limit: 5,
			input: "12345",
		},
		{
			name:    "input exceeds limit",
			limit:   4,
			input:   "12345",
			wantErr: ErrMaxInputSizeExceeded,
		},
		{
			name:    "empty limit",
			limit:   0,
			input:   "1",
			wantErr: ErrMaxInputSizeExceeded,
		},
		{
			name:  "empty input and limit",
			limit: 0,
			input: "",
		},
		{
			name:  "negative limit",
			limit: -2,
			input: "12345",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := newLimitErrorReader(strings.NewReader(test.input), test.limit)
			_, err := io.ReadAll(l)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("ReadAll() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestLimitErrorWriter(t *testing.T) {
	tests := []struct {
		name     string
		limit    int64
		input    []string
		expected string
		wantErr  error
	}{
		{
			name:     "within limit",
			limit:    10,
			input:    []string{"12345"},
			expected: "12345",
		},
		{
			name:     "exactly limit",
			limit:    5,
			input:    []string{"123", "45"},
			expected: "12345",
		},
		{
			name:     "exceeds limit",
			limit:    4,
			input:    []string{"123", "45"},
			expected: "1234",
			wantErr:  ErrMaxExtractionSizeExceeded,
		},
		{
			name:     "write after limit",
			limit:    3,
			input:    []string{"123", "4"},
			expected: "123",
			wantErr:  ErrMaxExtractionSizeExceeded,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf := &strings.Builder{}
			w := limitWriter(buf, test.limit)
			var err error
			for _, in := range test.input {
				if _, err = w.Write([]byte(in)); err != nil {
					break
				}
			}
			if !errors.Is(err, test.wantErr) {
				t.Errorf("Write() error = %v, want %v", err, test.wantErr)
			}
			if buf.String() != test.expected {
				t.Errorf("written = %q, want %q", buf.String(), test.expected)
			}
		})
	}

	// negative limits disable the check
	buf := &strings.Builder{}
	if w := limitWriter(buf, -1); w != io.Writer(buf) {
		t.Errorf("limitWriter(-1) should return the writer unchanged")
	}
}
