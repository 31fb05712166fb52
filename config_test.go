package jtar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"testing"
)

// TestCheckMaxFiles implements test cases
func TestCheckMaxFiles(t *testing.T) {
	// prepare test cases
	cases := []struct {
		name        string
		input       int64
		config      *Config
		expectError bool
	}{
		{
			name:        "less files then maximum",
			input:       5,                           // within limit
			config:      NewConfig(WithMaxFiles(10)), // 10
			expectError: false,
		},
		{
			name:        "exactly maximum",
			input:       10,
			config:      NewConfig(WithMaxFiles(10)),
			expectError: false,
		},
		{
			name:        "more files then maximum",
			input:       15,                          // over limit
			config:      NewConfig(WithMaxFiles(10)), // 10
			expectError: true,
		},
		{
			name:        "disable file counter check",
			input:       5000,                        // ignored
			config:      NewConfig(WithMaxFiles(-1)), // disable
			expectError: false,
		},
		{
			name:        "negative value disables check",
			input:       0,
			config:      NewConfig(WithMaxFiles(-2)),
			expectError: false,
		},
		{
			name:        "default is unlimited",
			input:       5000,
			config:      NewConfig(),
			expectError: false,
		},
	}

	// run cases
	for i, tc := range cases {
		t.Run(fmt.Sprintf("tc %d", i), func(t *testing.T) {
			err := tc.config.CheckMaxFiles(tc.input)
			if got := err != nil; got != tc.expectError {
				t.Errorf("test case %d failed: %s", i, tc.name)
			}
			if err != nil && !errors.Is(err, ErrMaxFilesExceeded) {
				t.Errorf("test case %d failed: unexpected error %v", i, err)
			}
		})
	}
}

// TestCheckExtractionSize implements test cases
func TestCheckExtractionSize(t *testing.T) {
	// prepare test cases
	cases := []struct {
		name        string
		input       int64
		config      *Config
		expectError bool
	}{
		{
			name:        "file size less then maximum",
			input:       1 << 9, // 512b
			config:      NewConfig(WithMaxExtractionSize(1 << 10)),
			expectError: false,
		},
		{
			name:        "file size over maximum",
			input:       1 << 20, // 1mb
			config:      NewConfig(WithMaxExtractionSize(1 << 10)),
			expectError: true,
		},
		{
			name:        "disable check",
			input:       1 << 30, // 1gb
			config:      NewConfig(WithMaxExtractionSize(-1)),
			expectError: false,
		},
		{
			name:        "negative value disables check",
			input:       0,
			config:      NewConfig(WithMaxExtractionSize(-2)),
			expectError: false,
		},
	}

	// run cases
	for i, tc := range cases {
		t.Run(fmt.Sprintf("tc %d", i), func(t *testing.T) {
			err := tc.config.CheckExtractionSize(tc.input)
			if got := err != nil; got != tc.expectError {
				t.Errorf("test case %d failed: %s", i, tc.name)
			}
			if err != nil && !errors.Is(err, ErrMaxExtractionSizeExceeded) {
				t.Errorf("test case %d failed: unexpected error %v", i, err)
			}
		})
	}
}

// TestConfigDefaults checks the values of an unmodified configuration
func TestConfigDefaults(t *testing.T) {
	c := NewConfig()

	if c.BufferSize() != 4096 {
		t.Errorf("unexpected buffer size: %d", c.BufferSize())
	}
	if c.ContinueOnUnsupportedFiles() {
		t.Errorf("unsupported files must fail by default")
	}
	if c.CreateDirMode() != fs.FileMode(0755) {
		t.Errorf("unexpected dir mode: %s", c.CreateDirMode())
	}
	if c.FileMode() != fs.FileMode(0644) {
		t.Errorf("unexpected file mode: %s", c.FileMode())
	}
	if c.MaxExtractionSize() != -1 || c.MaxFiles() != -1 || c.MaxInputSize() != -1 {
		t.Errorf("limits must be disabled by default")
	}
	if c.PreserveMode() {
		t.Errorf("mode must not be preserved by default")
	}
	if c.Logger() == nil || c.TelemetryHook() == nil {
		t.Errorf("logger and telemetry hook must be set")
	}
}

// TestConfigOptions checks that options adjust the configuration
func TestConfigOptions(t *testing.T) {
	var hookCalled bool
	logger := slog.Default()

	c := NewConfig(
		WithBufferSize(1),
		WithContinueOnUnsupportedFiles(true),
		WithCreateDirMode(0700),
		WithFileMode(0600),
		WithLogger(logger),
		WithMaxExtractionSize(1024),
		WithMaxFiles(10),
		WithMaxInputSize(2048),
		WithPreserveMode(true),
		WithTelemetryHook(func(ctx context.Context, td *TelemetryData) { hookCalled = true }),
	)

	if c.BufferSize() != 1 {
		t.Errorf("unexpected buffer size: %d", c.BufferSize())
	}
	if !c.ContinueOnUnsupportedFiles() {
		t.Errorf("unsupported files should be skipped")
	}
	if c.CreateDirMode() != fs.FileMode(0700) || c.FileMode() != fs.FileMode(0600) {
		t.Errorf("unexpected modes: %s %s", c.CreateDirMode(), c.FileMode())
	}
	if c.Logger() != Logger(logger) {
		t.Errorf("logger not set")
	}
	if c.MaxExtractionSize() != 1024 || c.MaxFiles() != 10 || c.MaxInputSize() != 2048 {
		t.Errorf("unexpected limits")
	}
	if !c.PreserveMode() {
		t.Errorf("mode should be preserved")
	}
	c.TelemetryHook()(context.Background(), &TelemetryData{})
	if !hookCalled {
		t.Errorf("telemetry hook not called")
	}
}

// TestConfigIgnoresInvalidOptions checks that invalid values keep the defaults
func TestConfigIgnoresInvalidOptions(t *testing.T) {
	c := NewConfig(WithBufferSize(0), WithBufferSize(-5), WithLogger(nil), WithTelemetryHook(nil))
	if c.BufferSize() != defaultBufferSize {
		t.Errorf("unexpected buffer size: %d", c.BufferSize())
	}
	if c.Logger() == nil {
		t.Errorf("logger must not be nil")
	}
	if c.TelemetryHook() == nil {
		t.Errorf("telemetry hook must not be nil")
	}
}
