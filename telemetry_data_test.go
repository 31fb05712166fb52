package jtar

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// TestTelemetryDataString tests the String method of the data struct
func TestTelemetryDataString(t *testing.T) {
	td := TelemetryData{
		ExtractedType:       "tar",
		ExtractionDuration:  time.Duration(5 * time.Millisecond),
		ExtractionSize:      1024,
		ExtractedFiles:      5,
		ExtractedDirs:       1,
		ExtractionErrors:    1,
		LastExtractionError: fmt.Errorf("example error"),
		InputSize:           2048,
		UnsupportedFiles:    0,
	}

	expected := `{"last_extraction_error":"example error","extracted_dirs":1,"extraction_duration":5000000,"extraction_errors":1,"extracted_files":5,"extraction_size":1024,"extracted_type":"tar","input_size":2048,"unsupported_files":0,"last_unsupported_file":""}`
	if td.String() != expected {
		t.Errorf("Expected '%s', but got '%s'", expected, td.String())
	}
}

// TestTelemetryDataWithoutError tests the marshalling without an error
func TestTelemetryDataWithoutError(t *testing.T) {
	b, err := json.Marshal(&TelemetryData{ExtractedType: "tar.gz"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["last_extraction_error"] != "" {
		t.Errorf("unexpected error field: %v", m["last_extraction_error"])
	}
	if m["extracted_type"] != "tar.gz" {
		t.Errorf("unexpected type field: %v", m["extracted_type"])
	}
}

// TestTelemetryDataEquals tests the comparison of telemetry data
func TestTelemetryDataEquals(t *testing.T) {
	a := &TelemetryData{ExtractedFiles: 1, ExtractedType: "tar", ExtractionDuration: time.Second}
	b := &TelemetryData{ExtractedFiles: 1, ExtractedType: "tar", LastExtractionError: fmt.Errorf("ignored")}
	c := &TelemetryData{ExtractedFiles: 2, ExtractedType: "tar"}

	cases := []struct {
		name   string
		a, b   *TelemetryData
		expect bool
	}{
		{name: "durations and errors are ignored", a: a, b: b, expect: true},
		{name: "different counters", a: a, b: c, expect: false},
		{name: "both nil", expect: true},
		{name: "one nil", a: a, expect: false},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("tc %d", i), func(t *testing.T) {
			if got := tc.a.Equals(tc.b); got != tc.expect {
				t.Errorf("test case %d failed: %s", i, tc.name)
			}
		})
	}
}

// TestCaptureExtractionDuration tests the duration capturing with a fixed clock
func TestCaptureExtractionDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return start.Add(1500 * time.Millisecond) }
	defer func() { now = orig }()

	td := &TelemetryData{}
	captureExtractionDuration(td, start)
	if td.ExtractionDuration != 1500*time.Millisecond {
		t.Errorf("unexpected duration: %s", td.ExtractionDuration)
	}
}
