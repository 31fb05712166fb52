// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"context"
	"encoding/json"
	"time"
)

// TelemetryData holds all telemetry data of an extraction.
type TelemetryData struct {
	// ExtractedDirs is the number of directory entries that have been created
	ExtractedDirs int64 `json:"extracted_dirs"`

	// ExtractionDuration is the time it took to extract the archive
	ExtractionDuration time.Duration `json:"extraction_duration"`

	// ExtractionErrors is the number of errors during extraction
	ExtractionErrors int64 `json:"extraction_errors"`

	// ExtractedFiles is the number of extracted regular files
	ExtractedFiles int64 `json:"extracted_files"`

	// ExtractionSize is the size of the extracted files
	ExtractionSize int64 `json:"extraction_size"`

	// ExtractedType is the type of the archive, e.g. tar or tar.gz
	ExtractedType string `json:"extracted_type"`

	// InputSize is the size of the input before decompression
	InputSize int64 `json:"input_size"`

	// LastExtractionError is the last error during extraction
	LastExtractionError error `json:"last_extraction_error"`

	// UnsupportedFiles is the number of skipped unsupported entries
	UnsupportedFiles int64 `json:"unsupported_files"`

	// LastUnsupportedFile is the name of the last skipped unsupported entry
	LastUnsupportedFile string `json:"last_unsupported_file"`
}

// String returns a string representation of [TelemetryData].
func (td TelemetryData) String() string {
	b, _ := json.Marshal(td)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (td TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if td.LastExtractionError != nil {
		lastError = td.LastExtractionError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastExtractionError string `json:"last_extraction_error"`
		*Alias
	}{
		LastExtractionError: lastError,
		Alias:               (*Alias)(&td),
	})
}

// TelemetryHook is a function type that performs operations on [TelemetryData]
// after an extraction has finished which can be used to submit the [TelemetryData]
// to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)

// Equals returns true if the counters and the type of the given [TelemetryData]
// are equal to the receiver. Durations and errors are not compared.
func (td *TelemetryData) Equals(other *TelemetryData) bool {
	if td == nil && other == nil {
		return true
	}
	if td == nil || other == nil {
		return false
	}
	return td.ExtractedDirs == other.ExtractedDirs &&
		td.ExtractionErrors == other.ExtractionErrors &&
		td.ExtractedFiles == other.ExtractedFiles &&
		td.ExtractionSize == other.ExtractionSize &&
		td.ExtractedType == other.ExtractedType &&
		td.InputSize == other.InputSize &&
		td.UnsupportedFiles == other.UnsupportedFiles &&
		td.LastUnsupportedFile == other.LastUnsupportedFile
}

// now is a function point that returns time.Now to the caller.
var now = time.Now

// captureExtractionDuration captures the duration of the extraction
func captureExtractionDuration(td *TelemetryData, start time.Time) {
	td.ExtractionDuration = now().Sub(start)
}
