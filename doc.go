// Package jtar extracts tar archives, optionally compressed, from a file or a
// stream into a target directory.
//
// The archive bytes flow through a fixed pipeline: the byte source, an optional
// decompression stage, a read-ahead buffer and the tar decoder. Every entry the
// decoder yields is materialized below the target directory, in archive order.
// Entry names are untrusted; names that would escape the target directory are
// rejected with [ErrPathTraversal].
//
// Extraction is tuned with a [Config], which is created with [NewConfig] and
// adjusted in the option pattern style. Telemetry data of each extraction is
// handed to the [TelemetryHook] of the configuration.
package jtar
