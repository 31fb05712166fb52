// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package telemetry provides [jtar.TelemetryHook] implementations that consume
// the telemetry data of an extraction.
//
// [LogHook] writes the data to a logger, [EventsHook] publishes it as an event
// to Amazon EventBridge and [Chain] combines several hooks.
package telemetry
