// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package telemetry

import (
	"context"

	"github.com/mknecht/jtar"
)

// LogHook returns a hook that logs the telemetry data at info level.
func LogHook(logger jtar.Logger) jtar.TelemetryHook {
	return func(ctx context.Context, td *jtar.TelemetryData) {
		logger.Info("extraction finished", "telemetry", td.String())
	}
}

// Chain returns a hook that calls all hooks in order. Nil hooks are skipped.
func Chain(hooks ...jtar.TelemetryHook) jtar.TelemetryHook {
	return func(ctx context.Context, td *jtar.TelemetryData) {
		for _, hook := range hooks {
			if hook != nil {
				hook(ctx, td)
			}
		}
	}
}
