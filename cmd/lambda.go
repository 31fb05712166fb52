// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/mknecht/jtar"
	"github.com/mknecht/jtar/telemetry"
	"github.com/pkg/errors"
)

// envEventsBus names the environment variable with the event bus that receives
// the telemetry data of the lambda extractions
const envEventsBus = "JTAR_EVENTS_BUS"

// Request is the event of the lambda function. Paths refer to a file system
// that is attached to the function.
type Request struct {
	Archive     string `json:"archive"`
	Destination string `json:"destination"`
	Compression string `json:"compression"`
}

// Handler extracts the archive of a request and returns its telemetry data.
type Handler func(ctx context.Context, req Request) (*jtar.TelemetryData, error)

// NewHandler returns a lambda handler. hook receives the telemetry data of every
// extraction and may be nil.
func NewHandler(logger jtar.Logger, hook jtar.TelemetryHook) Handler {
	return func(ctx context.Context, req Request) (*jtar.TelemetryData, error) {
		if len(req.Archive) == 0 {
			return nil, errors.Wrap(jtar.ErrInvalidArgument, "archive is missing")
		}
		if len(req.Destination) == 0 {
			return nil, errors.Wrap(jtar.ErrInvalidArgument, "destination is missing")
		}

		comp := jtar.CompressionFromName(req.Archive)
		if len(req.Compression) > 0 {
			var err error
			if comp, err = jtar.ParseCompression(req.Compression); err != nil {
				return nil, errors.Wrap(err, "invalid compression")
			}
		}

		// capture telemetry data of the run
		var result jtar.TelemetryData
		capture := func(ctx context.Context, td *jtar.TelemetryData) {
			result = *td
		}
		cfg := jtar.NewConfig(
			jtar.WithLogger(logger),
			jtar.WithTelemetryHook(telemetry.Chain(capture, hook)),
		)

		if err := jtar.UnpackFile(ctx, req.Archive, req.Destination, comp, cfg); err != nil {
			return &result, errors.Wrapf(err, "cannot extract %s", req.Archive)
		}
		return &result, nil
	}
}

// StartLambda runs the jtar lambda function
func StartLambda() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var hook jtar.TelemetryHook
	if bus := os.Getenv(envEventsBus); len(bus) > 0 {
		events, err := telemetry.NewEventsHookFromConfig(ctx, bus, telemetry.WithEventsLogger(logger))
		if err != nil {
			logger.Error("cannot setup telemetry publishing", "error", err)
			os.Exit(1)
		}
		hook = events.Hook
	}

	lambda.Start(NewHandler(logger, hook))
}
