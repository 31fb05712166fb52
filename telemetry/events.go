// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents/types"
	"github.com/mknecht/jtar"
)

//go:generate mockgen -destination=../internal/mocks/mock_events.go -package=mocks github.com/mknecht/jtar/telemetry EventsAPI

const (
	// defaultEventSource is the source of published events
	defaultEventSource = "jtar"

	// eventDetailType is the detail type of published events
	eventDetailType = "Extraction Finished"
)

// EventsAPI is the part of the CloudWatch Events client that is used to publish
// telemetry data.
type EventsAPI interface {
	PutEvents(ctx context.Context, params *cloudwatchevents.PutEventsInput, optFns ...func(*cloudwatchevents.Options)) (*cloudwatchevents.PutEventsOutput, error)
}

// EventsOption is a function pointer to implement the option pattern
type EventsOption func(*EventsHook)

// WithEventSource sets the source of the published events.
func WithEventSource(source string) EventsOption {
	return func(h *EventsHook) {
		h.source = source
	}
}

// WithEventsLogger sets the logger for failed publications.
func WithEventsLogger(logger jtar.Logger) EventsOption {
	return func(h *EventsHook) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// EventsHook publishes telemetry data as an event to an EventBridge event bus.
type EventsHook struct {
	client EventsAPI
	bus    string
	source string
	logger jtar.Logger
}

// NewEventsHook creates a hook that publishes to the event bus with the name
// bus through client. An empty bus selects the default event bus.
func NewEventsHook(client EventsAPI, bus string, opts ...EventsOption) *EventsHook {
	h := &EventsHook{
		client: client,
		bus:    bus,
		source: defaultEventSource,
		logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewEventsHookFromConfig creates a hook with a client from the default AWS
// configuration, i.e. environment, shared config files and instance roles.
func NewEventsHookFromConfig(ctx context.Context, bus string, opts ...EventsOption) (*EventsHook, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load aws config: %w", err)
	}
	return NewEventsHook(cloudwatchevents.NewFromConfig(cfg), bus, opts...), nil
}

// Publish sends td as the detail of one event.
func (h *EventsHook) Publish(ctx context.Context, td *jtar.TelemetryData) error {
	entry := types.PutEventsRequestEntry{
		Source:     aws.String(h.source),
		DetailType: aws.String(eventDetailType),
		Detail:     aws.String(td.String()),
	}
	if len(h.bus) > 0 {
		entry.EventBusName = aws.String(h.bus)
	}

	out, err := h.client.PutEvents(ctx, &cloudwatchevents.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return fmt.Errorf("cannot put event: %w", err)
	}
	for _, e := range out.Entries {
		if e.ErrorCode != nil {
			return fmt.Errorf("event rejected: %s: %s", aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage))
		}
	}
	return nil
}

// Hook is a [jtar.TelemetryHook]. Publication errors are logged.
func (h *EventsHook) Hook(ctx context.Context, td *jtar.TelemetryData) {
	if err := h.Publish(ctx, td); err != nil {
		h.logger.Error("cannot publish telemetry", "bus", h.bus, "error", err)
	}
}
