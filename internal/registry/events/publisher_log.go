// Package events delivers committed registry events to downstream consumers:
// a structured log sink, a Kafka topic, and a breaker-guarded combination of
// the two.
package events

import (
	"context"
	"log/slog"

	"assetledger/internal/registry/models"
)

// LogPublisher writes each event as a structured log line.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event models.Event) error {
	args := []any{
		"event_id", event.ID.String(),
		"event_type", string(event.Type),
		"asset_id", event.AssetID.String(),
		"category", event.Category.String(),
		"actor", event.Actor.String(),
		"quantity", event.Quantity,
		"height", event.Height,
		"log_type", "registry_event",
	}
	if event.Recipient != nil {
		args = append(args, "recipient", event.Recipient.String())
	}
	if event.RequestID != "" {
		args = append(args, "request_id", event.RequestID)
	}
	p.logger.InfoContext(ctx, "registry event", args...)
	return nil
}
