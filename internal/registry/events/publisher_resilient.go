package events

import (
	"context"
	"log/slog"

	"assetledger/internal/registry/models"
	"assetledger/internal/registry/ports"
	"assetledger/pkg/platform/circuit"
)

// ResilientPublisher sends every event to primary and, while the breaker is
// open, also to fallback so events are not lost during a primary outage.
// The primary keeps getting trial publishes so the circuit can close again.
type ResilientPublisher struct {
	primary  ports.EventPublisher
	fallback ports.EventPublisher
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewResilientPublisher(primary, fallback ports.EventPublisher, breaker *circuit.Breaker, logger *slog.Logger) *ResilientPublisher {
	if breaker == nil {
		breaker = circuit.New("registry-events")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientPublisher{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (p *ResilientPublisher) Publish(ctx context.Context, event models.Event) error {
	err := p.primary.Publish(ctx, event)
	if err == nil {
		usePrimary, change := p.breaker.RecordSuccess()
		if change.Closed {
			p.logger.InfoContext(ctx, "event publisher circuit closed", "breaker", p.breaker.Name())
		}
		if usePrimary {
			return nil
		}
		return p.fallback.Publish(ctx, event)
	}

	useFallback, change := p.breaker.RecordFailure()
	if change.Opened {
		p.logger.WarnContext(ctx, "event publisher circuit opened", "breaker", p.breaker.Name(), "error", err)
	}
	if !useFallback {
		return err
	}
	return p.fallback.Publish(ctx, event)
}
