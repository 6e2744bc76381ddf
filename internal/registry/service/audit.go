package service

import (
	"context"

	"github.com/google/uuid"

	"assetledger/internal/registry/models"
	"assetledger/pkg/domain"
	"assetledger/pkg/requestcontext"
)

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	// Add request_id from context if available
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if clientIP := requestcontext.ClientIP(ctx); clientIP != "" {
		attributes = append(attributes, "client_ip", clientIP)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) newEvent(ctx context.Context, eventType models.EventType, record *models.AssetRecord, actor domain.Identity, recipient *domain.Identity) models.Event {
	return models.Event{
		ID:        uuid.New(),
		Type:      eventType,
		AssetID:   record.ID,
		Category:  record.Category,
		Actor:     actor,
		Recipient: recipient,
		Quantity:  record.Quantity,
		Height:    record.LastModifiedAt,
		Timestamp: requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
	}
}

// publish delivers a committed event. The transition already happened, so a
// delivery failure is logged and never reported to the caller.
func (s *Service) publish(ctx context.Context, event models.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish registry event",
			"event_id", event.ID.String(),
			"event_type", string(event.Type),
			"asset_id", event.AssetID.String(),
			"error", err)
	}
}
