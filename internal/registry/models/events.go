package models

import (
	"time"

	"github.com/google/uuid"

	"assetledger/pkg/domain"
)

// EventType names a committed registry transition.
type EventType string

const (
	EventAssetMinted      EventType = "asset.minted"
	EventAssetUpdated     EventType = "asset.updated"
	EventAssetTransferred EventType = "asset.transferred"
)

// Event is published after a transition commits. It is transport-agnostic
// so log, Kafka and test sinks can share it.
type Event struct {
	ID        uuid.UUID        `json:"id"`
	Type      EventType        `json:"type"`
	AssetID   domain.AssetID   `json:"asset_id"`
	Category  domain.Category  `json:"category"`
	Actor     domain.Identity  `json:"actor"`
	Recipient *domain.Identity `json:"recipient,omitempty"`
	Quantity  uint64           `json:"quantity"`
	Height    uint64           `json:"height"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id,omitempty"`
}
