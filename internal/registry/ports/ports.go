// Package ports defines the interfaces the registry service depends on.
// Stores, caches and event sinks implement them; the service never imports
// a concrete backend.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"assetledger/internal/registry/models"
	"assetledger/pkg/domain"
)

// Store is the durable registry state: the config singleton, asset records,
// the audit trail, the category index and both ownership tables.
//
// Lookups of absent keys return sentinel.ErrNotFound, except balances which
// read as zero.
type Store interface {
	LoadState(ctx context.Context) (*models.RegistryState, error)
	SaveState(ctx context.Context, state *models.RegistryState) error

	FindAsset(ctx context.Context, id domain.AssetID) (*models.AssetRecord, error)
	SaveAsset(ctx context.Context, record *models.AssetRecord) error

	// SaveUpdate overwrites the retained update record and appends it to the
	// history, dropping the oldest history entries beyond historyCap.
	SaveUpdate(ctx context.Context, record *models.AssetUpdateRecord, historyCap int) error
	FindLastUpdate(ctx context.Context, id domain.AssetID) (*models.AssetUpdateRecord, error)
	ListUpdateHistory(ctx context.Context, id domain.AssetID) ([]*models.AssetUpdateRecord, error)

	ListCategory(ctx context.Context, category domain.Category) ([]domain.AssetID, error)
	AppendCategory(ctx context.Context, category domain.Category, id domain.AssetID) error

	FindHolder(ctx context.Context, id domain.AssetID) (domain.Identity, error)
	SetHolder(ctx context.Context, id domain.AssetID, holder domain.Identity) error

	Balance(ctx context.Context, owner domain.Identity) (uint64, error)
	SetBalance(ctx context.Context, owner domain.Identity, amount uint64) error

	FeeBalance(ctx context.Context, owner domain.Identity) (uint64, error)
	SetFeeBalance(ctx context.Context, owner domain.Identity, amount uint64) error
}

// Stager is implemented by stores that stage writes on a private copy.
// The returned commit publishes the staged copy; dropping it discards every
// staged write.
type Stager interface {
	Stage() (staged Store, commit func())
}

// EventPublisher delivers committed registry events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// AssetCache fronts asset lookups for read-heavy collaborators.
type AssetCache interface {
	Get(ctx context.Context, id domain.AssetID) (*models.AssetRecord, bool, error)
	Set(ctx context.Context, record *models.AssetRecord) error
	Invalidate(ctx context.Context, id domain.AssetID) error
}
