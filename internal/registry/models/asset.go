package models

import (
	"assetledger/pkg/domain"
)

// Metadata describes the physical commodity. Origin and Certification are
// correctable after mint; Location and Unit are fixed.
type Metadata struct {
	Origin        string `json:"origin"`
	Certification string `json:"certification"`
	Location      string `json:"location"`
	Unit          string `json:"unit"`
}

// AssetRecord is the canonical registry entry for one minted asset.
//
// Invariants:
//   - ID is assigned once at mint and never reused
//   - Owner is never the null identity
//   - Quantity > 0
//   - Minter is fixed at creation and is the only identity allowed to update
//   - CreatedAt <= LastModifiedAt, both ledger heights
//   - MinQuantity and MaxQuantity are recorded as declared and are not
//     enforced against later updates
type AssetRecord struct {
	ID             domain.AssetID  `json:"id"`
	Category       domain.Category `json:"category"`
	Metadata       Metadata        `json:"metadata"`
	Quantity       uint64          `json:"quantity"`
	Owner          domain.Identity `json:"owner"`
	Minter         domain.Identity `json:"minter"`
	CreatedAt      uint64          `json:"created_at"`
	LastModifiedAt uint64          `json:"last_modified_at"`
	Status         bool            `json:"status"`
	MinQuantity    uint64          `json:"min_quantity"`
	MaxQuantity    uint64          `json:"max_quantity"`
}

// NewAssetRecord builds an active record from a validated mint request.
func NewAssetRecord(id domain.AssetID, req MintRequest, minter domain.Identity, height uint64) *AssetRecord {
	return &AssetRecord{
		ID:             id,
		Category:       req.Category,
		Metadata:       req.Metadata,
		Quantity:       req.Quantity,
		Owner:          req.Owner,
		Minter:         minter,
		CreatedAt:      height,
		LastModifiedAt: height,
		Status:         true,
		MinQuantity:    req.MinQuantity,
		MaxQuantity:    req.MaxQuantity,
	}
}

// IsFungible reports whether the asset's ownership lives in the balance table.
func (a *AssetRecord) IsFungible() bool {
	return a.Category == domain.CategoryFungibleBatch
}

// CanUpdate reports whether caller may submit a correction.
func (a *AssetRecord) CanUpdate(caller domain.Identity) bool {
	return a.Minter == caller
}

// CanTransfer reports whether caller may move the asset.
func (a *AssetRecord) CanTransfer(caller domain.Identity) bool {
	return a.Owner == caller
}

// ApplyUpdate merges a validated correction. Location and Unit are untouched.
func (a *AssetRecord) ApplyUpdate(req UpdateRequest, height uint64) {
	a.Metadata.Origin = req.Origin
	a.Metadata.Certification = req.Certification
	a.Quantity = req.Quantity
	a.LastModifiedAt = height
}

// ApplyTransfer records the new owner.
func (a *AssetRecord) ApplyTransfer(recipient domain.Identity, height uint64) {
	a.Owner = recipient
	a.LastModifiedAt = height
}

// Clone returns an independent copy.
func (a *AssetRecord) Clone() *AssetRecord {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// AssetUpdateRecord is the most recent correction applied to an asset. The
// registry retains one per asset and a bounded history of prior ones.
type AssetUpdateRecord struct {
	AssetID              domain.AssetID  `json:"asset_id"`
	UpdatedOrigin        string          `json:"updated_origin"`
	UpdatedCertification string          `json:"updated_certification"`
	UpdatedQuantity      uint64          `json:"updated_quantity"`
	UpdatedAt            uint64          `json:"updated_at"`
	Updater              domain.Identity `json:"updater"`
}

// NewAssetUpdateRecord captures a correction submitted by updater.
func NewAssetUpdateRecord(id domain.AssetID, req UpdateRequest, updater domain.Identity, height uint64) *AssetUpdateRecord {
	return &AssetUpdateRecord{
		AssetID:              id,
		UpdatedOrigin:        req.Origin,
		UpdatedCertification: req.Certification,
		UpdatedQuantity:      req.Quantity,
		UpdatedAt:            height,
		Updater:              updater,
	}
}
