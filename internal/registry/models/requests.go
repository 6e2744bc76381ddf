package models

import (
	"assetledger/pkg/domain"
)

// MintRequest carries everything needed to create an asset.
type MintRequest struct {
	Category    domain.Category
	Metadata    Metadata
	Quantity    uint64
	Owner       domain.Identity
	MinQuantity uint64
	MaxQuantity uint64
}

// UpdateRequest carries a correction. Only Origin, Certification and
// Quantity are mutable.
type UpdateRequest struct {
	Origin        string
	Certification string
	Quantity      uint64
}
