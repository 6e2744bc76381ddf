package models

import (
	"assetledger/pkg/domain"
)

// CategoryIndexCap bounds the number of identifiers listed per category.
const CategoryIndexCap = 100

// RegistryConfig holds the administrative parameters.
//
// Invariants:
//   - FeeRecipient is set at most once and never to the null identity
//   - CapacityCeiling and MintFee may only be tuned after FeeRecipient is set
type RegistryConfig struct {
	CapacityCeiling uint64           `json:"capacity_ceiling"`
	MintFee         uint64           `json:"mint_fee"`
	FeeRecipient    *domain.Identity `json:"fee_recipient,omitempty"`
}

// IsConfigured reports whether the fee recipient has been bootstrapped.
func (c RegistryConfig) IsConfigured() bool {
	return c.FeeRecipient != nil
}

// RegistryState is the singleton row: configuration plus the identity
// allocator counter and the ledger height.
type RegistryState struct {
	Config RegistryConfig
	// NextID is the next identifier to allocate; equal to the number of
	// assets ever minted.
	NextID uint64
	// Height advances by one with every committed state transition.
	Height uint64
}

// NewRegistryState returns the state of a registry that has never committed.
func NewRegistryState(capacity, mintFee uint64) *RegistryState {
	return &RegistryState{
		Config: RegistryConfig{
			CapacityCeiling: capacity,
			MintFee:         mintFee,
		},
	}
}

// Clone returns an independent copy.
func (s *RegistryState) Clone() *RegistryState {
	c := *s
	if s.Config.FeeRecipient != nil {
		r := *s.Config.FeeRecipient
		c.Config.FeeRecipient = &r
	}
	return &c
}

// Advance moves the ledger height forward and returns the new height.
func (s *RegistryState) Advance() uint64 {
	s.Height++
	return s.Height
}

// HasCapacity reports whether another identifier can be allocated.
func (s *RegistryState) HasCapacity() bool {
	return s.NextID < s.Config.CapacityCeiling
}

// Allocate returns the next identifier and bumps the counter. Callers check
// HasCapacity first.
func (s *RegistryState) Allocate() domain.AssetID {
	id := domain.AssetID(s.NextID)
	s.NextID++
	return id
}
