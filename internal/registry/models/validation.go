package models

import (
	"fmt"

	"assetledger/pkg/domain"
	dErrors "assetledger/pkg/domain-errors"
)

// Metadata field bounds, in bytes.
const (
	MaxOriginLen        = 256
	MaxCertificationLen = 256
	MaxLocationLen      = 100
	MaxUnitLen          = 20
)

// The validators below are pure: they depend only on their arguments.

func ValidateCategory(c domain.Category) error {
	if !c.IsValid() {
		return dErrors.New(dErrors.CodeInvalidCategory, "category must be unique_item or fungible_batch")
	}
	return nil
}

// ValidateMetadata checks all four fields on the mint path.
func ValidateMetadata(m Metadata) error {
	fields := []struct {
		name  string
		value string
		limit int
	}{
		{"origin", m.Origin, MaxOriginLen},
		{"certification", m.Certification, MaxCertificationLen},
		{"location", m.Location, MaxLocationLen},
		{"unit", m.Unit, MaxUnitLen},
	}
	for _, f := range fields {
		if !withinBounds(f.value, f.limit) {
			return dErrors.New(dErrors.CodeInvalidMetadata, boundsMessage(f.name, f.limit))
		}
	}
	return nil
}

// ValidateOrigin checks the origin field on the update path.
func ValidateOrigin(origin string) error {
	if !withinBounds(origin, MaxOriginLen) {
		return dErrors.New(dErrors.CodeInvalidOrigin, boundsMessage("origin", MaxOriginLen))
	}
	return nil
}

// ValidateCertification checks the certification field on the update path.
func ValidateCertification(certification string) error {
	if !withinBounds(certification, MaxCertificationLen) {
		return dErrors.New(dErrors.CodeInvalidCertification, boundsMessage("certification", MaxCertificationLen))
	}
	return nil
}

func ValidateQuantity(q uint64) error {
	if q == 0 {
		return dErrors.New(dErrors.CodeInvalidQuantity, "quantity must be greater than zero")
	}
	return nil
}

func ValidateMinQuantity(q uint64) error {
	if q == 0 {
		return dErrors.New(dErrors.CodeInvalidMinQuantity, "min quantity must be greater than zero")
	}
	return nil
}

func ValidateMaxQuantity(q uint64) error {
	if q == 0 {
		return dErrors.New(dErrors.CodeInvalidMaxQuantity, "max quantity must be greater than zero")
	}
	return nil
}

// ValidateOwner rejects the null identity as an owner or recipient.
func ValidateOwner(owner domain.Identity) error {
	if owner.IsNull() {
		return dErrors.New(dErrors.CodeInvalidOwner, "owner must not be the null identity")
	}
	return nil
}

// ValidateMint runs the mint checks in fixed order and stops at the first
// failure: category, metadata, quantity, owner, min quantity, max quantity.
func ValidateMint(req MintRequest) error {
	checks := []func() error{
		func() error { return ValidateCategory(req.Category) },
		func() error { return ValidateMetadata(req.Metadata) },
		func() error { return ValidateQuantity(req.Quantity) },
		func() error { return ValidateOwner(req.Owner) },
		func() error { return ValidateMinQuantity(req.MinQuantity) },
		func() error { return ValidateMaxQuantity(req.MaxQuantity) },
	}
	return firstFailure(checks)
}

// ValidateUpdate runs the update checks: origin, certification, quantity.
func ValidateUpdate(req UpdateRequest) error {
	checks := []func() error{
		func() error { return ValidateOrigin(req.Origin) },
		func() error { return ValidateCertification(req.Certification) },
		func() error { return ValidateQuantity(req.Quantity) },
	}
	return firstFailure(checks)
}

func firstFailure(checks []func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func withinBounds(s string, limit int) bool {
	return len(s) >= 1 && len(s) <= limit
}

func boundsMessage(field string, limit int) string {
	return fmt.Sprintf("%s must be between 1 and %d bytes", field, limit)
}
