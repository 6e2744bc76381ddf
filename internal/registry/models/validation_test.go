package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetledger/pkg/domain"
	dErrors "assetledger/pkg/domain-errors"
)

var owner = domain.MustIdentity("0x00000000000000000000000000000000000000a1")

func validMint() MintRequest {
	return MintRequest{
		Category: domain.CategoryUniqueItem,
		Metadata: Metadata{
			Origin:        "MineA",
			Certification: "Cert1",
			Location:      "LocX",
			Unit:          "Carat",
		},
		Quantity:    1,
		Owner:       owner,
		MinQuantity: 1,
		MaxQuantity: 10,
	}
}

func TestValidateMint(t *testing.T) {
	t.Run("accepts a well formed request", func(t *testing.T) {
		require.NoError(t, ValidateMint(validMint()))
	})

	tests := []struct {
		name   string
		mutate func(r *MintRequest)
		code   dErrors.Code
	}{
		{"unknown category", func(r *MintRequest) { r.Category = "bond" }, dErrors.CodeInvalidCategory},
		{"empty origin", func(r *MintRequest) { r.Metadata.Origin = "" }, dErrors.CodeInvalidMetadata},
		{"long certification", func(r *MintRequest) { r.Metadata.Certification = strings.Repeat("c", 257) }, dErrors.CodeInvalidMetadata},
		{"long location", func(r *MintRequest) { r.Metadata.Location = strings.Repeat("l", 101) }, dErrors.CodeInvalidMetadata},
		{"long unit", func(r *MintRequest) { r.Metadata.Unit = strings.Repeat("u", 21) }, dErrors.CodeInvalidMetadata},
		{"zero quantity", func(r *MintRequest) { r.Quantity = 0 }, dErrors.CodeInvalidQuantity},
		{"null owner", func(r *MintRequest) { r.Owner = domain.NullIdentity }, dErrors.CodeInvalidOwner},
		{"zero min quantity", func(r *MintRequest) { r.MinQuantity = 0 }, dErrors.CodeInvalidMinQuantity},
		{"zero max quantity", func(r *MintRequest) { r.MaxQuantity = 0 }, dErrors.CodeInvalidMaxQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validMint()
			tt.mutate(&req)
			err := ValidateMint(req)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}

	t.Run("boundary lengths are accepted", func(t *testing.T) {
		req := validMint()
		req.Metadata = Metadata{
			Origin:        strings.Repeat("o", MaxOriginLen),
			Certification: strings.Repeat("c", MaxCertificationLen),
			Location:      strings.Repeat("l", MaxLocationLen),
			Unit:          strings.Repeat("u", MaxUnitLen),
		}
		require.NoError(t, ValidateMint(req))
	})
}

// TestValidateMint_Order verifies the first failing check wins when several
// fields are invalid at once.
func TestValidateMint_Order(t *testing.T) {
	req := validMint()
	req.Category = "bond"
	req.Metadata.Unit = ""
	req.Quantity = 0
	req.Owner = domain.NullIdentity
	req.MinQuantity = 0
	req.MaxQuantity = 0

	steps := []struct {
		code dErrors.Code
		fix  func(r *MintRequest)
	}{
		{dErrors.CodeInvalidCategory, func(r *MintRequest) { r.Category = domain.CategoryFungibleBatch }},
		{dErrors.CodeInvalidMetadata, func(r *MintRequest) { r.Metadata.Unit = "kg" }},
		{dErrors.CodeInvalidQuantity, func(r *MintRequest) { r.Quantity = 5 }},
		{dErrors.CodeInvalidOwner, func(r *MintRequest) { r.Owner = owner }},
		{dErrors.CodeInvalidMinQuantity, func(r *MintRequest) { r.MinQuantity = 1 }},
		{dErrors.CodeInvalidMaxQuantity, func(r *MintRequest) { r.MaxQuantity = 9 }},
	}
	for _, step := range steps {
		err := ValidateMint(req)
		require.Error(t, err)
		require.True(t, dErrors.HasCode(err, step.code), "expected %s, got %v", step.code, err)
		step.fix(&req)
	}
	require.NoError(t, ValidateMint(req))
}

func TestValidateUpdate(t *testing.T) {
	valid := UpdateRequest{Origin: "MineB", Certification: "Cert2", Quantity: 3}
	require.NoError(t, ValidateUpdate(valid))

	bad := valid
	bad.Origin = ""
	assert.True(t, dErrors.HasCode(ValidateUpdate(bad), dErrors.CodeInvalidOrigin))

	bad = valid
	bad.Certification = strings.Repeat("c", MaxCertificationLen+1)
	assert.True(t, dErrors.HasCode(ValidateUpdate(bad), dErrors.CodeInvalidCertification))

	bad = valid
	bad.Quantity = 0
	assert.True(t, dErrors.HasCode(ValidateUpdate(bad), dErrors.CodeInvalidQuantity))
}

func TestRegistryState_Allocate(t *testing.T) {
	state := NewRegistryState(2, 0)
	require.True(t, state.HasCapacity())
	assert.Equal(t, domain.AssetID(0), state.Allocate())
	assert.Equal(t, domain.AssetID(1), state.Allocate())
	assert.False(t, state.HasCapacity())
	assert.Equal(t, uint64(2), state.NextID)
}

func TestRegistryState_CloneIsIndependent(t *testing.T) {
	state := NewRegistryState(10, 1)
	recipient := owner
	state.Config.FeeRecipient = &recipient

	clone := state.Clone()
	other := domain.MustIdentity("0x00000000000000000000000000000000000000b2")
	*clone.Config.FeeRecipient = other
	clone.Advance()

	assert.Equal(t, owner, *state.Config.FeeRecipient)
	assert.Equal(t, uint64(0), state.Height)
}
