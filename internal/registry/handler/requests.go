package handler

import (
	"encoding/json"
	"errors"
	"strconv"

	"assetledger/internal/registry/models"
	"assetledger/pkg/domain"
	dErrors "assetledger/pkg/domain-errors"
)

// MintAssetRequest is the body of POST /v1/assets.
type MintAssetRequest struct {
	Category    string          `json:"category"`
	Metadata    models.Metadata `json:"metadata"`
	Quantity    Quantity        `json:"quantity"`
	Owner       string          `json:"owner"`
	MinQuantity Quantity        `json:"min_quantity"`
	MaxQuantity Quantity        `json:"max_quantity"`
}

// ToModel converts the body. Field rules are enforced by the service; only
// the owner is parsed here.
func (r MintAssetRequest) ToModel() (models.MintRequest, error) {
	owner, err := parseParty(r.Owner, dErrors.CodeInvalidOwner, "owner")
	if err != nil {
		return models.MintRequest{}, err
	}
	return models.MintRequest{
		Category:    domain.Category(r.Category),
		Metadata:    r.Metadata,
		Quantity:    uint64(r.Quantity),
		Owner:       owner,
		MinQuantity: uint64(r.MinQuantity),
		MaxQuantity: uint64(r.MaxQuantity),
	}, nil
}

// UpdateAssetRequest is the body of PATCH /v1/assets/{id}.
type UpdateAssetRequest struct {
	Origin        string   `json:"origin"`
	Certification string   `json:"certification"`
	Quantity      Quantity `json:"quantity"`
}

func (r UpdateAssetRequest) ToModel() models.UpdateRequest {
	return models.UpdateRequest{
		Origin:        r.Origin,
		Certification: r.Certification,
		Quantity:      uint64(r.Quantity),
	}
}

// Quantity decodes any JSON number. Values that are not a positive integer
// within uint64 decode as zero, which the service rejects with the field's
// own code. Non-numeric values still fail the body.
type Quantity uint64

var errQuantityNotNumber = errors.New("quantity must be a JSON number")

func (q *Quantity) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return errQuantityNotNumber
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		v = 0
	}
	*q = Quantity(v)
	return nil
}

type TransferAssetRequest struct {
	Recipient string `json:"recipient"`
}

type SetFeeRecipientRequest struct {
	Recipient string `json:"recipient"`
}

type SetCapacityRequest struct {
	Capacity uint64 `json:"capacity"`
}

type SetMintFeeRequest struct {
	Fee uint64 `json:"fee"`
}

type CreditFeesRequest struct {
	Identity string `json:"identity"`
	Amount   uint64 `json:"amount"`
}

// parseParty accepts an empty value as the null identity so the service can
// reject it with its own code; malformed addresses fail with code.
func parseParty(raw string, code dErrors.Code, field string) (domain.Identity, error) {
	if raw == "" {
		return domain.NullIdentity, nil
	}
	id, err := domain.ParseIdentity(raw)
	if err != nil {
		return domain.NullIdentity, dErrors.New(code, field+" must be a 20-byte hex address")
	}
	return id, nil
}
