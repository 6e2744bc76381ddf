package domain

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	dErrors "assetledger/pkg/domain-errors"
)

// Identity is a ledger account address. The zero value is the reserved
// null (burn) identity and never owns an asset.
type Identity common.Address

// NullIdentity is the reserved burn address.
var NullIdentity = Identity{}

// ParseIdentity parses a 40 hex character address with an optional 0x
// prefix. The null identity parses successfully; rejecting it is a
// validation concern of the caller.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity is required")
	}
	if !common.IsHexAddress(s) {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity must be a 20-byte hex address")
	}
	return Identity(common.HexToAddress(s)), nil
}

// MustIdentity parses s and panics on failure. Intended for tests and
// constants.
func MustIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsNull reports whether the identity is the reserved null address.
func (i Identity) IsNull() bool {
	return i == NullIdentity
}

// Address returns the underlying account address.
func (i Identity) Address() common.Address {
	return common.Address(i)
}

// String returns the EIP-55 checksummed hex form.
func (i Identity) String() string {
	return common.Address(i).Hex()
}

func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// AssetID is the dense, zero-based identifier of a minted asset.
type AssetID uint64

// ParseAssetID parses a decimal asset identifier.
func ParseAssetID(s string) (AssetID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "asset id must be a non-negative integer")
	}
	return AssetID(n), nil
}

func (a AssetID) String() string {
	return strconv.FormatUint(uint64(a), 10)
}
