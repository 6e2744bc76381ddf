package domain

import dErrors "assetledger/pkg/domain-errors"

// Category discriminates which ownership table backs an asset.
// Invariant: the value is one of the supported categories.
//
// Construct via ParseCategory at trust boundaries; direct casting bypasses
// validation.
type Category string

const (
	CategoryUniqueItem    Category = "unique_item"
	CategoryFungibleBatch Category = "fungible_batch"
)

var validCategories = map[Category]bool{
	CategoryUniqueItem:    true,
	CategoryFungibleBatch: true,
}

// ParseCategory constructs a Category from external input.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidCategory, "category must be unique_item or fungible_batch")
	}
	return c, nil
}

// IsValid reports whether the category is one of the supported values.
func (c Category) IsValid() bool {
	return validCategories[c]
}

func (c Category) String() string {
	return string(c)
}

// Categories returns every supported category in a stable order.
func Categories() []Category {
	return []Category{CategoryUniqueItem, CategoryFungibleBatch}
}
