package handler

import (
	"assetledger/internal/registry/models"
	"assetledger/pkg/domain"
)

type MintAssetResponse struct {
	ID domain.AssetID `json:"id"`
}

type CountResponse struct {
	Count uint64 `json:"count"`
}

type UpdatesResponse struct {
	Last    *models.AssetUpdateRecord   `json:"last"`
	History []*models.AssetUpdateRecord `json:"history"`
}

type CategoryResponse struct {
	Category  domain.Category  `json:"category"`
	HasAssets bool             `json:"has_assets"`
	IDs       []domain.AssetID `json:"ids"`
}

type HolderResponse struct {
	AssetID domain.AssetID  `json:"asset_id"`
	Holder  domain.Identity `json:"holder"`
}

type BalanceResponse struct {
	Address    domain.Identity `json:"address"`
	Balance    uint64          `json:"balance"`
	FeeBalance uint64          `json:"fee_balance"`
}

type FeeBalanceResponse struct {
	Identity domain.Identity `json:"identity"`
	Balance  uint64          `json:"balance"`
}
