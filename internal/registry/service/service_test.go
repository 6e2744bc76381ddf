package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"assetledger/internal/registry/metrics"
	"assetledger/internal/registry/models"
	"assetledger/internal/registry/ports"
	"assetledger/internal/registry/ports/mocks"
	"assetledger/internal/registry/store"
	"assetledger/pkg/domain"
	dErrors "assetledger/pkg/domain-errors"
)

var (
	admin        = domain.MustIdentity("0x00000000000000000000000000000000000000ad")
	feeRecipient = domain.MustIdentity("0x00000000000000000000000000000000000000fe")
	identityA    = domain.MustIdentity("0x00000000000000000000000000000000000000a1")
	identityB    = domain.MustIdentity("0x00000000000000000000000000000000000000b2")
	identityC    = domain.MustIdentity("0x00000000000000000000000000000000000000c3")
)

func uniqueItem(owner domain.Identity) models.MintRequest {
	return models.MintRequest{
		Category: domain.CategoryUniqueItem,
		Metadata: models.Metadata{
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

func fungibleBatch(owner domain.Identity, quantity uint64) models.MintRequest {
	return models.MintRequest{
		Category: domain.CategoryFungibleBatch,
		Metadata: models.Metadata{
			Origin:        "FarmB",
			Certification: "Organic",
			Location:      "Silo7",
			Unit:          "Tonne",
		},
		Quantity:    quantity,
		Owner:       owner,
		MinQuantity: 1,
		MaxQuantity: 1000,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Registry Service Test Suite
// =============================================================================
// Justification for unit tests: every mutation is a multi-step transaction
// whose all-or-nothing behavior and ownership accounting can only be asserted
// precisely against the store, not through the HTTP surface.

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemoryStore
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.reset()
}

func (s *ServiceSuite) SetupSubTest() {
	s.reset()
}

func (s *ServiceSuite) reset(opts ...Option) {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore()
	opts = append([]Option{
		WithLogger(discardLogger()),
		WithMetrics(metrics.NewWithRegisterer(prometheus.NewRegistry())),
	}, opts...)
	var err error
	s.service, err = New(s.store, admin, opts...)
	s.Require().NoError(err)
}

func (s *ServiceSuite) configure() {
	s.Require().NoError(s.service.SetFeeRecipient(s.ctx, admin, feeRecipient))
}

func (s *ServiceSuite) requireCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), "unexpected error: %v", err)
}

func (s *ServiceSuite) count() uint64 {
	n, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	return n
}

func (s *ServiceSuite) get(id domain.AssetID) *models.AssetRecord {
	record, ok, err := s.service.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Require().True(ok, "asset %d not found", id)
	return record
}

func (s *ServiceSuite) balance(owner domain.Identity) uint64 {
	n, err := s.service.BalanceOf(s.ctx, owner)
	s.Require().NoError(err)
	return n
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, admin)
		s.Error(err)
		s.Contains(err.Error(), "store is required")
	})

	s.Run("null admin returns error", func() {
		_, err := New(store.NewInMemoryStore(), domain.NullIdentity)
		s.Error(err)
		s.Contains(err.Error(), "admin identity is required")
	})

	s.Run("store without staging requires a transaction runner", func() {
		ctrl := gomock.NewController(s.T())
		_, err := New(mocks.NewMockStore(ctrl), admin)
		s.Error(err)
		s.Contains(err.Error(), "transaction runner is required")
	})

	s.Run("fresh registry reports defaults", func() {
		svc, err := New(store.NewInMemoryStore(), admin, WithDefaults(5, 7))
		s.Require().NoError(err)
		cfg, err := svc.Config(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(5), cfg.CapacityCeiling)
		s.Equal(uint64(7), cfg.MintFee)
		s.Nil(cfg.FeeRecipient)
	})
}

func (s *ServiceSuite) TestBootstrap() {
	s.Run("persists the initial state once", func() {
		s.Require().NoError(s.service.Bootstrap(s.ctx))
		s.configure()
		s.Require().NoError(s.service.Bootstrap(s.ctx))

		cfg, err := s.service.Config(s.ctx)
		s.Require().NoError(err)
		s.Require().NotNil(cfg.FeeRecipient)
		s.Equal(feeRecipient, *cfg.FeeRecipient)
	})
}

// =============================================================================
// Configuration Tests
// =============================================================================

func (s *ServiceSuite) TestSetFeeRecipient() {
	s.Run("non-admin caller is rejected", func() {
		s.requireCode(s.service.SetFeeRecipient(s.ctx, identityA, feeRecipient), dErrors.CodeNotAuthorized)
	})

	s.Run("null identity is rejected", func() {
		s.requireCode(s.service.SetFeeRecipient(s.ctx, admin, domain.NullIdentity), dErrors.CodeInvalidIdentity)
	})

	s.Run("can be set exactly once", func() {
		s.Require().NoError(s.service.SetFeeRecipient(s.ctx, admin, feeRecipient))
		s.requireCode(s.service.SetFeeRecipient(s.ctx, admin, identityA), dErrors.CodeAlreadyConfigured)

		cfg, err := s.service.Config(s.ctx)
		s.Require().NoError(err)
		s.Equal(feeRecipient, *cfg.FeeRecipient)
	})
}

func (s *ServiceSuite) TestSetCapacityCeiling() {
	s.Run("zero is rejected", func() {
		s.configure()
		s.requireCode(s.service.SetCapacityCeiling(s.ctx, admin, 0), dErrors.CodeInvalidCapacity)
	})

	s.Run("requires a configured fee recipient", func() {
		s.requireCode(s.service.SetCapacityCeiling(s.ctx, admin, 10), dErrors.CodeNotConfigured)
	})

	s.Run("non-admin caller is rejected", func() {
		s.configure()
		s.requireCode(s.service.SetCapacityCeiling(s.ctx, identityA, 10), dErrors.CodeNotAuthorized)
	})

	s.Run("overwrites repeatedly", func() {
		s.configure()
		s.Require().NoError(s.service.SetCapacityCeiling(s.ctx, admin, 10))
		s.Require().NoError(s.service.SetCapacityCeiling(s.ctx, admin, 3))

		cfg, err := s.service.Config(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(3), cfg.CapacityCeiling)
	})
}

func (s *ServiceSuite) TestSetMintFee() {
	s.Run("requires a configured fee recipient", func() {
		s.requireCode(s.service.SetMintFee(s.ctx, admin, 5), dErrors.CodeNotConfigured)
	})

	s.Run("accepts zero and overwrites", func() {
		s.configure()
		s.Require().NoError(s.service.SetMintFee(s.ctx, admin, 5))
		s.Require().NoError(s.service.SetMintFee(s.ctx, admin, 0))

		cfg, err := s.service.Config(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(0), cfg.MintFee)
	})
}

func (s *ServiceSuite) TestCreditFeeBalance() {
	s.Run("non-admin caller is rejected", func() {
		_, err := s.service.CreditFeeBalance(s.ctx, identityA, identityA, 10)
		s.requireCode(err, dErrors.CodeNotAuthorized)
	})

	s.Run("zero amount is rejected", func() {
		_, err := s.service.CreditFeeBalance(s.ctx, admin, identityA, 0)
		s.requireCode(err, dErrors.CodeInvalidInput)
	})

	s.Run("accumulates", func() {
		_, err := s.service.CreditFeeBalance(s.ctx, admin, identityA, 10)
		s.Require().NoError(err)
		total, err := s.service.CreditFeeBalance(s.ctx, admin, identityA, 5)
		s.Require().NoError(err)
		s.Equal(uint64(15), total)

		balance, err := s.service.FeeBalanceOf(s.ctx, identityA)
		s.Require().NoError(err)
		s.Equal(uint64(15), balance)
	})
}

// =============================================================================
// Mint Tests
// =============================================================================

func (s *ServiceSuite) TestMint() {
	s.Run("unique item scenario registers the exclusive holder", func() {
		s.configure()

		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)
		s.Equal(domain.AssetID(0), id)

		record := s.get(0)
		s.Equal(identityA, record.Owner)
		s.Equal(identityA, record.Minter)
		s.True(record.Status)
		s.Equal(record.CreatedAt, record.LastModifiedAt)
		s.Equal(uint64(1), record.MinQuantity)
		s.Equal(uint64(10), record.MaxQuantity)

		holder, ok, err := s.service.HolderOf(s.ctx, 0)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(identityA, holder)
		s.Equal(uint64(0), s.balance(identityA))
	})

	s.Run("fungible batch credits the owner balance", func() {
		s.configure()

		id, err := s.service.Mint(s.ctx, identityC, fungibleBatch(identityB, 100))
		s.Require().NoError(err)
		s.Equal(uint64(100), s.balance(identityB))

		_, ok, err := s.service.HolderOf(s.ctx, id)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("identifiers are dense and never repeat", func() {
		s.configure()
		for want := range 5 {
			req := uniqueItem(identityA)
			if want%2 == 1 {
				req = fungibleBatch(identityB, 3)
			}
			id, err := s.service.Mint(s.ctx, identityA, req)
			s.Require().NoError(err)
			s.Equal(domain.AssetID(want), id)
		}
		s.Equal(uint64(5), s.count())
	})

	s.Run("requires a configured fee recipient", func() {
		_, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.requireCode(err, dErrors.CodeFeeNotConfigured)
		s.Equal(uint64(0), s.count())
	})

	s.Run("validation failure leaves no state", func() {
		s.configure()
		req := uniqueItem(identityA)
		req.Quantity = 0

		_, err := s.service.Mint(s.ctx, identityA, req)
		s.requireCode(err, dErrors.CodeInvalidQuantity)
		s.Equal(uint64(0), s.count())

		has, err := s.service.CategoryHasAssets(s.ctx, domain.CategoryUniqueItem)
		s.Require().NoError(err)
		s.False(has)
	})

	s.Run("category index lists identifiers in mint order", func() {
		s.configure()
		for range 3 {
			_, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
			s.Require().NoError(err)
		}
		_, err := s.service.Mint(s.ctx, identityA, fungibleBatch(identityA, 1))
		s.Require().NoError(err)

		ids, err := s.service.CategoryAssets(s.ctx, domain.CategoryUniqueItem)
		s.Require().NoError(err)
		s.Equal([]domain.AssetID{0, 1, 2}, ids)

		has, err := s.service.CategoryHasAssets(s.ctx, domain.CategoryFungibleBatch)
		s.Require().NoError(err)
		s.True(has)
	})

	s.Run("full category index rolls back the mint", func() {
		s.configure()
		for range models.CategoryIndexCap {
			_, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
			s.Require().NoError(err)
		}

		_, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.requireCode(err, dErrors.CodeCategoryIndexFull)
		s.Equal(uint64(models.CategoryIndexCap), s.count())

		_, ok, err := s.service.Get(s.ctx, domain.AssetID(models.CategoryIndexCap))
		s.Require().NoError(err)
		s.False(ok)

		// other categories still accept mints
		id, err := s.service.Mint(s.ctx, identityA, fungibleBatch(identityA, 1))
		s.Require().NoError(err)
		s.Equal(domain.AssetID(models.CategoryIndexCap), id)
	})
}

func (s *ServiceSuite) TestMintCapacity() {
	s.Run("capacity of one admits exactly one mint", func() {
		s.configure()
		s.Require().NoError(s.service.SetCapacityCeiling(s.ctx, admin, 1))

		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)
		s.Equal(domain.AssetID(0), id)

		_, err = s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.requireCode(err, dErrors.CodeCapacityExceeded)
		s.Equal(uint64(1), s.count())
	})

	s.Run("ceiling applies across category mix", func() {
		s.configure()
		s.Require().NoError(s.service.SetCapacityCeiling(s.ctx, admin, 3))

		_, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)
		_, err = s.service.Mint(s.ctx, identityA, fungibleBatch(identityA, 5))
		s.Require().NoError(err)
		_, err = s.service.Mint(s.ctx, identityA, fungibleBatch(identityB, 5))
		s.Require().NoError(err)

		_, err = s.service.Mint(s.ctx, identityA, fungibleBatch(identityA, 5))
		s.requireCode(err, dErrors.CodeCapacityExceeded)
		_, err = s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.requireCode(err, dErrors.CodeCapacityExceeded)
		s.Equal(uint64(3), s.count())
	})

	s.Run("raising the ceiling resumes minting", func() {
		s.configure()
		s.Require().NoError(s.service.SetCapacityCeiling(s.ctx, admin, 1))
		_, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)

		s.Require().NoError(s.service.SetCapacityCeiling(s.ctx, admin, 2))
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)
		s.Equal(domain.AssetID(1), id)
	})
}

func (s *ServiceSuite) TestMintFee() {
	s.Run("failed fee settlement leaves no partial record", func() {
		s.configure()
		s.Require().NoError(s.service.SetMintFee(s.ctx, admin, 10))

		_, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.requireCode(err, dErrors.CodeFeeTransferFailed)

		s.Equal(uint64(0), s.count())
		_, ok, err := s.service.Get(s.ctx, 0)
		s.Require().NoError(err)
		s.False(ok)
		_, ok, err = s.service.HolderOf(s.ctx, 0)
		s.Require().NoError(err)
		s.False(ok)
		has, err := s.service.CategoryHasAssets(s.ctx, domain.CategoryUniqueItem)
		s.Require().NoError(err)
		s.False(has)
	})

	s.Run("fee moves from caller to recipient", func() {
		s.configure()
		s.Require().NoError(s.service.SetMintFee(s.ctx, admin, 10))
		_, err := s.service.CreditFeeBalance(s.ctx, admin, identityA, 15)
		s.Require().NoError(err)

		_, err = s.service.Mint(s.ctx, identityA, uniqueItem(identityB))
		s.Require().NoError(err)

		paid, err := s.service.FeeBalanceOf(s.ctx, identityA)
		s.Require().NoError(err)
		s.Equal(uint64(5), paid)
		received, err := s.service.FeeBalanceOf(s.ctx, feeRecipient)
		s.Require().NoError(err)
		s.Equal(uint64(10), received)

		_, err = s.service.Mint(s.ctx, identityA, uniqueItem(identityB))
		s.requireCode(err, dErrors.CodeFeeTransferFailed)
		s.Equal(uint64(1), s.count())
	})

	s.Run("recipient paying itself keeps its balance", func() {
		s.configure()
		s.Require().NoError(s.service.SetMintFee(s.ctx, admin, 4))
		_, err := s.service.CreditFeeBalance(s.ctx, admin, feeRecipient, 4)
		s.Require().NoError(err)

		_, err = s.service.Mint(s.ctx, feeRecipient, uniqueItem(identityA))
		s.Require().NoError(err)

		balance, err := s.service.FeeBalanceOf(s.ctx, feeRecipient)
		s.Require().NoError(err)
		s.Equal(uint64(4), balance)
	})
}

// =============================================================================
// Update Tests
// =============================================================================

func (s *ServiceSuite) TestUpdate() {
	correction := models.UpdateRequest{Origin: "MineB", Certification: "Cert2", Quantity: 2}

	s.Run("nonexistent asset fails with not found", func() {
		s.configure()
		s.requireCode(s.service.Update(s.ctx, identityA, 99, correction), dErrors.CodeAssetNotFound)
	})

	s.Run("non-minter is rejected and the record is unchanged", func() {
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityB))
		s.Require().NoError(err)
		before := s.get(id)

		// the owner is not the minter
		s.requireCode(s.service.Update(s.ctx, identityB, id, correction), dErrors.CodeNotAuthorized)
		s.Equal(before, s.get(id))

		_, ok, err := s.service.LastUpdate(s.ctx, id)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("invalid correction is rejected", func() {
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)

		s.requireCode(s.service.Update(s.ctx, identityA, id, models.UpdateRequest{Certification: "c", Quantity: 1}), dErrors.CodeInvalidOrigin)
		s.requireCode(s.service.Update(s.ctx, identityA, id, models.UpdateRequest{Origin: "o", Quantity: 1}), dErrors.CodeInvalidCertification)
		s.requireCode(s.service.Update(s.ctx, identityA, id, models.UpdateRequest{Origin: "o", Certification: "c"}), dErrors.CodeInvalidQuantity)
	})

	s.Run("merges origin and certification only", func() {
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)
		before := s.get(id)

		s.Require().NoError(s.service.Update(s.ctx, identityA, id, correction))

		after := s.get(id)
		s.Equal("MineB", after.Metadata.Origin)
		s.Equal("Cert2", after.Metadata.Certification)
		s.Equal(before.Metadata.Location, after.Metadata.Location)
		s.Equal(before.Metadata.Unit, after.Metadata.Unit)
		s.Equal(uint64(2), after.Quantity)
		s.Equal(before.CreatedAt, after.CreatedAt)
		s.Greater(after.LastModifiedAt, before.LastModifiedAt)

		last, ok, err := s.service.LastUpdate(s.ctx, id)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal(id, last.AssetID)
		s.Equal("MineB", last.UpdatedOrigin)
		s.Equal(uint64(2), last.UpdatedQuantity)
		s.Equal(identityA, last.Updater)
		s.Equal(after.LastModifiedAt, last.UpdatedAt)
	})

	s.Run("retained record is overwritten and history is bounded", func() {
		s.reset(WithHistoryCap(2))
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)

		for _, origin := range []string{"first", "second", "third"} {
			s.Require().NoError(s.service.Update(s.ctx, identityA, id, models.UpdateRequest{
				Origin: origin, Certification: "c", Quantity: 1,
			}))
		}

		last, ok, err := s.service.LastUpdate(s.ctx, id)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal("third", last.UpdatedOrigin)

		history, err := s.service.History(s.ctx, id)
		s.Require().NoError(err)
		s.Require().Len(history, 2)
		s.Equal("second", history[0].UpdatedOrigin)
		s.Equal("third", history[1].UpdatedOrigin)
	})

	s.Run("bounds are not enforced on later quantities", func() {
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)

		s.Require().NoError(s.service.Update(s.ctx, identityA, id, models.UpdateRequest{
			Origin: "o", Certification: "c", Quantity: 500,
		}))
		s.Equal(uint64(500), s.get(id).Quantity)
	})

	s.Run("fungible quantity change keeps the balance conserved", func() {
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, fungibleBatch(identityB, 100))
		s.Require().NoError(err)

		s.Require().NoError(s.service.Update(s.ctx, identityA, id, models.UpdateRequest{
			Origin: "o", Certification: "c", Quantity: 60,
		}))
		s.Equal(uint64(60), s.balance(identityB))

		s.Require().NoError(s.service.Update(s.ctx, identityA, id, models.UpdateRequest{
			Origin: "o", Certification: "c", Quantity: 120,
		}))
		s.Equal(uint64(120), s.balance(identityB))
	})
}

// =============================================================================
// Transfer Tests
// =============================================================================

func (s *ServiceSuite) TestTransfer() {
	s.Run("fungible scenario moves the full quantity", func() {
		s.configure()
		id, err := s.service.Mint(s.ctx, identityB, fungibleBatch(identityB, 100))
		s.Require().NoError(err)
		s.Equal(uint64(100), s.balance(identityB))

		s.Require().NoError(s.service.Transfer(s.ctx, identityB, id, identityC))

		s.Equal(uint64(0), s.balance(identityB))
		s.Equal(uint64(100), s.balance(identityC))
		s.Equal(identityC, s.get(id).Owner)
	})

	s.Run("unique item reassigns the holder", func() {
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)
		before := s.get(id)

		s.Require().NoError(s.service.Transfer(s.ctx, identityA, id, identityB))

		holder, ok, err := s.service.HolderOf(s.ctx, id)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(identityB, holder)
		after := s.get(id)
		s.Equal(identityB, after.Owner)
		s.Equal(identityA, after.Minter)
		s.Greater(after.LastModifiedAt, before.LastModifiedAt)
	})

	s.Run("nonexistent asset fails with not found", func() {
		s.requireCode(s.service.Transfer(s.ctx, identityA, 99, identityB), dErrors.CodeAssetNotFound)
	})

	s.Run("non-owner is rejected and the record is unchanged", func() {
		s.configure()
		// minter differs from owner: only the owner may transfer
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityB))
		s.Require().NoError(err)
		before := s.get(id)

		s.requireCode(s.service.Transfer(s.ctx, identityA, id, identityC), dErrors.CodeNotAuthorized)
		s.Equal(before, s.get(id))
	})

	s.Run("null recipient is rejected", func() {
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, fungibleBatch(identityA, 10))
		s.Require().NoError(err)

		s.requireCode(s.service.Transfer(s.ctx, identityA, id, domain.NullIdentity), dErrors.CodeInvalidOwner)
		s.Equal(uint64(10), s.balance(identityA))
	})

	s.Run("holder table disagreement is an invariant breach", func() {
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)
		s.Require().NoError(s.store.SetHolder(s.ctx, id, identityC))

		err = s.service.Transfer(s.ctx, identityA, id, identityB)
		s.requireCode(err, dErrors.CodeTransferNotAllowed)
		s.True(dErrors.CodeOf(err).IsInvariantBreach())
		s.Equal(identityA, s.get(id).Owner)
	})

	s.Run("short balance is an invariant breach", func() {
		s.configure()
		id, err := s.service.Mint(s.ctx, identityB, fungibleBatch(identityB, 100))
		s.Require().NoError(err)
		s.Require().NoError(s.store.SetBalance(s.ctx, identityB, 10))

		err = s.service.Transfer(s.ctx, identityB, id, identityC)
		s.requireCode(err, dErrors.CodeInsufficientBalance)
		s.Equal(uint64(10), s.balance(identityB))
		s.Equal(uint64(0), s.balance(identityC))
		s.Equal(identityB, s.get(id).Owner)
	})
}

// =============================================================================
// Property Tests
// =============================================================================

func (s *ServiceSuite) TestConservation() {
	s.configure()
	holders := []domain.Identity{identityA, identityB, identityC}

	assertConserved := func() {
		var balances, quantities uint64
		for _, h := range holders {
			balances += s.balance(h)
		}
		for i := range s.count() {
			record := s.get(domain.AssetID(i))
			if record.IsFungible() {
				quantities += record.Quantity
			}
		}
		s.Equal(quantities, balances)
	}

	var ids []domain.AssetID
	for i, q := range []uint64{100, 40, 7, 250} {
		owner := holders[i%len(holders)]
		id, err := s.service.Mint(s.ctx, owner, fungibleBatch(owner, q))
		s.Require().NoError(err)
		ids = append(ids, id)
		assertConserved()
	}
	_, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
	s.Require().NoError(err)

	for step := range 12 {
		id := ids[step%len(ids)]
		record := s.get(id)
		next := holders[(step+1)%len(holders)]
		s.Require().NoError(s.service.Transfer(s.ctx, record.Owner, id, next))
		assertConserved()
	}
}

func (s *ServiceSuite) TestConcurrentMints() {
	s.configure()
	const goroutines = 50

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids []int
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.service.Mint(s.ctx, identityA, fungibleBatch(identityA, 1))
			if err != nil {
				return
			}
			mu.Lock()
			ids = append(ids, int(id))
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Require().Len(ids, goroutines)
	sort.Ints(ids)
	for i, id := range ids {
		s.Equal(i, id)
	}
	s.Equal(uint64(goroutines), s.count())
	s.Equal(uint64(goroutines), s.balance(identityA))
}

func (s *ServiceSuite) TestCancelledContext() {
	s.configure()
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service.Mint(ctx, identityA, uniqueItem(identityA))
	s.requireCode(err, dErrors.CodeTimeout)
	s.Equal(uint64(0), s.count())
}

// =============================================================================
// Collaborator Tests (gomock)
// =============================================================================

func (s *ServiceSuite) TestPublishesCommittedEvents() {
	s.Run("mint and transfer publish after commit", func() {
		ctrl := gomock.NewController(s.T())
		publisher := mocks.NewMockEventPublisher(ctrl)
		s.reset(WithPublisher(publisher))
		s.configure()

		gomock.InOrder(
			publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, event models.Event) error {
					s.Equal(models.EventAssetMinted, event.Type)
					s.Equal(domain.AssetID(0), event.AssetID)
					s.Equal(identityA, event.Actor)
					s.Nil(event.Recipient)
					return nil
				}),
			publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, event models.Event) error {
					s.Equal(models.EventAssetTransferred, event.Type)
					s.Require().NotNil(event.Recipient)
					s.Equal(identityB, *event.Recipient)
					return nil
				}),
		)

		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)
		s.Require().NoError(s.service.Transfer(s.ctx, identityA, id, identityB))
	})

	s.Run("rejected operations publish nothing", func() {
		ctrl := gomock.NewController(s.T())
		publisher := mocks.NewMockEventPublisher(ctrl)
		s.reset(WithPublisher(publisher))

		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
		_, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.requireCode(err, dErrors.CodeFeeNotConfigured)
	})

	s.Run("publish failure does not fail the committed mint", func() {
		ctrl := gomock.NewController(s.T())
		publisher := mocks.NewMockEventPublisher(ctrl)
		s.reset(WithPublisher(publisher))
		s.configure()

		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))
		_, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)
		s.Equal(uint64(1), s.count())
	})
}

func (s *ServiceSuite) TestAssetCache() {
	s.Run("miss reads through and fills the cache", func() {
		ctrl := gomock.NewController(s.T())
		cache := mocks.NewMockAssetCache(ctrl)
		s.reset(WithCache(cache))
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)

		cache.EXPECT().Get(gomock.Any(), id).Return(nil, false, nil)
		cache.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)

		record, ok, err := s.service.Get(s.ctx, id)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(identityA, record.Owner)
	})

	s.Run("hit skips the store", func() {
		ctrl := gomock.NewController(s.T())
		cache := mocks.NewMockAssetCache(ctrl)
		s.reset(WithCache(cache))
		cached := &models.AssetRecord{ID: 7, Owner: identityC}

		cache.EXPECT().Get(gomock.Any(), domain.AssetID(7)).Return(cached, true, nil)

		record, ok, err := s.service.Get(s.ctx, 7)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(cached, record)
	})

	s.Run("cache errors fall back to the store", func() {
		ctrl := gomock.NewController(s.T())
		cache := mocks.NewMockAssetCache(ctrl)
		s.reset(WithCache(cache))

		cache.EXPECT().Get(gomock.Any(), domain.AssetID(3)).Return(nil, false, errors.New("redis down"))

		_, ok, err := s.service.Get(s.ctx, 3)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("transfer invalidates the entry", func() {
		ctrl := gomock.NewController(s.T())
		cache := mocks.NewMockAssetCache(ctrl)
		s.reset(WithCache(cache))
		s.configure()
		id, err := s.service.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.Require().NoError(err)

		cache.EXPECT().Invalidate(gomock.Any(), id).Return(nil)
		s.Require().NoError(s.service.Transfer(s.ctx, identityA, id, identityB))
	})
}

// Justification: a read-through that loses a race with a committed transfer
// must not leave the previous owner cached.
func (s *ServiceSuite) TestCacheFillRacingTransfer() {
	base := store.NewInMemoryStore()
	paused := &pausingStore{InMemoryStore: base, loaded: make(chan struct{}), resume: make(chan struct{})}
	cache := newMapCache()
	svc, err := New(paused, admin, WithLogger(discardLogger()), WithCache(cache))
	s.Require().NoError(err)
	s.Require().NoError(svc.SetFeeRecipient(s.ctx, admin, feeRecipient))
	id, err := svc.Mint(s.ctx, identityA, uniqueItem(identityA))
	s.Require().NoError(err)

	paused.arm()
	done := make(chan *models.AssetRecord)
	go func() {
		record, _, err := svc.Get(s.ctx, id)
		s.NoError(err)
		done <- record
	}()

	<-paused.loaded
	s.Require().NoError(svc.Transfer(s.ctx, identityA, id, identityB))
	close(paused.resume)
	stale := <-done
	s.Equal(identityA, stale.Owner, "the in-flight read returns what it loaded")

	record, ok, err := svc.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(identityB, record.Owner)
	holder, ok, err := svc.HolderOf(s.ctx, id)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(identityB, holder)
}

// pausingStore blocks the first armed FindAsset after it has loaded the
// record, until resume is closed. Staged transaction reads go to the
// embedded store and never pause.
type pausingStore struct {
	*store.InMemoryStore
	mu     sync.Mutex
	armed  bool
	loaded chan struct{}
	resume chan struct{}
}

func (p *pausingStore) arm() {
	p.mu.Lock()
	p.armed = true
	p.mu.Unlock()
}

func (p *pausingStore) FindAsset(ctx context.Context, id domain.AssetID) (*models.AssetRecord, error) {
	record, err := p.InMemoryStore.FindAsset(ctx, id)
	p.mu.Lock()
	wait := p.armed
	p.armed = false
	p.mu.Unlock()
	if wait {
		close(p.loaded)
		<-p.resume
	}
	return record, err
}

type mapCache struct {
	mu      sync.Mutex
	records map[domain.AssetID]*models.AssetRecord
}

func newMapCache() *mapCache {
	return &mapCache{records: make(map[domain.AssetID]*models.AssetRecord)}
}

func (c *mapCache) Get(_ context.Context, id domain.AssetID) (*models.AssetRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.records[id]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

func (c *mapCache) Set(_ context.Context, record *models.AssetRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[record.ID] = record.Clone()
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, id domain.AssetID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, id)
	return nil
}

// passthroughTx runs fn directly against a store with no isolation.
type passthroughTx struct {
	store ports.Store
}

func (t passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error {
	return fn(ctx, t.store)
}

func (s *ServiceSuite) TestStoreFailures() {
	s.Run("state load failure surfaces as internal error", func() {
		ctrl := gomock.NewController(s.T())
		mockStore := mocks.NewMockStore(ctrl)
		svc, err := New(mockStore, admin, WithTx(passthroughTx{store: mockStore}), WithLogger(discardLogger()))
		s.Require().NoError(err)

		mockStore.EXPECT().LoadState(gomock.Any()).Return(nil, errors.New("connection reset"))

		_, err = svc.Mint(s.ctx, identityA, uniqueItem(identityA))
		s.requireCode(err, dErrors.CodeInternal)
	})

	s.Run("asset lookup failure is not reported as absence", func() {
		ctrl := gomock.NewController(s.T())
		mockStore := mocks.NewMockStore(ctrl)
		svc, err := New(mockStore, admin, WithTx(passthroughTx{store: mockStore}), WithLogger(discardLogger()))
		s.Require().NoError(err)

		mockStore.EXPECT().FindAsset(gomock.Any(), domain.AssetID(1)).Return(nil, errors.New("connection reset"))

		_, ok, err := svc.Get(s.ctx, 1)
		s.requireCode(err, dErrors.CodeInternal)
		s.False(ok)
	})
}
