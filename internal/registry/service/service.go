package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"assetledger/internal/registry/metrics"
	"assetledger/internal/registry/models"
	"assetledger/internal/registry/ports"
	"assetledger/pkg/domain"
	dErrors "assetledger/pkg/domain-errors"
	"assetledger/pkg/platform/sentinel"
)

const tracerName = "assetledger/internal/registry/service"

const (
	opMint             = "mint"
	opUpdate           = "update"
	opTransfer         = "transfer"
	opSetFeeRecipient  = "set_fee_recipient"
	opSetCapacity      = "set_capacity_ceiling"
	opSetMintFee       = "set_mint_fee"
	opCreditFeeBalance = "credit_fee_balance"
)

const (
	defaultCapacity   = 1000
	defaultHistoryCap = 100
)

// Service orchestrates every registry mutation. Each mutating call runs as a
// single StoreTx transaction so a failure at any step leaves no partial state.
// Reads go straight to the store and never require authorization.
type Service struct {
	store      ports.Store
	tx         StoreTx
	admin      domain.Identity
	capacity   uint64
	mintFee    uint64
	historyCap int
	logger     *slog.Logger
	publisher  ports.EventPublisher
	cache      ports.AssetCache
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

// WithTx sets the transaction runner. Without it the store must implement
// ports.Stager.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithCache(cache ports.AssetCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithDefaults sets the capacity ceiling and mint fee of a registry that has
// never committed a transaction.
func WithDefaults(capacity, mintFee uint64) Option {
	return func(s *Service) {
		s.capacity = capacity
		s.mintFee = mintFee
	}
}

// WithHistoryCap bounds the per-asset update history.
func WithHistoryCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

// New constructs a Service. admin is the process administrator allowed to
// change configuration; it must not be the null identity.
func New(store ports.Store, admin domain.Identity, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if admin.IsNull() {
		return nil, errors.New("admin identity is required")
	}
	s := &Service{
		store:      store,
		admin:      admin,
		capacity:   defaultCapacity,
		historyCap: defaultHistoryCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		stager, ok := store.(ports.Stager)
		if !ok {
			return nil, errors.New("transaction runner is required for stores that cannot stage writes")
		}
		s.tx = NewStagedTx(stager, 0)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s, nil
}

// Bootstrap persists the initial state row if the registry has never
// committed. It is safe to call on every start.
func (s *Service) Bootstrap(ctx context.Context) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		_, err := store.LoadState(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry state")
		}
		if err := store.SaveState(ctx, models.NewRegistryState(s.capacity, s.mintFee)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registry state")
		}
		return nil
	})
}

// =============================================================================
// Configuration
// =============================================================================

// SetFeeRecipient stores the fee recipient. It can be set exactly once.
func (s *Service) SetFeeRecipient(ctx context.Context, caller, recipient domain.Identity) error {
	ctx, span := s.startSpan(ctx, opSetFeeRecipient)
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		if err := s.requireAdmin(caller); err != nil {
			return err
		}
		if recipient.IsNull() {
			return dErrors.New(dErrors.CodeInvalidIdentity, "fee recipient must not be the null identity")
		}
		state, err := s.loadState(ctx, store)
		if err != nil {
			return err
		}
		if state.Config.IsConfigured() {
			return dErrors.New(dErrors.CodeAlreadyConfigured, "fee recipient is already configured")
		}
		state.Config.FeeRecipient = &recipient
		state.Advance()
		return s.saveState(ctx, store, state)
	})
	if err != nil {
		return s.fail(ctx, span, opSetFeeRecipient, err)
	}
	s.logAudit(ctx, "fee_recipient_configured", "actor", caller.String(), "fee_recipient", recipient.String())
	return nil
}

// SetCapacityCeiling overwrites the capacity ceiling. Lowering it below the
// number of assets already minted blocks further mints without touching
// existing records.
func (s *Service) SetCapacityCeiling(ctx context.Context, caller domain.Identity, n uint64) error {
	ctx, span := s.startSpan(ctx, opSetCapacity)
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		if err := s.requireAdmin(caller); err != nil {
			return err
		}
		if n == 0 {
			return dErrors.New(dErrors.CodeInvalidCapacity, "capacity ceiling must be greater than zero")
		}
		state, err := s.requireConfigured(ctx, store)
		if err != nil {
			return err
		}
		state.Config.CapacityCeiling = n
		state.Advance()
		return s.saveState(ctx, store, state)
	})
	if err != nil {
		return s.fail(ctx, span, opSetCapacity, err)
	}
	s.logAudit(ctx, "capacity_ceiling_changed", "actor", caller.String(), "capacity_ceiling", n)
	return nil
}

// SetMintFee overwrites the fee charged per mint. Zero disables the fee.
func (s *Service) SetMintFee(ctx context.Context, caller domain.Identity, fee uint64) error {
	ctx, span := s.startSpan(ctx, opSetMintFee)
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		if err := s.requireAdmin(caller); err != nil {
			return err
		}
		state, err := s.requireConfigured(ctx, store)
		if err != nil {
			return err
		}
		state.Config.MintFee = fee
		state.Advance()
		return s.saveState(ctx, store, state)
	})
	if err != nil {
		return s.fail(ctx, span, opSetMintFee, err)
	}
	s.logAudit(ctx, "mint_fee_changed", "actor", caller.String(), "mint_fee", fee)
	return nil
}

// Config returns the current configuration.
func (s *Service) Config(ctx context.Context) (models.RegistryConfig, error) {
	state, err := s.loadState(ctx, s.store)
	if err != nil {
		return models.RegistryConfig{}, err
	}
	return state.Config, nil
}

// CreditFeeBalance adds amount to identity's fee balance. Only the
// administrator may mint fee value.
func (s *Service) CreditFeeBalance(ctx context.Context, caller, identity domain.Identity, amount uint64) (uint64, error) {
	ctx, span := s.startSpan(ctx, opCreditFeeBalance)
	defer span.End()

	var balance uint64
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		if err := s.requireAdmin(caller); err != nil {
			return err
		}
		if identity.IsNull() {
			return dErrors.New(dErrors.CodeInvalidIdentity, "fee balance holder must not be the null identity")
		}
		if amount == 0 {
			return dErrors.New(dErrors.CodeInvalidInput, "amount must be greater than zero")
		}
		current, err := store.FeeBalance(ctx, identity)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fee balance")
		}
		if current > math.MaxUint64-amount {
			return dErrors.New(dErrors.CodeInvalidInput, "fee balance would overflow")
		}
		balance = current + amount
		if err := store.SetFeeBalance(ctx, identity, balance); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save fee balance")
		}
		state, err := s.loadState(ctx, store)
		if err != nil {
			return err
		}
		state.Advance()
		return s.saveState(ctx, store, state)
	})
	if err != nil {
		return 0, s.fail(ctx, span, opCreditFeeBalance, err)
	}
	s.logAudit(ctx, "fee_balance_credited", "actor", caller.String(), "holder", identity.String(), "amount", amount)
	return balance, nil
}

// FeeBalanceOf returns identity's fee balance.
func (s *Service) FeeBalanceOf(ctx context.Context, identity domain.Identity) (uint64, error) {
	balance, err := s.store.FeeBalance(ctx, identity)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fee balance")
	}
	return balance, nil
}

// =============================================================================
// Mutations
// =============================================================================

// Mint validates req, settles the mint fee, allocates the next identifier
// and records ownership, the asset record and the category index entry.
func (s *Service) Mint(ctx context.Context, caller domain.Identity, req models.MintRequest) (domain.AssetID, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, opMint, attribute.String("asset.category", req.Category.String()))
	defer span.End()
	defer s.metrics.ObserveOperation(opMint, start)

	if err := models.ValidateMint(req); err != nil {
		return 0, s.fail(ctx, span, opMint, err)
	}

	var record *models.AssetRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		state, err := s.loadState(ctx, store)
		if err != nil {
			return err
		}
		if !state.Config.IsConfigured() {
			return dErrors.New(dErrors.CodeFeeNotConfigured, "fee recipient is not configured")
		}
		if err := settleFee(ctx, store, caller, *state.Config.FeeRecipient, state.Config.MintFee); err != nil {
			return err
		}
		if !state.HasCapacity() {
			return dErrors.New(dErrors.CodeCapacityExceeded, "registry capacity ceiling reached")
		}
		id := state.Allocate()

		if err := creditOwnership(ctx, store, id, req.Category, req.Owner, req.Quantity); err != nil {
			return err
		}

		record = models.NewAssetRecord(id, req, caller, state.Advance())
		if err := store.SaveAsset(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save asset")
		}

		listed, err := store.ListCategory(ctx, req.Category)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load category index")
		}
		if len(listed) >= models.CategoryIndexCap {
			return dErrors.New(dErrors.CodeCategoryIndexFull, "category index is full")
		}
		if err := store.AppendCategory(ctx, req.Category, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append category index")
		}
		return s.saveState(ctx, store, state)
	})
	if err != nil {
		return 0, s.fail(ctx, span, opMint, err)
	}

	span.SetAttributes(attribute.Int64("asset.id", int64(record.ID)))
	s.logAudit(ctx, string(models.EventAssetMinted),
		"asset_id", record.ID.String(),
		"category", record.Category.String(),
		"minter", caller.String(),
		"owner", record.Owner.String(),
		"quantity", record.Quantity)
	s.publish(ctx, s.newEvent(ctx, models.EventAssetMinted, record, caller, nil))
	s.metrics.IncrementMint(record.Category.String())
	return record.ID, nil
}

// Update applies a correction by the minter. Only origin, certification and
// quantity change; the retained update record is overwritten.
func (s *Service) Update(ctx context.Context, caller domain.Identity, id domain.AssetID, req models.UpdateRequest) error {
	start := time.Now()
	ctx, span := s.startSpan(ctx, opUpdate, attribute.Int64("asset.id", int64(id)))
	defer span.End()
	defer s.metrics.ObserveOperation(opUpdate, start)

	var record *models.AssetRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		record, err = findAsset(ctx, store, id)
		if err != nil {
			return err
		}
		if !record.CanUpdate(caller) {
			return dErrors.New(dErrors.CodeNotAuthorized, "only the minter may update an asset")
		}
		if err := models.ValidateUpdate(req); err != nil {
			return err
		}
		if record.IsFungible() && req.Quantity != record.Quantity {
			if err := rebalance(ctx, store, record.Owner, record.Quantity, req.Quantity); err != nil {
				return err
			}
		}

		state, err := s.loadState(ctx, store)
		if err != nil {
			return err
		}
		height := state.Advance()
		record.ApplyUpdate(req, height)
		if err := store.SaveAsset(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save asset")
		}
		if err := store.SaveUpdate(ctx, models.NewAssetUpdateRecord(id, req, caller, height), s.historyCap); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save update record")
		}
		return s.saveState(ctx, store, state)
	})
	if err != nil {
		return s.fail(ctx, span, opUpdate, err)
	}

	s.invalidate(ctx, id)
	s.logAudit(ctx, string(models.EventAssetUpdated),
		"asset_id", id.String(),
		"updater", caller.String(),
		"quantity", record.Quantity)
	s.publish(ctx, s.newEvent(ctx, models.EventAssetUpdated, record, caller, nil))
	s.metrics.IncrementUpdate()
	return nil
}

// Transfer moves the asset from its owner to recipient. Fungible batches move
// their full quantity between balances.
func (s *Service) Transfer(ctx context.Context, caller domain.Identity, id domain.AssetID, recipient domain.Identity) error {
	start := time.Now()
	ctx, span := s.startSpan(ctx, opTransfer, attribute.Int64("asset.id", int64(id)))
	defer span.End()
	defer s.metrics.ObserveOperation(opTransfer, start)

	var record *models.AssetRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		record, err = findAsset(ctx, store, id)
		if err != nil {
			return err
		}
		if !record.CanTransfer(caller) {
			return dErrors.New(dErrors.CodeNotAuthorized, "only the owner may transfer an asset")
		}
		if err := models.ValidateOwner(recipient); err != nil {
			return err
		}

		if record.IsFungible() {
			if err := moveBalance(ctx, store, caller, recipient, record.Quantity); err != nil {
				return err
			}
		} else if err := moveHolder(ctx, store, id, caller, recipient); err != nil {
			return err
		}

		state, err := s.loadState(ctx, store)
		if err != nil {
			return err
		}
		record.ApplyTransfer(recipient, state.Advance())
		if err := store.SaveAsset(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save asset")
		}
		return s.saveState(ctx, store, state)
	})
	if err != nil {
		return s.fail(ctx, span, opTransfer, err)
	}

	s.invalidate(ctx, id)
	s.logAudit(ctx, string(models.EventAssetTransferred),
		"asset_id", id.String(),
		"from", caller.String(),
		"to", recipient.String(),
		"quantity", record.Quantity)
	s.publish(ctx, s.newEvent(ctx, models.EventAssetTransferred, record, caller, &recipient))
	s.metrics.IncrementTransfer(record.Category.String())
	return nil
}

// =============================================================================
// Reads
// =============================================================================

// Get returns the asset record. The boolean is false when no asset has id.
func (s *Service) Get(ctx context.Context, id domain.AssetID) (*models.AssetRecord, bool, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "asset cache read failed", "asset_id", id.String(), "error", err)
		} else if ok {
			return cached, true, nil
		}
	}

	record, err := s.store.FindAsset(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}

	if s.cache != nil {
		s.fillCache(ctx, record)
	}
	return record, true, nil
}

// fillCache caches record, then re-reads the store and drops the entry if a
// write committed since record was read. Every mutation invalidates after
// its commit, so either that invalidation or this check runs after the Set.
func (s *Service) fillCache(ctx context.Context, record *models.AssetRecord) {
	if err := s.cache.Set(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "asset cache write failed", "asset_id", record.ID.String(), "error", err)
		return
	}
	current, err := s.store.FindAsset(ctx, record.ID)
	if err == nil && current.LastModifiedAt == record.LastModifiedAt {
		return
	}
	s.invalidate(ctx, record.ID)
}

// Count returns the number of assets ever minted.
func (s *Service) Count(ctx context.Context) (uint64, error) {
	state, err := s.loadState(ctx, s.store)
	if err != nil {
		return 0, err
	}
	return state.NextID, nil
}

// CategoryHasAssets reports whether at least one asset of category exists.
func (s *Service) CategoryHasAssets(ctx context.Context, category domain.Category) (bool, error) {
	ids, err := s.CategoryAssets(ctx, category)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// CategoryAssets lists the identifiers of category in mint order.
func (s *Service) CategoryAssets(ctx context.Context, category domain.Category) ([]domain.AssetID, error) {
	ids, err := s.store.ListCategory(ctx, category)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load category index")
	}
	return ids, nil
}

// LastUpdate returns the most recent correction of id. The boolean is false
// when the asset was never updated.
func (s *Service) LastUpdate(ctx context.Context, id domain.AssetID) (*models.AssetUpdateRecord, bool, error) {
	record, err := s.store.FindLastUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load update record")
	}
	return record, true, nil
}

// History returns the retained corrections of id, oldest first.
func (s *Service) History(ctx context.Context, id domain.AssetID) ([]*models.AssetUpdateRecord, error) {
	history, err := s.store.ListUpdateHistory(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load update history")
	}
	return history, nil
}

// HolderOf returns the exclusive holder of a unique item. The boolean is
// false when id is not a registered unique item.
func (s *Service) HolderOf(ctx context.Context, id domain.AssetID) (domain.Identity, bool, error) {
	holder, err := s.store.FindHolder(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.NullIdentity, false, nil
		}
		return domain.NullIdentity, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load holder")
	}
	return holder, true, nil
}

// BalanceOf returns owner's fungible balance across all batches.
func (s *Service) BalanceOf(ctx context.Context, owner domain.Identity) (uint64, error) {
	balance, err := s.store.Balance(ctx, owner)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
	}
	return balance, nil
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Service) requireAdmin(caller domain.Identity) error {
	if caller != s.admin {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the registry administrator")
	}
	return nil
}

func (s *Service) requireConfigured(ctx context.Context, store ports.Store) (*models.RegistryState, error) {
	state, err := s.loadState(ctx, store)
	if err != nil {
		return nil, err
	}
	if !state.Config.IsConfigured() {
		return nil, dErrors.New(dErrors.CodeNotConfigured, "fee recipient must be configured first")
	}
	return state, nil
}

// loadState treats a registry that never committed as freshly constructed.
func (s *Service) loadState(ctx context.Context, store ports.Store) (*models.RegistryState, error) {
	state, err := store.LoadState(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.NewRegistryState(s.capacity, s.mintFee), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry state")
	}
	return state, nil
}

func (s *Service) saveState(ctx context.Context, store ports.Store, state *models.RegistryState) error {
	if err := store.SaveState(ctx, state); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registry state")
	}
	return nil
}

func findAsset(ctx context.Context, store ports.Store, id domain.AssetID) (*models.AssetRecord, error) {
	record, err := store.FindAsset(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeAssetNotFound, "asset not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}
	return record, nil
}

// settleFee moves fee from payer to recipient. A zero fee is a no-op.
func settleFee(ctx context.Context, store ports.Store, payer, recipient domain.Identity, fee uint64) error {
	if fee == 0 {
		return nil
	}
	balance, err := store.FeeBalance(ctx, payer)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fee balance")
	}
	if balance < fee {
		return dErrors.New(dErrors.CodeFeeTransferFailed, "insufficient balance to pay the mint fee")
	}
	if err := store.SetFeeBalance(ctx, payer, balance-fee); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit fee balance")
	}
	credited, err := store.FeeBalance(ctx, recipient)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fee balance")
	}
	if credited > math.MaxUint64-fee {
		return dErrors.New(dErrors.CodeFeeTransferFailed, "fee recipient balance would overflow")
	}
	if err := store.SetFeeBalance(ctx, recipient, credited+fee); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit fee balance")
	}
	return nil
}

func creditOwnership(ctx context.Context, store ports.Store, id domain.AssetID, category domain.Category, owner domain.Identity, quantity uint64) error {
	if category != domain.CategoryFungibleBatch {
		if err := store.SetHolder(ctx, id, owner); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register holder")
		}
		return nil
	}
	balance, err := store.Balance(ctx, owner)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
	}
	if balance > math.MaxUint64-quantity {
		return dErrors.New(dErrors.CodeInvalidQuantity, "owner balance would overflow")
	}
	if err := store.SetBalance(ctx, owner, balance+quantity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit balance")
	}
	return nil
}

// rebalance keeps the owner's balance equal to the batch quantities it holds
// when a correction changes a batch's quantity.
func rebalance(ctx context.Context, store ports.Store, owner domain.Identity, oldQuantity, newQuantity uint64) error {
	balance, err := store.Balance(ctx, owner)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
	}
	if balance < oldQuantity {
		return dErrors.New(dErrors.CodeInsufficientBalance, "owner balance is below the batch quantity")
	}
	remaining := balance - oldQuantity
	if remaining > math.MaxUint64-newQuantity {
		return dErrors.New(dErrors.CodeInvalidQuantity, "owner balance would overflow")
	}
	if err := store.SetBalance(ctx, owner, remaining+newQuantity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to adjust balance")
	}
	return nil
}

func moveBalance(ctx context.Context, store ports.Store, from, to domain.Identity, quantity uint64) error {
	balance, err := store.Balance(ctx, from)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
	}
	if balance < quantity {
		return dErrors.New(dErrors.CodeInsufficientBalance, "owner balance is below the batch quantity")
	}
	if err := store.SetBalance(ctx, from, balance-quantity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit balance")
	}
	credited, err := store.Balance(ctx, to)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load balance")
	}
	if credited > math.MaxUint64-quantity {
		return dErrors.New(dErrors.CodeInvalidQuantity, "recipient balance would overflow")
	}
	if err := store.SetBalance(ctx, to, credited+quantity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit balance")
	}
	return nil
}

func moveHolder(ctx context.Context, store ports.Store, id domain.AssetID, from, to domain.Identity) error {
	holder, err := store.FindHolder(ctx, id)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load holder")
	}
	if err != nil || holder != from {
		return dErrors.New(dErrors.CodeTransferNotAllowed, "holder table disagrees with asset owner")
	}
	if err := store.SetHolder(ctx, id, to); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reassign holder")
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, id domain.AssetID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "asset cache invalidation failed", "asset_id", id.String(), "error", err)
	}
}

func (s *Service) startSpan(ctx context.Context, op string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "registry."+op, trace.WithAttributes(attributes...))
}

// fail records a rejected operation. Invariant breaches are logged at error
// level; they mean the ownership tables and the asset store disagree.
func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error) error {
	code := dErrors.CodeOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(code))
	s.metrics.IncrementFailure(op, string(code))
	switch {
	case code.IsInvariantBreach():
		s.logger.ErrorContext(ctx, "registry invariant breach", "operation", op, "code", string(code), "error", err)
	case code.Class() == dErrors.ClassInternal:
		s.logger.ErrorContext(ctx, "registry operation failed", "operation", op, "code", string(code), "error", err)
	default:
		s.logger.DebugContext(ctx, "registry operation rejected", "operation", op, "code", string(code), "error", err)
	}
	return err
}
