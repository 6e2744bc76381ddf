package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/lib/pq"

	"assetledger/internal/registry/models"
	"assetledger/pkg/domain"
	txcontext "assetledger/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// PostgresStore persists registry state in PostgreSQL.
// This store is pure I/O; every rule about what may be written lives in the
// service. Methods join the transaction carried in ctx when there is one.
//
// Unsigned 64-bit values are stored as NUMERIC(20,0) and travel as text.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the registry tables when they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate registry schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) exec(ctx context.Context) txcontext.Querier {
	return txcontext.Executor(ctx, s.db)
}

func (s *PostgresStore) LoadState(ctx context.Context) (*models.RegistryState, error) {
	query := `
		SELECT capacity_ceiling::text, mint_fee::text, fee_recipient, next_asset_id::text, height::text
		FROM registry_state
		WHERE id = 1
	`
	var (
		capacity, fee, nextID, height string
		recipient                     sql.NullString
	)
	err := s.exec(ctx).QueryRowContext(ctx, query).Scan(&capacity, &fee, &recipient, &nextID, &height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load registry state: %w", err)
	}

	state := &models.RegistryState{}
	if err := parseUints(
		uintField{capacity, &state.Config.CapacityCeiling},
		uintField{fee, &state.Config.MintFee},
		uintField{nextID, &state.NextID},
		uintField{height, &state.Height},
	); err != nil {
		return nil, fmt.Errorf("load registry state: %w", err)
	}
	if recipient.Valid {
		identity, err := domain.ParseIdentity(recipient.String)
		if err != nil {
			return nil, fmt.Errorf("load registry state: fee recipient: %w", err)
		}
		state.Config.FeeRecipient = &identity
	}
	return state, nil
}

func (s *PostgresStore) SaveState(ctx context.Context, state *models.RegistryState) error {
	if state == nil {
		return fmt.Errorf("registry state is required")
	}
	var recipient sql.NullString
	if state.Config.FeeRecipient != nil {
		recipient = sql.NullString{String: state.Config.FeeRecipient.String(), Valid: true}
	}
	query := `
		INSERT INTO registry_state (id, capacity_ceiling, mint_fee, fee_recipient, next_asset_id, height)
		VALUES (1, $1::numeric, $2::numeric, $3, $4::numeric, $5::numeric)
		ON CONFLICT (id) DO UPDATE SET
			capacity_ceiling = EXCLUDED.capacity_ceiling,
			mint_fee = EXCLUDED.mint_fee,
			fee_recipient = EXCLUDED.fee_recipient,
			next_asset_id = EXCLUDED.next_asset_id,
			height = EXCLUDED.height
	`
	_, err := s.exec(ctx).ExecContext(ctx, query,
		formatUint(state.Config.CapacityCeiling),
		formatUint(state.Config.MintFee),
		recipient,
		formatUint(state.NextID),
		formatUint(state.Height),
	)
	if err != nil {
		return fmt.Errorf("save registry state: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindAsset(ctx context.Context, id domain.AssetID) (*models.AssetRecord, error) {
	key, err := assetKey(id)
	if err != nil {
		return nil, ErrNotFound
	}
	query := `
		SELECT id, category, origin, certification, location, unit, quantity::text, owner, minter,
			created_at::text, last_modified_at::text, status, min_quantity::text, max_quantity::text
		FROM assets
		WHERE id = $1
	`
	record, err := scanAsset(s.exec(ctx).QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find asset: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) SaveAsset(ctx context.Context, record *models.AssetRecord) error {
	if record == nil {
		return fmt.Errorf("asset record is required")
	}
	key, err := assetKey(record.ID)
	if err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	query := `
		INSERT INTO assets (id, category, origin, certification, location, unit, quantity, owner, minter,
			created_at, last_modified_at, status, min_quantity, max_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10::numeric, $11::numeric, $12, $13::numeric, $14::numeric)
		ON CONFLICT (id) DO UPDATE SET
			origin = EXCLUDED.origin,
			certification = EXCLUDED.certification,
			quantity = EXCLUDED.quantity,
			owner = EXCLUDED.owner,
			last_modified_at = EXCLUDED.last_modified_at,
			status = EXCLUDED.status
	`
	_, err = s.exec(ctx).ExecContext(ctx, query,
		key,
		string(record.Category),
		record.Metadata.Origin,
		record.Metadata.Certification,
		record.Metadata.Location,
		record.Metadata.Unit,
		formatUint(record.Quantity),
		record.Owner.String(),
		record.Minter.String(),
		formatUint(record.CreatedAt),
		formatUint(record.LastModifiedAt),
		record.Status,
		formatUint(record.MinQuantity),
		formatUint(record.MaxQuantity),
	)
	if err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveUpdate(ctx context.Context, record *models.AssetUpdateRecord, historyCap int) error {
	if record == nil {
		return fmt.Errorf("update record is required")
	}
	key, err := assetKey(record.AssetID)
	if err != nil {
		return fmt.Errorf("save update: %w", err)
	}
	args := []any{
		key,
		record.UpdatedOrigin,
		record.UpdatedCertification,
		formatUint(record.UpdatedQuantity),
		formatUint(record.UpdatedAt),
		record.Updater.String(),
	}

	upsert := `
		INSERT INTO asset_updates (asset_id, updated_origin, updated_certification, updated_quantity, updated_at, updater)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6)
		ON CONFLICT (asset_id) DO UPDATE SET
			updated_origin = EXCLUDED.updated_origin,
			updated_certification = EXCLUDED.updated_certification,
			updated_quantity = EXCLUDED.updated_quantity,
			updated_at = EXCLUDED.updated_at,
			updater = EXCLUDED.updater
	`
	if _, err := s.exec(ctx).ExecContext(ctx, upsert, args...); err != nil {
		return fmt.Errorf("save update: %w", err)
	}

	appendHistory := `
		INSERT INTO asset_update_history (asset_id, updated_origin, updated_certification, updated_quantity, updated_at, updater)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6)
	`
	if _, err := s.exec(ctx).ExecContext(ctx, appendHistory, args...); err != nil {
		return fmt.Errorf("append update history: %w", err)
	}

	if historyCap <= 0 {
		return nil
	}
	trim := `
		DELETE FROM asset_update_history
		WHERE asset_id = $1 AND id NOT IN (
			SELECT id FROM asset_update_history WHERE asset_id = $1 ORDER BY id DESC LIMIT $2
		)
	`
	if _, err := s.exec(ctx).ExecContext(ctx, trim, key, historyCap); err != nil {
		return fmt.Errorf("trim update history: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindLastUpdate(ctx context.Context, id domain.AssetID) (*models.AssetUpdateRecord, error) {
	key, err := assetKey(id)
	if err != nil {
		return nil, ErrNotFound
	}
	query := `
		SELECT asset_id, updated_origin, updated_certification, updated_quantity::text, updated_at::text, updater
		FROM asset_updates
		WHERE asset_id = $1
	`
	record, err := scanUpdate(s.exec(ctx).QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find last update: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListUpdateHistory(ctx context.Context, id domain.AssetID) ([]*models.AssetUpdateRecord, error) {
	key, err := assetKey(id)
	if err != nil {
		return nil, nil
	}
	query := `
		SELECT asset_id, updated_origin, updated_certification, updated_quantity::text, updated_at::text, updater
		FROM asset_update_history
		WHERE asset_id = $1
		ORDER BY id
	`
	rows, err := s.exec(ctx).QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("list update history: %w", err)
	}
	defer rows.Close()

	var history []*models.AssetUpdateRecord
	for rows.Next() {
		record, err := scanUpdate(rows)
		if err != nil {
			return nil, fmt.Errorf("list update history: %w", err)
		}
		history = append(history, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list update history: %w", err)
	}
	return history, nil
}

func (s *PostgresStore) ListCategory(ctx context.Context, category domain.Category) ([]domain.AssetID, error) {
	query := `
		SELECT COALESCE(array_agg(asset_id ORDER BY position), '{}')
		FROM category_index
		WHERE category = $1
	`
	var keys pq.Int64Array
	if err := s.exec(ctx).QueryRowContext(ctx, query, string(category)).Scan(&keys); err != nil {
		return nil, fmt.Errorf("list category: %w", err)
	}
	ids := make([]domain.AssetID, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, domain.AssetID(key))
	}
	return ids, nil
}

func (s *PostgresStore) AppendCategory(ctx context.Context, category domain.Category, id domain.AssetID) error {
	key, err := assetKey(id)
	if err != nil {
		return fmt.Errorf("append category: %w", err)
	}
	query := `
		INSERT INTO category_index (category, position, asset_id)
		SELECT $1, COALESCE(MAX(position) + 1, 0), $2
		FROM category_index
		WHERE category = $1
	`
	if _, err := s.exec(ctx).ExecContext(ctx, query, string(category), key); err != nil {
		return fmt.Errorf("append category: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindHolder(ctx context.Context, id domain.AssetID) (domain.Identity, error) {
	key, err := assetKey(id)
	if err != nil {
		return domain.NullIdentity, ErrNotFound
	}
	var holder string
	err = s.exec(ctx).QueryRowContext(ctx, `SELECT holder FROM unique_holders WHERE asset_id = $1`, key).Scan(&holder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NullIdentity, ErrNotFound
		}
		return domain.NullIdentity, fmt.Errorf("find holder: %w", err)
	}
	identity, err := domain.ParseIdentity(holder)
	if err != nil {
		return domain.NullIdentity, fmt.Errorf("find holder: %w", err)
	}
	return identity, nil
}

func (s *PostgresStore) SetHolder(ctx context.Context, id domain.AssetID, holder domain.Identity) error {
	key, err := assetKey(id)
	if err != nil {
		return fmt.Errorf("set holder: %w", err)
	}
	query := `
		INSERT INTO unique_holders (asset_id, holder)
		VALUES ($1, $2)
		ON CONFLICT (asset_id) DO UPDATE SET holder = EXCLUDED.holder
	`
	if _, err := s.exec(ctx).ExecContext(ctx, query, key, holder.String()); err != nil {
		return fmt.Errorf("set holder: %w", err)
	}
	return nil
}

func (s *PostgresStore) Balance(ctx context.Context, owner domain.Identity) (uint64, error) {
	return s.readBalance(ctx, "fungible_balances", owner)
}

func (s *PostgresStore) SetBalance(ctx context.Context, owner domain.Identity, amount uint64) error {
	return s.writeBalance(ctx, "fungible_balances", owner, amount)
}

func (s *PostgresStore) FeeBalance(ctx context.Context, owner domain.Identity) (uint64, error) {
	return s.readBalance(ctx, "fee_balances", owner)
}

func (s *PostgresStore) SetFeeBalance(ctx context.Context, owner domain.Identity, amount uint64) error {
	return s.writeBalance(ctx, "fee_balances", owner, amount)
}

// table is one of two package constants, never caller input.
func (s *PostgresStore) readBalance(ctx context.Context, table string, owner domain.Identity) (uint64, error) {
	var balance string
	query := `SELECT balance::text FROM ` + table + ` WHERE owner = $1`
	err := s.exec(ctx).QueryRowContext(ctx, query, owner.String()).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", table, err)
	}
	amount, err := strconv.ParseUint(balance, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", table, err)
	}
	return amount, nil
}

// Zero balances are deleted so the tables only hold positive rows.
func (s *PostgresStore) writeBalance(ctx context.Context, table string, owner domain.Identity, amount uint64) error {
	if amount == 0 {
		if _, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM `+table+` WHERE owner = $1`, owner.String()); err != nil {
			return fmt.Errorf("write %s: %w", table, err)
		}
		return nil
	}
	query := `
		INSERT INTO ` + table + ` (owner, balance)
		VALUES ($1, $2::numeric)
		ON CONFLICT (owner) DO UPDATE SET balance = EXCLUDED.balance
	`
	if _, err := s.exec(ctx).ExecContext(ctx, query, owner.String(), formatUint(amount)); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*models.AssetRecord, error) {
	var (
		key                             int64
		category, owner, minter         string
		quantity, createdAt, modifiedAt string
		minQuantity, maxQuantity        string
		record                          models.AssetRecord
	)
	err := row.Scan(
		&key,
		&category,
		&record.Metadata.Origin,
		&record.Metadata.Certification,
		&record.Metadata.Location,
		&record.Metadata.Unit,
		&quantity,
		&owner,
		&minter,
		&createdAt,
		&modifiedAt,
		&record.Status,
		&minQuantity,
		&maxQuantity,
	)
	if err != nil {
		return nil, err
	}
	record.ID = domain.AssetID(key)
	record.Category = domain.Category(category)
	if err := parseUints(
		uintField{quantity, &record.Quantity},
		uintField{createdAt, &record.CreatedAt},
		uintField{modifiedAt, &record.LastModifiedAt},
		uintField{minQuantity, &record.MinQuantity},
		uintField{maxQuantity, &record.MaxQuantity},
	); err != nil {
		return nil, err
	}
	if record.Owner, err = domain.ParseIdentity(owner); err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	if record.Minter, err = domain.ParseIdentity(minter); err != nil {
		return nil, fmt.Errorf("minter: %w", err)
	}
	return &record, nil
}

func scanUpdate(row rowScanner) (*models.AssetUpdateRecord, error) {
	var (
		key                 int64
		quantity, updatedAt string
		updater             string
		record              models.AssetUpdateRecord
	)
	err := row.Scan(&key, &record.UpdatedOrigin, &record.UpdatedCertification, &quantity, &updatedAt, &updater)
	if err != nil {
		return nil, err
	}
	record.AssetID = domain.AssetID(key)
	if err := parseUints(
		uintField{quantity, &record.UpdatedQuantity},
		uintField{updatedAt, &record.UpdatedAt},
	); err != nil {
		return nil, err
	}
	if record.Updater, err = domain.ParseIdentity(updater); err != nil {
		return nil, fmt.Errorf("updater: %w", err)
	}
	return &record, nil
}

type uintField struct {
	text string
	dst  *uint64
}

func parseUints(fields ...uintField) error {
	for _, f := range fields {
		v, err := strconv.ParseUint(f.text, 10, 64)
		if err != nil {
			return fmt.Errorf("parse numeric %q: %w", f.text, err)
		}
		*f.dst = v
	}
	return nil
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// assetKey maps an identifier onto the BIGINT primary key.
func assetKey(id domain.AssetID) (int64, error) {
	if uint64(id) > math.MaxInt64 {
		return 0, fmt.Errorf("asset id %d exceeds the storable range", uint64(id))
	}
	return int64(id), nil
}
