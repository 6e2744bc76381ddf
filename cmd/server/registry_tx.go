package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"assetledger/internal/registry/ports"
	"assetledger/internal/registry/store"
	dErrors "assetledger/pkg/domain-errors"
	txcontext "assetledger/pkg/platform/tx"
)

const defaultRegistryTxTimeout = 5 * time.Second

// registryLockKey names the transaction-scoped advisory lock every registry
// mutation holds. The lock exists before the state row does, so the first
// Bootstrap on an empty database is serialized too.
const registryLockKey int64 = 0x61737365746c6467

// registryPostgresTx runs each registry mutation in one transaction that
// first takes the registry advisory lock, so mutations commit one at a time.
type registryPostgresTx struct {
	db      *sql.DB
	store   *store.PostgresStore
	timeout time.Duration
}

func newRegistryPostgresTx(db *sql.DB, pg *store.PostgresStore, timeout time.Duration) *registryPostgresTx {
	return &registryPostgresTx{db: db, store: pg, timeout: timeout}
}

func (t *registryPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultRegistryTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := t.run(ctx, fn)
	if err != nil && ctx.Err() != nil && dErrors.CodeOf(err) == dErrors.CodeInternal {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: deadline exceeded")
	}
	return err
}

func (t *registryPostgresTx) run(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registry transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, registryLockKey); err != nil {
		return fmt.Errorf("lock registry: %w", err)
	}

	if err := fn(txcontext.WithTx(ctx, tx), t.store); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registry transaction: %w", err)
	}
	return nil
}
