package service

import (
	"context"
	"sync"
	"time"

	"assetledger/internal/registry/ports"
	dErrors "assetledger/pkg/domain-errors"
)

// StoreTx provides the atomic boundary for registry mutations. Either every
// write made by fn becomes visible or none does.
// Implementations may wrap a database transaction or, in-memory, a staged
// copy guarded by a registry-wide lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error
}

// defaultTxTimeout is the maximum duration for a registry transaction.
const defaultTxTimeout = 5 * time.Second

// stagedTx serializes transactions with a single mutex. Every registry
// mutation touches the singleton state row, so finer sharding buys nothing.
type stagedTx struct {
	mu      sync.Mutex
	stager  ports.Stager
	timeout time.Duration
}

// NewStagedTx runs transactions against copies staged by stager.
func NewStagedTx(stager ports.Stager, timeout time.Duration) StoreTx {
	return &stagedTx{stager: stager, timeout: timeout}
}

func (t *stagedTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	staged, commit := t.stager.Stage()
	if err := fn(ctx, staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted before commit")
	}
	commit()
	return nil
}
