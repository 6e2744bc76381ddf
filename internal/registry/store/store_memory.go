package store

import (
	"context"
	"maps"
	"sync"

	"assetledger/internal/registry/models"
	"assetledger/internal/registry/ports"
	"assetledger/pkg/domain"
	"assetledger/pkg/platform/sentinel"
)

// ErrNotFound is returned when a requested key does not exist in the store.
var ErrNotFound = sentinel.ErrNotFound

// tables is one consistent copy of the registry's keyed stores.
type tables struct {
	state       *models.RegistryState
	assets      map[domain.AssetID]*models.AssetRecord
	lastUpdates map[domain.AssetID]*models.AssetUpdateRecord
	history     map[domain.AssetID][]*models.AssetUpdateRecord
	categories  map[domain.Category][]domain.AssetID
	holders     map[domain.AssetID]domain.Identity
	balances    map[domain.Identity]uint64
	feeBalances map[domain.Identity]uint64
}

func newTables() *tables {
	return &tables{
		assets:      make(map[domain.AssetID]*models.AssetRecord),
		lastUpdates: make(map[domain.AssetID]*models.AssetUpdateRecord),
		history:     make(map[domain.AssetID][]*models.AssetUpdateRecord),
		categories:  make(map[domain.Category][]domain.AssetID),
		holders:     make(map[domain.AssetID]domain.Identity),
		balances:    make(map[domain.Identity]uint64),
		feeBalances: make(map[domain.Identity]uint64),
	}
}

// clone copies the maps. Records are never mutated in place, so sharing the
// pointers between copies is safe.
func (t *tables) clone() *tables {
	c := &tables{
		assets:      maps.Clone(t.assets),
		lastUpdates: maps.Clone(t.lastUpdates),
		history:     maps.Clone(t.history),
		categories:  maps.Clone(t.categories),
		holders:     maps.Clone(t.holders),
		balances:    maps.Clone(t.balances),
		feeBalances: maps.Clone(t.feeBalances),
	}
	if t.state != nil {
		c.state = t.state.Clone()
	}
	return c
}

// InMemoryStore keeps registry state in process memory. Writes made through
// Stage are invisible to readers until committed.
type InMemoryStore struct {
	mu   sync.RWMutex
	data *tables
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: newTables()}
}

// Stage returns a private copy of the store. commit swaps the copy in.
func (s *InMemoryStore) Stage() (ports.Store, func()) {
	s.mu.RLock()
	staged := &InMemoryStore{data: s.data.clone()}
	s.mu.RUnlock()

	return staged, func() {
		staged.mu.RLock()
		data := staged.data
		staged.mu.RUnlock()

		s.mu.Lock()
		s.data = data
		s.mu.Unlock()
	}
}

func (s *InMemoryStore) LoadState(_ context.Context) (*models.RegistryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.state == nil {
		return nil, ErrNotFound
	}
	return s.data.state.Clone(), nil
}

func (s *InMemoryStore) SaveState(_ context.Context, state *models.RegistryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.state = state.Clone()
	return nil
}

func (s *InMemoryStore) FindAsset(_ context.Context, id domain.AssetID) (*models.AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.data.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}

func (s *InMemoryStore) SaveAsset(_ context.Context, record *models.AssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.assets[record.ID] = record.Clone()
	return nil
}

func (s *InMemoryStore) SaveUpdate(_ context.Context, record *models.AssetUpdateRecord, historyCap int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *record
	s.data.lastUpdates[record.AssetID] = &stored

	prior := s.data.history[record.AssetID]
	if historyCap > 0 && len(prior) >= historyCap {
		prior = prior[len(prior)-historyCap+1:]
	}
	// always build a fresh slice; staged copies share backing arrays
	history := make([]*models.AssetUpdateRecord, 0, len(prior)+1)
	history = append(history, prior...)
	s.data.history[record.AssetID] = append(history, &stored)
	return nil
}

func (s *InMemoryStore) FindLastUpdate(_ context.Context, id domain.AssetID) (*models.AssetUpdateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.data.lastUpdates[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *record
	return &c, nil
}

func (s *InMemoryStore) ListUpdateHistory(_ context.Context, id domain.AssetID) ([]*models.AssetUpdateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.data.history[id]
	out := make([]*models.AssetUpdateRecord, 0, len(history))
	for _, record := range history {
		c := *record
		out = append(out, &c)
	}
	return out, nil
}

func (s *InMemoryStore) ListCategory(_ context.Context, category domain.Category) ([]domain.AssetID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AssetID{}, s.data.categories[category]...), nil
}

func (s *InMemoryStore) AppendCategory(_ context.Context, category domain.Category, id domain.AssetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prior := s.data.categories[category]
	ids := make([]domain.AssetID, 0, len(prior)+1)
	ids = append(ids, prior...)
	s.data.categories[category] = append(ids, id)
	return nil
}

func (s *InMemoryStore) FindHolder(_ context.Context, id domain.AssetID) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	holder, ok := s.data.holders[id]
	if !ok {
		return domain.NullIdentity, ErrNotFound
	}
	return holder, nil
}

func (s *InMemoryStore) SetHolder(_ context.Context, id domain.AssetID, holder domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.holders[id] = holder
	return nil
}

func (s *InMemoryStore) Balance(_ context.Context, owner domain.Identity) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.balances[owner], nil
}

func (s *InMemoryStore) SetBalance(_ context.Context, owner domain.Identity, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount == 0 {
		delete(s.data.balances, owner)
		return nil
	}
	s.data.balances[owner] = amount
	return nil
}

func (s *InMemoryStore) FeeBalance(_ context.Context, owner domain.Identity) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.feeBalances[owner], nil
}

func (s *InMemoryStore) SetFeeBalance(_ context.Context, owner domain.Identity, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount == 0 {
		delete(s.data.feeBalances, owner)
		return nil
	}
	s.data.feeBalances[owner] = amount
	return nil
}
