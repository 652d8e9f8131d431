package service

import (
	"sort"
	"sync"

	"sokoni/internal/domain"
	"sokoni/internal/models"
	"sokoni/internal/repository"

	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the ledger and wallet repositories.
// Atomically holds the store lock for the whole unit of work, mirroring the
// serialization the row lock provides in MySQL, and Append enforces the
// unique (seller, idempotency key) index.
type memStore struct {
	mu      sync.Mutex
	wallets map[uint]*models.Wallet
	entries []*models.LedgerEntry
	nextID  uint
}

func newMemStore() *memStore {
	return &memStore{wallets: make(map[uint]*models.Wallet)}
}

func (m *memStore) Atomically(fn func(tx repository.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{s: m})
}

func (m *memStore) FindByID(id uint) (*models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{s: m}).FindByID(id)
}

func (m *memStore) List(sellerID uint, page, limit int) ([]models.LedgerEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.LedgerEntry
	for _, e := range m.entries {
		if e.SellerID == sellerID {
			all = append(all, *e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memStore) Recent(sellerID uint, n int) ([]models.LedgerEntry, error) {
	out, _, err := m.List(sellerID, 1, n)
	return out, err
}

func (m *memStore) SumCompleted(sellerID uint) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var credits, debits int64
	for _, e := range m.entries {
		if e.SellerID != sellerID {
			continue
		}
		if e.Status != domain.EntryStatusCompleted && e.Status != domain.EntryStatusReversed {
			continue
		}
		if e.IsCredit() {
			credits += e.Amount
		} else {
			debits += e.Amount
		}
	}
	return credits, debits, nil
}

// WalletRepository side.

func (m *memStore) GetBySellerID(sellerID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[sellerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memStore) GetOrCreate(sellerID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.getOrCreateLocked(sellerID)
	cp := *w
	return &cp, nil
}

func (m *memStore) getOrCreateLocked(sellerID uint) *models.Wallet {
	if w, ok := m.wallets[sellerID]; ok {
		return w
	}
	m.nextID++
	w := &models.Wallet{ID: m.nextID, SellerID: sellerID}
	m.wallets[sellerID] = w
	return w
}

type memTx struct {
	s *memStore
}

func (t *memTx) WalletForUpdate(sellerID uint) (*models.Wallet, error) {
	cp := *t.s.getOrCreateLocked(sellerID)
	return &cp, nil
}

func (t *memTx) UpdateWallet(w *models.Wallet) error {
	cp := *w
	t.s.wallets[w.SellerID] = &cp
	return nil
}

func (t *memTx) FindByKey(sellerID uint, key string) (*models.LedgerEntry, error) {
	for _, e := range t.s.entries {
		if e.SellerID == sellerID && e.IdempotencyKey == key {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *memTx) Append(e *models.LedgerEntry) error {
	for _, existing := range t.s.entries {
		if existing.SellerID == e.SellerID && existing.IdempotencyKey == e.IdempotencyKey {
			return gorm.ErrDuplicatedKey
		}
	}
	t.s.nextID++
	e.ID = t.s.nextID
	cp := *e
	t.s.entries = append(t.s.entries, &cp)
	return nil
}

func (t *memTx) FindByID(id uint) (*models.LedgerEntry, error) {
	for _, e := range t.s.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (t *memTx) LinkReversal(original, reversal *models.LedgerEntry) error {
	for _, e := range t.s.entries {
		if e.ID == original.ID {
			e.Status = domain.EntryStatusReversed
			revID := reversal.ID
			e.ReversedByID = &revID
			return nil
		}
	}
	return domain.ErrNotFound
}

// memStreaks is an in-memory StreakRepository.
type memStreaks struct {
	mu      sync.Mutex
	records map[uint]*models.StreakRecord
	nextID  uint
	saveErr error
}

func newMemStreaks() *memStreaks {
	return &memStreaks{records: make(map[uint]*models.StreakRecord)}
}

func (m *memStreaks) GetBySellerID(sellerID uint) (*models.StreakRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[sellerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memStreaks) GetOrCreate(sellerID uint) (*models.StreakRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[sellerID]; ok {
		cp := *rec
		return &cp, nil
	}
	m.nextID++
	rec := &models.StreakRecord{ID: m.nextID, SellerID: sellerID}
	m.records[sellerID] = rec
	cp := *rec
	return &cp, nil
}

func (m *memStreaks) Save(rec *models.StreakRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *rec
	m.records[rec.SellerID] = &cp
	return nil
}

// memRanks is an in-memory RankRepository applying the documented read
// tie-break.
type memRanks struct {
	mu        sync.Mutex
	snapshots map[uint]models.RankSnapshot
}

func newMemRanks() *memRanks {
	return &memRanks{snapshots: make(map[uint]models.RankSnapshot)}
}

func (m *memRanks) UpsertAll(snapshots []models.RankSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range snapshots {
		m.snapshots[s.SellerID] = s
	}
	return nil
}

func (m *memRanks) ListGroup(category, subcategory string, limit int) ([]models.RankSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RankSnapshot
	for _, s := range m.snapshots {
		if s.Category != category {
			continue
		}
		if subcategory != "" && s.Subcategory != subcategory {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		if out[i].RatingAverage != out[j].RatingAverage {
			return out[i].RatingAverage > out[j].RatingAverage
		}
		return out[i].TotalBookings > out[j].TotalBookings
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRanks) GetBySellerID(sellerID uint) (*models.RankSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[sellerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memRanks) DeleteDeparted(category, subcategory string, keepSellerIDs []uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	keep := make(map[uint]bool, len(keepSellerIDs))
	for _, id := range keepSellerIDs {
		keep[id] = true
	}
	for id, s := range m.snapshots {
		if s.Category != category {
			continue
		}
		if subcategory != "" && s.Subcategory != subcategory {
			continue
		}
		if !keep[id] {
			delete(m.snapshots, id)
		}
	}
	return nil
}

// memSellers is an in-memory SellerRepository.
type memSellers struct {
	mu      sync.Mutex
	sellers map[uint]models.Seller
}

func newMemSellers() *memSellers {
	return &memSellers{sellers: make(map[uint]models.Seller)}
}

func (m *memSellers) add(s models.Seller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sellers[s.ID] = s
}

func (m *memSellers) GetByID(id uint) (*models.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sellers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memSellers) ListActiveGroup(category, subcategory string) ([]models.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Seller
	for _, s := range m.sellers {
		if !s.IsActive || s.Category != category {
			continue
		}
		if subcategory != "" && s.Subcategory != subcategory {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memSellers) ListCategories() ([]models.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var out []models.Seller
	for _, s := range m.sellers {
		key := s.Category + "|" + s.Subcategory
		if !seen[key] {
			seen[key] = true
			out = append(out, models.Seller{Category: s.Category, Subcategory: s.Subcategory})
		}
	}
	return out, nil
}

func (m *memSellers) UpdateAggregates(id uint, agg repository.SellerAggregates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sellers[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.TotalBookings = agg.TotalBookings
	s.CompletedBookings = agg.CompletedBookings
	s.UniqueCustomers = agg.UniqueCustomers
	s.RatingAverage = agg.RatingAverage
	s.RatingCount = agg.RatingCount
	m.sellers[id] = s
	return nil
}

func (m *memSellers) Upsert(s *models.Seller) error {
	m.add(*s)
	return nil
}
