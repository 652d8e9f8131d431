package repository

import (
	"errors"

	"sokoni/internal/domain"
	"sokoni/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerTx is the unit of work handed to callers of Atomically. Everything
// done through it commits or rolls back together; WalletForUpdate takes a
// row lock so concurrent writers for the same seller serialize.
type LedgerTx interface {
	WalletForUpdate(sellerID uint) (*models.Wallet, error)
	UpdateWallet(w *models.Wallet) error
	FindByKey(sellerID uint, key string) (*models.LedgerEntry, error)
	Append(e *models.LedgerEntry) error
	FindByID(id uint) (*models.LedgerEntry, error)
	LinkReversal(original, reversal *models.LedgerEntry) error
}

type LedgerRepository interface {
	Atomically(fn func(tx LedgerTx) error) error
	FindByID(id uint) (*models.LedgerEntry, error)
	List(sellerID uint, page, limit int) ([]models.LedgerEntry, int64, error)
	Recent(sellerID uint, n int) ([]models.LedgerEntry, error)
	// SumCompleted recomputes credit and debit totals from the ledger,
	// independent of the wallet cache.
	SumCompleted(sellerID uint) (credits, debits int64, err error)
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) Atomically(fn func(tx LedgerTx) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{tx: tx})
	})
}

func (r *ledgerRepo) FindByID(id uint) (*models.LedgerEntry, error) {
	return findEntryByID(r.db, id)
}

func (r *ledgerRepo) List(sellerID uint, page, limit int) ([]models.LedgerEntry, int64, error) {
	var total int64
	if err := r.db.Model(&models.LedgerEntry{}).Where("seller_id = ?", sellerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []models.LedgerEntry
	err := r.db.Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&entries).Error
	return entries, total, err
}

func (r *ledgerRepo) Recent(sellerID uint, n int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&entries).Error
	return entries, err
}

func (r *ledgerRepo) SumCompleted(sellerID uint) (int64, int64, error) {
	type row struct {
		Credits int64
		Debits  int64
	}
	var out row
	err := r.db.Model(&models.LedgerEntry{}).
		Select(`
			COALESCE(SUM(CASE WHEN type IN ('CREDIT','ADMIN_ADD','RELEASE') THEN amount ELSE 0 END), 0) AS credits,
			COALESCE(SUM(CASE WHEN type IN ('DEBIT','ADMIN_DEDUCT','HOLD') THEN amount ELSE 0 END), 0) AS debits`).
		// REVERSED entries were applied when completed; the opposite
		// reversal entry cancels them in the sum.
		Where("seller_id = ? AND status IN ?", sellerID, []string{domain.EntryStatusCompleted, domain.EntryStatusReversed}).
		Scan(&out).Error
	return out.Credits, out.Debits, err
}

type ledgerTx struct {
	tx *gorm.DB
}

func (t *ledgerTx) WalletForUpdate(sellerID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("seller_id = ?", sellerID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = models.Wallet{SellerID: sellerID}
		if err := t.tx.Create(&w).Error; err != nil {
			return nil, err
		}
		return &w, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (t *ledgerTx) UpdateWallet(w *models.Wallet) error {
	return t.tx.Save(w).Error
}

func (t *ledgerTx) FindByKey(sellerID uint, key string) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := t.tx.Where("seller_id = ? AND idempotency_key = ?", sellerID, key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (t *ledgerTx) Append(e *models.LedgerEntry) error {
	return t.tx.Create(e).Error
}

func (t *ledgerTx) FindByID(id uint) (*models.LedgerEntry, error) {
	return findEntryByID(t.tx, id)
}

func (t *ledgerTx) LinkReversal(original, reversal *models.LedgerEntry) error {
	return t.tx.Model(original).Updates(map[string]interface{}{
		"status":         domain.EntryStatusReversed,
		"reversed_by_id": reversal.ID,
	}).Error
}

func findEntryByID(db *gorm.DB, id uint) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := db.Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
