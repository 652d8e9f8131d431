package models

import (
	"time"

	"sokoni/internal/domain"
)

// LedgerEntry is one append-only balance change. Entries are immutable once
// written except for reversal linkage and the status flip to REVERSED.
// BalanceBefore/BalanceAfter snapshot the wallet at write time so the ledger
// audits itself independently of the cache.
type LedgerEntry struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	SellerID       uint   `gorm:"not null;index;uniqueIndex:idx_ledger_idem" json:"seller_id"`
	Type           string `gorm:"size:20;not null;index" json:"type"`
	Amount         int64  `gorm:"not null" json:"amount"` // magnitude, always > 0; direction is Type
	BalanceBefore  int64  `gorm:"not null" json:"balance_before"`
	BalanceAfter   int64  `gorm:"not null" json:"balance_after"`
	Category       string `gorm:"size:40;not null;index" json:"category"`
	ReferenceID    string `gorm:"size:64" json:"reference_id,omitempty"`
	ReferenceType  string `gorm:"size:30" json:"reference_type,omitempty"`
	Status         string `gorm:"size:20;not null;index" json:"status"`
	IdempotencyKey string `gorm:"size:64;not null;uniqueIndex:idx_ledger_idem" json:"idempotency_key"`
	Actor          string `gorm:"size:64" json:"actor,omitempty"`

	ReversalOfID *uint `gorm:"index" json:"reversal_of_id,omitempty"`
	ReversedByID *uint `json:"reversed_by_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// IsCredit reports whether the entry increases the balance.
func (e *LedgerEntry) IsCredit() bool {
	return e.Type == domain.EntryTypeCredit || e.Type == domain.EntryTypeAdminAdd || e.Type == domain.EntryTypeRelease
}

// Signed returns the amount with direction applied.
func (e *LedgerEntry) Signed() int64 {
	if e.IsCredit() {
		return e.Amount
	}
	return -e.Amount
}
