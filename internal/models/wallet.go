package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet is the denormalized per-seller balance cache. The ledger is
// authoritative; Balance must always equal sum(credits) - sum(debits) over
// completed ledger entries. Only the transaction service mutates it.
type Wallet struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	SellerID          uint       `gorm:"uniqueIndex;not null" json:"seller_id"`
	Balance           int64      `gorm:"not null;default:0" json:"balance"`
	HeldAmount        int64      `gorm:"not null;default:0" json:"held_amount"`
	TotalEarned       int64      `gorm:"not null;default:0" json:"total_earned"`
	TotalSpent        int64      `gorm:"not null;default:0" json:"total_spent"`
	LastTransactionAt *time.Time `json:"last_transaction_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Seller Seller `gorm:"foreignKey:SellerID" json:"-"`
}

func (Wallet) TableName() string { return "wallets" }

// Available is the spendable balance: raw balance minus held amounts.
func (w *Wallet) Available() int64 {
	return w.Balance - w.HeldAmount
}
