package repository

import (
	"errors"

	"sokoni/internal/domain"
	"sokoni/internal/models"

	"gorm.io/gorm"
)

type WalletRepository interface {
	GetBySellerID(sellerID uint) (*models.Wallet, error)
	GetOrCreate(sellerID uint) (*models.Wallet, error)
}

type walletRepo struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepo{db: db}
}

func (r *walletRepo) GetBySellerID(sellerID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("seller_id = ?", sellerID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walletRepo) GetOrCreate(sellerID uint) (*models.Wallet, error) {
	w, err := r.GetBySellerID(sellerID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	w = &models.Wallet{SellerID: sellerID}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}
