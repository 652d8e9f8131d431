package repository

import (
	"errors"

	"sokoni/internal/domain"
	"sokoni/internal/models"

	"gorm.io/gorm"
)

type StreakRepository interface {
	GetBySellerID(sellerID uint) (*models.StreakRecord, error)
	GetOrCreate(sellerID uint) (*models.StreakRecord, error)
	Save(rec *models.StreakRecord) error
}

type streakRepo struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepo{db: db}
}

func (r *streakRepo) GetBySellerID(sellerID uint) (*models.StreakRecord, error) {
	var rec models.StreakRecord
	err := r.db.Where("seller_id = ?", sellerID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *streakRepo) GetOrCreate(sellerID uint) (*models.StreakRecord, error) {
	rec, err := r.GetBySellerID(sellerID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	rec = &models.StreakRecord{SellerID: sellerID}
	if err := r.db.Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *streakRepo) Save(rec *models.StreakRecord) error {
	return r.db.Save(rec).Error
}
