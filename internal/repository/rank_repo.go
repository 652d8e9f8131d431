package repository

import (
	"errors"

	"sokoni/internal/domain"
	"sokoni/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RankRepository interface {
	// UpsertAll bulk-persists a recomputed peer group keyed by seller.
	UpsertAll(snapshots []models.RankSnapshot) error
	// ListGroup returns a peer group ordered by the documented tie-break:
	// total_score desc, rating_average desc, total_bookings desc.
	ListGroup(category, subcategory string, limit int) ([]models.RankSnapshot, error)
	GetBySellerID(sellerID uint) (*models.RankSnapshot, error)
	// DeleteDeparted removes snapshot rows for sellers that left the peer
	// group since the last recompute.
	DeleteDeparted(category, subcategory string, keepSellerIDs []uint) error
}

type rankRepo struct {
	db *gorm.DB
}

func NewRankRepository(db *gorm.DB) RankRepository {
	return &rankRepo{db: db}
}

func (r *rankRepo) UpsertAll(snapshots []models.RankSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "seller_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category", "subcategory", "store_name", "city",
			"wallet_balance", "unique_customers", "total_bookings", "completed_bookings",
			"rating_average", "rating_count", "current_streak", "loyalty_points",
			"total_score", "rank_in_category", "total_in_category", "calculated_at", "updated_at",
		}),
	}).Create(&snapshots).Error
}

func (r *rankRepo) ListGroup(category, subcategory string, limit int) ([]models.RankSnapshot, error) {
	q := r.db.Where("category = ?", category)
	if subcategory != "" {
		q = q.Where("subcategory = ?", subcategory)
	}
	var snaps []models.RankSnapshot
	err := q.Order("total_score DESC, rating_average DESC, total_bookings DESC").
		Limit(limit).
		Find(&snaps).Error
	return snaps, err
}

func (r *rankRepo) GetBySellerID(sellerID uint) (*models.RankSnapshot, error) {
	var snap models.RankSnapshot
	err := r.db.Where("seller_id = ?", sellerID).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *rankRepo) DeleteDeparted(category, subcategory string, keepSellerIDs []uint) error {
	q := r.db.Where("category = ?", category)
	if subcategory != "" {
		q = q.Where("subcategory = ?", subcategory)
	}
	if len(keepSellerIDs) > 0 {
		q = q.Where("seller_id NOT IN ?", keepSellerIDs)
	}
	return q.Delete(&models.RankSnapshot{}).Error
}
