package repository

import (
	"errors"

	"sokoni/internal/domain"
	"sokoni/internal/models"

	"gorm.io/gorm"
)

// SellerAggregates is the read-only metric bundle pushed by the booking and
// review subsystems.
type SellerAggregates struct {
	TotalBookings     int     `json:"total_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	UniqueCustomers   int     `json:"unique_customers"`
	RatingAverage     float64 `json:"rating_average"`
	RatingCount       int     `json:"rating_count"`
}

type SellerRepository interface {
	GetByID(id uint) (*models.Seller, error)
	// ListActiveGroup returns active sellers in a peer group. An empty
	// subcategory matches the whole category.
	ListActiveGroup(category, subcategory string) ([]models.Seller, error)
	ListCategories() ([]models.Seller, error)
	UpdateAggregates(id uint, agg SellerAggregates) error
	Upsert(s *models.Seller) error
}

type sellerRepo struct {
	db *gorm.DB
}

func NewSellerRepository(db *gorm.DB) SellerRepository {
	return &sellerRepo{db: db}
}

func (r *sellerRepo) GetByID(id uint) (*models.Seller, error) {
	var s models.Seller
	err := r.db.Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sellerRepo) ListActiveGroup(category, subcategory string) ([]models.Seller, error) {
	q := r.db.Where("is_active = ? AND category = ?", true, category)
	if subcategory != "" {
		q = q.Where("subcategory = ?", subcategory)
	}
	var sellers []models.Seller
	err := q.Find(&sellers).Error
	return sellers, err
}

// ListCategories returns one seller per distinct (category, subcategory)
// pair, used by the scheduler to enumerate peer groups.
func (r *sellerRepo) ListCategories() ([]models.Seller, error) {
	var sellers []models.Seller
	err := r.db.Model(&models.Seller{}).
		Distinct("category", "subcategory").
		Where("is_active = ?", true).
		Find(&sellers).Error
	return sellers, err
}

func (r *sellerRepo) UpdateAggregates(id uint, agg SellerAggregates) error {
	res := r.db.Model(&models.Seller{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_bookings":     agg.TotalBookings,
		"completed_bookings": agg.CompletedBookings,
		"unique_customers":   agg.UniqueCustomers,
		"rating_average":     agg.RatingAverage,
		"rating_count":       agg.RatingCount,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sellerRepo) Upsert(s *models.Seller) error {
	return r.db.Save(s).Error
}
