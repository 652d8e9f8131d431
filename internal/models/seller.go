package models

import (
	"time"

	"gorm.io/gorm"
)

// Seller mirrors the marketplace seller identity plus the read-only
// aggregates this subsystem consumes for ranking. The booking and review
// subsystems own the aggregate values; they are pushed here and never
// written back.
type Seller struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	StoreName   string `gorm:"size:120" json:"store_name"`
	City        string `gorm:"size:80" json:"city"`
	Category    string `gorm:"size:60;index" json:"category"`
	Subcategory string `gorm:"size:60;index" json:"subcategory"`
	IsActive    bool   `gorm:"default:true;index" json:"is_active"`

	TotalBookings     int     `gorm:"not null;default:0" json:"total_bookings"`
	CompletedBookings int     `gorm:"not null;default:0" json:"completed_bookings"`
	UniqueCustomers   int     `gorm:"not null;default:0" json:"unique_customers"`
	RatingAverage     float64 `gorm:"not null;default:0" json:"rating_average"`
	RatingCount       int     `gorm:"not null;default:0" json:"rating_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Seller) TableName() string { return "sellers" }

// PeerGroup returns the ranking peer-group filter for the seller.
// Subcategory takes precedence over category when both are set.
func (s *Seller) PeerGroup() (category, subcategory string) {
	if s.Subcategory != "" {
		return s.Category, s.Subcategory
	}
	return s.Category, ""
}
