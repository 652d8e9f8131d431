package models

import (
	"time"
)

// RankSnapshot is one seller's position in their peer group at the time of
// the last recompute. The metric columns copy the inputs that produced
// TotalScore so the snapshot is auditable without re-reading the sources.
type RankSnapshot struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SellerID    uint   `gorm:"uniqueIndex;not null" json:"seller_id"`
	Category    string `gorm:"size:60;index:idx_rank_group" json:"category"`
	Subcategory string `gorm:"size:60;index:idx_rank_group" json:"subcategory"`

	// Display copies for leaderboard reads.
	StoreName string `gorm:"size:120" json:"store_name"`
	City      string `gorm:"size:80" json:"city"`

	// Metric copies.
	WalletBalance     int64   `gorm:"not null;default:0" json:"wallet_balance"`
	UniqueCustomers   int     `gorm:"not null;default:0" json:"unique_customers"`
	TotalBookings     int     `gorm:"not null;default:0" json:"total_bookings"`
	CompletedBookings int     `gorm:"not null;default:0" json:"completed_bookings"`
	RatingAverage     float64 `gorm:"not null;default:0" json:"rating_average"`
	RatingCount       int     `gorm:"not null;default:0" json:"rating_count"`
	CurrentStreak     int     `gorm:"not null;default:0" json:"current_streak"`
	LoyaltyPoints     int64   `gorm:"not null;default:0" json:"loyalty_points"`

	TotalScore      float64   `gorm:"not null;default:0;index" json:"total_score"`
	RankInCategory  int       `gorm:"not null;default:0" json:"rank_in_category"`
	TotalInCategory int       `gorm:"not null;default:0" json:"total_in_category"`
	CalculatedAt    time.Time `json:"calculated_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RankSnapshot) TableName() string { return "rank_snapshots" }
