package models

import (
	"time"
)

// DayRecord is one calendar day in a streak week history.
type DayRecord struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Status string `json:"status"`
}

// StreakRecord tracks a seller's daily check-in streak. Created lazily on
// first check-in; mutated at most once per calendar day.
type StreakRecord struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SellerID        uint       `gorm:"uniqueIndex;not null" json:"seller_id"`
	CurrentStreak   int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak   int        `gorm:"not null;default:0" json:"longest_streak"`
	LastLoginDate   *time.Time `json:"last_login_date"`
	StreakStartDate *time.Time `json:"streak_start_date"`
	TotalLoginDays  int        `gorm:"not null;default:0" json:"total_login_days"`
	LastCheckpoint  int        `gorm:"not null;default:0" json:"last_checkpoint"` // always a multiple of 7
	LoyaltyPoints   int64      `gorm:"not null;default:0" json:"loyalty_points"`

	WeekHistory []DayRecord `gorm:"serializer:json" json:"week_history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StreakRecord) TableName() string { return "streak_records" }
