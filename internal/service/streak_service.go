package service

import (
	"fmt"
	"time"

	"sokoni/internal/domain"
	"sokoni/internal/models"
	"sokoni/internal/repository"

	"github.com/rs/zerolog"
)

// RankStaleSignaler receives fire-and-forget notifications that a seller's
// rank snapshot is out of date.
type RankStaleSignaler interface {
	MarkStale(sellerID uint)
}

// StreakService runs the daily check-in state machine. The check-in itself
// always succeeds once the streak record is saved; reward credits and rank
// signals are best-effort on top of it.
type StreakService struct {
	streaks repository.StreakRepository
	tx      *TransactionService
	ranks   RankStaleSignaler
	log     zerolog.Logger
	now     func() time.Time
}

func NewStreakService(
	streaks repository.StreakRepository,
	tx *TransactionService,
	ranks RankStaleSignaler,
	log zerolog.Logger,
) *StreakService {
	return &StreakService{
		streaks: streaks,
		tx:      tx,
		ranks:   ranks,
		log:     log.With().Str("component", "streaks").Logger(),
		now:     time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *StreakService) WithClock(now func() time.Time) *StreakService {
	s.now = now
	return s
}

type CheckInResult struct {
	AlreadyCheckedIn bool                 `json:"already_checked_in"`
	Streak           *models.StreakRecord `json:"streak"`
	RewardsIssued    []models.LedgerEntry `json:"rewards_issued"`
}

// CheckIn advances the seller's streak for the current calendar day.
// Idempotent at day granularity: a second call on the same day reports
// AlreadyCheckedIn without changing state.
func (s *StreakService) CheckIn(sellerID uint) (*CheckInResult, error) {
	today := dateOnly(s.now())

	rec, err := s.streaks.GetOrCreate(sellerID)
	if err != nil {
		return nil, err
	}

	if rec.LastLoginDate != nil && dateOnly(*rec.LastLoginDate).Equal(today) {
		return &CheckInResult{AlreadyCheckedIn: true, Streak: rec}, nil
	}

	var rewardCategories []string
	checkpointHit := false

	switch {
	case rec.LastLoginDate == nil:
		// First check-in ever.
		rec.CurrentStreak = 1
		rec.TotalLoginDays = 1
		rec.StreakStartDate = &today
		rewardCategories = append(rewardCategories, domain.CategoryFirstLogin)

	case dateOnly(*rec.LastLoginDate).AddDate(0, 0, 1).Equal(today):
		// Consecutive day.
		rec.CurrentStreak++
		rec.TotalLoginDays++
		rewardCategories = append(rewardCategories, domain.CategoryStreakDaily)
		if rec.CurrentStreak%domain.StreakCheckpointInterval == 0 {
			rec.LastCheckpoint = rec.CurrentStreak
			rewardCategories = append(rewardCategories, domain.CategoryStreakCheckpoint)
			checkpointHit = true
		}

	default:
		// Gap of two or more days: soft-landing reset to the last
		// checkpoint multiple, or to 1 for short streaks.
		s.fillMissedDays(rec, today)
		rec.CurrentStreak = resetStreakFloor(rec.CurrentStreak)
		rec.TotalLoginDays++
		rec.StreakStartDate = &today
		rewardCategories = append(rewardCategories, domain.CategoryStreakRestart)
	}

	if rec.CurrentStreak > rec.LongestStreak {
		rec.LongestStreak = rec.CurrentStreak
	}
	rec.LastLoginDate = &today
	rec.LoyaltyPoints += 10
	if checkpointHit {
		rec.LoyaltyPoints += 50
	}
	rec.WeekHistory = appendDay(rec.WeekHistory, today, domain.DayStatusHit)

	if err := s.streaks.Save(rec); err != nil {
		return nil, err
	}

	result := &CheckInResult{Streak: rec}
	for _, category := range rewardCategories {
		entry, err := s.issueReward(sellerID, category, today, rec)
		if err != nil {
			// At-least-once delivery is preferred over blocking the
			// check-in; the credit can be replayed with the same key.
			s.log.Error().Err(err).Uint("seller_id", sellerID).Str("category", category).Msg("streak reward failed")
			continue
		}
		result.RewardsIssued = append(result.RewardsIssued, *entry)
	}

	if s.ranks != nil {
		go s.ranks.MarkStale(sellerID)
	}
	return result, nil
}

// GetStreak returns the seller's streak record, zero-valued if they have
// never checked in.
func (s *StreakService) GetStreak(sellerID uint) (*models.StreakRecord, error) {
	rec, err := s.streaks.GetBySellerID(sellerID)
	if err == nil {
		return rec, nil
	}
	return &models.StreakRecord{SellerID: sellerID}, nil
}

func (s *StreakService) issueReward(sellerID uint, category string, today time.Time, rec *models.StreakRecord) (*models.LedgerEntry, error) {
	key := fmt.Sprintf("streak-%s-%d-%s", category, sellerID, today.Format("2006-01-02"))
	if category == domain.CategoryStreakCheckpoint {
		key = fmt.Sprintf("streak-checkpoint-%d-%d", sellerID, rec.LastCheckpoint)
	}
	return s.tx.Earn(sellerID, category, key, fmt.Sprintf("%d", rec.ID), domain.RefTypeStreak)
}

// fillMissedDays records the gap days as missed, bounded by the week window.
func (s *StreakService) fillMissedDays(rec *models.StreakRecord, today time.Time) {
	if rec.LastLoginDate == nil {
		return
	}
	day := dateOnly(*rec.LastLoginDate).AddDate(0, 0, 1)
	for i := 0; day.Before(today) && i < domain.WeekHistoryLen; i++ {
		rec.WeekHistory = appendDay(rec.WeekHistory, day, domain.DayStatusMissed)
		day = day.AddDate(0, 0, 1)
	}
}

// resetStreakFloor implements the soft-landing rule: a broken streak falls
// back to its highest full checkpoint multiple, or to 1 when it never
// reached one.
func resetStreakFloor(previous int) int {
	floor := (previous / domain.StreakCheckpointInterval) * domain.StreakCheckpointInterval
	if floor > 0 {
		return floor
	}
	return 1
}

func appendDay(history []models.DayRecord, day time.Time, status string) []models.DayRecord {
	history = append(history, models.DayRecord{
		Date:   day.Format("2006-01-02"),
		Status: status,
	})
	if len(history) > domain.WeekHistoryLen {
		history = history[len(history)-domain.WeekHistoryLen:]
	}
	return history
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
