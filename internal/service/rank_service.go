package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"sokoni/internal/domain"
	"sokoni/internal/models"
	"sokoni/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Score weights, applied to the metric copy stored on each snapshot.
const (
	weightRating          = 20.0
	weightCompleted       = 2.0
	weightUniqueCustomers = 3.0
	weightBalance         = 0.001
	weightStreak          = 5.0
	weightLoyalty         = 0.1
)

// RankMetrics are the inputs to the composite score.
type RankMetrics struct {
	RatingAverage     float64
	RatingCount       int
	TotalBookings     int
	CompletedBookings int
	UniqueCustomers   int
	WalletBalance     int64
	CurrentStreak     int
	LoyaltyPoints     int64
}

// Score computes the weighted seller score, rounded to 2 decimal places.
func Score(m RankMetrics) float64 {
	raw := m.RatingAverage*weightRating +
		float64(m.CompletedBookings)*weightCompleted +
		float64(m.UniqueCustomers)*weightUniqueCustomers +
		float64(m.WalletBalance)*weightBalance +
		float64(m.CurrentStreak)*weightStreak +
		float64(m.LoyaltyPoints)*weightLoyalty
	return math.Round(raw*100) / 100
}

// RankService recomputes peer-group snapshots on demand and serves rank and
// leaderboard reads. Recompute is triggered before every trusted read, so
// staleness is bounded by request frequency.
type RankService struct {
	sellers  repository.SellerRepository
	wallets  repository.WalletRepository
	streaks  repository.StreakRepository
	ranks    repository.RankRepository
	cache    *redis.Client // nil disables leaderboard caching
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewRankService(
	sellers repository.SellerRepository,
	wallets repository.WalletRepository,
	streaks repository.StreakRepository,
	ranks repository.RankRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *RankService {
	return &RankService{
		sellers:  sellers,
		wallets:  wallets,
		streaks:  streaks,
		ranks:    ranks,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log.With().Str("component", "ranking").Logger(),
	}
}

// RecomputePeerGroup rebuilds the snapshot rows for one peer group.
// Ordering is a stable sort on score; ties keep their relative order at
// write time, read queries apply the full tie-break.
func (s *RankService) RecomputePeerGroup(ctx context.Context, category, subcategory string) ([]models.RankSnapshot, error) {
	sellers, err := s.sellers.ListActiveGroup(category, subcategory)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	snapshots := make([]models.RankSnapshot, 0, len(sellers))
	for i := range sellers {
		seller := &sellers[i]
		m := s.collectMetrics(seller)
		snapshots = append(snapshots, models.RankSnapshot{
			SellerID:          seller.ID,
			Category:          category,
			Subcategory:       subcategory,
			StoreName:         seller.StoreName,
			City:              seller.City,
			WalletBalance:     m.WalletBalance,
			UniqueCustomers:   m.UniqueCustomers,
			TotalBookings:     m.TotalBookings,
			CompletedBookings: m.CompletedBookings,
			RatingAverage:     m.RatingAverage,
			RatingCount:       m.RatingCount,
			CurrentStreak:     m.CurrentStreak,
			LoyaltyPoints:     m.LoyaltyPoints,
			TotalScore:        Score(m),
			CalculatedAt:      now,
		})
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].TotalScore > snapshots[j].TotalScore
	})
	for i := range snapshots {
		snapshots[i].RankInCategory = i + 1
		snapshots[i].TotalInCategory = len(snapshots)
	}

	if err := s.ranks.UpsertAll(snapshots); err != nil {
		return nil, err
	}
	keep := make([]uint, len(snapshots))
	for i, snap := range snapshots {
		keep[i] = snap.SellerID
	}
	if err := s.ranks.DeleteDeparted(category, subcategory, keep); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, category, subcategory)
	return snapshots, nil
}

func (s *RankService) collectMetrics(seller *models.Seller) RankMetrics {
	m := RankMetrics{
		RatingAverage:     seller.RatingAverage,
		RatingCount:       seller.RatingCount,
		TotalBookings:     seller.TotalBookings,
		CompletedBookings: seller.CompletedBookings,
		UniqueCustomers:   seller.UniqueCustomers,
	}
	if wallet, err := s.wallets.GetBySellerID(seller.ID); err == nil {
		m.WalletBalance = wallet.Balance
	}
	if streak, err := s.streaks.GetBySellerID(seller.ID); err == nil {
		m.CurrentStreak = streak.CurrentStreak
		m.LoyaltyPoints = streak.LoyaltyPoints
	}
	return m
}

// GetMyRank recomputes the seller's peer group and returns their snapshot.
func (s *RankService) GetMyRank(ctx context.Context, sellerID uint) (*models.RankSnapshot, error) {
	seller, err := s.sellers.GetByID(sellerID)
	if err != nil {
		return nil, err
	}
	category, subcategory := seller.PeerGroup()
	if _, err := s.RecomputePeerGroup(ctx, category, subcategory); err != nil {
		return nil, err
	}
	return s.ranks.GetBySellerID(sellerID)
}

// Leaderboard bundles the top of the peer group with the caller's own row.
type Leaderboard struct {
	Top  []models.RankSnapshot `json:"top"`
	Mine *models.RankSnapshot  `json:"mine,omitempty"`
}

// GetLeaderboard serves the peer-group top list cache-first. On a miss the
// group is recomputed, read back with the documented tie-break and cached.
func (s *RankService) GetLeaderboard(ctx context.Context, sellerID uint, limit int) (*Leaderboard, error) {
	seller, err := s.sellers.GetByID(sellerID)
	if err != nil {
		return nil, err
	}
	category, subcategory := seller.PeerGroup()

	var top []models.RankSnapshot
	if cached, ok := s.cachedTop(ctx, category, subcategory, limit); ok {
		top = cached
	} else {
		if _, err := s.RecomputePeerGroup(ctx, category, subcategory); err != nil {
			return nil, err
		}
		top, err = s.ranks.ListGroup(category, subcategory, limit)
		if err != nil {
			return nil, err
		}
		s.cacheTop(ctx, category, subcategory, limit, top)
	}

	board := &Leaderboard{Top: top}
	if mine, err := s.ranks.GetBySellerID(sellerID); err == nil {
		board.Mine = mine
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return board, nil
}

// MarkStale recomputes the seller's peer group in the background. Failures
// are logged, never surfaced: rank freshness is best-effort.
func (s *RankService) MarkStale(sellerID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	seller, err := s.sellers.GetByID(sellerID)
	if err != nil {
		s.log.Warn().Err(err).Uint("seller_id", sellerID).Msg("stale signal for unknown seller")
		return
	}
	category, subcategory := seller.PeerGroup()
	if _, err := s.RecomputePeerGroup(ctx, category, subcategory); err != nil {
		s.log.Error().Err(err).Str("category", category).Str("subcategory", subcategory).Msg("stale recompute failed")
	}
}

// RecomputeAll refreshes every known peer group; used by the scheduler.
func (s *RankService) RecomputeAll(ctx context.Context) error {
	groups, err := s.sellers.ListCategories()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		key := g.Category + "|" + g.Subcategory
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err := s.RecomputePeerGroup(ctx, g.Category, g.Subcategory); err != nil {
			s.log.Error().Err(err).Str("category", g.Category).Str("subcategory", g.Subcategory).Msg("group recompute failed")
		}
	}
	return nil
}

func leaderboardKey(category, subcategory string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%s:%d", category, subcategory, limit)
}

func (s *RankService) cachedTop(ctx context.Context, category, subcategory string, limit int) ([]models.RankSnapshot, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, leaderboardKey(category, subcategory, limit)).Result()
	if err != nil {
		return nil, false
	}
	var top []models.RankSnapshot
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, false
	}
	return top, true
}

func (s *RankService) cacheTop(ctx context.Context, category, subcategory string, limit int, top []models.RankSnapshot) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(top)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, leaderboardKey(category, subcategory, limit), raw, s.cacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("leaderboard cache write failed")
	}
}

func (s *RankService) invalidateCache(ctx context.Context, category, subcategory string) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, fmt.Sprintf("leaderboard:%s:%s:*", category, subcategory), 0).Iterator()
	for iter.Next(ctx) {
		s.cache.Del(ctx, iter.Val())
	}
}
