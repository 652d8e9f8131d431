package service

import (
	"context"
	"testing"

	"sokoni/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRankFixture() (*RankService, *memSellers, *memStore, *memStreaks, *memRanks) {
	sellers := newMemSellers()
	store := newMemStore()
	streaks := newMemStreaks()
	ranks := newMemRanks()
	svc := NewRankService(sellers, store, streaks, ranks, nil, 0, zerolog.Nop())
	return svc, sellers, store, streaks, ranks
}

func seedWallet(store *memStore, sellerID uint, balance int64) {
	w, _ := store.GetOrCreate(sellerID)
	w.Balance = balance
	store.mu.Lock()
	store.wallets[sellerID] = w
	store.mu.Unlock()
}

func seedStreak(streaks *memStreaks, sellerID uint, current int, loyalty int64) {
	_ = streaks.Save(&models.StreakRecord{
		SellerID:      sellerID,
		CurrentStreak: current,
		LoyaltyPoints: loyalty,
	})
}

func TestScoreWeights(t *testing.T) {
	m := RankMetrics{
		RatingAverage:     4.5,
		CompletedBookings: 10,
		UniqueCustomers:   5,
		WalletBalance:     10000,
		CurrentStreak:     7,
		LoyaltyPoints:     120,
	}
	// 90 + 20 + 15 + 10 + 35 + 12
	assert.Equal(t, 182.0, Score(m))
}

func TestScoreRoundsToTwoDecimals(t *testing.T) {
	m := RankMetrics{RatingAverage: 4.333}
	assert.Equal(t, 86.66, Score(m))

	m = RankMetrics{WalletBalance: 1234}
	assert.Equal(t, 1.23, Score(m))
}

func TestScoreZeroMetrics(t *testing.T) {
	assert.Equal(t, 0.0, Score(RankMetrics{}))
}

func TestRecomputePeerGroupAssignsRanks(t *testing.T) {
	svc, sellers, store, streaks, ranks := newRankFixture()

	sellers.add(models.Seller{ID: 1, StoreName: "Mama Njeri", Category: "beauty", IsActive: true, RatingAverage: 4.8, CompletedBookings: 40, UniqueCustomers: 25})
	sellers.add(models.Seller{ID: 2, StoreName: "Kazi Safi", Category: "beauty", IsActive: true, RatingAverage: 3.1, CompletedBookings: 5, UniqueCustomers: 3})
	sellers.add(models.Seller{ID: 3, StoreName: "Duka Bora", Category: "beauty", IsActive: true, RatingAverage: 4.0, CompletedBookings: 20, UniqueCustomers: 10})
	seedWallet(store, 1, 50000)
	seedStreak(streaks, 1, 14, 200)

	snapshots, err := svc.RecomputePeerGroup(context.Background(), "beauty", "")
	require.NoError(t, err)
	require.Len(t, snapshots, 3)

	assert.Equal(t, uint(1), snapshots[0].SellerID)
	assert.Equal(t, uint(3), snapshots[1].SellerID)
	assert.Equal(t, uint(2), snapshots[2].SellerID)
	for i, snap := range snapshots {
		assert.Equal(t, i+1, snap.RankInCategory)
		assert.Equal(t, 3, snap.TotalInCategory)
		assert.False(t, snap.CalculatedAt.IsZero())
	}
	assert.Greater(t, snapshots[0].TotalScore, snapshots[1].TotalScore)

	// Metric copies land on the snapshot.
	assert.Equal(t, int64(50000), snapshots[0].WalletBalance)
	assert.Equal(t, 14, snapshots[0].CurrentStreak)
	assert.Equal(t, int64(200), snapshots[0].LoyaltyPoints)

	stored, err := ranks.GetBySellerID(1)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RankInCategory)
}

func TestRecomputeIsDeterministic(t *testing.T) {
	svc, sellers, _, _, _ := newRankFixture()

	for id := uint(1); id <= 5; id++ {
		sellers.add(models.Seller{ID: id, Category: "repairs", IsActive: true, RatingAverage: 4.0})
	}

	first, err := svc.RecomputePeerGroup(context.Background(), "repairs", "")
	require.NoError(t, err)
	second, err := svc.RecomputePeerGroup(context.Background(), "repairs", "")
	require.NoError(t, err)

	require.Len(t, second, 5)
	for i := range first {
		assert.Equal(t, first[i].SellerID, second[i].SellerID)
		assert.Equal(t, first[i].RankInCategory, second[i].RankInCategory)
	}
}

func TestRecomputeSkipsInactiveSellers(t *testing.T) {
	svc, sellers, _, _, ranks := newRankFixture()

	sellers.add(models.Seller{ID: 1, Category: "beauty", IsActive: true, RatingAverage: 4.0})
	sellers.add(models.Seller{ID: 2, Category: "beauty", IsActive: false, RatingAverage: 5.0})

	snapshots, err := svc.RecomputePeerGroup(context.Background(), "beauty", "")
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, uint(1), snapshots[0].SellerID)

	_, err = ranks.GetBySellerID(2)
	assert.Error(t, err)
}

func TestRecomputeDropsDepartedSellers(t *testing.T) {
	svc, sellers, _, _, ranks := newRankFixture()

	sellers.add(models.Seller{ID: 1, Category: "beauty", IsActive: true})
	sellers.add(models.Seller{ID: 2, Category: "beauty", IsActive: true})
	_, err := svc.RecomputePeerGroup(context.Background(), "beauty", "")
	require.NoError(t, err)
	_, err = ranks.GetBySellerID(2)
	require.NoError(t, err)

	// Seller 2 deactivates between recomputes.
	sellers.add(models.Seller{ID: 2, Category: "beauty", IsActive: false})
	snapshots, err := svc.RecomputePeerGroup(context.Background(), "beauty", "")
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	_, err = ranks.GetBySellerID(2)
	assert.Error(t, err, "departed seller must not linger on the board")
	assert.Equal(t, 1, snapshots[0].TotalInCategory)
}

func TestSubcategoryNarrowsPeerGroup(t *testing.T) {
	svc, sellers, _, _, _ := newRankFixture()

	sellers.add(models.Seller{ID: 1, Category: "beauty", Subcategory: "nails", IsActive: true, RatingAverage: 3.0})
	sellers.add(models.Seller{ID: 2, Category: "beauty", Subcategory: "hair", IsActive: true, RatingAverage: 5.0})
	sellers.add(models.Seller{ID: 3, Category: "beauty", Subcategory: "nails", IsActive: true, RatingAverage: 4.0})

	snap, err := svc.GetMyRank(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.RankInCategory, "ranked against nails only")
	assert.Equal(t, 2, snap.TotalInCategory)
	assert.Equal(t, "nails", snap.Subcategory)
}

func TestGetMyRankUnknownSeller(t *testing.T) {
	svc, _, _, _, _ := newRankFixture()
	_, err := svc.GetMyRank(context.Background(), 404)
	assert.Error(t, err)
}

func TestGetLeaderboardTopAndMine(t *testing.T) {
	svc, sellers, _, _, _ := newRankFixture()

	for id := uint(1); id <= 4; id++ {
		sellers.add(models.Seller{ID: id, Category: "repairs", IsActive: true, RatingAverage: float64(id)})
	}

	board, err := svc.GetLeaderboard(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, board.Top, 2)
	assert.Equal(t, uint(4), board.Top[0].SellerID)
	assert.Equal(t, uint(3), board.Top[1].SellerID)
	require.NotNil(t, board.Mine)
	assert.Equal(t, uint(1), board.Mine.SellerID)
	assert.Equal(t, 4, board.Mine.RankInCategory, "caller sees their own rank even below the cut")
}

func TestLeaderboardTieBreak(t *testing.T) {
	_, _, _, _, ranks := newRankFixture()

	require.NoError(t, ranks.UpsertAll([]models.RankSnapshot{
		{SellerID: 1, Category: "beauty", TotalScore: 100, RatingAverage: 4.0, TotalBookings: 50},
		{SellerID: 2, Category: "beauty", TotalScore: 100, RatingAverage: 4.5, TotalBookings: 10},
		{SellerID: 3, Category: "beauty", TotalScore: 100, RatingAverage: 4.0, TotalBookings: 80},
		{SellerID: 4, Category: "beauty", TotalScore: 120, RatingAverage: 1.0, TotalBookings: 1},
	}))

	top, err := ranks.ListGroup("beauty", "", 10)
	require.NoError(t, err)
	require.Len(t, top, 4)
	assert.Equal(t, uint(4), top[0].SellerID, "score first")
	assert.Equal(t, uint(2), top[1].SellerID, "then rating average")
	assert.Equal(t, uint(3), top[2].SellerID, "then booking volume")
	assert.Equal(t, uint(1), top[3].SellerID)
}

func TestRecomputeAllCoversEveryGroup(t *testing.T) {
	svc, sellers, _, _, ranks := newRankFixture()

	sellers.add(models.Seller{ID: 1, Category: "beauty", IsActive: true})
	sellers.add(models.Seller{ID: 2, Category: "repairs", IsActive: true})
	sellers.add(models.Seller{ID: 3, Category: "repairs", Subcategory: "phones", IsActive: true})

	require.NoError(t, svc.RecomputeAll(context.Background()))

	for id := uint(1); id <= 3; id++ {
		_, err := ranks.GetBySellerID(id)
		assert.NoError(t, err, "seller %d missing a snapshot", id)
	}
}

func TestMarkStaleRefreshesGroup(t *testing.T) {
	svc, sellers, _, _, ranks := newRankFixture()

	sellers.add(models.Seller{ID: 1, Category: "beauty", IsActive: true})
	svc.MarkStale(1)

	snap, err := ranks.GetBySellerID(1)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.RankInCategory)
}

func TestMarkStaleUnknownSellerIsSilent(t *testing.T) {
	svc, _, _, _, _ := newRankFixture()
	assert.NotPanics(t, func() { svc.MarkStale(404) })
}
