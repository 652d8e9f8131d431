package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCatalogues(t *testing.T) {
	rewards := DefaultRewards()
	assert.Equal(t, int64(1000), rewards["streak_daily"])
	assert.Equal(t, int64(5000), rewards["streak_checkpoint"])
	assert.Equal(t, int64(10000), rewards["referral"])

	costs := DefaultCosts()
	assert.Equal(t, int64(20000), costs["boost_purchase"])
	assert.Equal(t, int64(80000), costs["vip_badge"])
}

func TestCatalogueEnvOverride(t *testing.T) {
	t.Setenv("SOKONI_REWARD_STREAK_DAILY", "1500")
	t.Setenv("SOKONI_REWARD_NEW_CATEGORY", "250")
	t.Setenv("SOKONI_REWARD_REFERRAL", "-10") // rejected, must keep default

	rewards := catalogueFromEnv("SOKONI_REWARD_", DefaultRewards())
	assert.Equal(t, int64(1500), rewards["streak_daily"])
	assert.Equal(t, int64(250), rewards["new_category"])
	assert.Equal(t, int64(10000), rewards["referral"])
	assert.Equal(t, int64(5000), rewards["streak_checkpoint"], "untouched defaults survive")
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8088", cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Ranking.LeaderboardCacheTTL)
	assert.Equal(t, 20, cfg.Ranking.LeaderboardLimit)
	assert.False(t, cfg.Scheduler.RankRefreshEnabled)
	assert.Empty(t, cfg.Admin.PasswordHash)
	assert.NotEmpty(t, cfg.Credits.Rewards)
	assert.NotEmpty(t, cfg.Credits.Costs)
}
