package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Log       LogConfig
	Credits   CreditsConfig
	Ranking   RankingConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// AdminConfig holds the staff login credentials. PasswordHash is a bcrypt
// hash; admin login is disabled when it is empty.
type AdminConfig struct {
	Email        string
	PasswordHash string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// CreditsConfig carries the reward and service-cost catalogues. Amounts are
// in the smallest currency unit. Injected into the transaction service so
// tests can substitute fixtures.
type CreditsConfig struct {
	Rewards map[string]int64
	Costs   map[string]int64
}

type RankingConfig struct {
	LeaderboardCacheTTL time.Duration
	LeaderboardLimit    int
}

type SchedulerConfig struct {
	RankRefreshEnabled  bool
	RankRefreshInterval time.Duration
}

// DefaultRewards is the built-in earn catalogue: category -> credit amount.
func DefaultRewards() map[string]int64 {
	return map[string]int64{
		"first_login":       1000,
		"streak_daily":      1000,
		"streak_restart":    300,
		"streak_checkpoint": 5000,
		"booking_complete":  2000,
		"review_received":   500,
		"referral":          10000,
	}
}

// DefaultCosts is the built-in spend catalogue: service type -> debit amount.
func DefaultCosts() map[string]int64 {
	return map[string]int64{
		"boost_purchase":    20000,
		"vip_badge":         80000,
		"highlight_listing": 15000,
	}
}

func Load() *Config {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8088"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_DSN", "sokoni:sokoni@tcp(localhost:3306)/sokoni?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			Enabled:  getBool("REDIS_ENABLED", false),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
			Issuer:        getEnv("JWT_ISSUER", "sokoni"),
		},
		Admin: AdminConfig{
			Email:        getEnv("ADMIN_EMAIL", "admin@sokoni.local"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getBool("LOG_PRETTY", false),
		},
		Credits: CreditsConfig{
			Rewards: catalogueFromEnv("SOKONI_REWARD_", DefaultRewards()),
			Costs:   catalogueFromEnv("SOKONI_COST_", DefaultCosts()),
		},
		Ranking: RankingConfig{
			LeaderboardCacheTTL: getDuration("LEADERBOARD_CACHE_TTL", 2*time.Minute),
			LeaderboardLimit:    getInt("LEADERBOARD_LIMIT", 20),
		},
		Scheduler: SchedulerConfig{
			RankRefreshEnabled:  getBool("RANK_REFRESH_ENABLED", false),
			RankRefreshInterval: getDuration("RANK_REFRESH_INTERVAL", 30*time.Minute),
		},
	}
}

// catalogueFromEnv overlays env overrides on a default catalogue, e.g.
// SOKONI_REWARD_STREAK_DAILY=1500 overrides the streak_daily reward.
func catalogueFromEnv(prefix string, defaults map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], prefix) {
			continue
		}
		category := strings.ToLower(strings.TrimPrefix(parts[0], prefix))
		if amount, err := strconv.ParseInt(parts[1], 10, 64); err == nil && amount > 0 {
			out[category] = amount
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
