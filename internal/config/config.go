// Package config reads runtime settings from the environment. A .env file in
// the working directory is loaded by the binaries through godotenv/autoload
// before Load runs.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full set of knobs for the game server and the historian.
type Config struct {
	Port     string
	Env      string
	LogLevel logrus.Level

	StoreBackend   string
	RedisAddr      string
	RedisDB        int
	GameTTL        time.Duration
	HistoryQueue   string
	HistoryEnabled bool

	MaxCommitAttempts int
	StoreTimeout      time.Duration

	TokenExpire    time.Duration
	AllowedOrigins []string

	SpecialCardChance float64 // negative keeps each variant's own odds

	ActionRatePerSec float64
	ActionRateBurst  int

	DatabaseEnabled bool

	HistorianBatchSize  int
	HistorianFlush      time.Duration
	HistorianInactivity time.Duration
}

// Load builds a Config from environment variables, falling back to defaults
// for anything unset or unparsable.
func Load() Config {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}

	return Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("UNO_ENV", "development"),
		LogLevel: level,

		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		GameTTL:        getEnvDuration("GAME_TTL", 24*time.Hour),
		HistoryQueue:   getEnv("HISTORY_QUEUE_NAME", "uno_actions"),
		HistoryEnabled: getEnvBool("HISTORY_ENABLED", false),

		MaxCommitAttempts: getEnvInt("MAX_COMMIT_ATTEMPTS", 3),
		StoreTimeout:      getEnvDuration("STORE_TIMEOUT", 2*time.Second),

		TokenExpire:    getEnvDuration("TOKEN_EXPIRE_TIME", 24*time.Hour),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		SpecialCardChance: getEnvFloat("UNO_SPECIAL_CARD_CHANCE", -1),

		ActionRatePerSec: getEnvFloat("ACTION_RATE_PER_SEC", 5),
		ActionRateBurst:  getEnvInt("ACTION_RATE_BURST", 10),

		DatabaseEnabled: getEnvBool("DATABASE_ENABLED", false),

		HistorianBatchSize:  getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush:      time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		HistorianInactivity: time.Duration(getEnvInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
	}
}

// IsProduction reports whether UNO_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// NewLogger returns a logrus logger configured for this environment.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	if c.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

// getEnvDuration accepts Go duration strings ("90s") or plain seconds ("90").
func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
