package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBPath    string
	RedisAddr string

	// Account id whose bets force the scripted outcome sequence. 0 disables it.
	FixedOutcomeUID int64

	Game GameConfig
}

type GameConfig struct {
	WaitingDelay time.Duration
	CrashDelay   time.Duration
	TickInterval time.Duration
}

func Load() *Config {
	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "db.sqlite"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		FixedOutcomeUID: getEnvInt64("FIXED_OUTCOME_UID", 0),
		Game: GameConfig{
			WaitingDelay: getEnvDuration("GAME_WAITING_DELAY", 5*time.Second),
			CrashDelay:   getEnvDuration("GAME_CRASH_DELAY", 3*time.Second),
			TickInterval: getEnvDuration("GAME_TICK_INTERVAL", 50*time.Millisecond),
		},
	}

	if os.Getenv("API_KEY") == "" || os.Getenv("ADMIN_TOKEN") == "" {
		log.Fatal("Missing critical environment variables")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
