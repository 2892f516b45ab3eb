package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken    string
	AdminID     int64
	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PaymentCheckInterval time.Duration
	UserSyncInterval     time.Duration
	SweepInterval        time.Duration
	BroadcastDelay       time.Duration

	RenewURL string
	DiaryURL string
	HelpURL  string
}

// Load reads config.env (when present) and assembles the runtime config from
// the environment. Missing optional values fall back to the defaults the bot
// has always run with.
func Load() Config {
	if err := godotenv.Load("config.env"); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load config.env: %v", err)
	}

	redisHost := getEnv("REDIS_HOST", "localhost")
	redisPort := getEnv("REDIS_PORT", "6379")

	return Config{
		BotToken:    strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		AdminID:     getEnvInt64("ADMIN_ID", 0),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		RedisAddr:     redisHost + ":" + redisPort,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		PaymentCheckInterval: time.Duration(getEnvInt("PAYMENT_CHECK_INTERVAL_SECONDS", 30)) * time.Second,
		UserSyncInterval:     time.Duration(getEnvInt("USER_SYNC_INTERVAL_MINUTES", 10)) * time.Minute,
		SweepInterval:        time.Duration(getEnvInt("SWEEP_INTERVAL_HOURS", 24)) * time.Hour,
		BroadcastDelay:       time.Duration(getEnvInt("BROADCAST_DELAY_MS", 100)) * time.Millisecond,

		RenewURL: getEnv("RENEW_URL", "https://trubetribe.ru/sr_cont"),
		DiaryURL: getEnv("DIARY_URL", "https://trubetribe.ru/"),
		HelpURL:  getEnv("HELP_URL", "https://t.me/peaceful_room_help"),
	}
}

func getEnv(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s value %q, using default %d", name, v, def)
		return def
	}
	return n
}

func getEnvInt64(name string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value %q, using default %d", name, v, def)
		return def
	}
	return n
}
