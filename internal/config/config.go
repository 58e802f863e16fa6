package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"userhub/backend/internal/hash"
	"userhub/backend/internal/models"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	Argon hash.Params

	ESURL      string
	ESUser     string
	ESPassword string
	UserIndex  string

	KafkaAddress string
	KafkaTopic   string

	LoginRatePerSec float64
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found, using system environment: %v", err)
	}

	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "userhub"),

		AccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		RefreshSecret: []byte(os.Getenv("REFRESH_SECRET")),
		AccessTTL:     time.Duration(getEnvInt64("ACCESS_TOKEN_EXPIRY", 900)) * time.Second,
		RefreshTTL:    time.Duration(getEnvInt64("REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,

		Argon: hash.Params{
			Time:    uint32(getEnvInt64("ARGON_TIME", 3)),
			Memory:  uint32(getEnvInt64("ARGON_MEMORY_KIB", 64*1024)),
			Threads: uint8(getEnvInt64("ARGON_THREADS", 1)),
			SaltLen: 16,
			KeyLen:  32,
		},

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		UserIndex:  getEnv("ES_USER_INDEX", "users"),

		KafkaAddress: os.Getenv("KAFKA_ADDRESS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "user-events"),

		LoginRatePerSec: float64(getEnvInt64("LOGIN_RATE_PER_SEC", 10)),
	}

	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET and REFRESH_SECRET must be set")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, fmt.Errorf("JWT_SECRET and REFRESH_SECRET must differ")
	}

	return cfg, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
