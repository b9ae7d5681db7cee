package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	JWTSecret   string
	TokenTTL    time.Duration
	KafkaAddr   string
	ESURL       string
	ESUser      string
	ESPassword  string
	PhotoDir    string
	LogLevel    string
}

// Load reads .env (when present) plus the process environment once at
// startup. Everything downstream receives values by injection.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment", err)
	}

	cfg := &Config{
		Port:       getDefault("PORT", "8080"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getDefault("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		KafkaAddr:  os.Getenv("KAFKA_ADDRESS"),
		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		PhotoDir:   getDefault("PHOTO_DIR", "photos"),
		LogLevel:   getDefault("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	ttlMinutes := 30
	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES %q", v)
		}
		ttlMinutes = n
	}
	cfg.TokenTTL = time.Duration(ttlMinutes) * time.Minute

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

func getDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
