package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=vrsdb port=5432 sslmode=disable TimeZone=Asia/Manila"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
	DATE_PARSE_FORMAT = "2006-01-02"
)

var (
	API_HOST  = os.Getenv("API_HOST")
	SMTP_FROM = os.Getenv("SMTP_FROM")
)

func GetJWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GetJWTTTL reads JWT_TTL as a duration, defaulting to 12h.
func GetJWTTTL() time.Duration {
	return getDuration("JWT_TTL", 12*time.Hour)
}

// GetOrderHoldTTL is how long a pending order keeps its vehicle reserved.
// Zero disables hold expiry.
func GetOrderHoldTTL() time.Duration {
	return getDuration("ORDER_HOLD_TTL", 0)
}

func GetLocationCacheTTL() time.Duration {
	return getDuration("LOCATION_CACHE_TTL", 10*time.Minute)
}

func GetKioskRateLimit() (float64, int) {
	rps, err := strconv.ParseFloat(os.Getenv("KIOSK_RATE_LIMIT"), 64)
	if err != nil || rps <= 0 {
		rps = 2
	}
	burst, err := strconv.Atoi(os.Getenv("KIOSK_RATE_BURST"))
	if err != nil || burst <= 0 {
		burst = 5
	}
	return rps, burst
}

func GetStorageDir() string {
	dir := os.Getenv("STORAGE_DIR")
	if dir == "" {
		return "storage"
	}
	return dir
}

func IsLocal() bool {
	return os.Getenv("API_ENV") == "local"
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s: %s\n", key, err.Error())
		return fallback
	}
	return d
}
