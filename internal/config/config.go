package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         string
	DBDriver     string
	DBUrl        string
	JWTSecret    string
	CookieSecure bool
	CountPost    int
	PageCacheTTL time.Duration
	LogLevel     string

	MediaBackend string
	MediaRoot    string
	MediaURL     string

	AWSBucket    string
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
}

func LoadConfig() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		DBDriver:     getEnv("DB_DRIVER", "sqlite"),
		DBUrl:        getEnv("DATABASE_URL", "yatube.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		CountPost:    getEnvInt("COUNT_POST", 10),
		PageCacheTTL: getEnvDuration("PAGE_CACHE_TTL", 20*time.Second),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		MediaBackend: getEnv("MEDIA_BACKEND", "local"),
		MediaRoot:    getEnv("MEDIA_ROOT", "media"),
		MediaURL:     getEnv("MEDIA_URL", "/media"),

		AWSBucket:    os.Getenv("AWS_BUCKET_NAME"),
		AWSRegion:    os.Getenv("AWS_REGION"),
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt ignores values that are not positive integers.
func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}
