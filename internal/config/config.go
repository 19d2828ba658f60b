package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI     string
	DBName       string
	Port         string
	GinMode      string
	CORSOrigins  []string
	PublicBaseURL string

	// Auth
	JWTSecret    string
	JWTExpiresIn string
	BcryptCost   int

	// Gemini
	GeminiAPIKey    string
	GeminiModel     string
	GeminiTier      string
	MaxAttempts     int
	RetryDelay      time.Duration
	GenerationTimeout time.Duration

	// File storage
	FileStorageDir string
	MaxFileSize    int64
	AllowedTypes   []string

	// Redis
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// OTP
	OTPTTL time.Duration

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// SMTP
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	SMTPFrom    string
	AdminEmails []string

	// Quota alerts
	QuotaDailyTokenLimit int
	QuotaWarnPercent     int
	QuotaScanInterval    time.Duration

	// Source fetch
	FetchTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/edunexa"),
		DBName:        getEnv("DB_NAME", "edunexa"),
		Port:          getEnv("PORT", "5000"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ","),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:5000"),

		JWTSecret:    getEnv("JWT_SECRET_KEY", ""),
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "720h"),
		BcryptCost:   getEnvInt("BCRYPT_COST", 10),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTier:        getEnv("GEMINI_TIER", "free"),
		MaxAttempts:       getEnvInt("GEMINI_MAX_ATTEMPTS", 3),
		RetryDelay:        getEnvDuration("GEMINI_RETRY_DELAY", 5*time.Second),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 2*time.Minute),

		FileStorageDir: getEnv("FILE_STORAGE_DIR", "./storage"),
		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 20971520), // 20MB
		AllowedTypes:   strings.Split(getEnv("ALLOWED_FILE_TYPES", "application/pdf"), ","),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTPTTL: getEnvDuration("OTP_TTL", 5*time.Minute),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		SMTPHost:    getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		SMTPUser:    getEnv("EMAIL_USER", ""),
		SMTPPass:    getEnv("EMAIL_PASS", ""),
		SMTPFrom:    getEnv("SMTP_FROM", ""),
		AdminEmails: strings.Split(getEnv("ADMIN_EMAILS", ""), ","),

		QuotaDailyTokenLimit: getEnvInt("QUOTA_DAILY_TOKEN_LIMIT", 250000),
		QuotaWarnPercent:     getEnvInt("QUOTA_WARN_PERCENT", 80),
		QuotaScanInterval:    getEnvDuration("QUOTA_SCAN_INTERVAL", 15*time.Minute),

		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is required - set it in .env file")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
