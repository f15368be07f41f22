package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                string
	MongoURI            string
	MongoDatabase       string
	SurveyCollection    string
	ResponderCollection string
	AnswerCollection    string
	Timeout             time.Duration
	ServerLog           *log.Logger
	JWTSecret           []byte
	JWTIssuer           string
	JWTTTL              time.Duration
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	RateLimit           int64
	RateWindow          time.Duration
	CacheTTL            time.Duration
	AuditEndpoint       string
	AuditFallbackPath   string
	AuditTimeout        time.Duration
	AllowedOrigins      []string
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	timeout := 10 * time.Second
	if v := strings.TrimSpace(os.Getenv("MONGO_CONNECT_TIMEOUT")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		}
	}

	jwtSecret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))
	if jwtSecret == "" {
		log.Fatal("AUTH_JWT_SECRET must be configured")
	}

	jwtTTL := 60 * time.Minute
	if v := strings.TrimSpace(os.Getenv("AUTH_JWT_TTL")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			jwtTTL = parsed
		}
	}

	redisDB := 0
	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			redisDB = parsed
		}
	}

	rateLimit := int64(60)
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			rateLimit = parsed
		}
	}

	rateWindow := time.Minute
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			rateWindow = parsed
		}
	}

	cacheTTL := time.Hour
	if v := strings.TrimSpace(os.Getenv("SURVEY_CACHE_TTL")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cacheTTL = parsed
		}
	}

	auditTimeout := 3 * time.Second
	if v := strings.TrimSpace(os.Getenv("AUDIT_TIMEOUT")); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			auditTimeout = parsed
		}
	}

	return Config{
		Addr:                envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:            envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:       envOrDefault("MONGO_DB", "survey-feedback"),
		SurveyCollection:    envOrDefault("SURVEY_COLLECTION", "surveys"),
		ResponderCollection: envOrDefault("RESPONDER_COLLECTION", "responders"),
		AnswerCollection:    envOrDefault("ANSWER_COLLECTION", "answers"),
		Timeout:             timeout,
		ServerLog:           log.New(os.Stdout, "[survey-feedback-api] ", log.LstdFlags|log.Lshortfile),
		JWTSecret:           []byte(jwtSecret),
		JWTIssuer:           envOrDefault("AUTH_JWT_ISSUER", "survey-feedback-api"),
		JWTTTL:              jwtTTL,
		RedisAddr:           envOrDefault("REDIS_ADDR", "redis:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             redisDB,
		RateLimit:           rateLimit,
		RateWindow:          rateWindow,
		CacheTTL:            cacheTTL,
		AuditEndpoint:       strings.TrimSpace(os.Getenv("AUDIT_COLLECTOR_URL")),
		AuditFallbackPath:   envOrDefault("AUDIT_FALLBACK_PATH", "storage/logs"),
		AuditTimeout:        auditTimeout,
		AllowedOrigins:      parseList("API_ALLOWED_ORIGINS", []string{"*"}),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
