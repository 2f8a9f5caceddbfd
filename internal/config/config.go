package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env       string // development|production
	HTTPAddr  string
	PublicURL string

	LogLevel string

	DBDriver string
	DBDSN    string

	RedisURL string

	// Session + Google sign-in
	SessionSecret  string
	GoogleClientID string

	// Admin surface
	AdminBearerToken string
	AdminUser        string
	AdminPassHash    string // bcrypt
	AdminEmails      []string

	// Staging spreadsheet
	SheetID                string
	SheetTab               string
	ServiceAccountJSON     string
	ServiceAccountJSONPath string

	// Blob storage for MCQ images
	BlobDriver   string // fs|s3
	BlobBasePath string // fs base dir
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	CDNBaseURL   string

	// YouTube listing
	YouTubeAPIKeys    []string
	YouTubeChannelID  string
	YouTubeMaxResults int

	// Blog sections
	BlogRoot string

	PublicCORSOrigins []string
	AdminCORSOrigins  []string
}

func FromEnv() Config {
	env := envOr("APP_ENV", "development")
	return Config{
		Env:       env,
		HTTPAddr:  envOr("HTTP_ADDR", ":8080"),
		PublicURL: os.Getenv("PUBLIC_URL"),

		LogLevel: envOr("LOG_LEVEL", "info"),

		DBDriver: envOr("DB_DRIVER", "postgres"),
		DBDSN:    envOr("DB_DSN", ""),

		RedisURL: envOr("REDIS_URL", "redis://localhost:6379"),

		SessionSecret:  envOr("SESSION_SECRET", "supersecret-dev-key"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		AdminBearerToken: os.Getenv("ADMIN_BEARER_TOKEN"),
		AdminUser:        envOr("ADMIN_USER", "admin"),
		AdminPassHash:    os.Getenv("ADMIN_PASS_HASH"),
		AdminEmails:      csvOr("ADMIN_EMAILS", ""),

		SheetID:                os.Getenv("GOOGLE_SHEET_ID"),
		SheetTab:               envOr("GOOGLE_SHEET_TAB", "mcq_master"),
		ServiceAccountJSON:     os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		ServiceAccountJSONPath: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON_PATH"),

		BlobDriver:   envOr("BLOB_DRIVER", "fs"),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),
		S3Endpoint:   os.Getenv("S3_ENDPOINT"),
		S3AccessKey:  os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:  os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Bucket:     os.Getenv("S3_BUCKET"),
		CDNBaseURL:   os.Getenv("CDN_BASE_URL"),

		YouTubeAPIKeys:    csvOr("YOUTUBE_API_KEYS", ""),
		YouTubeChannelID:  os.Getenv("YOUTUBE_CHANNEL_ID"),
		YouTubeMaxResults: envInt("YOUTUBE_MAX_RESULTS", 12),

		BlogRoot: envOr("BLOG_ROOT", "./public"),

		PublicCORSOrigins: csvOr("PUBLIC_CORS_ORIGINS", "http://localhost:3000"),
		AdminCORSOrigins:  csvOr("ADMIN_CORS_ORIGINS", "http://localhost:3000"),
	}
}

func (c Config) IsProd() bool { return c.Env == "production" }

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
