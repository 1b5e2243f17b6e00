package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode      string // Set via flag, not env
	MockServices bool

	// Server
	Port           string
	ServiceAPIPort string // internal test API; empty disables it
	SiteName       string
	TemplateDir    string // optional override of the embedded templates

	// Admin
	AdminUsername string
	AdminPassword string // plain text or a bcrypt hash ("$2...")
	SessionSecret string
	SessionTTL    time.Duration

	// Listing sheet
	SheetBackend  string // "google" or "sqlite"
	SheetID       string
	SheetRange    string
	SQLitePath    string
	ListingsTTL   time.Duration
	MaxPhotoBytes int64
	MaxPhotoCount int

	// Google service identity (sheets + read-only drive)
	GoogleCredentialsJSON string
	GoogleCredentialsFile string

	// Google interactive consent (write-capable drive)
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURI   string
	GoogleTokenPath     string
	GoogleDriveFolderID string

	// File store
	FileStore     string // "drive" or "s3"
	ImageResizer  string // "lanczos", "catmullrom", "cwebp" or "none"
	ImageQuality  int
	ImageCacheAge time.Duration

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string

	// Geocoding
	GeocodeAPIKey  string
	GeocodeBaseURL string

	// Email
	SmtpHost         string
	SmtpPort         int
	SmtpSecure       bool
	SmtpUsername     string
	SmtpPassword     string
	SmtpFromAddress  string
	ContactToAddress string
	EmailLogPath     string

	// MongoDB (optional contact archive and email templates)
	MongoURI    string
	MongoDbName string

	// Redis (optional shared cache and task queue)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Cloudflare
	CloudflareTurnstileSecretKey string
	CloudflareTurnstileSiteKey   string
	CloudflareSiteVerifyURL      string

	// Rate limiting of form posts
	RateLimitBucketSize      int
	RateLimitRefillPerMinute int
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MockServices = getEnv("MOCK_SERVICES", "") == "true"
	cfg.Port = getEnv("PORT", "3000")
	cfg.ServiceAPIPort = getEnv("SERVICE_API_PORT", "")
	cfg.SiteName = getEnv("SITE_NAME", "Emlak Uzmanınız")
	cfg.TemplateDir = getEnv("TEMPLATE_DIR", "")

	if cfg.AdminUsername, err = getRequiredEnv("ADMIN_USERNAME"); err != nil {
		return nil, err
	}
	if cfg.AdminPassword, err = getRequiredEnv("ADMIN_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.SessionSecret, err = getRequiredEnv("SESSION_SECRET"); err != nil {
		return nil, err
	}

	cfg.SheetBackend = getEnv("SHEET_BACKEND", "google")
	switch cfg.SheetBackend {
	case "google":
		if cfg.SheetID, err = getRequiredEnv("GOOGLE_SHEET_ID"); err != nil {
			return nil, err
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("invalid SHEET_BACKEND: %q", cfg.SheetBackend)
	}
	cfg.SheetRange = getEnv("SHEET_RANGE", "Sayfa1!A:N")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "listings.db")

	cfg.GoogleCredentialsJSON = getEnv("GOOGLE_CREDENTIALS", "")
	cfg.GoogleCredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"))
	cfg.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", "")
	cfg.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET", "")
	cfg.GoogleRedirectURI = getEnv("GOOGLE_REDIRECT_URI", "http://localhost:"+cfg.Port+"/admin/google/oauth2callback")
	cfg.GoogleTokenPath = getEnv("GOOGLE_TOKEN_PATH", "token.json")
	cfg.GoogleDriveFolderID = getEnv("GOOGLE_DRIVE_FOLDER_ID", "")

	cfg.FileStore = getEnv("FILE_STORE", "drive")
	if cfg.FileStore != "drive" && cfg.FileStore != "s3" {
		return nil, fmt.Errorf("invalid FILE_STORE: %q", cfg.FileStore)
	}
	cfg.ImageResizer = getEnv("IMAGE_RESIZER", "lanczos")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "eu-central-1")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")

	cfg.GeocodeAPIKey = getEnv("GOOGLE_API_KEY", getEnv("GOOGLE_MAPS_API_KEY", ""))
	cfg.GeocodeBaseURL = getEnv("GEOCODE_BASE_URL", "https://maps.googleapis.com/maps/api/geocode/json")

	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USER", "")
	cfg.SmtpPassword = getEnv("SMTP_PASS", "")
	cfg.SmtpFromAddress = getEnv("EMAIL_FROM", "no-reply@example.com")
	cfg.ContactToAddress = getEnv("EMAIL_TO", cfg.SmtpFromAddress)
	cfg.EmailLogPath = getEnv("LOG_EMAILS", "")

	cfg.MongoURI = getEnv("MONGO_URI", "")
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "emlak")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")

	cfg.CloudflareTurnstileSecretKey = getEnv("CLOUDFLARE_TURNSTILE_SECRET_KEY", "")
	cfg.CloudflareTurnstileSiteKey = getEnv("CLOUDFLARE_TURNSTILE_SITE_KEY", "")
	cfg.CloudflareSiteVerifyURL = getEnv("CLOUDFLARE_SITEVERIFY_URL", "https://challenges.cloudflare.com/turnstile/v0/siteverify")

	// Load numeric and time duration values with defaults and parsing
	sessionTTLHours, err := strconv.ParseInt(getEnv("SESSION_TTL_HOURS", "24"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}
	cfg.SessionTTL = time.Duration(sessionTTLHours) * time.Hour

	ttlMs, err := strconv.ParseInt(getEnv("PROPERTIES_CACHE_TTL_MS", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PROPERTIES_CACHE_TTL_MS: %w", err)
	}
	if ttlMs < 0 {
		ttlMs = 0
	}
	cfg.ListingsTTL = time.Duration(ttlMs) * time.Millisecond

	maxPhotoMB, err := strconv.ParseInt(getEnv("MAX_PHOTO_SIZE_MB", "20"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_PHOTO_SIZE_MB: %w", err)
	}
	cfg.MaxPhotoBytes = maxPhotoMB * 1024 * 1024

	cfg.MaxPhotoCount, err = strconv.Atoi(getEnv("MAX_PHOTO_COUNT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_PHOTO_COUNT: %w", err)
	}

	cfg.ImageQuality, err = strconv.Atoi(getEnv("IMAGE_QUALITY", "82"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_QUALITY: %w", err)
	}

	cacheAgeSeconds, err := strconv.ParseInt(getEnv("IMAGE_CACHE_MAX_AGE_SECONDS", "2592000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_CACHE_MAX_AGE_SECONDS: %w", err)
	}
	cfg.ImageCacheAge = time.Duration(cacheAgeSeconds) * time.Second

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.SmtpSecure, err = strconv.ParseBool(getEnv("SMTP_SECURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_SECURE: %w", err)
	}

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillPerMinute, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_PER_MINUTE: %w", err)
	}

	if cfg.RunMode == "bg" && cfg.RedisAddr == "" {
		return nil, fmt.Errorf("run mode 'bg' requires REDIS_ADDR")
	}

	return cfg, nil
}

// DriveOAuthConfigured reports whether the interactive-consent client is set up.
func (c *Config) DriveOAuthConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
