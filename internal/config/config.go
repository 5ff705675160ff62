package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings, read once from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	FrontendURL string

	SessionSecret string
	SessionSecure bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// AuthJWTSecret verifies bearer tokens issued by the external identity provider.
	// Bearer auth is disabled when empty.
	AuthJWTSecret string

	GeminiAPIKey string
	GeminiModels []string
	OpenAIAPIKey string
	OpenAIModel  string
	AITimeout    time.Duration

	UploadDir      string
	StorageTimeout time.Duration

	R2AccountID       string
	R2BucketName      string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2PublicURL       string

	OCRLang        string
	OCRMaxPages    int
	OCRScale       float64
	OCRPageTimeout time.Duration

	// OCRRasterTimeout bounds rasterizing the whole document, not one page.
	OCRRasterTimeout time.Duration

	DiscordWebhookURL string
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() Config {
	return Config{
		Port:        envOr("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		FrontendURL: strings.TrimSuffix(envOr("FRONTEND_URL", "http://localhost:5173"), "/"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionSecure: envBool("SESSION_SECURE", false),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		AuthJWTSecret: os.Getenv("AUTH_JWT_SECRET"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModels: csvOr("GEMINI_MODELS", "gemini-2.0-flash,gemini-1.5-flash,gemini-1.5-pro"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  envOr("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeout:    envDuration("AI_TIMEOUT", 30*time.Second),

		UploadDir:      envOr("UPLOAD_DIR", "./uploads"),
		StorageTimeout: envDuration("STORAGE_TIMEOUT", 30*time.Second),

		R2AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		OCRLang:          envOr("OCR_LANG", "eng"),
		OCRMaxPages:      envInt("OCR_MAX_PAGES", 5),
		OCRScale:         envFloat("OCR_SCALE", 2.0),
		OCRPageTimeout:   envDuration("OCR_PAGE_TIMEOUT", 20*time.Second),
		OCRRasterTimeout: envDuration("OCR_RASTER_TIMEOUT", 60*time.Second),

		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
	}
}

// R2Configured reports whether every R2 setting is present.
func (c Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2BucketName != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2PublicURL != ""
}

// GoogleOAuthConfigured reports whether Google login can be offered.
func (c Config) GoogleOAuthConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envFloat(k string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
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
