package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"walletnote/internal/log"
)

// OCR engines accepted by OCR_ENGINE.
const (
	OCREnginePlaceholder = "placeholder"
	OCREngineGemini      = "gemini"
)

var ocrEngines = []string{OCREnginePlaceholder, OCREngineGemini}

type Config struct {
	// HTTP Server
	Port               string
	CookieSecure       bool
	SessionTTL         time.Duration
	RateLimitPerMinute int
	CacheTTL           time.Duration
	LogLevel           string
	TrustedProxies     []string

	// Database
	SQLiteDBPath string

	// Uploads
	UploadDir      string
	MaxUploadBytes int64

	// OCR
	OCREngine    string
	GeminiAPIKey string
	GeminiModel  string

	// AMQP; an empty URL processes receipts inline
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),
		SessionTTL:         getEnvDuration("SESSION_TTL", 168*time.Hour),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CacheTTL:           getEnvDuration("CACHE_TTL", time.Minute),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/walletnote.db"),

		UploadDir:      getEnv("UPLOAD_DIR", "./data/uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		OCREngine:    getEnv("OCR_ENGINE", OCREnginePlaceholder),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "walletnote"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "receipt_scans"),
	}
}

// Queued reports whether receipt scans go through AMQP.
func (c *Config) Queued() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR such as 10.0.0.0/8", cidr))
		}
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else if msg := ensureDir(filepath.Dir(c.SQLiteDBPath)); msg != "" {
		errors = append(errors, fmt.Sprintf("cannot create SQLite database directory: %s", msg))
	}

	if c.UploadDir == "" {
		errors = append(errors, "upload directory cannot be empty")
	} else if msg := ensureDir(c.UploadDir); msg != "" {
		errors = append(errors, fmt.Sprintf("cannot create upload directory: %s", msg))
	}

	if c.MaxUploadBytes < 1024 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at least 1024 bytes", c.MaxUploadBytes))
	} else if c.MaxUploadBytes > 50<<20 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at most 50 MiB", c.MaxUploadBytes))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if !slices.Contains(ocrEngines, c.OCREngine) {
		errors = append(errors, fmt.Sprintf("invalid OCR engine '%s': must be one of %v", c.OCREngine, ocrEngines))
	}
	if c.OCREngine == OCREngineGemini && c.GeminiAPIKey == "" {
		errors = append(errors, "GEMINI_API_KEY is required when OCR_ENGINE is gemini")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ensureDir creates dir when missing and describes any failure.
func ensureDir(dir string) string {
	if dir == "" || dir == "." {
		return ""
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Sprintf("'%s': %v", dir, err)
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
