package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	LogLevel           string

	// Image sources
	AzureAccountName string
	AzureAccountKey  string
	S3Region         string
	AllowedHosts     []string
	// LocalRoot enables local file references confined to this directory.
	// Empty disables them for API callers.
	LocalRoot string

	// Platform collaborators
	DisplayWidth  int
	DisplayHeight int
	FFprobePath   string
	FFmpegPath    string

	// Memo baselines
	BaselineDir   string
	BaselineCache string

	// OCR
	OCREnabled  bool
	OCRLanguage string

	// Throughput
	RateLimitRPS   float64
	RateLimitBurst int
	CurateWorkers  int
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether azblob:// references can be served.
func (c *Config) AzureEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// S3Enabled reports whether s3:// references can be served.
func (c *Config) S3Enabled() bool {
	return c.S3Region != ""
}

// LocalEnabled reports whether API callers may name files under LocalRoot.
func (c *Config) LocalEnabled() bool {
	return c.LocalRoot != ""
}

// AllowedSchemes lists the reference schemes the configured sources serve.
func (c *Config) AllowedSchemes() []string {
	schemes := []string{"http", "https"}
	if c.LocalEnabled() {
		schemes = append(schemes, "file")
	}
	if c.AzureEnabled() {
		schemes = append(schemes, "azblob")
	}
	if c.S3Enabled() {
		schemes = append(schemes, "s3")
	}
	return schemes
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),

		AzureAccountName: strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureAccountKey:  strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
		S3Region:         strings.TrimSpace(os.Getenv("S3_REGION")),
		AllowedHosts:     parseListOrDefault("ALLOWED_HOSTS"),
		LocalRoot:        strings.TrimSpace(os.Getenv("LOCAL_ROOT")),

		DisplayWidth:  int(parseIntOrDefault("DISPLAY_WIDTH", 1080)),
		DisplayHeight: int(parseIntOrDefault("DISPLAY_HEIGHT", 1920)),
		FFprobePath:   getEnvOrDefault("FFPROBE_PATH", "ffprobe"),
		FFmpegPath:    getEnvOrDefault("FFMPEG_PATH", "ffmpeg"),

		BaselineDir:   strings.TrimSpace(os.Getenv("BASELINE_DIR")),
		BaselineCache: strings.TrimSpace(os.Getenv("BASELINE_CACHE")),

		OCREnabled:  parseBoolOrDefault("OCR_ENABLED", false),
		OCRLanguage: getEnvOrDefault("OCR_LANGUAGE", "eng"),

		RateLimitRPS:   parseFloatOrDefault("RATE_LIMIT_RPS", 20),
		RateLimitBurst: int(parseIntOrDefault("RATE_LIMIT_BURST", 40)),
		CurateWorkers:  int(parseIntOrDefault("CURATE_WORKERS", 0)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and combinations that defaults cannot repair.
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if (c.AzureAccountName == "") != (c.AzureAccountKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	if c.LocalRoot != "" {
		info, err := os.Stat(c.LocalRoot)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("LOCAL_ROOT must be an existing directory (got %q)", c.LocalRoot)
		}
	}
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		return fmt.Errorf("display size must be > 0 (got %dx%d)", c.DisplayWidth, c.DisplayHeight)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be > 0 (got rps=%g, burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.CurateWorkers < 0 {
		return fmt.Errorf("CURATE_WORKERS must be >= 0 (got %d)", c.CurateWorkers)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseListOrDefault(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
