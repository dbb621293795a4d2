package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageDriverS3         = "s3"
	StorageDriverFilesystem = "filesystem"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	BucketName         string
	GenericModelID     string
	TitanModelID       string
	StabilityModelID   string
	GuardrailID        string
	GuardrailVersion   string
	StorageDriver      string
	StoragePath        string
	StorageBaseURL     string
	DefaultLocale      string
	CORSAllowedOrigins []string
	ProviderTimeout    time.Duration
	UploadTimeout      time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// The bucket name and model identifiers are intentionally optional here: their absence is
// reported per request so the API can still answer with a validation error.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	genericModel := strings.TrimSpace(os.Getenv("AWS_BEDROCK_MODEL_ID"))
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               port,
		AWSRegion:          strings.TrimSpace(os.Getenv("AWS_REGION")),
		AWSAccessKeyID:     strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID")),
		AWSSecretAccessKey: strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY")),
		BucketName:         strings.TrimSpace(os.Getenv("AWS_BUCKET_NAME")),
		GenericModelID:     genericModel,
		TitanModelID:       getEnv("AWS_TITAN_MODEL_ID", genericModel),
		StabilityModelID:   strings.TrimSpace(os.Getenv("AWS_STABILITY_MODEL_ID")),
		GuardrailID:        strings.TrimSpace(os.Getenv("AWS_BEDROCK_GUARDRAIL_ID")),
		GuardrailVersion:   getEnv("AWS_BEDROCK_GUARDRAIL_VERSION", "DRAFT"),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverS3)),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:     getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%s/static", port)),
		DefaultLocale:      strings.ToLower(getEnv("DEFAULT_LOCALE", "id")),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		ProviderTimeout:    time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)),
		UploadTimeout:      time.Second * time.Duration(getEnvInt("UPLOAD_TIMEOUT_SECONDS", 30)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.AWSRegion == "" {
		return nil, fmt.Errorf("AWS_REGION is required")
	}

	switch cfg.StorageDriver {
	case StorageDriverS3, StorageDriverFilesystem:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// IsProduction reports whether internal error details must be hidden from callers.
func (c *Config) IsProduction() bool {
	return c != nil && strings.EqualFold(c.AppEnv, "production")
}

// WriteTimeout returns HTTPWriteTimeout raised to cover the slowest legitimate
// call: one provider invocation followed by MaxImagesPerRequest uploads.
func (c *Config) WriteTimeout() time.Duration {
	minimum := c.ProviderTimeout + MaxImagesPerRequest*c.UploadTimeout
	if c.HTTPWriteTimeout < minimum {
		return minimum
	}
	return c.HTTPWriteTimeout
}

// HasStaticCredentials reports whether an explicit key pair was configured.
func (c *Config) HasStaticCredentials() bool {
	return c != nil && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, item := range strings.Split(os.Getenv(key), ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}
