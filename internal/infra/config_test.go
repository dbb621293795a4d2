package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresRegion(t *testing.T) {
	t.Setenv("AWS_REGION", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when AWS_REGION is missing")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("PORT", "")
	t.Setenv("AWS_BUCKET_NAME", "")
	t.Setenv("AWS_BEDROCK_MODEL_ID", "amazon.titan-image-generator-v1")
	t.Setenv("AWS_TITAN_MODEL_ID", "")
	t.Setenv("AWS_BEDROCK_GUARDRAIL_VERSION", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("STORAGE_BASE_URL", "")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.BucketName != "" {
		t.Fatalf("BucketName = %q, want empty", cfg.BucketName)
	}
	if cfg.TitanModelID != "amazon.titan-image-generator-v1" {
		t.Fatalf("TitanModelID should inherit AWS_BEDROCK_MODEL_ID, got %q", cfg.TitanModelID)
	}
	if cfg.GuardrailVersion != "DRAFT" {
		t.Fatalf("GuardrailVersion = %q, want DRAFT", cfg.GuardrailVersion)
	}
	if cfg.StorageDriver != StorageDriverS3 {
		t.Fatalf("StorageDriver = %q, want s3", cfg.StorageDriver)
	}
	if cfg.StorageBaseURL != "http://localhost:8080/static" {
		t.Fatalf("StorageBaseURL mismatch: %q", cfg.StorageBaseURL)
	}
	if cfg.ProviderTimeout != 60*time.Second {
		t.Fatalf("ProviderTimeout = %s, want 60s", cfg.ProviderTimeout)
	}
	if cfg.DefaultLocale != "id" {
		t.Fatalf("DefaultLocale = %q, want id", cfg.DefaultLocale)
	}
}

func TestLoadConfigExplicitTitanModel(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_BEDROCK_MODEL_ID", "amazon.titan-image-generator-v1")
	t.Setenv("AWS_TITAN_MODEL_ID", "amazon.titan-image-generator-v2:0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TitanModelID != "amazon.titan-image-generator-v2:0" {
		t.Fatalf("TitanModelID = %q", cfg.TitanModelID)
	}
}

func TestLoadConfigRejectsUnknownStorageDriver(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("STORAGE_DRIVER", "gcs")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unsupported storage driver")
	}
}

func TestConfigIsProduction(t *testing.T) {
	cfg := &Config{AppEnv: "Production"}
	if !cfg.IsProduction() {
		t.Fatalf("expected production config")
	}
	var nilCfg *Config
	if nilCfg.IsProduction() {
		t.Fatalf("nil config must not be production")
	}
}

func TestLoadConfigParsesCORSOrigins(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com,https://app.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(expected) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v want %#v", cfg.CORSAllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
}

func TestWriteTimeoutCoversUploadLoop(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "")
	t.Setenv("UPLOAD_TIMEOUT_SECONDS", "")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got, want := cfg.WriteTimeout(), 210*time.Second; got != want {
		t.Fatalf("WriteTimeout = %s, want %s", got, want)
	}

	srv := NewHTTPServer(cfg, nil)
	if srv.server.WriteTimeout != 210*time.Second {
		t.Fatalf("server WriteTimeout = %s, want 210s", srv.server.WriteTimeout)
	}

	cfg.HTTPWriteTimeout = 300 * time.Second
	if got := cfg.WriteTimeout(); got != 300*time.Second {
		t.Fatalf("WriteTimeout = %s, want configured 300s", got)
	}
}
