package app

import (
	"strings"
	"testing"
	"time"

	"github.com/yungbote/pictures2pages-backend/internal/modules/generation"
	"github.com/yungbote/pictures2pages-backend/internal/platform/objectstore"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBDriver != "postgres" || cfg.TextProvider != TextProviderOpenAI {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AccessTokenTTL() != time.Hour || cfg.RefreshTokenTTL() != 24*time.Hour {
		t.Fatalf("ttl: access=%s refresh=%s", cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	}
	if cfg.FailurePolicy() != generation.PolicyDegrade || cfg.VisionMaxLabels != 10 {
		t.Fatalf("pipeline defaults: policy=%s max=%d", cfg.FailurePolicy(), cfg.VisionMaxLabels)
	}
	if !cfg.MetricsEnabled || !cfg.LogRedaction {
		t.Fatalf("metrics and redaction should default on")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL", "60")
	t.Setenv("EXTRACTION_FAILURE_POLICY", "ABORT")
	t.Setenv("TEXT_PROVIDER", "ollama")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("OBJECT_STORAGE_MODE", "minio")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AccessTokenTTL() != time.Minute || cfg.FailurePolicy() != generation.PolicyAbort {
		t.Fatalf("overrides not applied: ttl=%s policy=%s", cfg.AccessTokenTTL(), cfg.FailurePolicy())
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins: %v", cfg.CORSOrigins)
	}
	if got := cfg.OllamaConfig(); got.Model != "llama3.2" || got.Timeout != time.Minute {
		t.Fatalf("ollama config: %+v", got)
	}
	storeCfg, err := cfg.ObjectStoreConfig()
	if err != nil || storeCfg.Mode != objectstore.ModeMinIO || cfg.MinIOConfig().Endpoint != "minio:9000" {
		t.Fatalf("storage config: %+v %v", storeCfg, err)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET_KEY"},
		{"blank secret", map[string]string{"JWT_SECRET_KEY": "  "}, "JWT_SECRET_KEY"},
		{"bad policy", map[string]string{"JWT_SECRET_KEY": "x", "EXTRACTION_FAILURE_POLICY": "retry"}, "failure policy"},
		{"bad provider", map[string]string{"JWT_SECRET_KEY": "x", "TEXT_PROVIDER": "claude"}, "TEXT_PROVIDER"},
		{"zero ttl", map[string]string{"JWT_SECRET_KEY": "x", "REFRESH_TOKEN_TTL": "0"}, "TTL"},
		{"bad labels", map[string]string{"JWT_SECRET_KEY": "x", "VISION_MAX_LABELS": "0"}, "VISION_MAX_LABELS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestGoogleCredentialsPrefersInlineJSON(t *testing.T) {
	cfg := Config{GoogleCredentialsFile: "/etc/creds.json"}
	if got := cfg.GoogleCredentials(); got != "/etc/creds.json" {
		t.Fatalf("file path: %q", got)
	}
	cfg.GoogleCredentialsJSON = ` {"type":"service_account"} `
	if got := cfg.GoogleCredentials(); got != `{"type":"service_account"}` {
		t.Fatalf("inline json: %q", got)
	}
}

func TestImageURLPathStyleHosts(t *testing.T) {
	cfg := Config{StorageEmulatorHost: " http://localhost:4443 ", MinIOEndpoint: "minio:9000"}
	got := cfg.ImageURLPathStyleHosts()
	if len(got) != 2 || got[0] != "http://localhost:4443" || got[1] != "minio:9000" {
		t.Fatalf("hosts: %v", got)
	}
	if got := (Config{}).ImageURLPathStyleHosts(); len(got) != 0 {
		t.Fatalf("empty config should yield no hosts: %v", got)
	}
}
