package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/yungbote/pictures2pages-backend/internal/data/db"
	"github.com/yungbote/pictures2pages-backend/internal/modules/generation"
	"github.com/yungbote/pictures2pages-backend/internal/observability"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/platform/miniostore"
	"github.com/yungbote/pictures2pages-backend/internal/platform/objectstore"
	"github.com/yungbote/pictures2pages-backend/internal/platform/ollama"
	"github.com/yungbote/pictures2pages-backend/internal/platform/openai"
	"github.com/yungbote/pictures2pages-backend/internal/services"
)

const (
	TextProviderOpenAI = "openai"
	TextProviderOllama = "ollama"
)

type Config struct {
	// HTTP
	Port        string   `envconfig:"PORT" default:"8080"`
	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	ServiceName string   `envconfig:"SERVICE_NAME" default:"pictures2pages"`
	Version     string   `envconfig:"APP_VERSION" default:"dev"`
	Commit      string   `envconfig:"APP_COMMIT"`
	Environment string   `envconfig:"ENVIRONMENT" default:"development"`

	// Logging
	LogMode      string `envconfig:"LOG_MODE" default:"development"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"debug"`
	LogRedaction bool   `envconfig:"LOG_REDACTION_ENABLED" default:"true"`
	LogHashSalt  string `envconfig:"LOG_HASH_SALT"`

	// Auth
	JWTSecretKey           string `envconfig:"JWT_SECRET_KEY" required:"true"`
	AccessTokenTTLSeconds  int    `envconfig:"ACCESS_TOKEN_TTL" default:"3600"`
	RefreshTokenTTLSeconds int    `envconfig:"REFRESH_TOKEN_TTL" default:"86400"`

	// Database
	DBDriver         string `envconfig:"DB_DRIVER" default:"postgres"`
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresName     string `envconfig:"POSTGRES_NAME" default:"pictures2pages"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"pictures2pages.db"`

	// Object storage
	ObjectStorageMode          string `envconfig:"OBJECT_STORAGE_MODE"`
	StorageEmulatorHost        string `envconfig:"STORAGE_EMULATOR_HOST"`
	ObjectStoragePublicBaseURL string `envconfig:"OBJECT_STORAGE_PUBLIC_BASE_URL"`
	ImagesBucketName           string `envconfig:"IMAGES_BUCKET_NAME" default:"pictures2pages-images"`
	ImagesCDNDomain            string `envconfig:"IMAGES_CDN_DOMAIN"`
	AvatarBucketName           string `envconfig:"AVATAR_BUCKET_NAME" default:"pictures2pages-avatars"`
	AvatarCDNDomain            string `envconfig:"AVATAR_CDN_DOMAIN"`
	MinIOEndpoint              string `envconfig:"MINIO_ENDPOINT"`
	MinIOAccessKey             string `envconfig:"MINIO_ACCESS_KEY"`
	MinIOSecretKey             string `envconfig:"MINIO_SECRET_KEY"`
	MinIOUseSSL                bool   `envconfig:"MINIO_USE_SSL"`
	MinIORegion                string `envconfig:"MINIO_REGION"`
	MaxImageBytes              int64  `envconfig:"MAX_IMAGE_BYTES" default:"10485760"`

	// Vision
	GoogleCredentialsJSON string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`
	GoogleCredentialsFile string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	VisionMaxLabels       int    `envconfig:"VISION_MAX_LABELS" default:"10"`

	// Text generation
	TextProvider             string  `envconfig:"TEXT_PROVIDER" default:"openai"`
	GenerationTimeoutSeconds int     `envconfig:"GENERATION_TIMEOUT_SECONDS" default:"60"`
	OpenAIAPIKey             string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL            string  `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel              string  `envconfig:"OPENAI_MODEL" default:"gpt-3.5-turbo"`
	OpenAITemperature        float32 `envconfig:"OPENAI_TEMPERATURE" default:"0.7"`
	OpenAIMaxTokens          int     `envconfig:"OPENAI_MAX_TOKENS" default:"256"`
	OllamaBaseURL            string  `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	OllamaModel              string  `envconfig:"OLLAMA_MODEL" default:"llama3.2"`
	OllamaTemperature        float64 `envconfig:"OLLAMA_TEMPERATURE" default:"0.7"`

	// Pipeline
	ExtractionFailurePolicy string `envconfig:"EXTRACTION_FAILURE_POLICY" default:"degrade"`

	// Events
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisChannel  string `envconfig:"REDIS_CHANNEL" default:"pictures2pages:sse"`

	// Observability
	MetricsEnabled               bool    `envconfig:"METRICS_ENABLED" default:"true"`
	MetricsScrapeIntervalSeconds int     `envconfig:"METRICS_SCRAPE_INTERVAL_SECONDS" default:"15"`
	OtelEnabled                  bool    `envconfig:"OTEL_ENABLED"`
	OtelEndpoint                 string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders                  string  `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure                 bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE"`
	OtelSampleRatio              float64 `envconfig:"OTEL_TRACES_SAMPLER_RATIO" default:"1"`

	// Avatar
	AvatarFont           string `envconfig:"AVATAR_FONT"`
	AvatarColorsJSONPath string `envconfig:"AVATAR_COLORS_JSON_PATH"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be blank")
	}
	if c.AccessTokenTTLSeconds <= 0 || c.RefreshTokenTTLSeconds <= 0 {
		return fmt.Errorf("token TTLs must be positive (ACCESS_TOKEN_TTL=%d REFRESH_TOKEN_TTL=%d)", c.AccessTokenTTLSeconds, c.RefreshTokenTTLSeconds)
	}
	if _, err := generation.ParseFailurePolicy(c.ExtractionFailurePolicy); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.TextProvider)) {
	case TextProviderOpenAI, TextProviderOllama:
	default:
		return fmt.Errorf("unsupported TEXT_PROVIDER %q (allowed: %q, %q)", c.TextProvider, TextProviderOpenAI, TextProviderOllama)
	}
	if c.VisionMaxLabels <= 0 {
		return fmt.Errorf("VISION_MAX_LABELS must be positive")
	}
	return nil
}

// Log summarizes the loaded config. Secrets are never passed to the logger.
func (c Config) Log(log *logger.Logger) {
	log.Info(
		"Configuration loaded",
		"port", c.Port,
		"environment", c.Environment,
		"db_driver", c.DBDriver,
		"object_storage_mode", c.ObjectStorageMode,
		"images_bucket", c.ImagesBucketName,
		"avatar_bucket", c.AvatarBucketName,
		"text_provider", c.TextProvider,
		"extraction_failure_policy", c.ExtractionFailurePolicy,
		"redis_enabled", strings.TrimSpace(c.RedisAddr) != "",
		"otel_enabled", c.OtelEnabled,
	)
}

func (c Config) LoggerOptions() []logger.Option {
	return []logger.Option{
		logger.WithLevel(c.LogLevel),
		logger.WithRedaction(c.LogRedaction, c.LogHashSalt),
	}
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLSeconds) * time.Second
}

func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLSeconds) * time.Second
}

func (c Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutSeconds) * time.Second
}

func (c Config) FailurePolicy() generation.FailurePolicy {
	policy, err := generation.ParseFailurePolicy(c.ExtractionFailurePolicy)
	if err != nil {
		return generation.PolicyDegrade
	}
	return policy
}

// GoogleCredentials prefers inline JSON over a credentials file path.
func (c Config) GoogleCredentials() string {
	if s := strings.TrimSpace(c.GoogleCredentialsJSON); s != "" {
		return s
	}
	return strings.TrimSpace(c.GoogleCredentialsFile)
}

func (c Config) DBConfig() db.Config {
	return db.Config{
		Driver:           c.DBDriver,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		PostgresSSLMode:  c.PostgresSSLMode,
		SQLitePath:       c.SQLitePath,
	}
}

// ObjectStoreConfig resolves the storage mode; an unset mode infers the
// emulator from STORAGE_EMULATOR_HOST.
func (c Config) ObjectStoreConfig() (objectstore.Config, error) {
	mode, fallback, err := objectstore.ResolveMode(c.ObjectStorageMode, c.StorageEmulatorHost)
	if err != nil {
		return objectstore.Config{}, err
	}
	return objectstore.Config{
		Mode:                  mode,
		EmulatorHost:          strings.TrimSpace(c.StorageEmulatorHost),
		PublicBaseURL:         strings.TrimSpace(c.ObjectStoragePublicBaseURL),
		ImagesBucket:          strings.TrimSpace(c.ImagesBucketName),
		ImagesCDN:             strings.TrimSpace(c.ImagesCDNDomain),
		AvatarBucket:          strings.TrimSpace(c.AvatarBucketName),
		AvatarCDN:             strings.TrimSpace(c.AvatarCDNDomain),
		CompatibilityFallback: fallback,
	}, nil
}

// ImageURLPathStyleHosts lists the configured endpoints whose image URLs are
// /<bucket>/<key>; public GCS hosts are known to the extractor already.
func (c Config) ImageURLPathStyleHosts() []string {
	var out []string
	for _, h := range []string{c.ObjectStoragePublicBaseURL, c.StorageEmulatorHost, c.MinIOEndpoint} {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

func (c Config) MinIOConfig() miniostore.Config {
	return miniostore.Config{
		Endpoint:  c.MinIOEndpoint,
		AccessKey: c.MinIOAccessKey,
		SecretKey: c.MinIOSecretKey,
		UseSSL:    c.MinIOUseSSL,
		Region:    c.MinIORegion,
	}
}

func (c Config) OpenAIConfig() openai.Config {
	return openai.Config{
		APIKey:      c.OpenAIAPIKey,
		BaseURL:     c.OpenAIBaseURL,
		Model:       c.OpenAIModel,
		Temperature: c.OpenAITemperature,
		MaxTokens:   c.OpenAIMaxTokens,
		Timeout:     c.GenerationTimeout(),
	}
}

func (c Config) OllamaConfig() ollama.Config {
	return ollama.Config{
		BaseURL:     c.OllamaBaseURL,
		Model:       c.OllamaModel,
		Temperature: c.OllamaTemperature,
		Timeout:     c.GenerationTimeout(),
	}
}

func (c Config) OtelConfig() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Version:     c.Version,
		Endpoint:    c.OtelEndpoint,
		Headers:     c.OtelHeaders,
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

func (c Config) AvatarConfig() services.AvatarConfig {
	return services.AvatarConfig{
		FontPath:       c.AvatarFont,
		ColorsJSONPath: c.AvatarColorsJSONPath,
	}
}
