package objectstore

import (
	"fmt"
	"net/url"
	"strings"
)

type Mode string

const (
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
	ModeMinIO       Mode = "minio"
)

func IsSupportedMode(mode Mode) bool {
	switch mode {
	case ModeGCS, ModeGCSEmulator, ModeMinIO:
		return true
	default:
		return false
	}
}

// Config is the backend-independent part of object storage configuration.
type Config struct {
	Mode          Mode
	EmulatorHost  string
	PublicBaseURL string

	ImagesBucket string
	ImagesCDN    string
	AvatarBucket string
	AvatarCDN    string

	// CompatibilityFallback is set when the mode was inferred from
	// STORAGE_EMULATOR_HOST rather than given explicitly.
	CompatibilityFallback bool
}

func (cfg Config) IsEmulatorMode() bool { return cfg.Mode == ModeGCSEmulator }

func (cfg Config) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode         ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingEmulatorHost ConfigErrorCode = "missing_emulator_host"
	ConfigErrorInvalidEmulatorHost ConfigErrorCode = "invalid_emulator_host"
	ConfigErrorInvalidPublicBase   ConfigErrorCode = "invalid_public_base_url"
	ConfigErrorMissingBucket       ConfigErrorCode = "missing_bucket"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Mode  string
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q)", e.Mode, ModeGCS, ModeGCSEmulator, ModeMinIO)
	case ConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ModeGCSEmulator)
	case ConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.Value)
	case ConfigErrorInvalidPublicBase:
		return fmt.Sprintf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443", e.Value)
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("missing bucket name %s", e.Value)
	default:
		return "invalid object storage config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveMode picks the storage mode. An empty mode falls back to the
// emulator when an emulator host is present, otherwise to real GCS.
func ResolveMode(rawMode, emulatorHost string) (Mode, bool, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(rawMode)))
	switch mode {
	case "":
		if strings.TrimSpace(emulatorHost) != "" {
			return ModeGCSEmulator, true, nil
		}
		return ModeGCS, false, nil
	case ModeGCS, ModeGCSEmulator, ModeMinIO:
		return mode, false, nil
	default:
		return "", false, &ConfigError{Code: ConfigErrorInvalidMode, Mode: strings.TrimSpace(rawMode)}
	}
}

func Validate(cfg Config) error {
	if !IsSupportedMode(cfg.Mode) {
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if strings.TrimSpace(cfg.ImagesBucket) == "" {
		return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(cfg.Mode), Value: "IMAGES_BUCKET_NAME"}
	}
	if strings.TrimSpace(cfg.AvatarBucket) == "" {
		return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(cfg.Mode), Value: "AVATAR_BUCKET_NAME"}
	}
	if raw := strings.TrimSpace(cfg.PublicBaseURL); raw != "" && !isAbsoluteURL(raw) {
		return &ConfigError{Code: ConfigErrorInvalidPublicBase, Mode: string(cfg.Mode), Value: raw}
	}
	if !cfg.IsEmulatorMode() {
		return nil
	}
	host := strings.TrimSpace(cfg.EmulatorHost)
	if host == "" {
		return &ConfigError{Code: ConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	if !isAbsoluteURL(host) {
		_, err := url.Parse(host)
		return &ConfigError{Code: ConfigErrorInvalidEmulatorHost, Mode: string(cfg.Mode), Value: host, Cause: err}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}
