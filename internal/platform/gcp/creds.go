package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions turns GOOGLE_APPLICATION_CREDENTIALS[_JSON] into client
// options. Inline JSON and file paths are both accepted; empty means ADC.
func ClientOptions(credentials string) []option.ClientOption {
	creds := strings.TrimSpace(credentials)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
