package config

import "strings"

// Sanitize returns a copy of the config with secrets masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Server.HTTP.CORSAllowedOrigins = append([]string(nil), cfg.Server.HTTP.CORSAllowedOrigins...)

	if sanitized.Codec.ExportPassphrase != "" {
		sanitized.Codec.ExportPassphrase = maskSecret(sanitized.Codec.ExportPassphrase)
	}
	if sanitized.Payments.WebhookSecret != "" {
		sanitized.Payments.WebhookSecret = maskSecret(sanitized.Payments.WebhookSecret)
	}
	if sanitized.Admin.APIKey != "" {
		sanitized.Admin.APIKey = maskSecret(sanitized.Admin.APIKey)
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
