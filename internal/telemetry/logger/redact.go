package logger

import (
	"log/slog"
	"regexp"
	"strings"
)

// tokenPrefix matches the kind and version segments of a share token,
// which are kept when masking.
var tokenPrefix = regexp.MustCompile(`^fx-[a-z]+-v[0-9]+e?\.`)

// emailValue matches values that look like a bare e-mail address.
var emailValue = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"passphrase",
	"secret",
	"token",
	"key",
	"credential",
	"auth",
	"bearer",
	"signature",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	// Value shape takes priority over key-based detection so tokens stay
	// recognizable in logs.
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if masked, ok := maskKnown(strVal); ok {
			return slog.String(a.Key, masked)
		}

		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskKnown masks share tokens and e-mail addresses.
func maskKnown(value string) (string, bool) {
	if prefix := tokenPrefix.FindString(value); prefix != "" {
		return maskValue(value, prefix), true
	}
	if emailValue.MatchString(value) {
		return maskEmail(value), true
	}
	return "", false
}

// maskValue partially masks a sensitive value, keeping prefix and hints.
// Format: prefix + first 3 chars + "..." + last 3 chars
func maskValue(value, prefix string) string {
	if len(value) <= len(prefix)+6 {
		return prefix + "***"
	}

	body := value[len(prefix):]
	return prefix + body[:3] + "..." + body[len(body)-3:]
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	return value[:1] + "***" + value[at:]
}

// RedactString manually redacts a string value.
// Use this when you need to redact a value before logging.
func RedactString(value string) string {
	if masked, ok := maskKnown(value); ok {
		return masked
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value appears to be a share token or an
// e-mail address.
func IsSensitiveValue(value string) bool {
	_, ok := maskKnown(value)
	return ok
}
