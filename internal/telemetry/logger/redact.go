package logger

import (
	"log/slog"
	"strings"
)

// Value prefixes that identify a bearer credential regardless of key.
var sensitiveValuePrefixes = []string{
	"Bearer ",
	"bearer ",
}

// Key patterns whose values are always redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"authorization",
	"bearer",
}

// Key suffixes that are safe even when a pattern above matches.
var safeKeySuffixes = []string{
	"_fingerprint",
	"_id",
	"_count",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		for _, prefix := range sensitiveValuePrefixes {
			if strings.HasPrefix(strVal, prefix) {
				return slog.String(a.Key, maskValue(strVal, prefix))
			}
		}
		if IsAccessToken(strVal) || (strVal != "" && IsSensitiveKey(a.Key)) {
			return slog.String(a.Key, redactedValue)
		}
	}

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

// maskValue keeps the prefix and the first and last three characters.
func maskValue(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) <= 6 {
		return prefix + "***"
	}
	return prefix + body[:3] + "..." + body[len(body)-3:]
}

// RedactString masks a bearer value before it is logged by hand.
func RedactString(value string) string {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return maskValue(value, prefix)
		}
	}
	return value
}

// IsSensitiveKey reports whether a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, suffix := range safeKeySuffixes {
		if strings.HasSuffix(keyLower, suffix) {
			return false
		}
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether a value looks like a bearer credential
// or a signed access token.
func IsSensitiveValue(value string) bool {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return IsAccessToken(value)
}

// IsAccessToken reports whether value has the signed token shape
// "payload.<64 hex>", whatever key it is logged under.
func IsAccessToken(value string) bool {
	payload, mac, ok := strings.Cut(value, ".")
	if !ok || payload == "" || len(mac) != 64 {
		return false
	}
	for i := 0; i < len(mac); i++ {
		c := mac[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
