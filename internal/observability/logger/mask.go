package logger

import (
	"net/http"
	"strings"
)

// Keys whose values must never reach a log line. Signature headers are
// included: they are derived from the webhook secret.
var sensitiveKeys = []string{
	"secret",
	"api_key",
	"apikey",
	"authorization",
	"signature",
	"password",
	"token",
}

// MaskAPIKey masks credentials, preserving only the last 4 characters.
func MaskAPIKey(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return maskLast4(value)
}

// MaskHeaders returns a loggable copy of headers with sensitive values
// masked. Webhook payload content never goes through here; only headers do.
func MaskHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))
	for key, values := range headers {
		joined := strings.Join(values, ",")
		if isSensitiveKey(key) {
			masked[key] = maskLast4(joined)
			continue
		}
		masked[key] = joined
	}
	return masked
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, needle := range sensitiveKeys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}

func maskLast4(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****" + value
	}
	return "****" + value[len(value)-4:]
}
