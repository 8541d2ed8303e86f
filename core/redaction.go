package core

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

const RedactedValue = "[REDACTED]"

var telegramTokenPath = regexp.MustCompile(`/(file/)?bot[0-9]+:[A-Za-z0-9_-]+`)

func RedactSensitiveMap(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return map[string]any{}
	}
	return redactSensitiveMap(metadata)
}

func redactSensitiveMap(source map[string]any) map[string]any {
	target := make(map[string]any, len(source))
	for key, value := range source {
		if shouldRedactKey(key) {
			target[key] = RedactedValue
			continue
		}
		target[key] = redactSensitiveValue(value)
	}
	return target
}

func redactSensitiveValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return redactSensitiveMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = redactSensitiveValue(typed[i])
		}
		return out
	default:
		return value
	}
}

// RedactHeaders masks credential-bearing headers.
func RedactHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		if shouldRedactKey(key) || strings.EqualFold(key, "X-Viber-Auth-Token") {
			out[key] = RedactedValue
			continue
		}
		out[key] = value
	}
	return out
}

// RedactURL masks credential query parameters and Telegram bot tokens that
// are embedded in the path.
func RedactURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = telegramTokenPath.ReplaceAllStringFunc(raw, func(match string) string {
		if strings.HasPrefix(match, "/file/") {
			return "/file/bot" + RedactedValue
		}
		return "/bot" + RedactedValue
	})
	parsed, err := url.Parse(raw)
	if err != nil || parsed.RawQuery == "" {
		return raw
	}
	query := parsed.Query()
	changed := false
	for key := range query {
		if shouldRedactKey(key) || strings.EqualFold(key, "appsecret_proof") {
			query.Set(key, RedactedValue)
			changed = true
		}
	}
	if !changed {
		return raw
	}
	parsed.RawQuery = strings.ReplaceAll(query.Encode(), url.QueryEscape(RedactedValue), RedactedValue)
	return parsed.String()
}

// RedactBody masks credential fields in a url-encoded form or JSON object
// body. Bodies with nothing to mask, and bodies it cannot parse, are
// returned as is.
func RedactBody(body []byte, contentType string) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return body
	}
	if strings.Contains(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		return redactFormBody(body)
	}
	if trimmed[0] != '{' {
		return body
	}
	var payload map[string]any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return body
	}
	if !containsSensitiveKey(payload) {
		return body
	}
	redacted, err := json.Marshal(redactSensitiveMap(payload))
	if err != nil {
		return body
	}
	return redacted
}

func redactFormBody(body []byte) []byte {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return body
	}
	changed := false
	for key := range values {
		if shouldRedactKey(key) {
			values.Set(key, RedactedValue)
			changed = true
		}
	}
	if !changed {
		return body
	}
	return []byte(strings.ReplaceAll(values.Encode(), url.QueryEscape(RedactedValue), RedactedValue))
}

func containsSensitiveKey(value any) bool {
	switch typed := value.(type) {
	case map[string]any:
		for key, nested := range typed {
			if shouldRedactKey(key) || containsSensitiveKey(nested) {
				return true
			}
		}
	case []any:
		for _, nested := range typed {
			if containsSensitiveKey(nested) {
				return true
			}
		}
	}
	return false
}

func shouldRedactKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || isTraceabilityKey(key) {
		return false
	}
	sensitiveTokens := []string{
		"password",
		"secret",
		"token",
		"authorization",
		"api_key",
		"apikey",
		"access_key",
		"credential",
		"signature",
	}
	for _, token := range sensitiveTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}

func isTraceabilityKey(key string) bool {
	switch key {
	case "provider_id",
		"operation",
		"reply_token",
		"replytoken",
		"message_id",
		"delivery_id",
		"trace_id",
		"request_id":
		return true
	default:
		return false
	}
}
