package logging

import (
	"regexp"
	"strings"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/typemap"
)

const (
	// MaxValueLogLength is the maximum length of a sampled value to log
	MaxValueLogLength = 100
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match potential API keys
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// Pattern to match bearer tokens (three base64 segments separated by dots)
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]*`)

	// Pattern to match connection string credentials (user:pass@host format)
	connStringPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)

	// Field names whose sampled values are always redacted regardless of shape
	sensitiveFieldPattern = regexp.MustCompile(`(?i)(password|secret|token|ssn|card)`)
)

// SanitizeSampleValue prepares one sampled source value for logging.
// Email-shaped values are redacted and long values truncated; non-string
// values pass through.
func SanitizeSampleValue(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if typemap.IsEmailShaped(s) {
		return RedactedText
	}
	if typemap.IsURLShaped(s) {
		// Query strings can carry signed tokens.
		if i := strings.IndexByte(s, '?'); i >= 0 {
			s = s[:i]
		}
	}
	return TruncateString(s, MaxValueLogLength)
}

// SanitizeSampleRecord returns a copy of a sampled record safe for logging.
// Use this before logging any source record.
func SanitizeSampleRecord(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}
	sanitized := make(map[string]any, len(record))
	for name, value := range record {
		if sensitiveFieldPattern.MatchString(name) {
			sanitized[name] = RedactedText
			continue
		}
		sanitized[name] = SanitizeSampleValue(value)
	}
	return sanitized
}

// SanitizeError sanitizes error messages that might carry credentials from
// upstream collaborators. Use this before logging any transport error.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := apiKeyPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
