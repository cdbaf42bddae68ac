// Package redact strips secret-bearing substrings from error and log text.
//
// API keys travel in Authorization headers on every call to the search
// service, and upstream error bodies occasionally echo them back. Anything
// that ends up in a log line or a batch result passes through [Secrets] first.
package redact

import (
	"regexp"
	"strings"
)

var (
	// matches "Bearer <token>" for JWTs and opaque keys alike
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// key=value and key: value forms that leak through error strings
	apiKeyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|pearch[_-]?api[_-]?key|authorization)\b"?\s*[:=]\s*"?[^\s"',}]+`)
)

// Secrets removes obvious secret-bearing substrings from s.
//
// It is safe to call on any message, including user-provided queries and
// upstream error bodies.
func Secrets(s string) string {
	if s == "" {
		return ""
	}
	out := bearerTokenRe.ReplaceAllString(s, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	return strings.TrimSpace(out)
}

// Error is a convenience for Secrets(err.Error()) that tolerates nil.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return Secrets(err.Error())
}
