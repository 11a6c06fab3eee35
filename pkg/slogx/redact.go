package slogx

import (
	"log/slog"
	"strings"
)

// Redacted replaces the value of any attribute listed in sensitiveKeys.
const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"token":         {},
	"invite_token":  {},
	"authorization": {},
	"secret":        {},
}

// RedactAttr is a slog ReplaceAttr hook. It is a safety net only: call sites
// must still never pass plaintext credentials to the logger.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}
	return a
}
