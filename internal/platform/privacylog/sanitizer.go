package privacylog

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

const redactedValue = "[REDACTED]"

type action int

const (
	keep action = iota
	redact
	fingerprint
)

var (
	bootSalt          = randomSalt()
	fingerprintedKeys = map[string]struct{}{
		"user_id":  {},
		"order_id": {},
		"email":    {},
		"name":     {},
	}
	sensitiveKeyParts = []string{"token", "secret", "password", "passphrase", "authorization", "credential"}
)

// SanitizingHandler redacts credentials and replaces user-identifying values
// with per-boot fingerprints before records reach the wrapped handler.
type SanitizingHandler struct {
	next slog.Handler
}

func WrapHandler(next slog.Handler) slog.Handler {
	if next == nil {
		return nil
	}
	return &SanitizingHandler{next: next}
}

// NewLogger wraps next and returns a ready logger.
func NewLogger(next slog.Handler) *slog.Logger {
	return slog.New(WrapHandler(next))
}

func (h *SanitizingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SanitizingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(SanitizeAttr(attr))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *SanitizingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		clean = append(clean, SanitizeAttr(attr))
	}
	return &SanitizingHandler{next: h.next.WithAttrs(clean)}
}

func (h *SanitizingHandler) WithGroup(name string) slog.Handler {
	return &SanitizingHandler{next: h.next.WithGroup(name)}
}

func SanitizeAttr(attr slog.Attr) slog.Attr {
	key := strings.TrimSpace(attr.Key)
	switch classify(key) {
	case redact:
		return slog.String(key, redactedValue)
	case fingerprint:
		return slog.String(fingerprintKey(key), FingerprintID(attr.Value.Resolve().String()))
	}
	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		clean := make([]any, 0, len(group))
		for _, member := range group {
			clean = append(clean, SanitizeAttr(member))
		}
		return slog.Group(key, clean...)
	}
	return attr
}

// SanitizeArgs applies the same policy to alternating key/value arguments.
func SanitizeArgs(args ...any) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, 0, len(args))
	for i := 0; i < len(args); i++ {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			out = append(out, args[i])
			continue
		}
		value := args[i+1]
		i++
		switch classify(key) {
		case redact:
			out = append(out, key, redactedValue)
		case fingerprint:
			out = append(out, fingerprintKey(key), FingerprintID(fmt.Sprint(value)))
		default:
			out = append(out, key, value)
		}
	}
	return out
}

func FingerprintID(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(trimmed + "|" + bootSalt))
	return "fp_" + hex.EncodeToString(sum[:8])
}

func classify(key string) action {
	lower := strings.ToLower(strings.TrimSpace(key))
	for _, part := range sensitiveKeyParts {
		if strings.Contains(lower, part) {
			return redact
		}
	}
	if _, ok := fingerprintedKeys[lower]; ok {
		return fingerprint
	}
	return keep
}

func fingerprintKey(key string) string {
	if strings.HasSuffix(strings.ToLower(key), "_fp") {
		return key
	}
	return key + "_fp"
}

func randomSalt() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "fallback_salt"
	}
	return hex.EncodeToString(buf)
}
