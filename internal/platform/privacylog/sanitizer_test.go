package privacylog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSanitizeArgsFingerprintsUserIdentifiers(t *testing.T) {
	args := SanitizeArgs(
		"user_id", "42",
		"email", "jo@example.com",
		"endpoint", "/cart",
	)
	if len(args) != 6 {
		t.Fatalf("unexpected args length: %d", len(args))
	}
	if got := args[0]; got != "user_id_fp" {
		t.Fatalf("unexpected key: %v", got)
	}
	if got := args[1].(string); !strings.HasPrefix(got, "fp_") {
		t.Fatalf("unexpected fingerprint value: %q", got)
	}
	if got := args[4]; got != "endpoint" {
		t.Fatalf("expected untouched key, got %v", got)
	}
}

func TestSanitizingHandlerRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("signin", "order_id", "7", "bearer_token", "abc", "password", "hunter2", "status", "ok")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if _, ok := payload["order_id"]; ok {
		t.Fatal("order_id should not be present")
	}
	if _, ok := payload["order_id_fp"]; !ok {
		t.Fatal("order_id_fp should be present")
	}
	if got, _ := payload["bearer_token"].(string); got != redactedValue {
		t.Fatalf("expected redacted token, got %q", got)
	}
	if got, _ := payload["password"].(string); got != redactedValue {
		t.Fatalf("expected redacted password, got %q", got)
	}
	if got, _ := payload["status"].(string); got != "ok" {
		t.Fatalf("unexpected status: got=%q want=%q", got, "ok")
	}
}

func TestSanitizingHandlerAppliesToGroups(t *testing.T) {
	var buf bytes.Buffer
	h := WrapHandler(slog.NewJSONHandler(&buf, nil))
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected handler enabled for info")
	}
	rec := slog.NewRecord(time.Now().UTC(), slog.LevelInfo, "msg", 0)
	rec.AddAttrs(slog.Group("session", slog.String("token", "t"), slog.String("status", "authenticated")))
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if strings.Contains(buf.String(), `"token":"t"`) {
		t.Fatalf("expected token to be redacted inside group, got %s", buf.String())
	}
}

func TestFingerprintIsStableWithinBoot(t *testing.T) {
	if FingerprintID("42") != FingerprintID(" 42 ") {
		t.Fatal("expected trimmed values to share a fingerprint")
	}
	if FingerprintID("") != "" {
		t.Fatal("expected empty fingerprint for empty value")
	}
}
