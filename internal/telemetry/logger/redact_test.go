package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func logEntry(t *testing.T, args ...any) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("redaction", args...)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	return entry
}

func TestRedactSensitive_Keys(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"token", "abc,def,xyz"},
		{"session_token", "xyz"},
		{"nv-authorizations", "abc,def"},
		{"nv-authorisations", "abc,def"},
		{"Authorization", "secret-value"},
		{"redis_password", "hunter2"},
		{"client_secret", "s3cr3t"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			entry := logEntry(t, tt.key, tt.value)
			if got := entry[tt.key]; got != redactedValue {
				t.Errorf("%s = %v, want %q", tt.key, got, redactedValue)
			}
		})
	}
}

func TestRedactSensitive_EmptyValueKept(t *testing.T) {
	entry := logEntry(t, "token", "")
	if got := entry["token"]; got != "" {
		t.Errorf("token = %v, want empty string", got)
	}
}

func TestRedactSensitive_BearerValue(t *testing.T) {
	entry := logEntry(t, "header", "Bearer abcdefghijklmnop")
	if got := entry["header"]; got != "Bearer abc...nop" {
		t.Errorf("header = %v, want %q", got, "Bearer abc...nop")
	}
}

func TestRedactSensitive_NormalValues(t *testing.T) {
	entry := logEntry(t, "receiver_id", "living-room", "state", "established", "renewals", 3)

	if entry["receiver_id"] != "living-room" {
		t.Errorf("receiver_id = %v, want living-room", entry["receiver_id"])
	}
	if entry["state"] != "established" {
		t.Errorf("state = %v, want established", entry["state"])
	}
	if entry["renewals"] != float64(3) {
		t.Errorf("renewals = %v, want 3", entry["renewals"])
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	entry := logEntry(t, slog.Group("request", "token", "abc", "url", "https://lic"))
	req, ok := entry["request"].(map[string]any)
	if !ok {
		t.Fatalf("request group missing: %v", entry)
	}
	if req["token"] != redactedValue {
		t.Errorf("request.token = %v, want %q", req["token"], redactedValue)
	}
	if req["url"] != "https://lic" {
		t.Errorf("request.url = %v, want https://lic", req["url"])
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"abcdef,ghijkl,mnopqr", "abc***,ghi***,mno***"},
		{"abc,def,", "***,***,"},
		{"Bearer abcdefghijklmnop", "Bearer abc...nop"},
		{"Bearer short", "Bearer ***"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"token", true},
		{"TOKEN", true},
		{"sessionToken", true},
		{"nv-authorizations", true},
		{"password", true},
		{"receiver_id", false},
		{"license_url", false},
		{"state", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.want {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestIsSensitiveHeader(t *testing.T) {
	for _, h := range []string{"Authorization", "Cookie", "nv-authorizations"} {
		if !IsSensitiveHeader(h) {
			t.Errorf("IsSensitiveHeader(%q) = false, want true", h)
		}
	}
	for _, h := range []string{"Accept", "content-type"} {
		if IsSensitiveHeader(h) {
			t.Errorf("IsSensitiveHeader(%q) = true, want false", h)
		}
	}
}

func TestMaskValue(t *testing.T) {
	if got := maskValue("Basic abcdefghij", "Basic "); got != "Basic abc...hij" {
		t.Errorf("maskValue() = %q", got)
	}
	if got := maskValue("Basic abc", "Basic "); got != "Basic ***" {
		t.Errorf("maskValue() short = %q", got)
	}
}
