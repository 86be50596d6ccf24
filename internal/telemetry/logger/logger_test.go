package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// newBuffered returns a JSON logger writing to a buffer and restores the
// shared level when the test ends.
func newBuffered(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	prev := GetLevel()
	t.Cleanup(func() { SetLevel(prev) })

	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_Config(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"text", Config{Level: "debug", Format: "text"}, false},
		{"console alias", Config{Level: "warning", Format: "console"}, false},
		{"empty format is json", Config{Level: "info"}, false},
		{"unknown level", Config{Level: "trace"}, true},
		{"unknown format", Config{Level: "info", Format: "xml"}, true},
	}

	prev := GetLevel()
	defer SetLevel(prev)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l.Slog() == nil {
				t.Error("Slog() returned nil")
			}
		})
	}
}

func TestLogger_Methods(t *testing.T) {
	l, buf := newBuffered(t, "debug")

	for _, tc := range []struct {
		level string
		log   func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	} {
		buf.Reset()
		tc.log("session established", "receiver_id", "tv-1")
		entry := decode(t, buf)
		if entry["level"] != tc.level || entry["msg"] != "session established" || entry["receiver_id"] != "tv-1" {
			t.Errorf("%s entry = %v", tc.level, entry)
		}
	}
}

func TestLogger_ServiceAndWith(t *testing.T) {
	prev := GetLevel()
	defer SetLevel(prev)

	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Output: &buf, Service: "ssmproxy"})
	if err != nil {
		t.Fatal(err)
	}
	l.With("component", "forward").Info("relayed")

	entry := decode(t, &buf)
	if entry["service"] != "ssmproxy" || entry["component"] != "forward" {
		t.Errorf("entry = %v", entry)
	}
}

func TestSetLevel_AffectsExistingLoggers(t *testing.T) {
	l, buf := newBuffered(t, "error")

	l.Warn("dropped")
	if buf.Len() != 0 {
		t.Fatalf("warn logged at error level: %s", buf.String())
	}

	SetLevel("debug")
	l.Debug("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("debug not logged after SetLevel: %q", buf.String())
	}

	SetLevel("loud")
	if GetLevel() != "debug" {
		t.Errorf("unknown level changed GetLevel() to %q", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, true},
		{"fatal", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if got != tt.want || (err != nil) != tt.wantErr {
				t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
			}
			if ValidLevel(tt.in) == tt.wantErr {
				t.Errorf("ValidLevel(%q) = %v", tt.in, !tt.wantErr)
			}
		})
	}
}

func TestGetLevel_Canonical(t *testing.T) {
	_, _ = newBuffered(t, "warning")
	if got := GetLevel(); got != "warn" {
		t.Errorf("GetLevel() = %q, want warn", got)
	}
}

func TestSetDefault_RoutesStdlibSlog(t *testing.T) {
	l, buf := newBuffered(t, "info")
	prev := Default()
	SetDefault(l)
	defer SetDefault(prev)

	slog.Info("from stdlib", "receiver_id", "r1")

	if Default() != l {
		t.Error("Default() did not return the installed logger")
	}
	if !strings.Contains(buf.String(), "from stdlib") {
		t.Errorf("slog.Info should reach the configured logger, got %q", buf.String())
	}
}

func TestLogger_TextFormat(t *testing.T) {
	prev := GetLevel()
	defer SetLevel(prev)

	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("teardown sent", "endpoint", "https://ssm.example.com")

	if out := buf.String(); !strings.Contains(out, "teardown sent") || !strings.Contains(out, "endpoint=https://ssm.example.com") {
		t.Errorf("text output = %q", out)
	}
}
