package domain

import (
	"strings"
	"testing"
)

func TestSessionState_IsTerminal(t *testing.T) {
	tests := []struct {
		state SessionState
		want  bool
	}{
		{SessionUnestablished, false},
		{SessionEstablished, false},
		{SessionTornDown, true},
	}

	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestGenerateSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateSessionID()
		if err != nil {
			t.Fatalf("GenerateSessionID() error = %v", err)
		}
		if !strings.HasPrefix(id, SessionIDPrefix) {
			t.Errorf("id %q missing prefix %q", id, SessionIDPrefix)
		}
		if len(id) != len(SessionIDPrefix)+26 {
			t.Errorf("id %q has length %d, want %d", id, len(id), len(SessionIDPrefix)+26)
		}
		if id != strings.ToLower(id) {
			t.Errorf("id %q should be lowercase", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
