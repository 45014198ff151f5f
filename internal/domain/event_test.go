package domain

import "testing"

func TestParseChangeEvent(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantErr  bool
		wantType string
		known    bool
	}{
		{"thread event", `{"type":"thread","threadId":"t1"}`, false, "thread", true},
		{"post event", `{"type":"post","threadId":"t2"}`, false, "post", true},
		{"unknown type", `{"type":"vote","threadId":"t3"}`, false, "vote", false},
		{"missing threadId", `{"type":"thread"}`, true, "", false},
		{"malformed json", `{not json`, true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseChangeEvent([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.Type != tt.wantType {
				t.Errorf("type = %q, want %q", ev.Type, tt.wantType)
			}
			if ev.Known() != tt.known {
				t.Errorf("Known() = %v, want %v", ev.Known(), tt.known)
			}
		})
	}
}
