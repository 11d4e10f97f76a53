package idempotency

import (
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"uuid", "3f1c2a9e-5b7d-4c1a-9e2f-0a1b2c3d4e5f", false},
		{"max length", strings.Repeat("a", MaxKeyLength), false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxKeyLength+1), true},
		{"space", "a b", true},
		{"control", "a\tb", true},
		{"non-ascii", "clé", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestScope(t *testing.T) {
	a := Scope(1, "POST", "/api/interactions", "k")
	if a != "1:POST:/api/interactions:k" {
		t.Errorf("Scope = %q", a)
	}
	if a == Scope(2, "POST", "/api/interactions", "k") {
		t.Error("scopes for different users should differ")
	}
}

func TestHashRequest(t *testing.T) {
	if HashRequest([]byte("a")) == HashRequest([]byte("b")) {
		t.Error("different bodies should hash differently")
	}
	if got := HashRequest(nil); len(got) != 64 {
		t.Errorf("hash length = %d, want 64", len(got))
	}
}
