package ws

import (
	"testing"
)

func TestIsValidLobbyCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected bool
	}{
		{"Generated code", "AB12CD", true},
		{"Digits only", "123456", true},
		{"Empty", "", false},
		{"Too short", "AB1", false},
		{"Lowercase", "ab12cd", false},
		{"Invalid chars", "AB-12!", false},
		{"Contains space", "AB 12C", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := IsValidLobbyCode(tc.code)
			if result != tc.expected {
				t.Errorf("IsValidLobbyCode(%q) = %v, expected %v", tc.code, result, tc.expected)
			}
		})
	}
}

func TestNormalizeLobbyCode(t *testing.T) {
	if got := NormalizeLobbyCode("  ab12cd "); got != "AB12CD" {
		t.Errorf("Expected AB12CD, got %q", got)
	}
}
