package util

import (
	"strings"
	"testing"
)

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"OFF", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tc := range cases {
		t.Setenv("CALLPREP_TEST_BOOL", tc.value)
		if got := ParseBoolEnv("CALLPREP_TEST_BOOL", tc.def); got != tc.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tc.value, tc.def, got, tc.want)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	cases := []struct {
		value string
		def   int
		want  int
	}{
		{"1900", 0, 1900},
		{" 42 ", 0, 42},
		{"-5", 0, -5},
		{"", 1900, 1900},
		{"not-a-number", 1900, 1900},
	}
	for _, tc := range cases {
		t.Setenv("CALLPREP_TEST_INT", tc.value)
		if got := ParseIntEnv("CALLPREP_TEST_INT", tc.def); got != tc.want {
			t.Errorf("ParseIntEnv(%q, %d) = %d, want %d", tc.value, tc.def, got, tc.want)
		}
	}
}

func TestGenerateRequestID(t *testing.T) {
	id := GenerateRequestID()
	if !strings.HasPrefix(id, "req_") {
		t.Errorf("expected req_ prefix, got %q", id)
	}
	if len(id) != len("req_")+16 {
		t.Errorf("unexpected length %d for %q", len(id), id)
	}
	if id == GenerateRequestID() && id == GenerateRequestID() {
		t.Error("request IDs should not repeat")
	}
}

func TestGenerateRandomHex(t *testing.T) {
	if got := GenerateRandomHex(0); got != "" {
		t.Errorf("expected empty string for zero length, got %q", got)
	}
	hex := GenerateRandomHex(32)
	if len(hex) != 32 {
		t.Fatalf("unexpected length %d", len(hex))
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Errorf("non-hex rune %q in %q", r, hex)
		}
	}
}
