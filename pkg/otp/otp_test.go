package otp

import (
	"strings"
	"testing"
)

func TestGenerate_Length(t *testing.T) {
	for _, length := range []int{4, 6, 8, 10} {
		g := NewGenerator(length)

		code, err := g.Generate()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(code) != length {
			t.Errorf("Expected code of length %d, got %d (%q)", length, len(code), code)
		}

		if !g.Validate(code) {
			t.Errorf("Generated code %q should validate", code)
		}
	}
}

func TestNewGenerator_ClampsLength(t *testing.T) {
	if got := NewGenerator(2).Length(); got != 4 {
		t.Errorf("Expected length clamped to 4, got %d", got)
	}
	if got := NewGenerator(20).Length(); got != 10 {
		t.Errorf("Expected length clamped to 10, got %d", got)
	}
}

func TestGenerate_NumericOnly(t *testing.T) {
	g := NewGenerator(6)
	for i := 0; i < 50; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("Code %q contains non-digit %q", code, c)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	g := NewGenerator(6)

	tests := []struct {
		code  string
		valid bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := g.Validate(tt.code); got != tt.valid {
			t.Errorf("Validate(%q) = %v, expected %v", tt.code, got, tt.valid)
		}
	}
}

func TestHash_Deterministic(t *testing.T) {
	if Hash("123456") != Hash("123456") {
		t.Error("Expected identical codes to hash identically")
	}
	if Hash("123456") == Hash("654321") {
		t.Error("Expected different codes to hash differently")
	}
	if len(Hash("123456")) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(Hash("123456")))
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" 123456 ", "123456"},
		{"123 456", "123456"},
		{"123-456", "123456"},
		{"123456", "123456"},
	}

	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskCode(t *testing.T) {
	masked := MaskCode("123456")
	if masked != strings.Repeat("*", 6) {
		t.Errorf("Expected all asterisks, got %q", masked)
	}
}
