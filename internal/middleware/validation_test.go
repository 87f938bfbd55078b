package middleware

import (
	"strings"
	"testing"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"9876543210", true},
		{"0000000000", true},
		{"987654321", false},
		{"98765432101", false},
		{"987654321a", false},
		{"+919876543210", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidatePhone(tt.phone)
		if (err == nil) != tt.ok {
			t.Errorf("ValidatePhone(%q) error = %v, want ok = %v", tt.phone, err, tt.ok)
		}
	}
}

func TestValidateOTPFormat(t *testing.T) {
	tests := []struct {
		otp string
		ok  bool
	}{
		{"000000", true},
		{"123456", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidateOTPFormat(tt.otp)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateOTPFormat(%q) error = %v, want ok = %v", tt.otp, err, tt.ok)
		}
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("Ada Lovelace"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateName("   "); err == nil {
		t.Fatal("expected error for blank name")
	}
	if err := ValidateName(strings.Repeat("x", 200)); err == nil {
		t.Fatal("expected error for oversized name")
	}
}

func TestValidateChatID(t *testing.T) {
	if err := ValidateChatID("chat-1717171717171"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, bad := range []string{"chat-", "1717171717171", "chat-abc", ""} {
		if err := ValidateChatID(bad); err == nil {
			t.Errorf("ValidateChatID(%q) expected error", bad)
		}
	}
}
