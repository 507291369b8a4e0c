package util

import (
	"strings"
	"testing"
)

func TestValidateEmail_Valid(t *testing.T) {
	testCases := []string{
		"a@b.com",
		"someone@example.co.uk",
		"  spaced@example.com  ",
	}

	for _, email := range testCases {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) error = %v, want nil", email, err)
		}
	}
}

func TestValidateEmail_Invalid(t *testing.T) {
	testCases := []string{
		"",
		"   ",
		"no-at-sign",
		"@leading.com",
		"trailing@",
	}

	for _, email := range testCases {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) error = nil, want error", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("secret1"); err != nil {
		t.Errorf("ValidatePassword(7 chars) error = %v, want nil", err)
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Errorf("ValidatePassword(6 chars) error = %v, want nil", err)
	}

	for _, pwd := range []string{"", "12345"} {
		if err := ValidatePassword(pwd); err == nil {
			t.Errorf("ValidatePassword(%q) error = nil, want error", pwd)
		}
	}
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("Buy milk"); err != nil {
		t.Errorf("ValidateTitle() error = %v, want nil", err)
	}

	for _, title := range []string{"", "   ", "\t\n"} {
		if err := ValidateTitle(title); err == nil {
			t.Errorf("ValidateTitle(%q) error = nil, want error", title)
		}
	}

	if err := ValidateTitle(strings.Repeat("x", 256)); err == nil {
		t.Error("ValidateTitle(256 chars) error = nil, want error")
	}
}
