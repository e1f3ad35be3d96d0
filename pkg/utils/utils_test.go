package utils

import "testing"

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already clean",
			input:    "ana@example.com",
			expected: "ana@example.com",
		},
		{
			name:     "uppercase",
			input:    "Ana@Example.COM",
			expected: "ana@example.com",
		},
		{
			name:     "surrounding whitespace and newlines",
			input:    " ana@example.com\n",
			expected: "ana@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeEmail(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCheckEmailFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "simple address",
			input:    "a@b.com",
			expected: true,
		},
		{
			name:     "with plus tag",
			input:    "user+tag@example.org",
			expected: true,
		},
		{
			name:     "missing domain",
			input:    "user@",
			expected: false,
		},
		{
			name:     "missing tld",
			input:    "user@host",
			expected: false,
		},
		{
			name:     "empty",
			input:    "",
			expected: false,
		},
		{
			name:     "spaces inside",
			input:    "us er@example.com",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckEmailFormat(tt.input)
			if result != tt.expected {
				t.Errorf("CheckEmailFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeItemName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases",
			input:    "Basmati Rice",
			expected: "basmati rice",
		},
		{
			name:     "trims whitespace",
			input:    "  chicken \t",
			expected: "chicken",
		},
		{
			name:     "inner whitespace kept",
			input:    "green  chilies",
			expected: "green  chilies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeItemName(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeItemName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBlurEmailAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "regular address",
			input:    "ana@example.com",
			expected: "a****@example.com",
		},
		{
			name:     "empty local part",
			input:    "@example.com",
			expected: "****@**",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BlurEmailAddress(tt.input)
			if result != tt.expected {
				t.Errorf("BlurEmailAddress(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
