package cli

import "testing"

func TestValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "-"},
		{"up", "up"},
		{float64(42), "42"},
		{float64(2.5), "2.5"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := Value(tt.in); got != tt.want {
			t.Errorf("Value(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusColors(t *testing.T) {
	old := colorEnabled
	colorEnabled = true
	defer func() { colorEnabled = old }()

	tests := []struct {
		in   string
		code string
	}{
		{"succeeded", "\033[32m"},
		{"active", "\033[32m"},
		{"queued", "\033[33m"},
		{"running", "\033[33m"},
		{"failed", "\033[31m"},
	}
	for _, tt := range tests {
		got := Status(tt.in)
		if got != tt.code+tt.in+"\033[0m" {
			t.Errorf("Status(%q) = %q", tt.in, got)
		}
	}

	// Unknown statuses pass through uncolored.
	if got := Status("mystery"); got != "mystery" {
		t.Errorf("Status(mystery) = %q", got)
	}
}

func TestStatusNoColor(t *testing.T) {
	old := colorEnabled
	colorEnabled = false
	defer func() { colorEnabled = old }()

	if got := Status("failed"); got != "failed" {
		t.Errorf("Status with colors disabled = %q", got)
	}
}
