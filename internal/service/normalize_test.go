package service

import "testing"

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase trim", "  Alice@Example.COM ", "aliceexamplecom"},
		{"diacritics", "Trần Thị Bích", "tranthibich"},
		{"mixed punctuation", "nguyen.van-a_01", "nguyenvana01"},
		{"spaces collapse", "Nguyen Van A", "nguyenvana"},
		{"empty", "", ""},
		{"only symbols", "!!!---", ""},
		{"digits survive", "user123", "user123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeKey(tt.input); got != tt.want {
				t.Fatalf("normalizeKey(%q)=%q want %q", tt.input, got, tt.want)
			}
		})
	}
}
