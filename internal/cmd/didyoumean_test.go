package cmd

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "b", 1},
		{"kitten", "sitting", 3},
		{"lsit", "list", 2},
		{"abc", "abc", 0},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []string{"list", "contacts", "message", "headers", "auth", "config", "version"}
	tests := []struct {
		input string
		want  string
	}{
		{"contcts", "contacts"},
		{"hedrs", "headers"},
		{"lsit", "list"},
		{"verison", "version"},
		{"CONFIG", "config"},
		{"", ""},
		{"zzzzzzzzz", ""},
	}
	for _, tt := range tests {
		if got := suggestCommand(tt.input, commands); got != tt.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flagNames := []string{"--list", "--dry-run", "--deliver-at", "--template"}
	tests := []struct {
		input string
		want  string
	}{
		{"--dryrun", "--dry-run"},
		{"--templte", "--template"},
		{"--lst", "--list"},
		{"--", ""},
		{"--qqqqqqqq", ""},
	}
	for _, tt := range tests {
		if got := suggestFlag(tt.input, flagNames); got != tt.want {
			t.Errorf("suggestFlag(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
