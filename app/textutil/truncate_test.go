package textutil

import (
	"testing"
)

func TestTruncateToWord(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"no truncation needed", "Hello", 5, "Hello"},
		{"mid-word cut", "Hello, world!", 5, "Hell…"},
		{"shorter than limit", "Short", 10, "Short"},
		{"zero disables truncation", "Any text", 0, "Any text"},
		{"single grapheme fits", "A", 1, "A"},
		{"only ellipsis fits", "Ab", 1, "…"},
		{"exact length", "Exactly", 7, "Exactly"},
		{"one over exact", "Exactly!", 7, "Exactl…"},
		{"cut at word boundary", "Hello, world!", 7, "Hello,…"},
		{"full string fits", "Hello world", 11, "Hello world"},
		{"word boundary preferred", "Hello world", 10, "Hello…"},
		{"multiple spaces collapsed", "Hello   world", 8, "Hello…"},
		{"all spaces", "    ", 2, ""},
		{"multibyte graphemes", "こんにちは世界", 5, "こんにち…"},
		{"emoji graphemes", "🌍🌎🌏", 2, "🌍…"},
		{"mixed ascii and unicode", "Hello 世界", 7, "Hello…"},
		{"long first word", "Supercalifragilisticexpialidocious is long", 10, "Supercali…"},
		{"no spaces at all", "NoSpacesHere", 5, "NoSp…"},
		{"empty string", "", 5, ""},
		{"only ellipsis", "Too long", 1, "…"},
		{"trailing spaces", "Trailing spaces   ", 10, "Trailing…"},
		{"leading spaces", "   Leading spaces", 10, "Leading…"},
		{"one grapheme over", "Exactly_one_over", 15, "Exactly_one_ov…"},
		{"max equals length", "Exact", 5, "Exact"},
		{"max one less than length", "Almost", 5, "Almo…"},
		{"newline preserved", "Line_1\nLine_2", 7, "Line_1…"},
		{"tab is not a word boundary", "Tab\tSeparated", 5, "Tab\t…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateToWord(tt.input, tt.max)
			if got != tt.expected {
				t.Errorf("TruncateToWord(%q, %d) = %q, expected %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}

func TestTruncateToWordNeverExceedsLimit(t *testing.T) {
	inputs := []string{
		"The quick brown fox jumps over the lazy dog",
		"こんにちは世界 こんにちは世界 こんにちは世界",
		"🌍🌎🌏 🌍🌎🌏 🌍🌎🌏",
		"NoSpacesAtAllJustOneVeryLongWordThatKeepsGoing",
	}

	for _, input := range inputs {
		for max := 1; max <= 20; max++ {
			got := TruncateToWord(input, max)
			if count := GraphemeCount(got); count > max {
				t.Errorf("TruncateToWord(%q, %d) produced %d graphemes: %q", input, max, count, got)
			}
		}
	}
}

func TestGraphemeCount(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"Hello", 5},
		{"こんにちは", 5},
		{"🌍🌎🌏", 3},
		{"a👩‍👩‍👧‍👦b", 3},
	}

	for _, tt := range tests {
		if got := GraphemeCount(tt.input); got != tt.expected {
			t.Errorf("GraphemeCount(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}
