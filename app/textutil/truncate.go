package textutil

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

const ellipsis = "…"

// GraphemeCount returns the number of user-perceived characters in s.
// Bluesky counts post length in graphemes, not bytes or runes.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// TruncateToWord shortens s to at most maxGraphemes user-perceived characters,
// cutting at the last word boundary where possible and appending an ellipsis.
// A maxGraphemes of 0 disables truncation. Leading and trailing whitespace is
// always trimmed.
func TruncateToWord(s string, maxGraphemes int) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if maxGraphemes == 0 || s == "" {
		return s
	}

	graphemes := splitGraphemes(s)
	if len(graphemes) <= maxGraphemes {
		return s
	}

	graphemes = graphemes[:maxGraphemes]

	// Cut at the last space to avoid splitting a word
	lastSpace := -1
	for i := len(graphemes) - 1; i >= 0; i-- {
		if graphemes[i] == " " {
			lastSpace = i
			break
		}
	}
	if lastSpace > 0 {
		graphemes = graphemes[:lastSpace]
	}

	for len(graphemes) > 0 && graphemes[len(graphemes)-1] == " " {
		graphemes = graphemes[:len(graphemes)-1]
	}

	if len(graphemes) < maxGraphemes {
		graphemes = append(graphemes, ellipsis)
	} else {
		graphemes[len(graphemes)-1] = ellipsis
	}

	return strings.Join(graphemes, "")
}

func splitGraphemes(s string) []string {
	graphemes := make([]string, 0, len(s))
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		graphemes = append(graphemes, gr.Str())
	}
	return graphemes
}
