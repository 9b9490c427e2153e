package billscan

import (
	"strings"
	"unicode/utf8"
)

// truncAt returns the largest cut point <= max that does not split a
// multi-byte rune. OCR output is UTF-8 and a half-rune tail would encode
// as U+FFFD in JSON.
func truncAt(s string, max int) int {
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return max
}

// snippet returns a shortened version of text for logging.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:truncAt(s, max)] + "…"
}

// preview returns the first max bytes of text for the diagnostic
// rawTextPreview field, trimmed to a rune boundary.
func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:truncAt(s, max)]
}

// onlyDigits extracts decimal digits from a string.
func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
