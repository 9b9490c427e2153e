package billscan

import (
	"regexp"
	"strings"
)

// Each field keeps an ordered pattern list: most specific label variants
// first, generic fallbacks last. extractField walks the list and takes the
// first capture. An empty return means the field was not found, which is an
// expected outcome on noisy OCR text, never an error.

var consumerNoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Consumer\s*No[:\s]*([A-Z0-9\-]+)`),
	regexp.MustCompile(`(?i)Consumer\s*No\.\s*([0-9A-Z\-]+)`),
	regexp.MustCompile(`(?i)Account\s*No[:\s]*([0-9A-Z\-]+)`),
	regexp.MustCompile(`(?i)Account\s*Number[:\s]*([0-9A-Z\-]+)`),
	// Fallback: bills reliably contain one long identifying number even
	// when the label itself got mangled.
	regexp.MustCompile(`\b([0-9]{6,14})\b`),
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bMR\.?\s*([A-Z][A-Z\s]{2,60})`),
	regexp.MustCompile(`(?i)\bMRS\.?\s*([A-Z][A-Z\s]{2,60})`),
	regexp.MustCompile(`(?i)Consumer\s*Name[:\s]*([A-Z][A-Z\s]{2,60})`),
	regexp.MustCompile(`(?i)Name[:\s]*([A-Z][A-Z\s]{2,60})`),
}

var billDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Bill Date[:\s]*([0-9]{1,2}[-/\s][A-Za-z0-9]{1,3}[-/\s][0-9]{2,4})`),
	regexp.MustCompile(`(?i)Bill Date[:\s]*([0-9]{2}[-/][0-9]{2}[-/][0-9]{2,4})`),
	regexp.MustCompile(`(?i)Date[:\s]*([0-9]{1,2}[-/][0-9]{1,2}[-/][0-9]{2,4})`),
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Bill Amount\s*Rs[:\s]*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?i)Bill Amount[:\s]*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?i)Amount[:\s]*Rs\.?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?i)Total[:\s]*Rs[:\s]*([0-9,]+\.?[0-9]*)`),
}

var (
	consumerNoLabel     = regexp.MustCompile(`(?i)Consumer\s*No[:\s]`)
	nameAfterConsumerNo = regexp.MustCompile(`(?i)Consumer\s*No[:\s]*[0-9A-Z\-]+\s*([A-Z][A-Z\s]{2,60})`)
	multiSpace          = regexp.MustCompile(`\s{2,}`)
)

// nameWindow bounds the positional name fallback so pathological OCR text
// cannot trigger an unbounded scan.
const nameWindow = 150

// extractField tries each pattern in order against the full text and
// returns the first capture, trimmed. Empty string means no pattern matched.
func extractField(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); len(m) >= 2 && m[1] != "" {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ExtractConsumerNo finds the consumer/account identifier.
func ExtractConsumerNo(text string) string {
	return extractField(text, consumerNoPatterns)
}

// ExtractName finds the customer name via salutation/label patterns. When
// none match it falls back to the uppercase run immediately after a
// "Consumer No" label: many bill layouts place the name right after the
// account number.
func ExtractName(text string) string {
	if direct := extractField(text, namePatterns); direct != "" {
		return strings.TrimSpace(multiSpace.ReplaceAllString(direct, " "))
	}
	loc := consumerNoLabel.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	end := loc[0] + nameWindow
	if end > len(text) {
		end = len(text)
	}
	window := text[loc[0]:end]
	if m := nameAfterConsumerNo.FindStringSubmatch(window); len(m) >= 2 {
		return strings.TrimSpace(multiSpace.ReplaceAllString(m[1], " "))
	}
	return ""
}

// ExtractBillDate finds the billing date. No positional fallback: an
// unmatched date stays empty rather than guessed.
func ExtractBillDate(text string) string {
	return extractField(text, billDatePatterns)
}

// ExtractAmount finds the bill amount and returns it as a numeric string
// with thousands separators stripped. Parsing to a number is the caller's
// job; this layer only hands back the raw extracted value.
func ExtractAmount(text string) string {
	raw := extractField(text, amountPatterns)
	if raw == "" {
		return ""
	}
	return strings.ReplaceAll(raw, ",", "")
}
