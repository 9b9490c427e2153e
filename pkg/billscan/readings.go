package billscan

import (
	"regexp"
	"strconv"
)

// MeterReadings holds the current/previous meter values. Nil means the
// value could not be extracted.
type MeterReadings struct {
	Current  *int `json:"current"`
	Previous *int `json:"previous"`
}

var currentReadingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Current\s*Reading[:\s]*([0-9]+)`),
	regexp.MustCompile(`(?i)Current\s*Reading\s*([0-9]{3,})`),
}

var previousReadingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Previous\s*Reading[:\s]*([0-9]+)`),
	regexp.MustCompile(`(?i)Previous\s*Reading\s*([0-9]{3,})`),
}

// meterTokenRE matches standalone 3-7 digit numbers. Readings are never
// shorter than 3 digits; the upper bound keeps out long ids and the lower
// one page numbers and date fragments.
var meterTokenRE = regexp.MustCompile(`\b([0-9]{3,7})\b`)

// ExtractReadings finds the current/previous meter readings. Labeled
// patterns win outright; only when neither label matches does it fall back
// to scanning all 3-7 digit tokens and taking the last two in document
// order as {previous, current}: tables of readings usually OCR into a
// number stream near the end of the text, previous before current.
func ExtractReadings(text string) MeterReadings {
	cur := extractField(text, currentReadingPatterns)
	prev := extractField(text, previousReadingPatterns)
	if cur != "" || prev != "" {
		return MeterReadings{Current: parseReading(cur), Previous: parseReading(prev)}
	}
	ms := meterTokenRE.FindAllStringSubmatch(text, -1)
	if len(ms) >= 2 {
		current := mustAtoi(ms[len(ms)-1][1])
		previous := mustAtoi(ms[len(ms)-2][1])
		return MeterReadings{Current: &current, Previous: &previous}
	}
	return MeterReadings{}
}

// ComputeUnits derives consumed units from a reading pair. A negative
// delta means a meter rollover, swapped readings, or a misextraction;
// that is unreliable data, not a computable value, so it yields nil.
func ComputeUnits(r MeterReadings) *int {
	if r.Current == nil || r.Previous == nil {
		return nil
	}
	units := *r.Current - *r.Previous
	if units < 0 {
		return nil
	}
	return &units
}

func parseReading(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(onlyDigits(s))
	if err != nil {
		return nil
	}
	return &n
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
