package dateparse

import (
	"regexp"
	"strings"
	"time"
)

var (
	computicketRangeRe = regexp.MustCompile(
		`(\w{3}\s+\d{1,2}\s+\w{3}\s+\d{4},\s+\d{1,2}:\d{2}\s*(?:AM|PM)?)\s*,?\s*[-–]\s*(\w{3}\s+\d{1,2}\s+\w{3}\s+\d{4},\s+\d{1,2}:\d{2}\s*(?:AM|PM)?)`)
	computicketDateTimeRe = regexp.MustCompile(`\w{3}\s+\d{1,2}\s+\w{3}\s+\d{4},\s+\d{1,2}:\d{2}\s*(?:AM|PM)?`)
	computicketDateRe     = regexp.MustCompile(`\w{3}\s+\d{1,2}\s+\w{3}\s+\d{4}`)

	mislabeledPMRe = regexp.MustCompile(`(\d{1,2}):(\d{2})\s+PM`)
	ordinalRe      = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\b`)
)

var computicketLayouts = []string{
	"Mon 2 Jan 2006, 3:04 PM",
	"Mon 2 Jan 2006, 15:04",
	"Mon 2 Jan 2006, 3:04",
}

// FixMislabeledPM убирает суффикс " PM" у времени в 24-часовом формате
// ("18:00 PM" читается как 18:00). Время с часом меньше 13 не меняется.
func FixMislabeledPM(s string) string {
	m := mislabeledPMRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	if atoi(m[1]) >= 13 {
		return strings.ReplaceAll(s, " PM", "")
	}
	return s
}

// ParseComputicketDateTime разбирает "Sat 29 Nov 2025, 12:00 PM" и его варианты без AM/PM.
func ParseComputicketDateTime(s string) (time.Time, bool) {
	s = FixMislabeledPM(strings.TrimSpace(s))
	s = strings.ToUpper(spaceRe.ReplaceAllString(s, " "))

	for _, layout := range computicketLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// Computicket ищет даты в тексте страницы: диапазон, затем одиночная отметка,
// затем дата без времени. Если ничего не подошло, обе даты nil.
func Computicket(pageText string) (start, end *time.Time) {
	if m := computicketRangeRe.FindStringSubmatch(pageText); m != nil {
		s, okS := ParseComputicketDateTime(m[1])
		e, okE := ParseComputicketDateTime(m[2])
		if okS && okE {
			return &s, &e
		}
	}

	if m := computicketDateTimeRe.FindString(pageText); m != "" {
		if s, ok := ParseComputicketDateTime(m); ok {
			return &s, nil
		}
		// найденная отметка не разобралась: дальше не ищем, как и при успешном совпадении
		return nil, nil
	}

	if m := computicketDateRe.FindString(pageText); m != "" {
		s := strings.ToUpper(spaceRe.ReplaceAllString(m, " "))
		if t, err := time.Parse("Mon 2 Jan 2006", s); err == nil {
			return &t, nil
		}
	}

	return nil, nil
}

// DateLine разбирает абзац вида "Date: March 8th, 2025".
func DateLine(text string) *time.Time {
	if !strings.Contains(text, "Date:") {
		return nil
	}

	s := strings.TrimSpace(strings.ReplaceAll(text, "Date:", ""))
	s = ordinalRe.ReplaceAllString(s, "$1")
	s = spaceRe.ReplaceAllString(s, " ")

	t, err := time.Parse("January 2, 2006", s)
	if err != nil {
		return nil
	}
	return &t
}
