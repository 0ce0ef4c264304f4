package dateparse

import (
	"regexp"
	"strings"
	"time"
)

var (
	howlerFullRe = regexp.MustCompile(
		`(\d{2}):(\d{2}) (\d{1,2}) (\w{3}) (\d{4}) - (\d{2}):(\d{2}) (\d{1,2}) (\w{3}) (\d{4})`)
	howlerTimeRe = regexp.MustCompile(`(\d{2}):(\d{2})\s*-\s*(\d{2}):(\d{2})\s*SAST\s*\(\+02:00\)`)
	howlerDayRe  = regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]{3})\s*(\d{4})?\s*SAST\s*\(\+02:00\)`)
)

// Howler разбирает пару строк блока даты Howler.
//
// Полная форма "13:00 8 Mar 2025 - 02:00 9 Mar 2025" ищется в dateText.
// Иначе диапазон времени "19:00 - 23:00 SAST (+02:00)" берётся из dateText,
// а день "8 Mar [2025] SAST (+02:00)" из altText. Без года берётся год из now.
func Howler(dateText, altText string, now time.Time) (start, end *time.Time) {
	dateText = spaceRe.ReplaceAllString(strings.TrimSpace(dateText), " ")
	altText = spaceRe.ReplaceAllString(strings.TrimSpace(altText), " ")

	if m := howlerFullRe.FindStringSubmatch(dateText); m != nil {
		sm, okS := Month(m[4])
		em, okE := Month(m[9])
		if !okS || !okE {
			return nil, nil
		}
		s := Naive(atoi(m[5]), sm, atoi(m[3]), atoi(m[1]), atoi(m[2]))
		e := Naive(atoi(m[10]), em, atoi(m[8]), atoi(m[6]), atoi(m[7]))
		return &s, &e
	}

	tm := howlerTimeRe.FindStringSubmatch(dateText)
	dm := howlerDayRe.FindStringSubmatch(altText)
	if tm == nil || dm == nil {
		return nil, nil
	}

	month, ok := Month(dm[2])
	if !ok {
		return nil, nil
	}
	year := now.Year()
	if dm[3] != "" {
		year = atoi(dm[3])
	}
	day := atoi(dm[1])

	s := Naive(year, month, day, atoi(tm[1]), atoi(tm[2]))
	e := Naive(year, month, day, atoi(tm[3]), atoi(tm[4]))
	e = RollOverMidnight(s, e)

	return &s, &e
}
