package dateparse

import (
	"regexp"
	"strings"
	"time"
)

var (
	monthDayRe   = regexp.MustCompile(`\b([A-Za-z]{3})\s+(\d{1,2})\b`)
	slashDateRe  = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`)
	timeRangeRe  = regexp.MustCompile(`(\d{1,2}:\d{2}\s*(?:AM|PM))\s*[-–]\s*(\d{1,2}:\d{2}\s*(?:AM|PM))`)
	singleTimeRe = regexp.MustCompile(`(\d{1,2}:\d{2}\s*(?:AM|PM))`)
)

// FindDay ищет день события в тексте: сначала "Dec 06" (год берётся из now),
// затем "12/06/2025" (месяц/день/год).
func FindDay(text string, now time.Time) (time.Time, bool) {
	for _, m := range monthDayRe.FindAllStringSubmatch(text, -1) {
		month, ok := Month(m[1])
		if !ok {
			continue
		}
		day := atoi(m[2])
		t := Naive(now.Year(), month, day, 0, 0)
		// time.Date нормализует 31 Feb в март, такие совпадения пропускаем
		if t.Day() != day {
			continue
		}
		return t, true
	}

	if m := slashDateRe.FindString(text); m != "" {
		if t, err := time.Parse("1/2/2006", m); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ResolveWindow строит начало и окончание события на день day по тексту страницы:
// диапазон времени "1:00 PM - 11:59 PM", иначе одиночное время плюс 4 часа,
// иначе окно 17:00–21:00.
func ResolveWindow(day time.Time, text string) (start, end time.Time) {
	y, mo, d := day.Date()

	if m := timeRangeRe.FindStringSubmatch(text); m != nil {
		sh, sm, okS := ParseClock(m[1])
		eh, em, okE := ParseClock(m[2])
		if okS && okE {
			start = Naive(y, mo, d, sh, sm)
			end = RollOverMidnight(start, Naive(y, mo, d, eh, em))
			return start, end
		}
	}

	if m := singleTimeRe.FindString(text); m != "" {
		if h, mi, ok := ParseClock(m); ok {
			start = Naive(y, mo, d, h, mi)
			return start, start.Add(DefaultDuration)
		}
	}

	start = Naive(y, mo, d, DefaultStartHour, 0)
	return start, start.Add(DefaultDuration)
}

// Ticketpro находит день и окно события в тексте страницы.
// Без найденного дня обе даты nil.
func Ticketpro(pageText string, now time.Time) (start, end *time.Time) {
	day, ok := FindDay(pageText, now)
	if !ok {
		return nil, nil
	}

	s, e := ResolveWindow(day, strings.TrimSpace(pageText))
	return &s, &e
}
