// Package dateparse разбирает строки дат и времени с площадок продажи билетов.
//
// Все функции возвращают "наивное" локальное время: компоненты даты и времени
// хранятся в time.Time с локацией UTC, смещение площадки не учитывается.
// Часовой пояс (SAST, +02:00) прикрепляет сборщик записи.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Окно по умолчанию, когда время начала не найдено.
const (
	DefaultStartHour = 17
	DefaultDuration  = 4 * time.Hour
)

var spaceRe = regexp.MustCompile(`\s+`)

// Naive собирает наивную отметку времени.
func Naive(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// Ptr возвращает указатель на копию t.
func Ptr(t time.Time) *time.Time {
	return &t
}

// Month разбирает трёхбуквенное сокращение месяца без учёта регистра.
func Month(abbr string) (time.Month, bool) {
	t, err := time.Parse("Jan", strings.TrimSpace(abbr))
	if err != nil {
		return 0, false
	}
	return t.Month(), true
}

// ParseClock разбирает время вида "3:04 PM", "11:00PM" или "18:00".
func ParseClock(s string) (hour, minute int, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = spaceRe.ReplaceAllString(s, " ")

	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Hour(), t.Minute(), true
		}
	}

	return 0, 0, false
}

// RollOverMidnight переносит окончание на следующий день, если час окончания
// меньше часа начала.
func RollOverMidnight(start, end time.Time) time.Time {
	if end.Hour() < start.Hour() {
		return end.AddDate(0, 0, 1)
	}
	return end
}

// ParseISOLocal разбирает локальную ISO 8601 отметку вида "2025-03-08T19:00:00".
// Смещение, если оно указано, отбрасывается.
func ParseISOLocal(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		n := Naive(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute())
		return &n
	}

	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
