package mealplan

import (
	"errors"
	"strings"
	"time"

	"github.com/dukerupert/plateful/internal/model"
)

const weekLayout = "2006-01-02"

var ErrInvalidWeek = errors.New("invalid week: want YYYY-MM-DD or \"current\"")

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// WeekKey is the storage key of the week containing t.
func WeekKey(t time.Time) string {
	return WeekStart(t).Format(weekLayout)
}

// ParseWeek normalizes "current" or any date to the key of its week.
func ParseWeek(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "current" {
		return WeekKey(now), nil
	}
	t, err := time.ParseInLocation(weekLayout, s, now.Location())
	if err != nil {
		return "", ErrInvalidWeek
	}
	return WeekKey(t), nil
}

// DayName returns the plan day key ("monday".."sunday") for t.
func DayName(t time.Time) string {
	return model.Days[(int(t.Weekday())+6)%7]
}

// PreviousWeek returns the key of the week before key.
func PreviousWeek(key string) (string, error) {
	t, err := time.Parse(weekLayout, key)
	if err != nil {
		return "", ErrInvalidWeek
	}
	return t.AddDate(0, 0, -7).Format(weekLayout), nil
}
