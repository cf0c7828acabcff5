package models

import (
	"fmt"
	"strings"
	"time"
)

// RecurrencePattern is one of Daily, Weekly, Monthly or Yearly. The set is
// closed: the unexported method keeps other packages from adding patterns, and
// a nil pattern means the rule does not repeat.
type RecurrencePattern interface {
	// Step returns the n-th occurrence after anchor for the given interval.
	Step(anchor time.Time, interval, n int) time.Time
	String() string
	sealed()
}

type dailyPattern struct{}
type weeklyPattern struct{}
type monthlyPattern struct{}
type yearlyPattern struct{}

var (
	Daily   RecurrencePattern = dailyPattern{}
	Weekly  RecurrencePattern = weeklyPattern{}
	Monthly RecurrencePattern = monthlyPattern{}
	Yearly  RecurrencePattern = yearlyPattern{}
)

func (dailyPattern) Step(anchor time.Time, interval, n int) time.Time {
	return anchor.AddDate(0, 0, interval*n)
}

func (weeklyPattern) Step(anchor time.Time, interval, n int) time.Time {
	return anchor.AddDate(0, 0, 7*interval*n)
}

func (monthlyPattern) Step(anchor time.Time, interval, n int) time.Time {
	return addMonthsClamped(anchor, interval*n)
}

func (yearlyPattern) Step(anchor time.Time, interval, n int) time.Time {
	return addMonthsClamped(anchor, 12*interval*n)
}

func (dailyPattern) String() string   { return "DAILY" }
func (weeklyPattern) String() string  { return "WEEKLY" }
func (monthlyPattern) String() string { return "MONTHLY" }
func (yearlyPattern) String() string  { return "YEARLY" }

func (dailyPattern) sealed()   {}
func (weeklyPattern) sealed()  {}
func (monthlyPattern) sealed() {}
func (yearlyPattern) sealed()  {}

// ParsePattern maps a stored pattern name to its pattern. An empty string
// yields nil (not recurring); anything unrecognised is an error.
func ParsePattern(value string) (RecurrencePattern, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "NONE":
		return nil, nil
	case "DAILY":
		return Daily, nil
	case "WEEKLY":
		return Weekly, nil
	case "MONTHLY":
		return Monthly, nil
	case "YEARLY":
		return Yearly, nil
	}
	return nil, fmt.Errorf("unknown recurrence pattern %q", value)
}

// PatternName is the storage form of a pattern; nil becomes "".
func PatternName(pattern RecurrencePattern) string {
	if pattern == nil {
		return ""
	}
	return pattern.String()
}

// addMonthsClamped adds months without spilling into the following month, so
// Jan 31 + 1 month is Feb 28 (or 29) rather than Mar 3.
func addMonthsClamped(anchor time.Time, months int) time.Time {
	year, month, day := anchor.Date()
	first := time.Date(year, month+time.Month(months), 1,
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day,
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
}
