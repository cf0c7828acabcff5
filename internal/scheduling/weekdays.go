package scheduling

import (
	"math"
	"time"
)

// mondayFirst lists weekdays in the order the planner displays a week.
var mondayFirst = [7]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// DistributeWeekdays picks count weekdays spread as evenly as possible over a
// Monday-first week. The result is ascending and has min(count, 7) entries.
func DistributeWeekdays(count int) []time.Weekday {
	if count <= 0 {
		return []time.Weekday{}
	}
	if count >= len(mondayFirst) {
		return append([]time.Weekday(nil), mondayFirst[:]...)
	}

	spacing := float64(len(mondayFirst)) / float64(count)
	var chosen [7]bool
	picked := 0
	for i := 0; i < count; i++ {
		index := int(math.Round(float64(i)*spacing)) % len(mondayFirst)
		if !chosen[index] {
			chosen[index] = true
			picked++
		}
	}

	// rounding collisions are topped up from the start of the week
	for index := 0; index < len(mondayFirst) && picked < count; index++ {
		if !chosen[index] {
			chosen[index] = true
			picked++
		}
	}

	days := make([]time.Weekday, 0, count)
	for index, ok := range chosen {
		if ok {
			days = append(days, mondayFirst[index])
		}
	}
	return days
}

// WeekdayNames renders weekdays as "Monday", "Tuesday", ...
func WeekdayNames(days []time.Weekday) []string {
	names := make([]string, len(days))
	for i, day := range days {
		names[i] = day.String()
	}
	return names
}

// MondayOffset is the number of days between Monday and day.
func MondayOffset(day time.Weekday) int {
	return (int(day) + 6) % 7
}

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -MondayOffset(day.Weekday()))
}
