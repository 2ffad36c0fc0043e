// Package timeutil provides timezone utilities for Indian Standard
// Time (UTC+5:30). All students are in India, so test timestamps and
// chat-facing dates are rendered in IST regardless of server timezone.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// IST is Indian Standard Time (UTC+5:30, no DST).
var IST = time.FixedZone("Asia/Kolkata", 5*60*60+30*60)

// Now returns the current time in IST.
func Now() time.Time {
	return time.Now().In(IST)
}

// ToIST converts a time to IST.
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a time in IST with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, IST)
}

// DateTime creates a time in IST with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, IST)
}

// StartOfDay returns the start of the day (00:00:00) in IST.
func StartOfDay(t time.Time) time.Time {
	ist := ToIST(t)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, IST)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in IST.
func EndOfDay(t time.Time) time.Time {
	ist := ToIST(t)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 23, 59, 59, 999999999, IST)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in IST.
func StartOfWeek(t time.Time) time.Time {
	ist := ToIST(t)
	weekday := int(ist.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	daysToSubtract := weekday - 1 // Monday = 1
	return StartOfDay(ist.AddDate(0, 0, -daysToSubtract))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in IST.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	return EndOfDay(start.AddDate(0, 0, 6))
}

// StartOfMonth returns the start of the month in IST.
func StartOfMonth(t time.Time) time.Time {
	ist := ToIST(t)
	return time.Date(ist.Year(), ist.Month(), 1, 0, 0, 0, 0, IST)
}

// EndOfMonth returns the end of the month in IST.
func EndOfMonth(t time.Time) time.Time {
	start := StartOfMonth(t)
	return EndOfDay(start.AddDate(0, 1, -1))
}

// IsToday checks if the given time is today in IST.
func IsToday(t time.Time) bool {
	now := Now()
	ist := ToIST(t)
	return ist.Year() == now.Year() &&
		ist.Month() == now.Month() &&
		ist.Day() == now.Day()
}

// DaysSince calculates the number of days since the given time.
func DaysSince(t time.Time) int {
	now := StartOfDay(Now())
	then := StartOfDay(t)
	duration := now.Sub(then)
	return int(duration.Hours() / 24)
}

// School hours, used to phrase chat replies, not to gate anything.
const (
	// SchoolDayStart is when the school day starts (8:00 AM).
	SchoolDayStart = 8
	// SchoolDayEnd is when the school day ends (4:00 PM).
	SchoolDayEnd = 16
)

// IsSchoolHours checks if the given time is within school hours.
func IsSchoolHours(t time.Time) bool {
	ist := ToIST(t)
	hour := ist.Hour()
	return hour >= SchoolDayStart && hour < SchoolDayEnd
}

// IsWeekend checks if the given time is on a weekend.
func IsWeekend(t time.Time) bool {
	ist := ToIST(t)
	weekday := ist.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// Common date/time formats.
const (
	// LayoutDate is the standard date format (YYYY-MM-DD).
	LayoutDate = "2006-01-02"
	// LayoutTime is the standard time format (HH:MM).
	LayoutTime = "15:04"
	// LayoutDateTime is the standard datetime format.
	LayoutDateTime = "2006-01-02 15:04"
	// LayoutDateTimeSeconds includes seconds.
	LayoutDateTimeSeconds = "2006-01-02 15:04:05"
	// LayoutHumanDate is a human-readable format.
	LayoutHumanDate = "2 January 2006"
	// LayoutShortDate is a short format (Jan 2).
	LayoutShortDate = "Jan 2"
)

// Format formats a time in IST with the given layout.
func Format(t time.Time, layout string) string {
	return ToIST(t).Format(layout)
}

// FormatDate formats a time as a date string (YYYY-MM-DD) in IST.
func FormatDate(t time.Time) string {
	return Format(t, LayoutDate)
}

// FormatTime formats a time as a time string (HH:MM) in IST.
func FormatTime(t time.Time) string {
	return Format(t, LayoutTime)
}

// FormatDateTime formats a time as a datetime string in IST.
func FormatDateTime(t time.Time) string {
	return Format(t, LayoutDateTime)
}

// FormatRelative returns a human-readable relative time string.
func FormatRelative(t time.Time) string {
	now := Now()
	ist := ToIST(t)
	duration := now.Sub(ist)

	if duration < 0 {
		duration = -duration
		return formatFutureDuration(duration)
	}

	return formatPastDuration(duration)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d weeks ago", int(d.Hours()/24/7))
	default:
		months := int(d.Hours() / 24 / 30)
		if months < 12 {
			return fmt.Sprintf("%d months ago", months)
		}
		return fmt.Sprintf("%d years ago", months/12)
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %d min", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %d h", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "tomorrow"
		}
		return fmt.Sprintf("in %d days", days)
	}
}

// Parse parses a time string in IST.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, IST)
}

// ParseDate parses a date string (YYYY-MM-DD) in IST.
func ParseDate(value string) (time.Time, error) {
	return Parse(LayoutDate, value)
}

// IsSameDay checks if two times are on the same day in IST.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := ToIST(t1), ToIST(t2)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBetween calculates the number of days between two times.
func DaysBetween(t1, t2 time.Time) int {
	a := StartOfDay(t1)
	b := StartOfDay(t2)
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
