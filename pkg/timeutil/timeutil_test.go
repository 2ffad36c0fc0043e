package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToIST(t *testing.T) {
	// Midnight UTC is 05:30 the same day in IST.
	utc := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	ist := ToIST(utc)

	assert.Equal(t, 5, ist.Hour())
	assert.Equal(t, 30, ist.Minute())
	assert.Equal(t, 10, ist.Day())
	assert.True(t, utc.Equal(ist))
}

func TestFormatDate_CrossesTheDateLine(t *testing.T) {
	// 20:00 UTC is already the next day in IST.
	utc := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-03-11", FormatDate(utc))
	assert.Equal(t, "01:30", FormatTime(utc))
}

func TestStartAndEndOfDay(t *testing.T) {
	utc := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC) // 11 Mar 01:30 IST

	start := StartOfDay(utc)
	assert.Equal(t, 11, start.Day())
	assert.Equal(t, 0, start.Hour())

	end := EndOfDay(utc)
	assert.Equal(t, 11, end.Day())
	assert.Equal(t, 23, end.Hour())
}

func TestStartOfWeek_MondayAnchored(t *testing.T) {
	// 2025-03-09 is a Sunday.
	sunday := Date(2025, 3, 9)

	start := StartOfWeek(sunday)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, 3, start.Day())
}

func TestIsSameDay(t *testing.T) {
	// Both sides of UTC midnight, same IST day.
	a := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC) // 11 Mar 00:30 IST
	b := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC) // 11 Mar 15:30 IST

	assert.True(t, IsSameDay(a, b))
	assert.False(t, IsSameDay(a, a.Add(-2*time.Hour)))
}

func TestDaysBetween(t *testing.T) {
	a := Date(2025, 3, 1)
	b := Date(2025, 3, 11)

	assert.Equal(t, 10, DaysBetween(a, b))
	assert.Equal(t, 10, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, IST, parsed.Location())
	assert.Equal(t, 10, parsed.Day())
}

func TestIsSchoolHours(t *testing.T) {
	assert.True(t, IsSchoolHours(DateTime(2025, 3, 10, 8, 0, 0)))
	assert.True(t, IsSchoolHours(DateTime(2025, 3, 10, 15, 59, 0)))
	assert.False(t, IsSchoolHours(DateTime(2025, 3, 10, 16, 0, 0)))
	assert.False(t, IsSchoolHours(DateTime(2025, 3, 10, 7, 59, 0)))
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(Date(2025, 3, 8)))   // Saturday
	assert.True(t, IsWeekend(Date(2025, 3, 9)))   // Sunday
	assert.False(t, IsWeekend(Date(2025, 3, 10))) // Monday
}
