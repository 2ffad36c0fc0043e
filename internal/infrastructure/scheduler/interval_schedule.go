package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule runs a job at a fixed interval. Both maintenance
// jobs use this; there is no calendar-based scheduling.
type IntervalSchedule struct {
	Interval time.Duration
}

// Every creates an IntervalSchedule with the given interval.
func Every(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{Interval: interval}
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}
