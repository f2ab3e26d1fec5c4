package schedule

import (
	"fmt"
	"time"
)

// Schedule determines when a periodic job should run next.
type Schedule interface {
	Next(from time.Time) time.Time
	String() string
}

// intervalSchedule runs at fixed intervals.
type intervalSchedule struct {
	every time.Duration
}

func (s intervalSchedule) Next(from time.Time) time.Time {
	return from.Add(s.every)
}

func (s intervalSchedule) String() string {
	return fmt.Sprintf("every %v", s.every)
}

// dailySchedule runs once per day at the specified time.
type dailySchedule struct {
	hour   int
	minute int
}

func (s dailySchedule) Next(from time.Time) time.Time {
	next := time.Date(
		from.Year(), from.Month(), from.Day(),
		s.hour, s.minute, 0, 0, from.Location(),
	)
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s dailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d", s.hour, s.minute)
}

// hourlySchedule runs every hour at the specified minute.
type hourlySchedule struct {
	minute int
}

func (s hourlySchedule) Next(from time.Time) time.Time {
	next := time.Date(
		from.Year(), from.Month(), from.Day(),
		from.Hour(), s.minute, 0, 0, from.Location(),
	)
	if !next.After(from) {
		next = next.Add(time.Hour)
	}
	return next
}

func (s hourlySchedule) String() string {
	return fmt.Sprintf("hourly at :%02d", s.minute)
}

// EveryInterval creates a schedule that runs at fixed intervals.
func EveryInterval(d time.Duration) Schedule {
	return intervalSchedule{every: d}
}

// EveryMinutes creates a schedule that runs every n minutes.
func EveryMinutes(n int) Schedule {
	return intervalSchedule{every: time.Duration(n) * time.Minute}
}

// HourlyAt creates a schedule that runs every hour at the given minute.
func HourlyAt(minute int) Schedule {
	return hourlySchedule{minute: minute}
}

// DailyAt creates a schedule that runs daily at the given time.
func DailyAt(hour, minute int) Schedule {
	return dailySchedule{hour: hour, minute: minute}
}

// Daily creates a schedule that runs daily at midnight.
func Daily() Schedule {
	return dailySchedule{hour: 0, minute: 0}
}
