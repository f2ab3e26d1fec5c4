// Package schedule runs recurring background jobs on simple wall-clock
// schedules (fixed interval, hourly, daily). The subscription renewal scan
// uses a daily-at-midnight schedule.
package schedule
