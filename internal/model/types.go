// Package model defines shared data structures.
package model

import "github.com/kunansy/readingqueue/internal/dateutil"

// LogRecord is a single logged day: how many pages of which material were
// read. A day without an explicit entry is represented downstream as a
// synthesized record with Count == 0.
type LogRecord struct {
	Count         int
	MaterialID    string
	MaterialTitle string
}

// Material is a catalog entry.
type Material struct {
	ID      string
	Title   string
	Authors string
	Pages   int
	Tags    string
}

// MaterialStatus is the lifecycle of a material: when it was started and,
// once finished, when it was completed.
type MaterialStatus struct {
	MaterialID  string
	StartedAt   dateutil.Date
	CompletedAt *dateutil.Date
}

// Completed reports whether the material has been finished.
func (s MaterialStatus) Completed() bool {
	return s.CompletedAt != nil
}

// MaterialWithStatus pairs a material with its lifecycle.
type MaterialWithStatus struct {
	Material Material
	Status   MaterialStatus
}

// MinMax singles out the day with the smallest or largest page count over
// some series.
type MinMax struct {
	Date          dateutil.Date
	Count         int
	MaterialID    string
	MaterialTitle string
}

// LogStatistics aggregates the whole reading log.
type LogStatistics struct {
	StartDate      dateutil.Date
	StopDate       dateutil.Date
	Duration       int
	LostTime       int
	Average        int
	TotalPagesRead int
	WouldBeTotal   int
	Min            MinMax
	Max            MinMax
	Median         int
}

// MaterialStatistics is the per-material projection of the log statistics.
// The Remaining* fields and WouldBeCompleted are nil for a completed
// material: they are genuinely undefined, not zero.
type MaterialStatistics struct {
	Material Material
	Started  dateutil.Date
	// Completed is nil while the material is still being read.
	Completed *dateutil.Date
	Duration  int
	LostTime  int
	Total     int
	Average   int
	// Min and Max are nil when the material has no explicit log entries.
	Min              *MinMax
	Max              *MinMax
	RemainingPages   *int
	RemainingDays    *int
	WouldBeCompleted *dateutil.Date
}

// MaterialEstimate forecasts start and completion dates for a queued,
// not-yet-started material.
type MaterialEstimate struct {
	Material         Material
	WillBeStarted    dateutil.Date
	WillBeCompleted  dateutil.Date
	ExpectedDuration int
}
