// Package forecast projects completion and start dates for materials from
// the observed reading pace.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/kunansy/readingqueue/internal/dateutil"
	"github.com/kunansy/readingqueue/internal/model"
	"github.com/kunansy/readingqueue/internal/stats"
	"github.com/kunansy/readingqueue/internal/timeline"
)

// roundDays converts a fractional day count to whole days, rounding half
// away from zero. The rule is fixed here because it is visible in forecast
// dates at exact half-day boundaries.
func roundDays(days float64) int {
	return int(math.Round(days))
}

// MaterialStats computes per-material statistics and, for a material still
// being read, the remaining pages/days and the projected completion date.
// The pace is the material's own average when it has log history and a
// non-zero average, the global one otherwise.
func MaterialStats(
	material model.Material,
	status model.MaterialStatus,
	series timeline.Series,
	globalAverage int,
	today dateutil.Date,
) (model.MaterialStatistics, error) {
	if material.ID != status.MaterialID {
		return model.MaterialStatistics{}, fmt.Errorf(
			"status belongs to material %s, not %s", status.MaterialID, material.ID)
	}

	result := model.MaterialStatistics{
		Material:  material,
		Started:   status.StartedAt,
		Completed: status.CompletedAt,
		Average:   globalAverage,
	}

	filtered, err := stats.ForMaterial(series, material.ID)
	switch {
	case errors.Is(err, stats.ErrMaterialNotInLog):
		// Started but nothing logged yet: totals stay zero, pace global.
	case err != nil:
		return model.MaterialStatistics{}, err
	default:
		result.Total = stats.Total(filtered)
		result.Duration = stats.Duration(filtered)
		result.LostTime = stats.LostTime(filtered)
		if avg := stats.Average(filtered); avg > 0 {
			result.Average = avg
		}
		if minRec, err := stats.Min(filtered); err == nil {
			result.Min = &minRec
		}
		if maxRec, err := stats.Max(filtered); err == nil {
			result.Max = &maxRec
		}
	}

	if status.Completed() {
		return result, nil
	}

	pace := result.Average
	if pace <= 0 {
		pace = 1
	}
	remainingPages := material.Pages - result.Total
	remainingDays := roundDays(float64(remainingPages) / float64(pace))
	wouldBeCompleted := today.AddDays(remainingDays)

	result.RemainingPages = &remainingPages
	result.RemainingDays = &remainingDays
	result.WouldBeCompleted = &wouldBeCompleted
	return result, nil
}

// EndOfReading is the first day on which the queue could plausibly start
// moving: today plus one day plus the remaining days of every material
// currently being read (a missing value counts as zero).
func EndOfReading(reading []model.MaterialStatistics, today dateutil.Date) dateutil.Date {
	remaining := 0
	for _, m := range reading {
		if m.RemainingDays != nil {
			remaining += *m.RemainingDays
		}
	}
	return today.AddDays(remaining + 1)
}

// Estimate forecasts the queued materials sequentially: each one starts at
// the running cursor and the next starts the day after the previous
// completes. Queue order is caller-determined; nothing is re-ordered.
func Estimate(queue []model.Material, globalAverage int, start dateutil.Date) []model.MaterialEstimate {
	if globalAverage <= 0 {
		globalAverage = 1
	}

	cursor := start
	estimates := make([]model.MaterialEstimate, 0, len(queue))
	for _, material := range queue {
		duration := roundDays(float64(material.Pages) / float64(globalAverage))
		completed := cursor.AddDays(duration)

		estimates = append(estimates, model.MaterialEstimate{
			Material:         material,
			WillBeStarted:    cursor,
			WillBeCompleted:  completed,
			ExpectedDuration: duration,
		})
		cursor = completed.AddDays(1)
	}
	return estimates
}
