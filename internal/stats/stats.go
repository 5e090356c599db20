// Package stats contains statistics calculations over the dense reading
// series and their plain-text rendering.
package stats

import (
	"errors"
	"sort"

	"github.com/kunansy/readingqueue/internal/model"
	"github.com/kunansy/readingqueue/internal/timeline"
)

// ErrEmptyLog is returned for computations that are undefined on an empty
// series.
var ErrEmptyLog = errors.New("reading log is empty")

// ErrMaterialNotInLog is returned when a per-material query names a
// material that never appears in the series. Distinct from ErrEmptyLog.
var ErrMaterialNotInLog = errors.New("material is not present in the log")

// ForMaterial restricts a series to the days attributed to one material.
// All per-material statistics are computed over this filtered series, so
// they stay consistent with the unfiltered ones by construction.
func ForMaterial(series timeline.Series, materialID string) (timeline.Series, error) {
	var filtered timeline.Series
	for _, e := range series {
		if e.Record.MaterialID == materialID {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return nil, ErrMaterialNotInLog
	}
	return filtered, nil
}

// Total sums the pages read over the series. Empty series totals 0.
func Total(series timeline.Series) int {
	total := 0
	for _, e := range series {
		total += e.Record.Count
	}
	return total
}

// Duration is the number of days in the series. For the whole dense series
// this equals the inclusive day count between its first and last entry;
// for a material-filtered series it is the number of attributed days.
func Duration(series timeline.Series) int {
	return len(series)
}

// LostTime counts the empty days: entries with a zero page count.
func LostTime(series timeline.Series) int {
	lost := 0
	for _, e := range series {
		if e.Record.Count == 0 {
			lost++
		}
	}
	return lost
}

// Average is the floor of total/duration pages per day. It is defined as 1
// for a zero duration: downstream forecasts divide by the pace and depend
// on it being non-zero.
func Average(series timeline.Series) int {
	duration := Duration(series)
	if duration == 0 {
		return 1
	}
	return Total(series) / duration
}

// WouldBeTotal is the page count that would have accumulated had every
// empty day produced the observed average instead.
func WouldBeTotal(series timeline.Series) int {
	return Total(series) + Average(series)*LostTime(series)
}

// Min returns the day with the fewest pages actually read. Synthesized
// empty days are not candidates; ties go to the earliest day.
func Min(series timeline.Series) (model.MinMax, error) {
	return pick(series, func(candidate, best int) bool { return candidate < best })
}

// Max returns the day with the most pages read; ties go to the earliest day.
func Max(series timeline.Series) (model.MinMax, error) {
	return pick(series, func(candidate, best int) bool { return candidate > best })
}

func pick(series timeline.Series, better func(candidate, best int) bool) (model.MinMax, error) {
	var (
		best  model.MinMax
		found bool
	)
	for _, e := range series {
		if e.Record.Count == 0 {
			continue
		}
		if !found || better(e.Record.Count, best.Count) {
			best = model.MinMax{
				Date:          e.Date,
				Count:         e.Record.Count,
				MaterialID:    e.Record.MaterialID,
				MaterialTitle: e.Record.MaterialTitle,
			}
			found = true
		}
	}
	if !found {
		return model.MinMax{}, ErrEmptyLog
	}
	return best, nil
}

// Median is the population median of all counts in the series. An even
// number of values takes the floor mean of the two central ones:
// median of [1, 2, 3, 4] is 2.
func Median(series timeline.Series) (int, error) {
	if len(series) == 0 {
		return 0, ErrEmptyLog
	}
	counts := make([]int, len(series))
	for i, e := range series {
		counts[i] = e.Record.Count
	}
	sort.Ints(counts)

	middle := len(counts) / 2
	if len(counts)%2 == 0 {
		return (counts[middle-1] + counts[middle]) / 2, nil
	}
	return counts[middle], nil
}

// Compute aggregates the whole series into LogStatistics.
func Compute(series timeline.Series) (model.LogStatistics, error) {
	if len(series) == 0 {
		return model.LogStatistics{}, ErrEmptyLog
	}
	minRec, err := Min(series)
	if err != nil {
		return model.LogStatistics{}, err
	}
	maxRec, err := Max(series)
	if err != nil {
		return model.LogStatistics{}, err
	}
	median, err := Median(series)
	if err != nil {
		return model.LogStatistics{}, err
	}
	return model.LogStatistics{
		StartDate:      series.Start(),
		StopDate:       series.Stop(),
		Duration:       Duration(series),
		LostTime:       LostTime(series),
		Average:        Average(series),
		TotalPagesRead: Total(series),
		WouldBeTotal:   WouldBeTotal(series),
		Min:            minRec,
		Max:            maxRec,
		Median:         median,
	}, nil
}

// MaterialAverages computes the average pages per day for every material
// present in the series, keyed by material id. The sentinel of never-read
// days is skipped.
func MaterialAverages(series timeline.Series) map[string]int {
	type acc struct {
		total int
		days  int
	}
	sums := make(map[string]*acc)
	for _, e := range series {
		id := e.Record.MaterialID
		if id == timeline.NoMaterial {
			continue
		}
		a, ok := sums[id]
		if !ok {
			a = &acc{}
			sums[id] = a
		}
		a.total += e.Record.Count
		a.days++
	}

	averages := make(map[string]int, len(sums))
	for id, a := range sums {
		averages[id] = a.total / a.days
	}
	return averages
}
