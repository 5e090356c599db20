package stats

import (
	"sort"

	"github.com/kunansy/readingqueue/internal/model"
	"github.com/kunansy/readingqueue/internal/timeline"
)

// TopDays returns the n most productive days of the series, best first.
// Equal counts are ordered by date; synthesized empty days never rank.
func TopDays(series timeline.Series, n int) []model.MinMax {
	if n <= 0 || len(series) == 0 {
		return nil
	}
	days := make([]model.MinMax, 0, len(series))
	for _, e := range series {
		if e.Record.Count == 0 {
			continue
		}
		days = append(days, model.MinMax{
			Date:          e.Date,
			Count:         e.Record.Count,
			MaterialID:    e.Record.MaterialID,
			MaterialTitle: e.Record.MaterialTitle,
		})
	}
	sort.Slice(days, func(i, j int) bool {
		if days[i].Count == days[j].Count {
			return days[i].Date.Before(days[j].Date)
		}
		return days[i].Count > days[j].Count
	})
	if n > len(days) {
		n = len(days)
	}
	return days[:n]
}
