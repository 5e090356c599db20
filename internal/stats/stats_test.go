package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/kunansy/readingqueue/internal/dateutil"
	"github.com/kunansy/readingqueue/internal/model"
	"github.com/kunansy/readingqueue/internal/readinglog"
	"github.com/kunansy/readingqueue/internal/timeline"
)

func date(day int) dateutil.Date {
	return dateutil.NewDate(2023, time.January, day)
}

func entry(day int, materialID string, count int) readinglog.Entry {
	return readinglog.Entry{
		Date:   date(day),
		Record: model.LogRecord{MaterialID: materialID, Count: count},
	}
}

// The worked scenario from the attribution model: day 2 is an empty day
// attributed to material a, day 3 belongs to b.
func scenarioSeries() timeline.Series {
	return timeline.Series{
		entry(1, "a", 10),
		entry(2, "a", 0),
		entry(3, "b", 5),
	}
}

func TestScenarioStatistics(t *testing.T) {
	series := scenarioSeries()

	if got := Total(series); got != 15 {
		t.Errorf("total = %d, want 15", got)
	}
	if got := Duration(series); got != 3 {
		t.Errorf("duration = %d, want 3", got)
	}
	if got := LostTime(series); got != 1 {
		t.Errorf("lost time = %d, want 1", got)
	}
	if got := Average(series); got != 5 {
		t.Errorf("average = %d, want 5", got)
	}
	if got := WouldBeTotal(series); got != 20 {
		t.Errorf("would be total = %d, want 20", got)
	}
}

func TestEmptySeriesDefaults(t *testing.T) {
	var series timeline.Series

	if got := Total(series); got != 0 {
		t.Errorf("total = %d, want 0", got)
	}
	if got := Duration(series); got != 0 {
		t.Errorf("duration = %d, want 0", got)
	}
	// The deliberate quirk: pace stays non-zero for forecasts.
	if got := Average(series); got != 1 {
		t.Errorf("average = %d, want 1", got)
	}
	if _, err := Min(series); !errors.Is(err, ErrEmptyLog) {
		t.Errorf("min on empty series: %v, want ErrEmptyLog", err)
	}
	if _, err := Max(series); !errors.Is(err, ErrEmptyLog) {
		t.Errorf("max on empty series: %v, want ErrEmptyLog", err)
	}
	if _, err := Median(series); !errors.Is(err, ErrEmptyLog) {
		t.Errorf("median on empty series: %v, want ErrEmptyLog", err)
	}
	if _, err := Compute(series); !errors.Is(err, ErrEmptyLog) {
		t.Errorf("compute on empty series: %v, want ErrEmptyLog", err)
	}
}

func TestMinMaxFirstOccurrenceWins(t *testing.T) {
	series := timeline.Series{
		entry(1, "a", 7),
		entry(2, "a", 3),
		entry(3, "a", 3),
		entry(4, "a", 7),
	}

	minRec, err := Min(series)
	if err != nil {
		t.Fatalf("min: %v", err)
	}
	if minRec.Date != date(2) || minRec.Count != 3 {
		t.Errorf("min = %+v, want day 2 count 3", minRec)
	}

	maxRec, err := Max(series)
	if err != nil {
		t.Fatalf("max: %v", err)
	}
	if maxRec.Date != date(1) || maxRec.Count != 7 {
		t.Errorf("max = %+v, want day 1 count 7", maxRec)
	}
}

func TestMinSkipsEmptyDays(t *testing.T) {
	series := timeline.Series{
		entry(1, "a", 10),
		entry(2, "a", 0),
		entry(3, "a", 4),
	}
	minRec, err := Min(series)
	if err != nil {
		t.Fatalf("min: %v", err)
	}
	if minRec.Count != 4 {
		t.Errorf("min count = %d, synthesized days must not win", minRec.Count)
	}
}

func TestMedian(t *testing.T) {
	cases := []struct {
		counts []int
		want   int
	}{
		{[]int{3}, 3},
		{[]int{1, 2, 3, 4}, 2},
		{[]int{4, 1, 3, 2}, 2},
		{[]int{5, 1, 9}, 5},
	}
	for _, tc := range cases {
		var series timeline.Series
		for i, c := range tc.counts {
			series = append(series, entry(i+1, "a", c))
		}
		got, err := Median(series)
		if err != nil {
			t.Fatalf("median(%v): %v", tc.counts, err)
		}
		if got != tc.want {
			t.Errorf("median(%v) = %d, want %d", tc.counts, got, tc.want)
		}
	}
}

func TestForMaterial(t *testing.T) {
	series := scenarioSeries()

	filtered, err := ForMaterial(series, "a")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 entries for material a, got %d", len(filtered))
	}
	if got := Total(filtered); got != 10 {
		t.Errorf("material total = %d, want 10", got)
	}
	if got := Duration(filtered); got != 2 {
		t.Errorf("material duration = %d, want 2", got)
	}
	if got := LostTime(filtered); got != 1 {
		t.Errorf("material lost time = %d, want 1", got)
	}

	if _, err := ForMaterial(series, "missing"); !errors.Is(err, ErrMaterialNotInLog) {
		t.Errorf("expected ErrMaterialNotInLog, got %v", err)
	}
	// Material-not-present is distinct from the empty-input condition.
	if _, err := ForMaterial(series, "missing"); errors.Is(err, ErrEmptyLog) {
		t.Error("material-not-present must not be ErrEmptyLog")
	}
}

func TestCompute(t *testing.T) {
	s, err := Compute(scenarioSeries())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if s.StartDate != date(1) || s.StopDate != date(3) {
		t.Errorf("unexpected bounds: %v..%v", s.StartDate, s.StopDate)
	}
	if s.Duration != 3 || s.LostTime != 1 || s.Average != 5 {
		t.Errorf("unexpected aggregates: %+v", s)
	}
	if s.TotalPagesRead != 15 || s.WouldBeTotal != 20 {
		t.Errorf("unexpected totals: %+v", s)
	}
	if s.Duration != s.LostTime+2 {
		t.Errorf("duration invariant broken: %+v", s)
	}
	if s.Min.Count != 5 || s.Max.Count != 10 {
		t.Errorf("unexpected min/max: %+v", s)
	}
	if s.Median != 5 {
		t.Errorf("median = %d, want 5", s.Median)
	}
}

func TestMaterialAverages(t *testing.T) {
	series := timeline.Series{
		entry(1, "a", 10),
		entry(2, "a", 0),
		entry(3, "b", 9),
		entry(4, "", 0),
	}
	averages := MaterialAverages(series)
	if len(averages) != 2 {
		t.Fatalf("expected 2 materials, got %v", averages)
	}
	if averages["a"] != 5 {
		t.Errorf("average for a = %d, want 5", averages["a"])
	}
	if averages["b"] != 9 {
		t.Errorf("average for b = %d, want 9", averages["b"])
	}
}
