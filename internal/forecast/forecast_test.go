package forecast

import (
	"testing"
	"time"

	"github.com/kunansy/readingqueue/internal/dateutil"
	"github.com/kunansy/readingqueue/internal/model"
	"github.com/kunansy/readingqueue/internal/readinglog"
	"github.com/kunansy/readingqueue/internal/timeline"
)

func date(day int) dateutil.Date {
	return dateutil.NewDate(2023, time.March, day)
}

func entry(day int, materialID string, count int) readinglog.Entry {
	return readinglog.Entry{
		Date:   date(day),
		Record: model.LogRecord{MaterialID: materialID, Count: count},
	}
}

func TestRoundDays(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{3.2, 3},
		{3.5, 4}, // half away from zero
		{4.5, 5},
		{4.0, 4},
	}
	for _, tc := range cases {
		if got := roundDays(tc.in); got != tc.want {
			t.Errorf("roundDays(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMaterialStatsInProgress(t *testing.T) {
	material := model.Material{ID: "a", Title: "A", Pages: 100}
	status := model.MaterialStatus{MaterialID: "a", StartedAt: date(1)}
	series := timeline.Series{
		entry(1, "a", 10),
		entry(2, "a", 0),
		entry(3, "a", 20),
	}

	got, err := MaterialStats(material, status, series, 7, date(3))
	if err != nil {
		t.Fatalf("material stats: %v", err)
	}
	if got.Total != 30 || got.Duration != 3 || got.LostTime != 1 {
		t.Fatalf("unexpected aggregates: %+v", got)
	}
	// Own pace (30/3 = 10) wins over the global average.
	if got.Average != 10 {
		t.Fatalf("average = %d, want 10", got.Average)
	}
	if got.RemainingPages == nil || *got.RemainingPages != 70 {
		t.Fatalf("remaining pages = %v, want 70", got.RemainingPages)
	}
	if got.RemainingDays == nil || *got.RemainingDays != 7 {
		t.Fatalf("remaining days = %v, want 7", got.RemainingDays)
	}
	if got.WouldBeCompleted == nil || *got.WouldBeCompleted != date(10) {
		t.Fatalf("would be completed = %v, want %v", got.WouldBeCompleted, date(10))
	}
	if got.Min == nil || got.Min.Count != 10 || got.Max == nil || got.Max.Count != 20 {
		t.Fatalf("unexpected min/max: %+v", got)
	}
}

func TestMaterialStatsCompleted(t *testing.T) {
	completed := date(3)
	material := model.Material{ID: "a", Title: "A", Pages: 100}
	status := model.MaterialStatus{MaterialID: "a", StartedAt: date(1), CompletedAt: &completed}
	series := timeline.Series{entry(1, "a", 100)}

	got, err := MaterialStats(material, status, series, 7, date(5))
	if err != nil {
		t.Fatalf("material stats: %v", err)
	}
	// Genuinely undefined for a completed material, not zero.
	if got.RemainingPages != nil || got.RemainingDays != nil || got.WouldBeCompleted != nil {
		t.Fatalf("completed material must have no forecast fields: %+v", got)
	}
}

func TestMaterialStatsWithoutLogHistory(t *testing.T) {
	material := model.Material{ID: "b", Title: "B", Pages: 50}
	status := model.MaterialStatus{MaterialID: "b", StartedAt: date(1)}
	series := timeline.Series{entry(1, "a", 10)}

	got, err := MaterialStats(material, status, series, 25, date(1))
	if err != nil {
		t.Fatalf("material stats: %v", err)
	}
	if got.Total != 0 || got.Duration != 0 {
		t.Fatalf("unexpected aggregates: %+v", got)
	}
	// Falls back to the global pace: round(50/25) = 2 days.
	if got.Average != 25 {
		t.Fatalf("average = %d, want global 25", got.Average)
	}
	if got.RemainingDays == nil || *got.RemainingDays != 2 {
		t.Fatalf("remaining days = %v, want 2", got.RemainingDays)
	}
	if got.Min != nil || got.Max != nil {
		t.Fatalf("min/max must be absent without explicit entries: %+v", got)
	}
}

func TestMaterialStatsMismatchedStatus(t *testing.T) {
	material := model.Material{ID: "a"}
	status := model.MaterialStatus{MaterialID: "b", StartedAt: date(1)}
	if _, err := MaterialStats(material, status, nil, 1, date(1)); err == nil {
		t.Fatal("expected error for mismatched status")
	}
}

func TestEndOfReading(t *testing.T) {
	three, five := 3, 5
	reading := []model.MaterialStatistics{
		{RemainingDays: &three},
		{RemainingDays: nil}, // counts as zero
		{RemainingDays: &five},
	}
	if got := EndOfReading(reading, date(1)); got != date(10) {
		t.Fatalf("end of reading = %v, want %v", got, date(10))
	}
	if got := EndOfReading(nil, date(1)); got != date(2) {
		t.Fatalf("end of reading with nothing in progress = %v, want %v", got, date(2))
	}
}

// The worked queue scenario: pace 25 pages/day, cursor starts at today+1.
func TestEstimateSequentialWalk(t *testing.T) {
	today := date(1)
	start := today.AddDays(1)
	queue := []model.Material{
		{ID: "m1", Title: "M1", Pages: 100},
		{ID: "m2", Title: "M2", Pages: 50},
	}

	estimates := Estimate(queue, 25, start)
	if len(estimates) != 2 {
		t.Fatalf("expected 2 estimates, got %d", len(estimates))
	}

	m1 := estimates[0]
	if m1.ExpectedDuration != 4 {
		t.Errorf("m1 duration = %d, want 4", m1.ExpectedDuration)
	}
	if m1.WillBeStarted != today.AddDays(1) || m1.WillBeCompleted != today.AddDays(5) {
		t.Errorf("m1 dates = %v..%v, want %v..%v",
			m1.WillBeStarted, m1.WillBeCompleted, today.AddDays(1), today.AddDays(5))
	}

	m2 := estimates[1]
	if m2.ExpectedDuration != 2 {
		t.Errorf("m2 duration = %d, want 2", m2.ExpectedDuration)
	}
	if m2.WillBeStarted != today.AddDays(6) || m2.WillBeCompleted != today.AddDays(8) {
		t.Errorf("m2 dates = %v..%v, want %v..%v",
			m2.WillBeStarted, m2.WillBeCompleted, today.AddDays(6), today.AddDays(8))
	}
}

func TestEstimateZeroAverage(t *testing.T) {
	queue := []model.Material{{ID: "m1", Pages: 3}}
	estimates := Estimate(queue, 0, date(1))
	if estimates[0].ExpectedDuration != 3 {
		t.Fatalf("zero average must fall back to 1 page per day, got %d days",
			estimates[0].ExpectedDuration)
	}
}
