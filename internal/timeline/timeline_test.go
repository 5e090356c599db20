package timeline

import (
	"testing"
	"time"

	"github.com/kunansy/readingqueue/internal/dateutil"
	"github.com/kunansy/readingqueue/internal/model"
	"github.com/kunansy/readingqueue/internal/readinglog"
)

func date(day int) dateutil.Date {
	return dateutil.NewDate(2023, time.January, day)
}

func mustLog(t *testing.T, entries []readinglog.Entry) *readinglog.Log {
	t.Helper()
	log, err := readinglog.New(entries)
	if err != nil {
		t.Fatalf("new log: %v", err)
	}
	return log
}

func entry(day int, materialID string, count int) readinglog.Entry {
	return readinglog.Entry{
		Date:   date(day),
		Record: model.LogRecord{MaterialID: materialID, Count: count},
	}
}

func TestBuildEmptyLog(t *testing.T) {
	series := Build(mustLog(t, nil), nil, date(10))
	if len(series) != 0 {
		t.Fatalf("expected empty series, got %d entries", len(series))
	}
}

func TestBuildDenseCoverage(t *testing.T) {
	log := mustLog(t, []readinglog.Entry{
		entry(1, "a", 10),
		entry(5, "a", 3),
	})
	today := date(8)
	series := Build(log, nil, today)

	wantLen := today.Sub(log.Start()) + 1
	if len(series) != wantLen {
		t.Fatalf("expected %d days, got %d", wantLen, len(series))
	}
	for i, e := range series {
		if want := log.Start().AddDays(i); e.Date != want {
			t.Fatalf("day %d: expected %v, got %v", i, want, e.Date)
		}
	}
	if series.Start() != date(1) || series.Stop() != date(8) {
		t.Fatalf("unexpected bounds: %v..%v", series.Start(), series.Stop())
	}
}

func TestBuildKeepsExplicitEntries(t *testing.T) {
	log := mustLog(t, []readinglog.Entry{
		entry(1, "a", 10),
		entry(3, "b", 5),
	})
	series := Build(log, nil, date(3))

	if series[0].Record != (model.LogRecord{MaterialID: "a", Count: 10}) {
		t.Fatalf("day 1 record overridden: %+v", series[0].Record)
	}
	if series[2].Record != (model.LogRecord{MaterialID: "b", Count: 5}) {
		t.Fatalf("day 3 record overridden: %+v", series[2].Record)
	}
}

func TestBuildFillsGapsWithActiveMaterial(t *testing.T) {
	log := mustLog(t, []readinglog.Entry{
		entry(1, "a", 10),
		entry(4, "a", 2),
	})
	series := Build(log, nil, date(4))

	for _, day := range []int{1, 2} {
		e := series[day]
		if e.Record.Count != 0 || e.Record.MaterialID != "a" {
			t.Fatalf("day %v: expected synthesized (a, 0), got %+v", e.Date, e.Record)
		}
	}
}

// The worked scenario: materialA completed on day 2, materialB logged on
// day 3. Day 2 is still attributed to A; the pop happens the day after
// completion.
func TestBuildCompletionScenario(t *testing.T) {
	log := mustLog(t, []readinglog.Entry{
		entry(1, "a", 10),
		entry(3, "b", 5),
	})
	completion := map[string]dateutil.Date{"a": date(2)}
	series := Build(log, completion, date(3))

	want := []struct {
		materialID string
		count      int
	}{
		{"a", 10},
		{"a", 0},
		{"b", 5},
	}
	for i, w := range want {
		if series[i].Record.MaterialID != w.materialID || series[i].Record.Count != w.count {
			t.Fatalf("day %d: expected (%s, %d), got %+v",
				i+1, w.materialID, w.count, series[i].Record)
		}
	}
}

func TestBuildDropsCompletedMaterialOnEmptyDays(t *testing.T) {
	log := mustLog(t, []readinglog.Entry{
		entry(1, "a", 10),
	})
	completion := map[string]dateutil.Date{"a": date(2)}
	series := Build(log, completion, date(4))

	// Day 2 is the completion day, still attributed to a.
	if series[1].Record.MaterialID != "a" {
		t.Fatalf("day 2: expected a, got %+v", series[1].Record)
	}
	// After completion nothing is active: the sentinel takes over.
	for _, i := range []int{2, 3} {
		if series[i].Record.MaterialID != NoMaterial {
			t.Fatalf("day %d: expected no material, got %+v", i+1, series[i].Record)
		}
	}
}

// A reader pauses material a, reads b, then resumes a: the empty days
// after the resumption belong to a, and the paused b stays on the stack
// below it.
func TestBuildInterleavedMaterials(t *testing.T) {
	log := mustLog(t, []readinglog.Entry{
		entry(1, "a", 10),
		entry(2, "b", 7),
		entry(3, "a", 4),
	})
	series := Build(log, nil, date(5))

	for _, i := range []int{3, 4} {
		if series[i].Record.MaterialID != "a" || series[i].Record.Count != 0 {
			t.Fatalf("day %d: expected (a, 0), got %+v", i+1, series[i].Record)
		}
	}
}

// After the resumed material completes, attribution falls back to the
// paused one underneath.
func TestBuildFallsBackToPausedMaterial(t *testing.T) {
	log := mustLog(t, []readinglog.Entry{
		entry(1, "a", 10),
		entry(2, "b", 7),
		entry(3, "a", 4),
	})
	completion := map[string]dateutil.Date{"a": date(3)}
	series := Build(log, completion, date(5))

	for _, i := range []int{3, 4} {
		if series[i].Record.MaterialID != "b" || series[i].Record.Count != 0 {
			t.Fatalf("day %d: expected (b, 0), got %+v", i+1, series[i].Record)
		}
	}
}

func TestBuildNeverExtendsIntoFuture(t *testing.T) {
	log := mustLog(t, []readinglog.Entry{
		entry(1, "a", 10),
		entry(2, "a", 5),
	})
	series := Build(log, nil, date(1))
	if len(series) != 1 {
		t.Fatalf("expected 1 day up to today, got %d", len(series))
	}
}
