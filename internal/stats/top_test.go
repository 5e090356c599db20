package stats

import (
	"testing"

	"github.com/kunansy/readingqueue/internal/timeline"
)

func TestTopDays(t *testing.T) {
	series := timeline.Series{
		entry(1, "a", 10),
		entry(2, "a", 0),
		entry(3, "a", 30),
		entry(4, "b", 10),
		entry(5, "b", 5),
	}

	top := TopDays(series, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 days, got %d", len(top))
	}
	if top[0].Count != 30 || top[0].Date != date(3) {
		t.Fatalf("unexpected best day: %+v", top[0])
	}
	// Equal counts keep date order.
	if top[1].Date != date(1) || top[2].Date != date(4) {
		t.Fatalf("unexpected tie order: %+v", top[1:])
	}
}

func TestTopDaysSkipsEmptyDays(t *testing.T) {
	series := timeline.Series{
		entry(1, "a", 0),
		entry(2, "a", 1),
	}
	top := TopDays(series, 5)
	if len(top) != 1 || top[0].Count != 1 {
		t.Fatalf("unexpected top days: %+v", top)
	}
}

func TestTopDaysEmpty(t *testing.T) {
	if top := TopDays(nil, 3); top != nil {
		t.Fatalf("expected nil for an empty series, got %+v", top)
	}
}
