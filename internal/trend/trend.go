// Package trend buckets per-day amounts into fixed-size date spans for
// trend comparison.
package trend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kunansy/readingqueue/internal/dateutil"
)

// DayStatistics is one day of a span with its amount (pages read, notes
// added, and so on).
type DayStatistics struct {
	Date   dateutil.Date
	Amount int
}

// TimeSpan is an inclusive date range of a fixed length.
type TimeSpan struct {
	Start dateutil.Date
	Stop  dateutil.Date
}

// NewTimeSpan validates that [start; stop] covers exactly size days, both
// borders included.
func NewTimeSpan(start, stop dateutil.Date, size int) (TimeSpan, error) {
	if size < 0 {
		return TimeSpan{}, fmt.Errorf("negative span size: %d", size)
	}
	if start.After(stop) {
		return TimeSpan{}, fmt.Errorf("span start is after its stop: %s > %s", start, stop)
	}
	if stop.Sub(start)+1 != size {
		return TimeSpan{}, fmt.Errorf("span [%s; %s] does not cover %d days", start, stop, size)
	}
	return TimeSpan{Start: start, Stop: stop}, nil
}

// LastSpan is the span of the given size ending today.
func LastSpan(size int, today dateutil.Date) (TimeSpan, error) {
	return NewTimeSpan(today.AddDays(-(size - 1)), today, size)
}

// Size returns the number of days in the span, borders included.
func (s TimeSpan) Size() int {
	return s.Stop.Sub(s.Start) + 1
}

// Shift moves the whole span by n days; negative n moves it into the past.
// A span-over-span comparison is two aggregations over shifted spans.
func (s TimeSpan) Shift(n int) TimeSpan {
	return TimeSpan{Start: s.Start.AddDays(n), Stop: s.Stop.AddDays(n)}
}

// Dates lists every day of the span in order.
func (s TimeSpan) Dates() []dateutil.Date {
	dates := make([]dateutil.Date, 0, s.Size())
	for day := s.Start; !day.After(s.Stop); day = day.Next() {
		dates = append(dates, day)
	}
	return dates
}

func (s TimeSpan) String() string {
	return fmt.Sprintf("[%s; %s]", s.Start, s.Stop)
}

// SpanStatistics aggregates per-day amounts over a complete span.
type SpanStatistics struct {
	Days     []DayStatistics
	SpanSize int
}

// NewSpanStatistics requires exactly spanSize days: a span is complete or
// it is an error, it is never silently backfilled. An empty span has no
// start, stop, or mean and is rejected outright.
func NewSpanStatistics(days []DayStatistics, spanSize int) (SpanStatistics, error) {
	if spanSize <= 0 {
		return SpanStatistics{}, fmt.Errorf("a span must contain at least one day, got %d", spanSize)
	}
	if len(days) != spanSize {
		return SpanStatistics{}, fmt.Errorf(
			"a span must contain exactly %d days, got %d", spanSize, len(days))
	}
	return SpanStatistics{Days: days, SpanSize: spanSize}, nil
}

// FromAmounts builds span statistics from a per-day amount source. Days of
// the span missing from amounts are explicit zero days.
func FromAmounts(span TimeSpan, amounts map[dateutil.Date]int) (SpanStatistics, error) {
	days := make([]DayStatistics, 0, span.Size())
	for _, day := range span.Dates() {
		days = append(days, DayStatistics{Date: day, Amount: amounts[day]})
	}
	return NewSpanStatistics(days, span.Size())
}

// Start returns the first day of the span.
func (s SpanStatistics) Start() dateutil.Date {
	return s.Days[0].Date
}

// Stop returns the last day of the span.
func (s SpanStatistics) Stop() dateutil.Date {
	return s.Days[len(s.Days)-1].Date
}

// Total sums the amounts over the span.
func (s SpanStatistics) Total() int {
	total := 0
	for _, day := range s.Days {
		total += day.Amount
	}
	return total
}

// Mean is the average amount per day of the span.
func (s SpanStatistics) Mean() float64 {
	return float64(s.Total()) / float64(s.SpanSize)
}

// Median is the conventional population median of the span's amounts.
func (s SpanStatistics) Median() float64 {
	amounts := make([]int, len(s.Days))
	for i, day := range s.Days {
		amounts[i] = day.Amount
	}
	sort.Ints(amounts)

	middle := len(amounts) / 2
	if len(amounts)%2 == 0 {
		return float64(amounts[middle-1]+amounts[middle]) / 2
	}
	return float64(amounts[middle])
}

// Max returns the day with the largest amount.
func (s SpanStatistics) Max() DayStatistics {
	best := s.Days[0]
	for _, day := range s.Days[1:] {
		if day.Amount > best.Amount {
			best = day
		}
	}
	return best
}

// Min returns the day with the smallest non-zero amount, or the first day
// when the whole span is zero.
func (s SpanStatistics) Min() DayStatistics {
	var (
		best  DayStatistics
		found bool
	)
	for _, day := range s.Days {
		if day.Amount == 0 {
			continue
		}
		if !found || day.Amount < best.Amount {
			best = day
			found = true
		}
	}
	if !found {
		return s.Days[0]
	}
	return best
}

// ZeroDays counts the days of the span with no activity.
func (s SpanStatistics) ZeroDays() int {
	zero := 0
	for _, day := range s.Days {
		if day.Amount == 0 {
			zero++
		}
	}
	return zero
}

// LostAmount estimates what the zero days would have produced at the
// span's mean rate, rounded half away from zero like every forecast
// rounding in the tool.
func (s SpanStatistics) LostAmount() int {
	return int(math.Round(float64(s.ZeroDays()) * s.Mean()))
}

// WouldBeTotal is the span total had every zero day produced the mean.
func (s SpanStatistics) WouldBeTotal() int {
	return s.Total() + s.LostAmount()
}

// Report renders the span as a multi-line text block.
func (s SpanStatistics) Report() string {
	minDay, maxDay := s.Min(), s.Max()
	lines := []string{
		fmt.Sprintf("Span: [%s; %s]", s.Start(), s.Stop()),
		fmt.Sprintf("Total: %d", s.Total()),
		fmt.Sprintf("Mean: %.2f per day, median: %.1f", s.Mean(), s.Median()),
		fmt.Sprintf("Max: %d on %s", maxDay.Amount, maxDay.Date),
		fmt.Sprintf("Min: %d on %s", minDay.Amount, minDay.Date),
		fmt.Sprintf("Zero days: %d, lost: %d, would be total: %d",
			s.ZeroDays(), s.LostAmount(), s.WouldBeTotal()),
	}
	return strings.Join(lines, "\n")
}
