// Package timeline reconstructs a dense per-day reading series from the
// sparse log, attributing every calendar day to a material.
package timeline

import (
	"github.com/kunansy/readingqueue/internal/dateutil"
	"github.com/kunansy/readingqueue/internal/model"
	"github.com/kunansy/readingqueue/internal/readinglog"
)

// NoMaterial is the material id of a synthesized day before any material
// has ever been read. Real ids are UUIDs, so it cannot collide.
const NoMaterial = ""

// Series is a dense day-by-day series: exactly one entry per calendar day
// from the log's first date to "today", with no gaps. Days without an
// explicit log entry carry a synthesized zero-count record attributed to
// the day's active material.
type Series []readinglog.Entry

// Start returns the first day of the series, or the zero date when empty.
func (s Series) Start() dateutil.Date {
	if len(s) == 0 {
		return dateutil.Date{}
	}
	return s[0].Date
}

// Stop returns the last day of the series, or the zero date when empty.
func (s Series) Stop() dateutil.Date {
	if len(s) == 0 {
		return dateutil.Date{}
	}
	return s[len(s)-1].Date
}

// stack models overlapping materials: most recently active on top. It is
// indexed by material id, not by reference, so intermediate states are
// trivial to inspect in tests.
type stack []string

func (s stack) top() string {
	if len(s) == 0 {
		return NoMaterial
	}
	return s[len(s)-1]
}

func (s *stack) push(id string) {
	*s = append(*s, id)
}

func (s *stack) pop() {
	if len(*s) > 0 {
		*s = (*s)[:len(*s)-1]
	}
}

func (s stack) contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// moveToTop resumes an interleaved material: it is taken from wherever it
// sits on the stack and becomes the active one.
func (s *stack) moveToTop(id string) {
	for i, v := range *s {
		if v == id {
			*s = append(append((*s)[:i], (*s)[i+1:]...), id)
			return
		}
	}
}

// Build walks the calendar from the log's first entry to today inclusive
// and produces one record per day. Explicit log entries are emitted as-is;
// gaps are filled with zero-count records attributed to the most recently
// touched, not-yet-completed material. A material stays attributed through
// its completion day and is dropped from the stack the day after, so
// post-completion empty days never stick to a finished material.
//
// An empty log yields a nil series. The series never extends past today.
func Build(log *readinglog.Log, completionDates map[string]dateutil.Date, today dateutil.Date) Series {
	if log.Len() == 0 {
		return nil
	}

	var (
		series Series
		active stack
	)
	for day := log.Start(); !day.After(today); day = day.Next() {
		current := active.top()
		if done, ok := completionDates[current]; ok && done.Before(day) {
			active.pop()
			current = active.top()
		}

		rec, ok := log.Get(day)
		switch {
		case !ok:
			rec = model.LogRecord{Count: 0, MaterialID: current}
		case !active.contains(rec.MaterialID):
			// A new material started; the ones below stay paused.
			active.push(rec.MaterialID)
		case rec.MaterialID != current:
			active.moveToTop(rec.MaterialID)
		}

		series = append(series, readinglog.Entry{Date: day, Record: rec})
	}
	return series
}
