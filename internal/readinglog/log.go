// Package readinglog holds the sparse, append-only daily reading log.
package readinglog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kunansy/readingqueue/internal/dateutil"
	"github.com/kunansy/readingqueue/internal/model"
)

// ErrEmptyLog is returned when an operation needs at least one logged day.
var ErrEmptyLog = errors.New("reading log is empty")

// Entry is one logged day.
type Entry struct {
	Date   dateutil.Date
	Record model.LogRecord
}

// Log is an ordered sparse mapping from calendar date to a log record,
// strictly one record per date. Dates need not be contiguous. A Log is
// owned by a single goroutine for the duration of an operation; appends
// must be serialized by the caller relative to concurrent reads.
type Log struct {
	entries []Entry
	byDate  map[dateutil.Date]model.LogRecord
}

// New builds a Log from entries. Entries are sorted by date; a duplicated
// date is rejected.
func New(entries []Entry) (*Log, error) {
	log := &Log{
		entries: make([]Entry, 0, len(entries)),
		byDate:  make(map[dateutil.Date]model.LogRecord, len(entries)),
	}
	for _, e := range entries {
		if e.Record.Count < 0 {
			return nil, fmt.Errorf("negative count %d at %s", e.Record.Count, e.Date)
		}
		if _, ok := log.byDate[e.Date]; ok {
			return nil, fmt.Errorf("duplicated log date %s", e.Date)
		}
		log.byDate[e.Date] = e.Record
		log.entries = append(log.entries, e)
	}
	log.sort()
	return log, nil
}

func (l *Log) sort() {
	sort.Slice(l.entries, func(i, j int) bool {
		return l.entries[i].Date.Before(l.entries[j].Date)
	})
}

// Len returns the number of logged days.
func (l *Log) Len() int {
	return len(l.entries)
}

// Start returns the first logged date, or the zero date for an empty log.
func (l *Log) Start() dateutil.Date {
	if len(l.entries) == 0 {
		return dateutil.Date{}
	}
	return l.entries[0].Date
}

// Stop returns the last logged date, or the zero date for an empty log.
func (l *Log) Stop() dateutil.Date {
	if len(l.entries) == 0 {
		return dateutil.Date{}
	}
	return l.entries[len(l.entries)-1].Date
}

// Get returns the record logged at the given date.
func (l *Log) Get(date dateutil.Date) (model.LogRecord, bool) {
	rec, ok := l.byDate[date]
	return rec, ok
}

// Entries returns the logged days in date order. The returned slice must
// not be mutated.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Reading returns the id of the material from the most recent entry, the
// one being read now as far as the raw log can tell.
func (l *Log) Reading() (string, error) {
	if len(l.entries) == 0 {
		return "", ErrEmptyLog
	}
	return l.entries[len(l.entries)-1].Record.MaterialID, nil
}

// Contains reports whether the material appears in any logged day.
func (l *Log) Contains(materialID string) bool {
	for _, e := range l.entries {
		if e.Record.MaterialID == materialID {
			return true
		}
	}
	return false
}

// Append adds a new day to the log. The date must be strictly after the
// current last date and the count must be positive: empty days are never
// stored, they are synthesized during attribution.
func (l *Log) Append(date dateutil.Date, rec model.LogRecord) error {
	if rec.Count <= 0 {
		return fmt.Errorf("count must be > 0, got %d", rec.Count)
	}
	if rec.MaterialID == "" {
		return errors.New("material id is empty")
	}
	if stop := l.Stop(); !stop.IsZero() && !date.After(stop) {
		return fmt.Errorf("date %s is not after the last logged date %s", date, stop)
	}
	if _, ok := l.byDate[date]; ok {
		return fmt.Errorf("date %s already logged", date)
	}
	l.byDate[date] = rec
	l.entries = append(l.entries, Entry{Date: date, Record: rec})
	l.sort()
	return nil
}

// Slice returns a new Log restricted to [from; to] inclusive. Zero bounds
// fall back to the log's own start and stop.
func (l *Log) Slice(from, to dateutil.Date) (*Log, error) {
	if from.IsZero() {
		from = l.Start()
	}
	if to.IsZero() {
		to = l.Stop()
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, fmt.Errorf("invalid range: %s > %s", from, to)
	}
	var entries []Entry
	for _, e := range l.entries {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		entries = append(entries, e)
	}
	return New(entries)
}
