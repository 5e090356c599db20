// Package tracker ties the store and the computation packages together
// into the operations the CLI exposes.
package tracker

import (
	"context"

	"github.com/kunansy/readingqueue/internal/dateutil"
	"github.com/kunansy/readingqueue/internal/forecast"
	"github.com/kunansy/readingqueue/internal/model"
	"github.com/kunansy/readingqueue/internal/readinglog"
	"github.com/kunansy/readingqueue/internal/stats"
	"github.com/kunansy/readingqueue/internal/store"
	"github.com/kunansy/readingqueue/internal/timeline"
	"github.com/kunansy/readingqueue/internal/trend"
)

// Tracker is the read side of the application: it loads raw data from the
// store and derives series, statistics, and forecasts from it.
type Tracker struct {
	store *store.Store
}

// New wraps a store.
func New(st *store.Store) *Tracker {
	return &Tracker{store: st}
}

// Log loads the raw reading log.
func (t *Tracker) Log(ctx context.Context) (*readinglog.Log, error) {
	entries, err := t.store.LogRecords(ctx)
	if err != nil {
		return nil, err
	}
	return readinglog.New(entries)
}

// Series reconstructs the dense per-day series from the raw log and the
// completion dates, up to today.
func (t *Tracker) Series(ctx context.Context, today dateutil.Date) (timeline.Series, error) {
	log, err := t.Log(ctx)
	if err != nil {
		return nil, err
	}
	completions, err := t.store.CompletionDates(ctx)
	if err != nil {
		return nil, err
	}
	return timeline.Build(log, completions, today), nil
}

// Statistics computes the aggregate statistics over the dense series.
func (t *Tracker) Statistics(ctx context.Context, today dateutil.Date) (model.LogStatistics, error) {
	series, err := t.Series(ctx, today)
	if err != nil {
		return model.LogStatistics{}, err
	}
	return stats.Compute(series)
}

// MaterialStatistics computes per-material statistics with forecasts for
// every material currently being read, in start order.
func (t *Tracker) MaterialStatistics(ctx context.Context, today dateutil.Date) ([]model.MaterialStatistics, error) {
	reading, err := t.store.ReadingMaterials(ctx)
	if err != nil {
		return nil, err
	}
	return t.materialStats(ctx, reading, today)
}

// CompletedStatistics computes per-material statistics for every completed
// material.
func (t *Tracker) CompletedStatistics(ctx context.Context, today dateutil.Date) ([]model.MaterialStatistics, error) {
	completed, err := t.store.CompletedMaterials(ctx)
	if err != nil {
		return nil, err
	}
	return t.materialStats(ctx, completed, today)
}

func (t *Tracker) materialStats(ctx context.Context, materials []model.MaterialWithStatus, today dateutil.Date) ([]model.MaterialStatistics, error) {
	series, err := t.Series(ctx, today)
	if err != nil {
		return nil, err
	}
	globalAverage := stats.Average(series)

	result := make([]model.MaterialStatistics, 0, len(materials))
	for _, m := range materials {
		ms, err := forecast.MaterialStats(m.Material, m.Status, series, globalAverage, today)
		if err != nil {
			return nil, err
		}
		result = append(result, ms)
	}
	return result, nil
}

// Estimates forecasts the queued materials sequentially, starting once
// everything currently being read is projected to finish.
func (t *Tracker) Estimates(ctx context.Context, today dateutil.Date) ([]model.MaterialEstimate, error) {
	reading, err := t.MaterialStatistics(ctx, today)
	if err != nil {
		return nil, err
	}
	queue, err := t.store.FreeMaterials(ctx)
	if err != nil {
		return nil, err
	}
	series, err := t.Series(ctx, today)
	if err != nil {
		return nil, err
	}

	start := forecast.EndOfReading(reading, today)
	return forecast.Estimate(queue, stats.Average(series), start), nil
}

// ReadingTrend aggregates the pages read per day over the given span.
func (t *Tracker) ReadingTrend(ctx context.Context, span trend.TimeSpan) (trend.SpanStatistics, error) {
	amounts, err := t.store.ReadPagesPerDay(ctx, span.Start, span.Stop)
	if err != nil {
		return trend.SpanStatistics{}, err
	}
	return trend.FromAmounts(span, amounts)
}

// NotesTrend aggregates the notes added per day over the given span.
func (t *Tracker) NotesTrend(ctx context.Context, span trend.TimeSpan) (trend.SpanStatistics, error) {
	amounts, err := t.store.NotesPerDay(ctx, span.Start, span.Stop)
	if err != nil {
		return trend.SpanStatistics{}, err
	}
	return trend.FromAmounts(span, amounts)
}

// LogPages validates a new log record against the loaded log before
// persisting it: positive count, known material, date after the last one.
// The store additionally rejects entries dated before the material's start.
func (t *Tracker) LogPages(ctx context.Context, date dateutil.Date, materialID string, count int) error {
	log, err := t.Log(ctx)
	if err != nil {
		return err
	}
	rec := model.LogRecord{Count: count, MaterialID: materialID}
	if err := log.Append(date, rec); err != nil {
		return err
	}
	return t.store.InsertLogRecord(ctx, date, materialID, count)
}
