// Package store handles SQLite persistence for the material catalog, the
// lifecycle statuses, the raw reading log, and notes.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kunansy/readingqueue/internal/dateutil"
	"github.com/kunansy/readingqueue/internal/model"
	"github.com/kunansy/readingqueue/internal/readinglog"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrMaterialNotFound is returned when a material id is unknown.
var ErrMaterialNotFound = errors.New("material not found")

// ErrMaterialNotAssigned is returned when a lifecycle operation targets a
// material that has not been started.
var ErrMaterialNotAssigned = errors.New("material has not been started")

// ErrMaterialAlreadyStarted is returned when a material is started twice.
var ErrMaterialAlreadyStarted = errors.New("material has already been started")

// ErrMaterialAlreadyCompleted is returned when a completed material is
// completed again.
var ErrMaterialAlreadyCompleted = errors.New("material has already been completed")

// ErrCompletionBeforeStart is returned when a completion date precedes
// the start date. Lifecycle inconsistencies are rejected here, at the
// boundary, never silently corrected.
var ErrCompletionBeforeStart = errors.New("completion date is before the start date")

// ErrLogBeforeStart is returned when a log entry is dated before the
// material's start date.
var ErrLogBeforeStart = errors.New("log entry is dated before the start date")

// Store wraps SQLite access for the reading tracker data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS materials (
			material_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT NOT NULL,
			pages INTEGER NOT NULL,
			tags TEXT NOT NULL,
			added_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS statuses (
			material_id TEXT PRIMARY KEY REFERENCES materials(material_id),
			started_at TEXT NOT NULL,
			completed_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS reading_log (
			date TEXT PRIMARY KEY,
			material_id TEXT NOT NULL REFERENCES materials(material_id),
			count INTEGER NOT NULL CHECK (count > 0)
		);`,
		`CREATE TABLE IF NOT EXISTS notes (
			note_id INTEGER PRIMARY KEY,
			material_id TEXT NOT NULL REFERENCES materials(material_id),
			content TEXT NOT NULL,
			chapter INTEGER NOT NULL,
			page INTEGER NOT NULL,
			added_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reading_log_material ON reading_log(material_id);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_added_at ON notes(added_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddMaterial inserts a material and returns it with a generated id.
func (s *Store) AddMaterial(ctx context.Context, title, authors string, pages int, tags string) (model.Material, error) {
	if pages <= 0 {
		return model.Material{}, fmt.Errorf("pages must be > 0, got %d", pages)
	}
	material := model.Material{
		ID:      uuid.NewString(),
		Title:   title,
		Authors: authors,
		Pages:   pages,
		Tags:    tags,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO materials (material_id, title, authors, pages, tags) VALUES (?, ?, ?, ?, ?)`,
		material.ID, material.Title, material.Authors, material.Pages, material.Tags)
	if err != nil {
		return model.Material{}, fmt.Errorf("failed to insert material: %w", err)
	}
	return material, nil
}

// Material returns the catalog entry for the given id.
func (s *Store) Material(ctx context.Context, materialID string) (model.Material, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT material_id, title, authors, pages, tags FROM materials WHERE material_id = ?`,
		materialID)
	var m model.Material
	if err := row.Scan(&m.ID, &m.Title, &m.Authors, &m.Pages, &m.Tags); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Material{}, fmt.Errorf("material %s: %w", materialID, ErrMaterialNotFound)
		}
		return model.Material{}, fmt.Errorf("failed to query material: %w", err)
	}
	return m, nil
}

// Materials returns the whole catalog in insertion order.
func (s *Store) Materials(ctx context.Context) ([]model.Material, error) {
	return s.queryMaterials(ctx,
		`SELECT material_id, title, authors, pages, tags FROM materials ORDER BY rowid`)
}

// FreeMaterials returns the queue: materials that have never been
// started, in insertion order.
func (s *Store) FreeMaterials(ctx context.Context) ([]model.Material, error) {
	return s.queryMaterials(ctx,
		`SELECT m.material_id, m.title, m.authors, m.pages, m.tags
		 FROM materials m
		 LEFT JOIN statuses s ON s.material_id = m.material_id
		 WHERE s.material_id IS NULL
		 ORDER BY m.rowid`)
}

func (s *Store) queryMaterials(ctx context.Context, query string, args ...any) ([]model.Material, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var materials []model.Material
	for rows.Next() {
		var m model.Material
		if err := rows.Scan(&m.ID, &m.Title, &m.Authors, &m.Pages, &m.Tags); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return materials, nil
}

// ReadingMaterials returns started but not yet completed materials with
// their statuses.
func (s *Store) ReadingMaterials(ctx context.Context) ([]model.MaterialWithStatus, error) {
	return s.queryWithStatus(ctx, `WHERE s.completed_at IS NULL`)
}

// CompletedMaterials returns completed materials with their statuses.
func (s *Store) CompletedMaterials(ctx context.Context) ([]model.MaterialWithStatus, error) {
	return s.queryWithStatus(ctx, `WHERE s.completed_at IS NOT NULL`)
}

func (s *Store) queryWithStatus(ctx context.Context, where string) ([]model.MaterialWithStatus, error) {
	query := fmt.Sprintf(
		`SELECT m.material_id, m.title, m.authors, m.pages, m.tags, s.started_at, s.completed_at
		 FROM materials m
		 JOIN statuses s ON s.material_id = m.material_id
		 %s
		 ORDER BY s.started_at, m.rowid`, where)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials with statuses: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.MaterialWithStatus
	for rows.Next() {
		var (
			ms          model.MaterialWithStatus
			startedAt   string
			completedAt sql.NullString
		)
		if err := rows.Scan(&ms.Material.ID, &ms.Material.Title, &ms.Material.Authors,
			&ms.Material.Pages, &ms.Material.Tags, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		ms.Status.MaterialID = ms.Material.ID
		if ms.Status.StartedAt, err = dateutil.ParseISO(startedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			completed, err := dateutil.ParseISO(completedAt.String)
			if err != nil {
				return nil, err
			}
			ms.Status.CompletedAt = &completed
		}
		result = append(result, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Status returns the lifecycle of a material.
func (s *Store) Status(ctx context.Context, materialID string) (model.MaterialStatus, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT started_at, completed_at FROM statuses WHERE material_id = ?`, materialID)
	var (
		startedAt   string
		completedAt sql.NullString
	)
	if err := row.Scan(&startedAt, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MaterialStatus{}, fmt.Errorf("material %s: %w", materialID, ErrMaterialNotAssigned)
		}
		return model.MaterialStatus{}, fmt.Errorf("failed to query status: %w", err)
	}
	status := model.MaterialStatus{MaterialID: materialID}
	var err error
	if status.StartedAt, err = dateutil.ParseISO(startedAt); err != nil {
		return model.MaterialStatus{}, err
	}
	if completedAt.Valid {
		completed, err := dateutil.ParseISO(completedAt.String)
		if err != nil {
			return model.MaterialStatus{}, err
		}
		status.CompletedAt = &completed
	}
	return status, nil
}

// StartMaterial marks a material as started. The date must not be in the
// future and the material must exist and not be started yet.
func (s *Store) StartMaterial(ctx context.Context, materialID string, startDate, today dateutil.Date) error {
	if startDate.After(today) {
		return fmt.Errorf("start date %s is in the future", startDate)
	}
	if _, err := s.Material(ctx, materialID); err != nil {
		return err
	}
	if _, err := s.Status(ctx, materialID); err == nil {
		return fmt.Errorf("material %s: %w", materialID, ErrMaterialAlreadyStarted)
	} else if !errors.Is(err, ErrMaterialNotAssigned) {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO statuses (material_id, started_at) VALUES (?, ?)`,
		materialID, startDate.ISO())
	if err != nil {
		return fmt.Errorf("failed to start material: %w", err)
	}
	return nil
}

// CompleteMaterial marks a started material as completed.
func (s *Store) CompleteMaterial(ctx context.Context, materialID string, completionDate dateutil.Date) error {
	status, err := s.Status(ctx, materialID)
	if err != nil {
		return err
	}
	if status.Completed() {
		return fmt.Errorf("material %s: %w", materialID, ErrMaterialAlreadyCompleted)
	}
	if completionDate.Before(status.StartedAt) {
		return fmt.Errorf("material %s: completion %s, start %s: %w",
			materialID, completionDate, status.StartedAt, ErrCompletionBeforeStart)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE statuses SET completed_at = ? WHERE material_id = ?`,
		completionDate.ISO(), materialID)
	if err != nil {
		return fmt.Errorf("failed to complete material: %w", err)
	}
	return nil
}

// LogRecords loads the whole raw log in date order, with material titles
// joined in for display.
func (s *Store) LogRecords(ctx context.Context) ([]readinglog.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.date, l.material_id, l.count, m.title
		 FROM reading_log l
		 JOIN materials m ON m.material_id = l.material_id
		 ORDER BY l.date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query log records: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []readinglog.Entry
	for rows.Next() {
		var (
			date  string
			entry readinglog.Entry
		)
		if err := rows.Scan(&date, &entry.Record.MaterialID, &entry.Record.Count,
			&entry.Record.MaterialTitle); err != nil {
			return nil, err
		}
		if entry.Date, err = dateutil.ParseISO(date); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// InsertLogRecord stores one logged day. The material must exist, must
// have been started no later than the entry's date; date uniqueness is
// enforced by the schema.
func (s *Store) InsertLogRecord(ctx context.Context, date dateutil.Date, materialID string, count int) error {
	if count <= 0 {
		return fmt.Errorf("count must be > 0, got %d", count)
	}
	if _, err := s.Material(ctx, materialID); err != nil {
		return err
	}
	status, err := s.Status(ctx, materialID)
	if err != nil {
		return err
	}
	if date.Before(status.StartedAt) {
		return fmt.Errorf("material %s: entry %s, start %s: %w",
			materialID, date, status.StartedAt, ErrLogBeforeStart)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reading_log (date, material_id, count) VALUES (?, ?, ?)`,
		date.ISO(), materialID, count)
	if err != nil {
		return fmt.Errorf("failed to insert log record: %w", err)
	}
	return nil
}

// CompletionDates maps completed materials to their completion dates.
func (s *Store) CompletionDates(ctx context.Context) (map[string]dateutil.Date, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT material_id, completed_at FROM statuses WHERE completed_at IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion dates: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	dates := make(map[string]dateutil.Date)
	for rows.Next() {
		var materialID, completedAt string
		if err := rows.Scan(&materialID, &completedAt); err != nil {
			return nil, err
		}
		date, err := dateutil.ParseISO(completedAt)
		if err != nil {
			return nil, err
		}
		dates[materialID] = date
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

// MaterialTitles maps every material id to its title.
func (s *Store) MaterialTitles(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT material_id, title FROM materials`)
	if err != nil {
		return nil, fmt.Errorf("failed to query titles: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	titles := make(map[string]string)
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		titles[id] = title
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return titles, nil
}

// ReadPagesPerDay sums the pages read per day over [from; to] inclusive.
func (s *Store) ReadPagesPerDay(ctx context.Context, from, to dateutil.Date) (map[dateutil.Date]int, error) {
	return s.amountsPerDay(ctx,
		`SELECT date, SUM(count) FROM reading_log
		 WHERE date >= ? AND date <= ?
		 GROUP BY date`, from, to)
}

// NotesPerDay counts notes added per day over [from; to] inclusive.
func (s *Store) NotesPerDay(ctx context.Context, from, to dateutil.Date) (map[dateutil.Date]int, error) {
	return s.amountsPerDay(ctx,
		`SELECT added_at, COUNT(note_id) FROM notes
		 WHERE added_at >= ? AND added_at <= ?
		 GROUP BY added_at`, from, to)
}

func (s *Store) amountsPerDay(ctx context.Context, query string, from, to dateutil.Date) (map[dateutil.Date]int, error) {
	rows, err := s.db.QueryContext(ctx, query, from.ISO(), to.ISO())
	if err != nil {
		return nil, fmt.Errorf("failed to query per-day amounts: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	amounts := make(map[dateutil.Date]int)
	for rows.Next() {
		var (
			date   string
			amount int
		)
		if err := rows.Scan(&date, &amount); err != nil {
			return nil, err
		}
		day, err := dateutil.ParseISO(date)
		if err != nil {
			return nil, err
		}
		amounts[day] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return amounts, nil
}

// AddNote stores a note bound to a material. The page must fit into the
// material.
func (s *Store) AddNote(ctx context.Context, materialID, content string, chapter, page int, addedAt dateutil.Date) error {
	material, err := s.Material(ctx, materialID)
	if err != nil {
		return err
	}
	if page > material.Pages {
		return fmt.Errorf("page %d is beyond the material's %d pages", page, material.Pages)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (material_id, content, chapter, page, added_at) VALUES (?, ?, ?, ?, ?)`,
		materialID, content, chapter, page, addedAt.ISO())
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}
