// ABOUTME: SQLite-backed persistence for the listener's saved-track list
// ABOUTME: Save toggles membership; enrichment results patch existing rows
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mwynn/portable-radio/internal/domain"
)

type SQLite struct {
	db *sql.DB
}

// Open creates or opens the saved-track database at path, creating
// parent directories as needed.
func Open(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// OpenMemory opens an in-memory store, used by tests.
func OpenMemory() (*SQLite, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS saved_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			station TEXT NOT NULL,
			artist TEXT NOT NULL,
			title TEXT NOT NULL,
			album TEXT NOT NULL DEFAULT '',
			year INTEGER,
			display_text TEXT NOT NULL,
			saved_at INTEGER NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_saved_identity
			ON saved_tracks(station, artist, title);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save inserts a saved track and returns its id.
func (s *SQLite) Save(st domain.SavedTrack) (int64, error) {
	savedAt := st.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	res, err := s.db.Exec(`
		INSERT INTO saved_tracks (station, artist, title, album, year, display_text, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, st.Station, st.Artist, st.Title, st.Album, nullYear(st.Year), st.DisplayText, savedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("insert track: %w", err)
	}
	return res.LastInsertId()
}

// Find looks up a saved track by its identity triple.
func (s *SQLite) Find(station, artist, title string) (*domain.SavedTrack, error) {
	row := s.db.QueryRow(`
		SELECT id, station, artist, title, album, year, display_text, saved_at
		FROM saved_tracks
		WHERE station = ? AND artist = ? AND title = ?
	`, station, artist, title)

	st, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find track: %w", err)
	}
	return st, nil
}

// List returns saved tracks, newest first.
func (s *SQLite) List() ([]domain.SavedTrack, error) {
	rows, err := s.db.Query(`
		SELECT id, station, artist, title, album, year, display_text, saved_at
		FROM saved_tracks
		ORDER BY saved_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var out []domain.SavedTrack
	for rows.Next() {
		st, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

func (s *SQLite) Remove(id int64) error {
	_, err := s.db.Exec(`DELETE FROM saved_tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove track: %w", err)
	}
	return nil
}

func (s *SQLite) Clear() error {
	_, err := s.db.Exec(`DELETE FROM saved_tracks`)
	if err != nil {
		return fmt.Errorf("clear tracks: %w", err)
	}
	return nil
}

// UpdateEnrichment patches album/year into previously saved rows that
// match the artist/title pair and still lack those fields. Returns the
// number of rows touched.
func (s *SQLite) UpdateEnrichment(artist, title, album string, year int) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE saved_tracks
		SET album = CASE WHEN album = '' THEN ? ELSE album END,
		    year = COALESCE(year, ?)
		WHERE artist = ? AND title = ?
	`, album, nullYear(year), artist, title)
	if err != nil {
		return 0, fmt.Errorf("update enrichment: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(row scanner) (*domain.SavedTrack, error) {
	var st domain.SavedTrack
	var year sql.NullInt64
	var savedAt int64
	if err := row.Scan(&st.ID, &st.Station, &st.Artist, &st.Title, &st.Album, &year, &st.DisplayText, &savedAt); err != nil {
		return nil, err
	}
	st.Year = int(year.Int64)
	st.SavedAt = time.Unix(savedAt, 0)
	return &st, nil
}

func nullYear(y int) any {
	if y == 0 {
		return nil
	}
	return y
}
