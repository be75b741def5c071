package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mprisd/internal/models"
)

var ErrPlayNotFound = errors.New("play not found")

const playColumns = `id, track_id, title, artist, album, duration_ms, url, played_at`

// PlayRepository persists [models.Play] records in the plays table.
type PlayRepository struct {
	db *sql.DB
}

// NewPlayRepository creates a new PlayRepository with the given database connection
func NewPlayRepository(db *sql.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// Record inserts a play after validating it.
func (r *PlayRepository) Record(ctx context.Context, p *models.Play) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `INSERT INTO plays (` + playColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.TrackID,
		p.Title,
		p.Artist,
		p.Album,
		p.Duration,
		p.URL,
		p.PlayedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play: %w", err)
	}
	return nil
}

// Get retrieves a play by ID
func (r *PlayRepository) Get(ctx context.Context, id string) (*models.Play, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playColumns+` FROM plays WHERE id = ?`, id)
	p, err := scanPlay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlayNotFound, id)
	}
	return p, err
}

// List returns up to limit plays, newest first. A non-positive limit returns every play.
func (r *PlayRepository) List(ctx context.Context, limit int) ([]*models.Play, error) {
	query := `SELECT ` + playColumns + ` FROM plays ORDER BY played_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

// Since returns every play at or after t, oldest first.
func (r *PlayRepository) Since(ctx context.Context, t time.Time) ([]*models.Play, error) {
	query := `SELECT ` + playColumns + ` FROM plays WHERE played_at >= ? ORDER BY played_at ASC, rowid ASC`
	return r.query(ctx, query, t.UTC())
}

// Count returns the number of recorded plays.
func (r *PlayRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plays`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return n, nil
}

// TrackCount is a track with the number of times it was played.
type TrackCount struct {
	TrackID string `json:"track_id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Plays   int    `json:"plays"`
}

// Top returns the most played tracks.
func (r *PlayRepository) Top(ctx context.Context, limit int) ([]TrackCount, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT track_id, MAX(title), MAX(artist), COUNT(*) AS plays
		FROM plays
		GROUP BY track_id
		ORDER BY plays DESC, MAX(played_at) DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top tracks: %w", err)
	}
	defer rows.Close()

	var counts []TrackCount
	for rows.Next() {
		var c TrackCount
		if err := rows.Scan(&c.TrackID, &c.Title, &c.Artist, &c.Plays); err != nil {
			return nil, fmt.Errorf("failed to scan top track: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}

func (r *PlayRepository) query(ctx context.Context, query string, args ...any) ([]*models.Play, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var plays []*models.Play
	for rows.Next() {
		p, err := scanPlay(rows)
		if err != nil {
			return nil, err
		}
		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return plays, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPlay scans a single row from either [sql.Row] or [sql.Rows]
func scanPlay(s scanner) (*models.Play, error) {
	var p models.Play
	err := s.Scan(&p.ID, &p.TrackID, &p.Title, &p.Artist, &p.Album, &p.Duration, &p.URL, &p.PlayedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan play: %w", err)
	}
	return &p, nil
}
