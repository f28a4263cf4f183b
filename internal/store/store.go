// Package store persists check history: one row per audited page plus the
// ordered infraction rows the check produced.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/a11yaudit/a11ycheck/internal/dbopen"
	"github.com/a11yaudit/a11ycheck/wcag"
)

// Check statuses.
const (
	StatusOK             = "ok"
	StatusRenderError    = "render_error"
	StatusInferenceError = "inference_error"
)

// ErrNotFound is returned by GetCheck for an unknown id.
var ErrNotFound = errors.New("store: check not found")

// Check is one audited page and its outcome.
type Check struct {
	ID           string            `json:"id"`
	URL          string            `json:"url"`
	WindowWidth  int               `json:"window_width"`
	WindowHeight int               `json:"window_height"`
	Status       string            `json:"status"`
	DurationMS   int64             `json:"duration_ms"`
	CreatedAt    int64             `json:"created_at"`
	Infractions  []wcag.Infraction `json:"errors"`
}

// Store wraps the history database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Open opens (or creates) the history database at path with the schema
// applied.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithSchema(Schema), dbopen.WithMkdirAll())
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return NewStore(db), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// SaveCheck inserts a check and its infractions atomically.
func (s *Store) SaveCheck(ctx context.Context, c *Check) error {
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().UnixMilli()
	}
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO checks (id, url, window_width, window_height, status, duration_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.URL, c.WindowWidth, c.WindowHeight, c.Status, c.DurationMS, c.CreatedAt,
		)
		if err != nil {
			return err
		}
		for i, inf := range c.Infractions {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO infractions (check_id, seq, criterion, xpath, contrast,
				contrast_threshold, html_language, predicted_language, text, severity)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				c.ID, i, inf.Criterion, inf.XPath, inf.Contrast,
				inf.ContrastThreshold, inf.HTMLLanguage, inf.PredictedLanguage, inf.Text, inf.Severity,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetCheck retrieves a check with its infractions in original order.
func (s *Store) GetCheck(ctx context.Context, id string) (*Check, error) {
	c := &Check{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, url, window_width, window_height, status, duration_ms, created_at
		FROM checks WHERE id = ?`, id,
	).Scan(&c.ID, &c.URL, &c.WindowWidth, &c.WindowHeight, &c.Status, &c.DurationMS, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT criterion, xpath, contrast, contrast_threshold,
		html_language, predicted_language, text, severity
		FROM infractions WHERE check_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var inf wcag.Infraction
		if err := rows.Scan(&inf.Criterion, &inf.XPath, &inf.Contrast, &inf.ContrastThreshold,
			&inf.HTMLLanguage, &inf.PredictedLanguage, &inf.Text, &inf.Severity); err != nil {
			return nil, err
		}
		c.Infractions = append(c.Infractions, inf)
	}
	return c, rows.Err()
}

// ListChecks returns the most recent checks, newest first, without their
// infraction rows.
func (s *Store) ListChecks(ctx context.Context, limit int) ([]*Check, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, url, window_width, window_height, status, duration_ms, created_at
		FROM checks ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []*Check
	for rows.Next() {
		c := &Check{}
		if err := rows.Scan(&c.ID, &c.URL, &c.WindowWidth, &c.WindowHeight,
			&c.Status, &c.DurationMS, &c.CreatedAt); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}
