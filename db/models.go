package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"openreview-ratings/models"
)

const (
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Run represents one scrape of a venue
type Run struct {
	ID              int64
	Venue           string
	ListingURL      string
	Status          string // "in_progress", "done", "failed"
	PapersCount     int
	AverageRating   sql.NullFloat64
	ReviewerAverage sql.NullFloat64
	LastError       sql.NullString
	StartedAt       time.Time
	FinishedAt      sql.NullTime
}

const runColumns = `id, venue, listing_url, status, papers_count, average_rating, reviewer_average, last_error, started_at, finished_at`

// CreateRun records the start of a new run
func (db *DB) CreateRun(ctx context.Context, venue, listingURL string) (*Run, error) {
	started := time.Now().UTC()

	var id int64
	err := db.conn.QueryRowContext(ctx, db.rebind(`
		INSERT INTO runs (venue, listing_url, status, started_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), venue, listingURL, StatusInProgress, formatTime(started)).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return &Run{
		ID:         id,
		Venue:      venue,
		ListingURL: listingURL,
		Status:     StatusInProgress,
		StartedAt:  started.Truncate(time.Second),
	}, nil
}

// SavePaper stores one paper and its individual ratings
func (db *DB) SavePaper(ctx context.Context, runID int64, url models.PaperURL, record models.RatingRecord) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.savePaper(ctx, tx, runID, url, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveRatings stores every paper of a run in a single transaction
func (db *DB) SaveRatings(ctx context.Context, runID int64, ratings models.Ratings) error {
	if len(ratings) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	urls := make([]models.PaperURL, 0, len(ratings))
	for u := range ratings {
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool { return urls[i] < urls[j] })

	for _, u := range urls {
		if err := db.savePaper(ctx, tx, runID, u, ratings[u]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DB) savePaper(ctx context.Context, tx *sql.Tx, runID int64, url models.PaperURL, record models.RatingRecord) error {
	var paperID int64
	err := tx.QueryRowContext(ctx, db.rebind(`
		INSERT INTO papers (run_id, url, average_rating)
		VALUES (?, ?, ?)
		RETURNING id
	`), runID, string(url), record.AverageRating).Scan(&paperID)
	if err != nil {
		return fmt.Errorf("failed to insert paper %s: %w", url, err)
	}

	stmt, err := tx.PrepareContext(ctx, db.rebind(`
		INSERT INTO paper_ratings (paper_id, position, score)
		VALUES (?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, score := range record.Ratings {
		var scoreVal sql.NullFloat64
		if score.Found {
			scoreVal = sql.NullFloat64{Float64: score.Value, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, paperID, i, scoreVal); err != nil {
			return fmt.Errorf("failed to insert rating (paper=%s, position=%d): %w", url, i, err)
		}
	}
	return nil
}

// FinishRun marks a run as done and stores its headline numbers
func (db *DB) FinishRun(ctx context.Context, runID int64, papersCount int, averageRating, reviewerAverage float64) error {
	_, err := db.conn.ExecContext(ctx, db.rebind(`
		UPDATE runs
		SET status = ?, papers_count = ?, average_rating = ?, reviewer_average = ?, finished_at = ?
		WHERE id = ?
	`), StatusDone, papersCount, averageRating, reviewerAverage, formatTime(time.Now().UTC()), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", runID, err)
	}
	return nil
}

// FailRun marks a run as failed with the error that stopped it
func (db *DB) FailRun(ctx context.Context, runID int64, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := db.conn.ExecContext(ctx, db.rebind(`
		UPDATE runs
		SET status = ?, last_error = ?, finished_at = ?
		WHERE id = ?
	`), StatusFailed, msg, formatTime(time.Now().UTC()), runID)
	if err != nil {
		return fmt.Errorf("failed to mark run %d as failed: %w", runID, err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(ctx context.Context, runID int64) (*Run, error) {
	row := db.conn.QueryRowContext(ctx, db.rebind(`SELECT `+runColumns+` FROM runs WHERE id = ?`), runID)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. An empty venue lists every
// venue; limit <= 0 means no limit.
func (db *DB) ListRuns(ctx context.Context, venue string, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []interface{}
	if venue != "" {
		query += ` WHERE venue = ?`
		args = append(args, venue)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRunRatings rebuilds the ratings of a run with scores in their
// original order
func (db *DB) GetRunRatings(ctx context.Context, runID int64) (models.Ratings, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(`
		SELECT p.url, p.average_rating, r.position, r.score
		FROM papers p
		LEFT JOIN paper_ratings r ON r.paper_id = p.id
		WHERE p.run_id = ?
		ORDER BY p.id, r.position
	`), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings for run %d: %w", runID, err)
	}
	defer rows.Close()

	ratings := models.Ratings{}
	for rows.Next() {
		var (
			url      string
			average  float64
			position sql.NullInt64 // NULL for papers without ratings
			score    sql.NullFloat64
		)
		if err := rows.Scan(&url, &average, &position, &score); err != nil {
			return nil, err
		}

		key := models.PaperURL(url)
		rec, ok := ratings[key]
		if !ok {
			rec = models.RatingRecord{Ratings: []models.Score{}, AverageRating: average}
		}
		if position.Valid {
			rec.Ratings = append(rec.Ratings, models.Score{Value: score.Float64, Found: score.Valid})
		}
		ratings[key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ratings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	err := row.Scan(
		&run.ID, &run.Venue, &run.ListingURL, &run.Status, &run.PapersCount,
		&run.AverageRating, &run.ReviewerAverage, &run.LastError, &startedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return nil, err
		}
		run.FinishedAt = sql.NullTime{Time: t, Valid: true}
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
