package pipeline

import (
	"context"

	"openreview-ratings/db"
)

// HistoryStore adapts the run history database to RunStore
type HistoryStore struct {
	*db.DB
}

// CreateRun records the run and returns its ID
func (h HistoryStore) CreateRun(ctx context.Context, venue, listingURL string) (int64, error) {
	run, err := h.DB.CreateRun(ctx, venue, listingURL)
	if err != nil {
		return 0, err
	}
	return run.ID, nil
}
