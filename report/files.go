package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"openreview-ratings/models"
	"openreview-ratings/stats"
	"openreview-ratings/venue"
)

// RatingsPath returns <dir>/<venue>_ratings.json
func RatingsPath(dir, venueName string) string {
	return filepath.Join(dir, venue.Slug(venueName)+"_ratings.json")
}

// SummaryPath returns <dir>/<venue>_summary.txt
func SummaryPath(dir, venueName string) string {
	return filepath.Join(dir, venue.Slug(venueName)+"_summary.txt")
}

// WriteRatings saves the ratings as JSON indented with two spaces
func WriteRatings(path string, ratings models.Ratings) error {
	data, err := json.MarshalIndent(ratings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ratings: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	return nil
}

// ReadRatings loads a ratings file written by WriteRatings
func ReadRatings(path string) (models.Ratings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings file: %w", err)
	}

	var ratings models.Ratings
	if err := json.Unmarshal(data, &ratings); err != nil {
		return nil, fmt.Errorf("failed to parse ratings file %s: %w", path, err)
	}
	if ratings == nil {
		ratings = models.Ratings{}
	}
	return ratings, nil
}

// WriteSummary saves the plain-text summary
func WriteSummary(path, venueName string, s stats.Summary) error {
	return writeFile(path, []byte(FormatSummary(venueName, s)))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
