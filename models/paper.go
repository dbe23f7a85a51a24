package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// PaperURL identifies a paper discussion page
type PaperURL string

// Score is a single reviewer rating extracted from a discussion page.
// Found is false when the text following the label carried no number.
type Score struct {
	Value float64
	Found bool
}

// NewScore returns a found score with the given value
func NewScore(v float64) Score {
	return Score{Value: v, Found: true}
}

// MarshalJSON writes found scores as numbers and empty scores as []
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Found {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts a number, [] or null
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.HasPrefix(data, []byte("[")) {
		*s = Score{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid score %s: %w", string(data), err)
	}
	*s = NewScore(v)
	return nil
}

// RatingRecord holds the ratings extracted for a single paper
type RatingRecord struct {
	Ratings       []Score
	AverageRating float64 // Rounded to 2 decimals
}

type ratingRecordJSON struct {
	Ratings       []Score `json:"preiminary_ratings"`
	AverageRating string  `json:"average_rating"`
}

// NewRatingRecord builds a record and computes its rounded average
func NewRatingRecord(scores []Score) RatingRecord {
	if scores == nil {
		scores = []Score{}
	}
	return RatingRecord{
		Ratings:       scores,
		AverageRating: Round2(Average(FoundValues(scores))),
	}
}

// MarshalJSON keeps the average as a fixed two-decimal string
func (r RatingRecord) MarshalJSON() ([]byte, error) {
	ratings := r.Ratings
	if ratings == nil {
		ratings = []Score{}
	}
	return json.Marshal(ratingRecordJSON{
		Ratings:       ratings,
		AverageRating: FormatRating(r.AverageRating),
	})
}

// UnmarshalJSON reads a record written by MarshalJSON
func (r *RatingRecord) UnmarshalJSON(data []byte) error {
	var raw ratingRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	avg := 0.0
	if raw.AverageRating != "" {
		v, err := strconv.ParseFloat(raw.AverageRating, 64)
		if err != nil {
			return fmt.Errorf("invalid average_rating %q: %w", raw.AverageRating, err)
		}
		avg = v
	}
	r.Ratings = raw.Ratings
	if r.Ratings == nil {
		r.Ratings = []Score{}
	}
	r.AverageRating = avg
	return nil
}

// Ratings maps each paper to its extracted ratings
type Ratings map[PaperURL]RatingRecord

// FoundValues returns the numeric values of the found scores, in order
func FoundValues(scores []Score) []float64 {
	values := make([]float64, 0, len(scores))
	for _, s := range scores {
		if s.Found {
			values = append(values, s.Value)
		}
	}
	return values
}

// Average returns the arithmetic mean, or 0 for an empty slice
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatRating formats a rating with exactly two decimals
func FormatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
