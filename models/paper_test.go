package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		expected float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"pair", []float64{6, 8}, 7},
		{"reversed pair", []float64{8, 6}, 7},
		{"decimals", []float64{2.5, 3.5, 3}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Average(tt.input)
			if got != tt.expected {
				t.Errorf("Average() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewRatingRecordIgnoresEmptyScores(t *testing.T) {
	rec := NewRatingRecord([]Score{NewScore(5), {}, NewScore(6)})
	require.Equal(t, 5.5, rec.AverageRating)
	require.Len(t, rec.Ratings, 3)

	empty := NewRatingRecord(nil)
	require.Equal(t, 0.0, empty.AverageRating)
	require.NotNil(t, empty.Ratings)
}

func TestNewRatingRecordRounds(t *testing.T) {
	rec := NewRatingRecord([]Score{NewScore(1), NewScore(2), NewScore(2)})
	require.Equal(t, 1.67, rec.AverageRating)
}

func TestRatingRecordJSONShape(t *testing.T) {
	rec := NewRatingRecord([]Score{NewScore(6), {}})

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.JSONEq(t, `{"preiminary_ratings":[6,[]],"average_rating":"6.00"}`, string(data))

	var back RatingRecord
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, rec, back)
}

func TestScoreUnmarshalNull(t *testing.T) {
	var s Score
	require.NoError(t, json.Unmarshal([]byte("null"), &s))
	require.False(t, s.Found)

	require.Error(t, json.Unmarshal([]byte(`"seven"`), &s))
}

func TestLinkSetDeduplicates(t *testing.T) {
	set := NewLinkSet()
	require.True(t, set.Add("https://openreview.net/forum?id=a"))
	require.False(t, set.Add("https://openreview.net/forum?id=a"))
	require.Equal(t, 1, set.Len())

	added := set.AddAll([]PaperURL{"https://openreview.net/forum?id=b", "https://openreview.net/forum?id=a"})
	require.Equal(t, 1, added)
	require.Equal(t, []PaperURL{
		"https://openreview.net/forum?id=a",
		"https://openreview.net/forum?id=b",
	}, set.Slice())
}
