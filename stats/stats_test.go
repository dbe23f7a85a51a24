package stats

import (
	"testing"

	"openreview-ratings/models"

	"github.com/stretchr/testify/require"
)

func record(values ...float64) models.RatingRecord {
	scores := make([]models.Score, 0, len(values))
	for _, v := range values {
		scores = append(scores, models.NewScore(v))
	}
	return models.NewRatingRecord(scores)
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(models.Ratings{})
	require.Equal(t, 0, s.Papers)
	require.Equal(t, 0.0, s.AverageRating)
	require.Equal(t, 0.0, s.ReviewerAverage)
	require.Len(t, s.Histogram, 4)
	for _, b := range s.Histogram {
		require.Zero(t, b.Count)
	}
}

func TestComputeSummary(t *testing.T) {
	ratings := models.Ratings{
		"a": record(1, 2),    // 1.5
		"b": record(3, 3),    // 3.0
		"c": record(4, 5, 5), // 4.67
		"d": record(2),       // 2.0
	}

	s := Compute(ratings)
	require.Equal(t, 4, s.Papers)
	require.InDelta(t, (1.5+3+4.67+2)/4, s.AverageRating, 1e-9)
	require.InDelta(t, 25.0/8, s.ReviewerAverage, 1e-9)

	// overall mean is 2.79: b and c are above it
	require.Equal(t, 2, s.AboveAverage)
	// reviewer mean is 3.125: only c has a rating above it
	require.Equal(t, 1, s.AboveReviewerAvg)

	counts := []int{}
	for _, b := range s.Histogram {
		counts = append(counts, b.Count)
	}
	require.Equal(t, []int{1, 1, 1, 1}, counts)
}

func TestAboveAverageIsStrict(t *testing.T) {
	s := Compute(models.Ratings{
		"a": record(3),
		"b": record(3),
	})
	require.Equal(t, 3.0, s.AverageRating)
	require.Zero(t, s.AboveAverage)
	require.Zero(t, s.AboveReviewerAvg)
}

func TestEmptyScoresAreExcludedFromReviewerMean(t *testing.T) {
	s := Compute(models.Ratings{
		"a": models.NewRatingRecord([]models.Score{models.NewScore(4), {}}),
		"b": models.NewRatingRecord(nil),
	})
	require.Equal(t, 4.0, s.ReviewerAverage)
	require.Equal(t, 2.0, s.AverageRating)
	require.Equal(t, 1, s.PapersWithoutScores)
}

func TestBucketIndexPartitionsRange(t *testing.T) {
	tests := []struct {
		value    float64
		expected int
	}{
		{0, -1},
		{0.99, -1},
		{1, 0},
		{1.99, 0},
		{2, 1},
		{2.99, 1},
		{3, 2},
		{3.99, 2},
		{4, 3},
		{5, 3},
		{5.01, -1},
		{8, -1},
	}

	for _, tt := range tests {
		if got := bucketIndex(tt.value); got != tt.expected {
			t.Errorf("bucketIndex(%v) = %d, want %d", tt.value, got, tt.expected)
		}
	}
}

func TestPaperAtThreeFallsInThirdBucket(t *testing.T) {
	s := Compute(models.Ratings{"a": record(3)})
	require.Equal(t, 1, s.Histogram[2].Count)
	require.Equal(t, "3 and 4", s.Histogram[2].Label())
}
