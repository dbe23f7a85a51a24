package stats

import (
	"strconv"

	"openreview-ratings/models"
)

// Bucket is a histogram bin over per-paper averages. The last bucket
// includes its upper bound.
type Bucket struct {
	Min   float64
	Max   float64
	Count int
}

// Label returns the human-readable bucket range
func (b Bucket) Label() string {
	return trimFloat(b.Min) + " and " + trimFloat(b.Max)
}

// Summary holds the venue-wide statistics derived from all ratings
type Summary struct {
	Papers              int
	AverageRating       float64 // Mean of the per-paper averages
	ReviewerAverage     float64 // Mean of every individual rating
	AboveAverage        int     // Papers whose average is above AverageRating
	AboveReviewerAvg    int     // Papers with at least one rating above ReviewerAverage
	Histogram           []Bucket
	PapersWithoutScores int
}

// Compute derives the Summary from the per-paper records
func Compute(ratings models.Ratings) Summary {
	s := Summary{
		Papers:    len(ratings),
		Histogram: newHistogram(),
	}

	averages := make([]float64, 0, len(ratings))
	var all []float64
	for _, rec := range ratings {
		averages = append(averages, rec.AverageRating)
		values := models.FoundValues(rec.Ratings)
		if len(values) == 0 {
			s.PapersWithoutScores++
		}
		all = append(all, values...)
	}

	s.AverageRating = models.Average(averages)
	s.ReviewerAverage = models.Average(all)

	for _, rec := range ratings {
		if rec.AverageRating > s.AverageRating {
			s.AboveAverage++
		}
		for _, v := range models.FoundValues(rec.Ratings) {
			if v > s.ReviewerAverage {
				s.AboveReviewerAvg++
				break
			}
		}
		if i := bucketIndex(rec.AverageRating); i >= 0 {
			s.Histogram[i].Count++
		}
	}

	return s
}

func newHistogram() []Bucket {
	return []Bucket{
		{Min: 1, Max: 2},
		{Min: 2, Max: 3},
		{Min: 3, Max: 4},
		{Min: 4, Max: 5},
	}
}

// bucketIndex returns the histogram bin for v, or -1 when v is outside [1,5]
func bucketIndex(v float64) int {
	switch {
	case v >= 1 && v < 2:
		return 0
	case v >= 2 && v < 3:
		return 1
	case v >= 3 && v < 4:
		return 2
	case v >= 4 && v <= 5:
		return 3
	default:
		return -1
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
