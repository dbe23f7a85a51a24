package filter

import (
	"sort"

	"openreview-ratings/config"
	"openreview-ratings/models"
)

// RankedPaper is a paper selected for the top papers table
type RankedPaper struct {
	URL           models.PaperURL
	AverageRating float64
	Reviews       int // Number of ratings that carried a number
}

// Filter applies filter criteria to extracted ratings
type Filter struct {
	cfg *config.FilterConfig
}

// NewFilter creates a new Filter instance
func NewFilter(cfg *config.FilterConfig) *Filter {
	return &Filter{
		cfg: cfg,
	}
}

// ApplyFilters returns the matching papers, best rated first. Ties are broken
// by review count and then by URL so the order is stable.
func (f *Filter) ApplyFilters(ratings models.Ratings) []RankedPaper {
	var filtered []RankedPaper

	for url, rec := range ratings {
		paper := RankedPaper{
			URL:           url,
			AverageRating: rec.AverageRating,
			Reviews:       len(models.FoundValues(rec.Ratings)),
		}
		if f.matchesFilters(paper) {
			filtered = append(filtered, paper)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		if a.Reviews != b.Reviews {
			return a.Reviews > b.Reviews
		}
		return a.URL < b.URL
	})

	if f.cfg.Top > 0 && len(filtered) > f.cfg.Top {
		filtered = filtered[:f.cfg.Top]
	}
	return filtered
}

// matchesFilters checks if a paper matches all filter criteria
func (f *Filter) matchesFilters(paper RankedPaper) bool {
	if paper.Reviews < f.cfg.MinReviews {
		return false
	}

	if paper.AverageRating < f.cfg.MinRating {
		return false
	}

	return true
}
