package filter

import (
	"testing"

	"openreview-ratings/config"
	"openreview-ratings/models"
)

func scores(values ...float64) []models.Score {
	out := make([]models.Score, 0, len(values))
	for _, v := range values {
		out = append(out, models.NewScore(v))
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	ratings := models.Ratings{
		"https://openreview.net/forum?id=a": models.NewRatingRecord(scores(8, 6)),
		"https://openreview.net/forum?id=b": models.NewRatingRecord(scores(7)),
		"https://openreview.net/forum?id=c": models.NewRatingRecord(scores(3, 5, 7, 5)),
		"https://openreview.net/forum?id=d": models.NewRatingRecord(scores(2)),
		"https://openreview.net/forum?id=e": models.NewRatingRecord([]models.Score{{}}),
	}

	tests := []struct {
		name     string
		cfg      config.FilterConfig
		expected []models.PaperURL
	}{
		{
			name: "everything with at least one review",
			cfg:  config.FilterConfig{MinReviews: 1},
			expected: []models.PaperURL{
				"https://openreview.net/forum?id=a",
				"https://openreview.net/forum?id=b",
				"https://openreview.net/forum?id=c",
				"https://openreview.net/forum?id=d",
			},
		},
		{
			name: "no minimum keeps papers without reviews",
			cfg:  config.FilterConfig{},
			expected: []models.PaperURL{
				"https://openreview.net/forum?id=a",
				"https://openreview.net/forum?id=b",
				"https://openreview.net/forum?id=c",
				"https://openreview.net/forum?id=d",
				"https://openreview.net/forum?id=e",
			},
		},
		{
			name: "top two",
			cfg:  config.FilterConfig{MinReviews: 1, Top: 2},
			expected: []models.PaperURL{
				"https://openreview.net/forum?id=a",
				"https://openreview.net/forum?id=b",
			},
		},
		{
			name: "min rating",
			cfg:  config.FilterConfig{MinRating: 5},
			expected: []models.PaperURL{
				"https://openreview.net/forum?id=a",
				"https://openreview.net/forum?id=b",
				"https://openreview.net/forum?id=c",
			},
		},
		{
			name:     "min reviews",
			cfg:      config.FilterConfig{MinReviews: 3},
			expected: []models.PaperURL{"https://openreview.net/forum?id=c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			got := NewFilter(&cfg).ApplyFilters(ratings)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %d papers, want %d: %+v", len(got), len(tt.expected), got)
			}
			for i, p := range got {
				if p.URL != tt.expected[i] {
					t.Errorf("position %d: got %s, want %s", i, p.URL, tt.expected[i])
				}
			}
		})
	}
}

func TestApplyFiltersTieBreak(t *testing.T) {
	ratings := models.Ratings{
		"https://openreview.net/forum?id=z": models.NewRatingRecord(scores(6)),
		"https://openreview.net/forum?id=y": models.NewRatingRecord(scores(6, 6)),
		"https://openreview.net/forum?id=x": models.NewRatingRecord(scores(6)),
	}

	got := NewFilter(&config.FilterConfig{}).ApplyFilters(ratings)
	want := []models.PaperURL{
		"https://openreview.net/forum?id=y",
		"https://openreview.net/forum?id=x",
		"https://openreview.net/forum?id=z",
	}
	for i, p := range got {
		if p.URL != want[i] {
			t.Errorf("position %d: got %s, want %s", i, p.URL, want[i])
		}
	}
	if got[0].Reviews != 2 {
		t.Errorf("Reviews = %d, want 2", got[0].Reviews)
	}
}
