package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"openreview-ratings/filter"
	"openreview-ratings/models"
	"openreview-ratings/stats"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleRatings() models.Ratings {
	return models.Ratings{
		"https://openreview.net/forum?id=a": models.NewRatingRecord([]models.Score{models.NewScore(3), models.NewScore(6)}),
		"https://openreview.net/forum?id=b": models.NewRatingRecord([]models.Score{{}}),
	}
}

func TestPaths(t *testing.T) {
	require.Equal(t, filepath.Join("out", "ICLR_2024_ratings.json"), RatingsPath("out", "ICLR 2024"))
	require.Equal(t, filepath.Join("out", "ICLR_2024_summary.txt"), SummaryPath("out", "ICLR 2024"))
}

func TestWriteAndReadRatings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "venue_ratings.json")
	ratings := sampleRatings()

	require.NoError(t, WriteRatings(path, ratings))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "\n  \"https://openreview.net/forum?id=a\": {\n    \"preiminary_ratings\": [\n      3,\n      6\n    ],\n    \"average_rating\": \"4.50\"\n  }")
	require.Contains(t, text, "\"preiminary_ratings\": [\n      []\n    ]")

	got, err := ReadRatings(path)
	require.NoError(t, err)
	if diff := cmp.Diff(ratings, got); diff != "" {
		t.Errorf("ratings mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRatingsErrors(t *testing.T) {
	_, err := ReadRatings(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = ReadRatings(bad)
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o644))
	got, err := ReadRatings(empty)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFormatSummary(t *testing.T) {
	s := stats.Compute(models.Ratings{
		"a": models.NewRatingRecord([]models.Score{models.NewScore(1), models.NewScore(2)}),
		"b": models.NewRatingRecord([]models.Score{models.NewScore(3), models.NewScore(3)}),
		"c": models.NewRatingRecord([]models.Score{models.NewScore(5)}),
	})

	want := `----- OpenReview SUMMARY - ICLR -----
Number of papers processed: 3
Average rating of all papers: 3.17
Average rating given by reviewers: 2.80
Number of papers with rating above average (>3.17): 1
Number of papers with rating above average given by reviewers (>2.80): 2
Number of papers with rating between 1 and 2: 1
Number of papers with rating between 2 and 3: 0
Number of papers with rating between 3 and 4: 1
Number of papers with rating between 4 and 5: 1
`
	if diff := cmp.Diff(want, FormatSummary("ICLR", s)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, SummaryLines(s), 9)
}

func TestWriteSummary(t *testing.T) {
	path := SummaryPath(t.TempDir(), "ICLR")
	s := stats.Compute(sampleRatings())
	require.NoError(t, WriteSummary(path, "ICLR", s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 10)
	require.Equal(t, "----- OpenReview SUMMARY - ICLR -----", lines[0])
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, "ICLR", stats.Compute(sampleRatings()))

	out := buf.String()
	require.Contains(t, out, "OpenReview SUMMARY - ICLR")
	require.Contains(t, out, "Rating between 4 and 5")
	require.Contains(t, out, "Papers without ratings")
}

func TestPrintTopPapers(t *testing.T) {
	var buf bytes.Buffer
	PrintTopPapers(&buf, nil)
	require.Empty(t, buf.String())

	PrintTopPapers(&buf, []filter.RankedPaper{
		{URL: "https://openreview.net/forum?id=a", AverageRating: 7.5, Reviews: 4},
	})
	require.Contains(t, buf.String(), "7.50")
	require.Contains(t, buf.String(), "https://openreview.net/forum?id=a")
}

func TestProgressLifecycle(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	p.Start("Listing pages", 2)
	p.Increment()
	p.Increment()
	p.Start("Discussion pages", 1)
	p.Increment()
	p.Done()
	p.Done()

	require.Nil(t, p.writer)
}
