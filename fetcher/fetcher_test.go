package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"openreview-ratings/scraper/scrapertest"

	"github.com/stretchr/testify/require"
)

func TestDetailFetcherReusesOnePage(t *testing.T) {
	opener := &scrapertest.FakeOpener{Site: &scrapertest.FakeSite{
		Markup: map[string]string{
			"https://openreview.net/forum?id=a": "<p>a</p>",
			"https://openreview.net/forum?id=b": "<p>b</p>",
		},
	}}
	df := NewDetailFetcher(opener, time.Millisecond)

	html, err := df.Fetch(context.Background(), "https://openreview.net/forum?id=a")
	require.NoError(t, err)
	require.Equal(t, "<p>a</p>", html)

	html, err = df.Fetch(context.Background(), "https://openreview.net/forum?id=b")
	require.NoError(t, err)
	require.Equal(t, "<p>b</p>", html)

	require.Len(t, opener.Pages, 1)
	require.Equal(t, []string{"https://openreview.net/forum?id=a", "https://openreview.net/forum?id=b"}, opener.Pages[0].Visited)

	require.NoError(t, df.Close())
	require.True(t, opener.Pages[0].Closed)
	require.NoError(t, df.Close())
}

func TestDetailFetcherNavigationError(t *testing.T) {
	url := "https://openreview.net/forum?id=broken"
	opener := &scrapertest.FakeOpener{Site: &scrapertest.FakeSite{
		NavigateErr: map[string]error{url: errors.New("timeout")},
	}}
	df := NewDetailFetcher(opener, 0)
	defer df.Close()

	_, err := df.Fetch(context.Background(), url)
	require.Error(t, err)
}

func TestDetailFetcherOpenError(t *testing.T) {
	df := NewDetailFetcher(&scrapertest.FakeOpener{OpenErr: errors.New("no browser")}, 0)
	_, err := df.Fetch(context.Background(), "https://openreview.net/forum?id=a")
	require.Error(t, err)
	require.NoError(t, df.Close())
}

func TestCollyFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "<strong>Preliminary Rating:</strong> 6")
	}))
	defer srv.Close()

	cf := NewCollyFetcher("openreview-ratings-test", time.Millisecond)
	defer cf.Close()

	body, err := cf.Fetch(context.Background(), srv.URL+"/forum?id=a")
	require.NoError(t, err)
	require.Contains(t, body, "Preliminary Rating")

	// Revisiting the same URL must hit the server again.
	body, err = cf.Fetch(context.Background(), srv.URL+"/forum?id=a")
	require.NoError(t, err)
	require.NotEmpty(t, body)

	_, err = cf.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)

	_, err = cf.Fetch(context.Background(), "not a url")
	require.Error(t, err)
}

func TestCollyFetcherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cf := NewCollyFetcher("openreview-ratings-test", 0)
	_, err := cf.Fetch(ctx, "http://127.0.0.1/forum")
	require.ErrorIs(t, err, context.Canceled)
}
