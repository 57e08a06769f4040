package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jjaspenextech/nextech-shannon-api/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScraper() *Scraper {
	return NewScraperWithTimeout(time.Second, &retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		Jitter:        time.Millisecond,
	})
}

func TestScraper_Scrape(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantContains []string
		wantMissing  []string
	}{
		{
			name:         "paragraphs flattened",
			body:         "<html><body><p>Hello</p>\n\n\n<p>World   again</p></body></html>",
			wantContains: []string{"Hello World again"},
		},
		{
			name:         "scripts and styles dropped",
			body:         `<html><head><style>p { color: red; }</style></head><body><p>Visible</p><script>alert("x")</script></body></html>`,
			wantContains: []string{"Visible"},
			wantMissing:  []string{"alert", "color"},
		},
		{
			name:         "links keep their text only",
			body:         `<p>See <a href="https://example.com/docs">the docs</a></p>`,
			wantContains: []string{"See the docs"},
			wantMissing:  []string{"https://example.com/docs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.NotEmpty(t, r.Header.Get("User-Agent"))
				w.Header().Set("Content-Type", "text/html")
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			got, err := newTestScraper().Scrape(context.Background(), server.URL)
			require.NoError(t, err)

			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
			for _, missing := range tt.wantMissing {
				assert.NotContains(t, got, missing)
			}
			assert.NotContains(t, got, "\n")
			assert.NotContains(t, got, "  ")
		})
	}
}

func TestScraper_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestScraper().Scrape(context.Background(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestScraper_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "<p>finally</p>")
	}))
	defer server.Close()

	got, err := newTestScraper().Scrape(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "finally", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestScraper_ResponseSizeLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<p>"+strings.Repeat("a ", maxResponseSize)+"</p>")
	}))
	defer server.Close()

	got, err := newTestScraper().Scrape(context.Background(), server.URL)

	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), maxResponseSize)
}

func TestScraper_InvalidURL(t *testing.T) {
	_, err := newTestScraper().Scrape(context.Background(), "://bad")
	assert.Error(t, err)
}
