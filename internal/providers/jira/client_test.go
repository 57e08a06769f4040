package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jjaspenextech/nextech-shannon-api/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoryKey(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "ABC-1234", want: "ABC-1234"},
		{input: "  ABC-12 ", want: "ABC-12"},
		{input: "https://nextech.atlassian.net/browse/XYZ-987", want: "XYZ-987"},
		{input: "see https://other.atlassian.net/browse/XYZ-55?focus=1", want: "XYZ-55"},
		{input: "git checkout -b PRJ-4321-fix-login", want: "PRJ-4321"},
		{input: "ABC-1", wantErr: true},
		{input: "AB-1234", wantErr: true},
		{input: "abc-1234", wantErr: true},
		{input: "ABCD-1234", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStoryKey(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStoryKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestClient(url string) *Client {
	return NewClient(url+"/", &retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		Jitter:        time.Millisecond,
	})
}

func TestClient_StoryDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/latest/issue/ABC-1234", r.URL.Path)
		assert.Equal(t, "Basic secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"key":"ABC-1234","fields":{"summary":"s","description":"As a user I want"}}`)
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).StoryDescription(context.Background(), "git checkout -b ABC-1234-thing", "secret")

	require.NoError(t, err)
	assert.Equal(t, "As a user I want", got)
}

func TestClient_StoryDescription_Missing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"fields":{"description":null}}`)
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).StoryDescription(context.Background(), "ABC-1234", "secret")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_StoryDescription_Errors(t *testing.T) {
	t.Run("invalid key makes no request", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).StoryDescription(context.Background(), "nope", "secret")

		assert.ErrorIs(t, err, ErrInvalidStoryKey)
		assert.Zero(t, calls.Load())
	})

	t.Run("unauthorized is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, "bad token")
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).StoryDescription(context.Background(), "ABC-1234", "secret")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 401")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("server error retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).StoryDescription(context.Background(), "ABC-1234", "secret")

		require.Error(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})
}
