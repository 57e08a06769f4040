package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(url string) *AzureOpenAI {
	return NewAzureOpenAI(AzureOpenAIConfig{
		BaseURL:    url + "/",
		APIKey:     "test-key",
		Model:      "gpt-4o",
		APIVersion: "2024-02-15-preview",
		MaxTokens:  8000,
	})
}

var helloTurns = []core.Turn{
	{Role: core.RoleSystem, Text: "be nice"},
	{Role: core.RoleUser, Text: "hello"},
}

func TestDeploymentURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://example.openai.azure.com/", "https://example.openai.azure.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-02-15-preview"},
		{"https://example.openai.azure.com", "https://example.openai.azure.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-02-15-preview"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deploymentURL(tt.base, "gpt-4o", "2024-02-15-preview"))
	}
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-15-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "test-key", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 8000, body["max_tokens"])
		assert.EqualValues(t, 0, body["temperature"])
		assert.NotContains(t, body, "stream")
		assert.Len(t, body["messages"], 2)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"world"}}]}`)
	}))
	defer server.Close()

	reply, err := newTestProvider(server.URL).Complete(context.Background(), helloTurns)

	require.NoError(t, err)
	assert.Equal(t, "world", reply)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantBody   string
		wantCause  bool
	}{
		{name: "http error", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`, wantStatus: 429, wantBody: "slow down"},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantStatus: 500, wantBody: "boom"},
		{name: "malformed json", status: http.StatusOK, body: "not json", wantStatus: 200, wantCause: true},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`, wantStatus: 200, wantCause: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			_, err := newTestProvider(server.URL).Complete(context.Background(), helloTurns)

			var upstream *UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, tt.wantStatus, upstream.StatusCode)
			assert.Contains(t, upstream.Body, tt.wantBody)
			if tt.wantCause {
				assert.Error(t, upstream.Unwrap())
			}
		})
	}
}

func TestStream_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintln(w, `data: {"choices":[{"delta":{"content":"Hi"}}]}`)
		fmt.Fprintln(w, `data: [DONE]`)
	}))
	defer server.Close()

	seq, err := newTestProvider(server.URL).Stream(context.Background(), helloTurns)
	require.NoError(t, err)

	assert.Equal(t, []string{"Hi"}, collect(t, seq))
}

func TestStream_HTTPErrorBeforeFirstFragment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "bad key")
	}))
	defer server.Close()

	seq, err := newTestProvider(server.URL).Stream(context.Background(), helloTurns)

	assert.Nil(t, seq)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Equal(t, "bad key", upstream.Body)
}

func TestStreamFragments(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name: "malformed line between chunks",
			lines: []string{
				`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
				`data: {not json`,
				`data: {"choices":[{"delta":{"content":"lo"}}]}`,
				`data: [DONE]`,
			},
			want: []string{"Hel", "lo"},
		},
		{
			name: "prefix is optional and whitespace trimmed",
			lines: []string{
				`  {"choices":[{"delta":{"content":"a"}}]}  `,
				``,
				`data: {"choices":[{"delta":{"content":"b"}}]}`,
			},
			want: []string{"a", "b"},
		},
		{
			name: "missing content yields nothing",
			lines: []string{
				`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
				`data: {"choices":[]}`,
				`data: {"id":"x"}`,
				`data: {"choices":[{"delta":{"content":""}}]}`,
				`data: {"choices":[{"delta":{"content":"x"}}]}`,
			},
			want: []string{"x"},
		},
		{
			name: "done ends the stream",
			lines: []string{
				`data: {"choices":[{"delta":{"content":"1"}}]}`,
				`[DONE]`,
				`data: {"choices":[{"delta":{"content":"2"}}]}`,
			},
			want: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := &trackingBody{Reader: strings.NewReader(strings.Join(tt.lines, "\n"))}

			got := collect(t, streamFragments(context.Background(), body))

			assert.Equal(t, tt.want, got)
			assert.True(t, body.closed)
		})
	}
}

func TestStreamFragments_BreakClosesBody(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"1"}}]}`,
		`data: {"choices":[{"delta":{"content":"2"}}]}`,
	}, "\n"))}

	for frag, err := range streamFragments(context.Background(), body) {
		require.NoError(t, err)
		assert.Equal(t, "1", frag)
		break
	}

	assert.True(t, body.closed)
}

func TestStreamFragments_ReadErrorEndsSequence(t *testing.T) {
	readErr := errors.New("connection reset")
	body := &trackingBody{Reader: io.MultiReader(
		strings.NewReader(`data: {"choices":[{"delta":{"content":"part"}}]}`+"\n"),
		&failingReader{err: readErr},
	)}

	var frags []string
	var errs []error
	for frag, err := range streamFragments(context.Background(), body) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		frags = append(frags, frag)
	}

	assert.Equal(t, []string{"part"}, frags)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], readErr)
	assert.True(t, body.closed)
}

func TestStreamFragments_NotRestartable(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(`data: {"choices":[{"delta":{"content":"once"}}]}`)}
	seq := streamFragments(context.Background(), body)

	assert.Equal(t, []string{"once"}, collect(t, seq))
	assert.Empty(t, collect(t, seq))
}

func TestStreamFragments_ConcurrentRangesReadOnce(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(
		"data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n" +
			"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n")}
	seq := streamFragments(context.Background(), body)

	const consumers = 8
	results := make([][]string, consumers)
	var wg sync.WaitGroup
	for i := range consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for frag, err := range seq {
				if err == nil {
					results[i] = append(results[i], frag)
				}
			}
		}()
	}
	wg.Wait()

	var all []string
	for _, r := range results {
		all = append(all, r...)
	}
	assert.Equal(t, []string{"a", "b"}, all)
	assert.True(t, body.closed)
}

func TestParseStreamLine(t *testing.T) {
	tests := []struct {
		line     string
		wantText string
		wantDone bool
		wantOK   bool
	}{
		{`data: {"choices":[{"delta":{"content":"Hi"}}]}`, "Hi", false, true},
		{`data: [DONE]`, "", true, true},
		{`[DONE]`, "", true, true},
		{`   `, "", false, false},
		{`data: nope`, "", false, false},
		{`{"choices":[]}`, "", false, true},
	}
	for _, tt := range tests {
		text, done, ok := parseStreamLine(tt.line)
		assert.Equal(t, tt.wantText, text, tt.line)
		assert.Equal(t, tt.wantDone, done, tt.line)
		assert.Equal(t, tt.wantOK, ok, tt.line)
	}
}

func collect(t *testing.T, seq func(func(string, error) bool)) []string {
	t.Helper()
	var out []string
	for frag, err := range seq {
		require.NoError(t, err)
		out = append(out, frag)
	}
	return out
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}
