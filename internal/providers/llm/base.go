package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 120 * time.Second

type baseProvider struct {
	client *http.Client
	// stream has no overall timeout; a streamed completion lives as long
	// as the request context.
	stream *http.Client
	apiKey string
}

func newBaseProvider(apiKey string) baseProvider {
	return baseProvider{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		stream: &http.Client{},
		apiKey: apiKey,
	}
}

func (b *baseProvider) doRequest(ctx context.Context, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	return resp, nil
}
