package llm

import (
	"fmt"
	"io"
	"net/http"
)

const maxErrorBody = 4096

// UpstreamError is returned when the LLM endpoint answers with a non-2xx
// status or a body that cannot be decoded.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm: http %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm: http %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// readUpstreamError drains up to maxErrorBody bytes of a failed response.
func readUpstreamError(resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
