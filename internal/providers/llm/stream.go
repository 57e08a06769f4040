package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync/atomic"

	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
	maxLineSize  = 1 << 20
)

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// parseStreamLine decodes one line of a streamed completion. It reports
// done for the [DONE] sentinel and ok=false for lines that are blank or
// not valid JSON.
func parseStreamLine(line string) (text string, done bool, ok bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, dataPrefix)
	if line == doneSentinel {
		return "", true, true
	}
	if line == "" {
		return "", false, false
	}

	var chunk streamChunk
	if err := json.Unmarshal([]byte(line), &chunk); err != nil {
		return "", false, false
	}
	if len(chunk.Choices) == 0 {
		return "", false, true
	}
	return chunk.Choices[0].Delta.Content, false, true
}

// streamFragments yields the non-empty content deltas read from body.
// A read error is yielded once and ends the sequence. Only the first range
// over the sequence reads the body, even when ranged concurrently; later
// ranges yield nothing.
func streamFragments(ctx context.Context, body io.ReadCloser) iter.Seq2[string, error] {
	var consumed atomic.Bool
	return func(yield func(string, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			return
		}
		defer body.Close()

		logger := log.FromCtx(ctx)
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			line := scanner.Text()
			text, done, ok := parseStreamLine(line)
			if done {
				return
			}
			if !ok {
				if strings.TrimSpace(line) != "" {
					logger.Debug().Str("line", line).Msg("skipping malformed stream chunk")
				}
				continue
			}
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("read stream: %w", err))
		}
	}
}
