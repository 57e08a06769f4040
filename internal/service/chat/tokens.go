package chat

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/pkoukk/tiktoken-go"
)

const (
	CounterChars    = "chars"
	CounterTiktoken = "tiktoken"
)

// TokenCounter measures text in its own unit. Costs are summed in units
// and converted to tokens only when compared against a budget, so no
// rounding accumulates across turns.
type TokenCounter interface {
	Units(text string) int
	UnitsPerToken() int
}

// CharCounter is the character_count / 3 heuristic.
type CharCounter struct{}

func (CharCounter) Units(text string) int {
	return utf8.RuneCountInString(text)
}

func (CharCounter) UnitsPerToken() int { return 3 }

// TiktokenCounter counts with the cl100k_base encoding.
type TiktokenCounter struct {
	once sync.Once
	tk   *tiktoken.Tiktoken
	err  error
}

// Units falls back to characters / 3 rounded up when the encoding cannot
// be loaded.
func (c *TiktokenCounter) Units(text string) int {
	if text == "" {
		return 0
	}
	c.once.Do(func() {
		c.tk, c.err = tiktoken.GetEncoding("cl100k_base")
	})
	if c.err != nil {
		return (utf8.RuneCountInString(text) + 2) / 3
	}
	return len(c.tk.Encode(text, nil, nil))
}

func (*TiktokenCounter) UnitsPerToken() int { return 1 }

func NewTokenCounter(name string) (TokenCounter, error) {
	switch name {
	case "", CounterChars:
		return CharCounter{}, nil
	case CounterTiktoken:
		return &TiktokenCounter{}, nil
	default:
		return nil, fmt.Errorf("unknown token counter: %s", name)
	}
}

func turnUnits(counter TokenCounter, turn core.Turn) int {
	n := counter.Units(turn.Text)
	for _, p := range turn.Parts {
		if p.ImageURL != nil {
			n += counter.Units(p.ImageURL.URL)
		}
	}
	return n
}
