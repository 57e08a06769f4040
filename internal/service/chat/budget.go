package chat

import (
	"cmp"
	"slices"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
)

const DefaultMaxTokens = 8000

// The prompt may use nine tenths of MaxTokens; the rest is left for the
// completion.
const (
	inputShareNum = 9
	inputShareDen = 10
)

// Assembler picks the most recent messages that fit in the token budget.
type Assembler struct {
	MaxTokens int
	Counter   TokenCounter
}

func NewAssembler(maxTokens int, counter TokenCounter) *Assembler {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if counter == nil {
		counter = CharCounter{}
	}
	return &Assembler{MaxTokens: maxTokens, Counter: counter}
}

// InputBudget is the number of tokens the assembled prompt may use.
func (a *Assembler) InputBudget() int {
	return a.MaxTokens * inputShareNum / inputShareDen
}

// Assemble returns turns in ascending sequence order. Messages are taken
// newest first; a message that does not fit with its contexts is retried
// without them, and the first message that does not fit at all ends the
// selection. The running total is kept across all retained turns.
// Project contexts are charged up front and attached to the last retained
// user message.
func (a *Assembler) Assemble(messages []core.Message, projectContexts []core.Context) []core.Turn {
	if len(messages) == 0 {
		return []core.Turn{}
	}

	// Compared in counter units: cost/unitsPerToken > budget exactly when
	// cost > budget*unitsPerToken.
	budget := a.InputBudget()*a.Counter.UnitsPerToken() - a.Counter.Units(summarize(projectContexts))

	newestFirst := slices.Clone(messages)
	slices.SortStableFunc(newestFirst, func(x, y core.Message) int {
		return cmp.Compare(y.Sequence, x.Sequence)
	})

	kept := make([]core.Message, 0, len(newestFirst))
	turns := make([]core.Turn, 0, len(newestFirst))
	used := 0
	for _, msg := range newestFirst {
		turn := Render(msg, msg.Contexts)
		cost := turnUnits(a.Counter, turn)
		if used+cost > budget {
			turn = RenderPlain(msg)
			cost = turnUnits(a.Counter, turn)
			if used+cost > budget {
				break
			}
		}
		used += cost
		kept = append(kept, msg)
		turns = append(turns, turn)
	}

	slices.Reverse(kept)
	slices.Reverse(turns)

	if len(projectContexts) == 0 {
		return turns
	}
	for i := len(kept) - 1; i >= 0; i-- {
		if kept[i].Role != core.RoleUser {
			continue
		}
		merged := make([]core.Context, 0, len(kept[i].Contexts)+len(projectContexts))
		merged = append(merged, kept[i].Contexts...)
		merged = append(merged, projectContexts...)
		turns[i] = Render(kept[i], merged)
		break
	}
	return turns
}
