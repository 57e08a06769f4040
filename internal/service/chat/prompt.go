package chat

import (
	"slices"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
)

const SystemPrompt = "You are a helpful AI assistant for a company's internal chat system. " +
	"Provide clear, professional responses while maintaining a friendly tone. " +
	"If you're unsure about something, acknowledge the uncertainty and suggest alternatives " +
	"or ask for clarification."

// EnsureSystemPrompt returns a new slice that starts with the default
// system turn unless turns already carry a system turn somewhere.
func EnsureSystemPrompt(turns []core.Turn) []core.Turn {
	hasSystem := slices.ContainsFunc(turns, func(t core.Turn) bool {
		return t.Role == core.RoleSystem
	})
	if hasSystem {
		return slices.Clone(turns)
	}

	out := make([]core.Turn, 0, len(turns)+1)
	out = append(out, core.Turn{Role: core.RoleSystem, Text: SystemPrompt})
	return append(out, turns...)
}
