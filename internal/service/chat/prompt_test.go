package chat

import (
	"testing"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSystemPrompt(t *testing.T) {
	tests := []struct {
		name  string
		input []core.Turn
		want  []core.Turn
	}{
		{
			name:  "empty history",
			input: nil,
			want:  []core.Turn{{Role: core.RoleSystem, Text: SystemPrompt}},
		},
		{
			name:  "prepends when missing",
			input: []core.Turn{{Role: core.RoleUser, Text: "hi"}},
			want: []core.Turn{
				{Role: core.RoleSystem, Text: SystemPrompt},
				{Role: core.RoleUser, Text: "hi"},
			},
		},
		{
			name: "keeps existing system turn in place",
			input: []core.Turn{
				{Role: core.RoleUser, Text: "hi"},
				{Role: core.RoleSystem, Text: "custom"},
			},
			want: []core.Turn{
				{Role: core.RoleUser, Text: "hi"},
				{Role: core.RoleSystem, Text: "custom"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnsureSystemPrompt(tt.input))
		})
	}
}

func TestEnsureSystemPrompt_Idempotent(t *testing.T) {
	turns := []core.Turn{{Role: core.RoleUser, Text: "hi"}}

	once := EnsureSystemPrompt(turns)
	twice := EnsureSystemPrompt(once)

	assert.Equal(t, once, twice)
	systems := 0
	for _, turn := range twice {
		if turn.Role == core.RoleSystem {
			systems++
		}
	}
	assert.Equal(t, 1, systems)
}

func TestEnsureSystemPrompt_DoesNotAliasInput(t *testing.T) {
	turns := make([]core.Turn, 1, 8)
	turns[0] = core.Turn{Role: core.RoleUser, Text: "hi"}

	out := EnsureSystemPrompt(turns)
	require.Len(t, out, 2)
	out[1].Text = "changed"

	assert.Equal(t, "hi", turns[0].Text)
	assert.Len(t, turns, 1)
}
