package chat

import (
	"testing"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharCounter(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"ab", 2},
		{"abc", 3},
		{"ééé", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CharCounter{}.Units(tt.text), tt.text)
	}
	assert.Equal(t, 3, CharCounter{}.UnitsPerToken())
}

func TestNewTokenCounter(t *testing.T) {
	c, err := NewTokenCounter("")
	require.NoError(t, err)
	assert.IsType(t, CharCounter{}, c)

	c, err = NewTokenCounter(CounterChars)
	require.NoError(t, err)
	assert.IsType(t, CharCounter{}, c)

	c, err = NewTokenCounter(CounterTiktoken)
	require.NoError(t, err)
	assert.IsType(t, &TiktokenCounter{}, c)

	_, err = NewTokenCounter("words")
	assert.Error(t, err)
}

func TestTiktokenCounter_EmptyText(t *testing.T) {
	c := &TiktokenCounter{}
	assert.Zero(t, c.Units(""))
	assert.Equal(t, 1, c.UnitsPerToken())
}

func TestTurnUnits_CountsImageURLs(t *testing.T) {
	turn := core.Turn{
		Role: core.RoleUser,
		Text: "abcdef",
		Parts: []core.ContentPart{
			{Type: "text", Text: "ignored"},
			{Type: "image_url", ImageURL: &core.ImageURL{URL: "data:image/png;base64,AAAA"}},
		},
	}
	assert.Equal(t, len("abcdef")+len("data:image/png;base64,AAAA"), turnUnits(CharCounter{}, turn))
}
