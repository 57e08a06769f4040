package chat

import (
	"strings"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
)

const imageMediaPrefix = "data:image/jpeg;base64,"

// Render builds the turn for msg with the given contexts attached.
// Non-image contexts are summarised into the text, image contexts become
// separate image blocks.
func Render(msg core.Message, contexts []core.Context) core.Turn {
	var images []core.Context
	var notes []core.Context
	for _, c := range contexts {
		if c.IsImage() {
			images = append(images, c)
		} else {
			notes = append(notes, c)
		}
	}

	text := msg.Content
	if summary := summarize(notes); summary != "" {
		text += "\nContexts: " + summary
	}

	turn := core.Turn{Role: msg.Role, Text: text}
	if len(images) == 0 {
		return turn
	}

	turn.Parts = make([]core.ContentPart, 0, len(images)+1)
	turn.Parts = append(turn.Parts, core.ContentPart{Type: "text", Text: text})
	for _, img := range images {
		turn.Parts = append(turn.Parts, core.ContentPart{
			Type:     "image_url",
			ImageURL: &core.ImageURL{URL: imageMediaPrefix + img.Content},
		})
	}
	return turn
}

// RenderPlain builds the turn for msg ignoring every context.
func RenderPlain(msg core.Message) core.Turn {
	return core.Turn{Role: msg.Role, Text: msg.Content}
}

func summarize(contexts []core.Context) string {
	if len(contexts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(contexts))
	for _, c := range contexts {
		parts = append(parts, c.Type+": "+c.Content)
	}
	return strings.Join(parts, ", ")
}
