package blob

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
)

// ContextBlobName is the blob holding a context's content.
func ContextBlobName(contextID string) string {
	return contextID + ".json"
}

type contextDocument struct {
	Content string `json:"content"`
}

// PutContent stores content as {"content": ...} under name.
func PutContent(ctx context.Context, store core.BlobStore, name, content string) error {
	data, err := json.Marshal(contextDocument{Content: content})
	if err != nil {
		return fmt.Errorf("marshal context content: %w", err)
	}
	return store.Put(ctx, name, data)
}

func GetContent(ctx context.Context, store core.BlobStore, name string) (string, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return "", err
	}
	var doc contextDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("decode context blob %s: %w", name, err)
	}
	return doc.Content, nil
}
