package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "blobs", "contexts")
	store, err := NewFSStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "a.json", []byte("one")))
	require.NoError(t, store.Put(ctx, "a.json", []byte("two")))

	data, err := store.Get(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")

	require.NoError(t, store.Delete(ctx, "a.json"))
	_, err = store.Get(ctx, "a.json")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "a.json"), core.ErrNotFound)
}

func TestFSStore_RejectsPathNames(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.json", "nested/x.json", ".hidden"} {
		assert.ErrorIs(t, store.Put(ctx, name, []byte("x")), ErrInvalidName, name)
		_, err := store.Get(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestContentRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	name := ContextBlobName("ctx-1")
	assert.Equal(t, "ctx-1.json", name)

	require.NoError(t, PutContent(ctx, store, name, "line one\nline \"two\""))

	raw, err := store.Get(ctx, name)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"line one\nline \"two\""}`, string(raw))

	content, err := GetContent(ctx, store, name)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline \"two\"", content)

	_, err = GetContent(ctx, store, "missing.json")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
