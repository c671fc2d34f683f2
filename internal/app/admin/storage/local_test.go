package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save(ctx, []byte("png-bytes"), ".png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/produto-"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	filename := strings.TrimPrefix(ref, "/uploads/")
	data, err := os.ReadFile(filepath.Join(store.Dir(), filename))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(store.Dir(), filename))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_SaveDefaultsExtension(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save(ctx, []byte("bytes"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".jpg"))
}

func TestLocalStore_DeleteRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	outside := filepath.Join(dir, "..", "victim.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

	err = store.Delete(ctx, "/uploads/..")
	assert.Error(t, err)

	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)
}

func TestLocalStore_DeleteMissingFile(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = store.Delete(ctx, "/uploads/produto-missing.png")
	assert.Error(t, err)
}

func TestNewLocalStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	_, err := NewLocalStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
