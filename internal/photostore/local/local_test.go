package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/nutriscan/internal/domain"
)

func TestStoreSaveAndGet(t *testing.T) {
	tests := []struct {
		mime string
		ext  string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/webp", ".webp"},
		{"image/heic", ".heic"},
		{"application/octet-stream", ".jpg"},
	}

	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			imageData := []byte("fake image data")

			key, err := store.Save(ctx, "meal", tt.mime, bytes.NewReader(imageData))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(key, "meal_"), key)
			assert.True(t, strings.HasSuffix(key, tt.ext), key)

			reader, mimeType, err := store.Get(ctx, key)
			require.NoError(t, err)
			defer reader.Close()

			if tt.ext == ".jpg" {
				assert.Equal(t, "image/jpeg", mimeType)
			} else {
				assert.Equal(t, tt.mime, mimeType)
			}

			data, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Equal(t, imageData, data)
		})
	}
}

func TestStoreSave_UniqueKeys(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	a, err := store.Save(ctx, "meal", "image/jpeg", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	b, err := store.Save(ctx, "meal", "image/jpeg", bytes.NewReader([]byte("b")))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStoreDelete(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, "meal", "image/jpeg", bytes.NewReader([]byte("test data")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, key))

	_, _, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, key), domain.ErrNotFound)
}

func TestStoreNotFound(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "nonexistent.jpg")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorePathTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = store.Get(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	assert.Error(t, store.Delete(ctx, "../outside.jpg"))
}
