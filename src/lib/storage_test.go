package lib

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStorage(root, "/storage/")
	ctx := context.Background()

	url, err := s.Put(ctx, "payments/1/proof.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/storage/payments/1/proof.png", url)

	b, err := os.ReadFile(filepath.Join(root, "payments", "1", "proof.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(b))

	require.NoError(t, s.Delete(ctx, "payments/1/proof.png"))
	_, err = os.Stat(filepath.Join(root, "payments", "1", "proof.png"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Delete(ctx, "payments/1/proof.png"))
}

func TestLocalStorageStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStorage(root, "/storage")
	_, err := s.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)
}

func TestStorageKey(t *testing.T) {
	key := StorageKey("vehicles", 7, "Toyota Vios ABC 123", "Front.JPG")
	assert.True(t, strings.HasPrefix(key, "vehicles/7/toyota-vios-abc-123-"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}
