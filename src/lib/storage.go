package lib

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"vrs/src/config"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// FileStorage stores uploaded files under a key and resolves their public URL.
type FileStorage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

var (
	storage   FileStorage
	storageMu sync.Mutex
)

// GetStorage returns the configured storage, falling back to the local disk.
func GetStorage() FileStorage {
	storageMu.Lock()
	defer storageMu.Unlock()
	if storage == nil {
		storage = NewLocalStorage(config.GetStorageDir(), "/storage")
	}
	return storage
}

func NewStorage(s FileStorage) FileStorage {
	storageMu.Lock()
	defer storageMu.Unlock()
	storage = s
	return storage
}

// StorageKey builds an object key such as payments/12/proof-of-payment-<uuid>.png.
func StorageKey(dir string, ownerID uint, name string, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return path.Join(dir, fmt.Sprintf("%d", ownerID), fmt.Sprintf("%s-%s%s", slug.Make(name), uuid.NewString(), ext))
}

type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root string, baseURL string) *LocalStorage {
	return &LocalStorage{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (l *LocalStorage) Root() string {
	return l.root
}

func (l *LocalStorage) fullPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.root, filepath.FromSlash(clean)), nil
}

func (l *LocalStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	p, err := l.fullPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return l.URL(ctx, key)
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	p, err := l.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *LocalStorage) URL(ctx context.Context, key string) (string, error) {
	return l.baseURL + path.Clean("/"+key), nil
}
