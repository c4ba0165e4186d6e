package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/fleetdesk/apiserver/internal/storage"
)

const fakeURLPrefix = "https://files.test/attachments/"

// fakeObjectStorage implements storage.ObjectStorage in memory.
type fakeObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
	failDel bool
}

func newFakeStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string][]byte)}
}

func (f *fakeObjectStorage) EnsureBucket(context.Context) error { return nil }

func (f *fakeObjectStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if f.failPut {
		return "", errors.New("put failed")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = buf.Bytes()
	return fakeURLPrefix + key, nil
}

func (f *fakeObjectStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if f.failDel {
		return errors.New("delete failed")
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStorage) Resolve(url string) (string, bool) {
	if !strings.HasPrefix(url, fakeURLPrefix) {
		return "", false
	}
	return strings.TrimPrefix(url, fakeURLPrefix), true
}

func (f *fakeObjectStorage) Bucket() string { return "attachments" }

func newTestAttachments(fake *fakeObjectStorage) *Attachments {
	return NewAttachments(storage.NewStorage(fake))
}

// pngDataURI is a tiny valid base64 payload posing as an image.
const pngDataURI = "data:image/png;base64,aGVsbG8="
