// Package attachments stores product images uploaded while a product draft
// is being edited.
package attachments

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrKeyRequired is returned for an empty object key.
var ErrKeyRequired = errors.New("attachments: key required")

// Store persists attachment bytes by key.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// NewDraftID returns a fresh identifier grouping one draft's uploads.
func NewDraftID() string {
	return uuid.NewString()
}

// DraftKey builds products/drafts/<draftID>/<filename>. The filename is
// reduced to its base name with path separators stripped.
func DraftKey(draftID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return "products/drafts/" + draftID + "/" + uuid.NewString()[:8] + "-" + name
}

// Object is a stored attachment.
type Object struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps attachments in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

// Put stores data under key.
func (m *MemoryStore) Put(_ context.Context, key, contentType string, data []byte) error {
	if key == "" {
		return ErrKeyRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{ContentType: contentType, Data: append([]byte(nil), data...)}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns the object stored under key.
func (m *MemoryStore) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Len reports how many objects are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
