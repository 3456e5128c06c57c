package cart

import (
	"context"
	"strings"
	"sync"
)

// DefaultKey is the single-user namespace key used when no session scopes the cart.
const DefaultKey = "efarmaplus-cart"

// Store is the durable key-value surface carts persist through.
type Store interface {
	// Load returns the payload at key; found is false for a missing key.
	Load(ctx context.Context, key string) (payload string, found bool, err error)
	Save(ctx context.Context, key, payload string) error
}

// SessionKey namespaces a cart by session, e.g. "efp:cart:<session>".
func SessionKey(namespace, sessionID string) string {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return DefaultKey
	}
	if namespace == "" {
		return "cart:" + sessionID
	}
	return namespace + ":cart:" + sessionID
}

// MemoryStore keeps payloads in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, key, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = payload
	return nil
}
