package session

import "sync"

// InMemoryKeystore is a non-persistent Keystore, used in tests and wherever
// durable credentials are undesirable.
type InMemoryKeystore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemoryKeystore creates a new in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{values: make(map[string]string)}
}

func (k *InMemoryKeystore) Get(key string) (string, bool, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.values[key]
	return v, ok, nil
}

func (k *InMemoryKeystore) Set(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.values[key] = value
	return nil
}

func (k *InMemoryKeystore) Delete(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.values, key)
	return nil
}
