package crypto

import "sync"

// MemoryKeyStore implements KeyStore with in-memory storage.
// Thread-safe via RWMutex. Keys are stored in plaintext - suitable for
// testing and ephemeral sessions only.
type MemoryKeyStore struct {
	mu     sync.RWMutex
	keys   map[string]*KeyEntry
	closed bool
}

// NewMemoryKeyStore creates a new in-memory key store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{
		keys: make(map[string]*KeyEntry, 16), // Pre-allocate for typical use
	}
}

// Get retrieves a key entry by name.
// Returns a clone to prevent external mutation.
func (m *MemoryKeyStore) Get(name string) (*KeyEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrKeyStoreClosed
	}
	entry, ok := m.keys[name]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return entry.Clone(), nil
}

// Put stores a key entry.
func (m *MemoryKeyStore) Put(entry *KeyEntry, overwrite bool) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrKeyStoreClosed
	}
	if _, exists := m.keys[entry.Name]; exists && !overwrite {
		return ErrKeyExists
	}
	// Store a deep copy to prevent external mutation.
	m.keys[entry.Name] = entry.Clone()
	return nil
}

// Delete removes a key entry, wiping its material first.
func (m *MemoryKeyStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrKeyStoreClosed
	}
	entry, exists := m.keys[name]
	if !exists {
		return ErrKeyNotFound
	}
	entry.Wipe()
	delete(m.keys, name)
	return nil
}

// List returns all key names.
func (m *MemoryKeyStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrKeyStoreClosed
	}
	names := make([]string, 0, len(m.keys))
	for name := range m.keys {
		names = append(names, name)
	}
	return names, nil
}

// Has reports whether a key exists.
func (m *MemoryKeyStore) Has(name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, ErrKeyStoreClosed
	}
	_, exists := m.keys[name]
	return exists, nil
}

// Close wipes all stored keys and marks the store closed.
// Safe to call multiple times.
func (m *MemoryKeyStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for _, entry := range m.keys {
		entry.Wipe()
	}
	m.keys = nil
	return nil
}

// Len returns the number of keys in the store. Useful for tests.
func (m *MemoryKeyStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0
	}
	return len(m.keys)
}

var _ KeyStore = (*MemoryKeyStore)(nil)
