package crypto

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	dbm "github.com/cosmos/cosmos-db"
)

// dbKeyPrefix namespaces key entries within the database.
const dbKeyPrefix = "keychain/"

// DBKeyStore implements KeyStore on top of a cosmos-db backend. A memdb
// backend gives an ephemeral store; goleveldb or another persistent backend
// survives restarts. Entries are stored as JSON records, one per key.
//
// DBKeyStore does not encrypt entries itself - use it behind a trusted
// database, or wrap keypair material before storing. Thread-safe via RWMutex
// on top of the database's own guarantees.
type DBKeyStore struct {
	db     dbm.DB
	mu     sync.RWMutex
	closed bool
}

// NewDBKeyStore creates a DBKeyStore over the given database.
// The store takes ownership: Close closes the database.
func NewDBKeyStore(db dbm.DB) (*DBKeyStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database cannot be nil", ErrKeyStoreIO)
	}
	return &DBKeyStore{db: db}, nil
}

// Get retrieves a key entry by name.
func (s *DBKeyStore) Get(name string) (*KeyEntry, error) {
	if err := ValidateKeyName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrKeyStoreClosed
	}

	raw, err := s.db.Get(dbKey(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	if raw == nil {
		return nil, ErrKeyNotFound
	}

	var entry KeyEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: corrupt entry for %q: %v", ErrKeyStoreIO, name, err)
	}
	return &entry, nil
}

// Put stores a key entry.
func (s *DBKeyStore) Put(entry *KeyEntry, overwrite bool) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrKeyStoreClosed
	}

	key := dbKey(entry.Name)
	if !overwrite {
		exists, err := s.db.Has(key)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
		}
		if exists {
			return ErrKeyExists
		}
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	if err := s.db.SetSync(key, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	Zeroize(raw)
	return nil
}

// Delete removes a key entry.
func (s *DBKeyStore) Delete(name string) error {
	if err := ValidateKeyName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrKeyStoreClosed
	}

	key := dbKey(name)
	exists, err := s.db.Has(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	if !exists {
		return ErrKeyNotFound
	}
	if err := s.db.DeleteSync(key); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	return nil
}

// List returns all key names under the keychain prefix.
func (s *DBKeyStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrKeyStoreClosed
	}

	start := []byte(dbKeyPrefix)
	it, err := s.db.Iterator(start, prefixEnd(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	defer it.Close()

	var names []string
	for ; it.Valid(); it.Next() {
		names = append(names, strings.TrimPrefix(string(it.Key()), dbKeyPrefix))
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	return names, nil
}

// Has reports whether a key exists.
func (s *DBKeyStore) Has(name string) (bool, error) {
	if err := ValidateKeyName(name); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrKeyStoreClosed
	}

	exists, err := s.db.Has(dbKey(name))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	return exists, nil
}

// Close closes the underlying database.
func (s *DBKeyStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	return nil
}

func dbKey(name string) []byte {
	return []byte(dbKeyPrefix + name)
}

// prefixEnd returns the smallest key strictly greater than every key with
// the given prefix, for use as an exclusive iterator bound.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil // prefix is all 0xff, iterate to the end
}

var _ KeyStore = (*DBKeyStore)(nil)
