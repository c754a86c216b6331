package crypto

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	// keychainKeyPrefix namespaces key entries within the service.
	keychainKeyPrefix = "key:"
	// keychainListKey stores the list of all key names. Keychain APIs have
	// no native "list all" operation, so we maintain an index entry.
	keychainListKey = "_keylist"
)

// KeychainStore implements KeyStore using the OS keychain via
// zalando/go-keyring:
//   - macOS: Keychain
//   - Windows: Credential Store
//   - Linux: Secret Service (libsecret)
//
// The keychain provides encryption and OS-managed access control, so entries
// are stored plaintext inside it. Standard 64-byte keypairs are well within
// every platform's size limits. Thread-safe via RWMutex.
type KeychainStore struct {
	serviceName string
	mu          sync.RWMutex
	closed      bool
}

// keychainKeyData is the JSON structure stored in the keychain.
type keychainKeyData struct {
	Name        string `json:"name"`
	Pubkey      []byte `json:"pubkey"`
	KeypairData []byte `json:"keypair_data"`
}

// NewKeychainStore creates a KeychainStore scoped to the given service name.
// Probes the keychain once; returns ErrKeychainUnavailable when no secret
// service is reachable (headless Linux, missing D-Bus).
func NewKeychainStore(serviceName string) (*KeychainStore, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("%w: service name cannot be empty", ErrInvalidKeyName)
	}
	s := &KeychainStore{serviceName: serviceName}
	if _, err := s.loadIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a key entry from the keychain.
func (s *KeychainStore) Get(name string) (*KeyEntry, error) {
	if err := ValidateKeyName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrKeyStoreClosed
	}

	secret, err := keyring.Get(s.serviceName, keychainKeyPrefix+name)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeychainUnavailable, err)
	}

	var data keychainKeyData
	if err := json.Unmarshal([]byte(secret), &data); err != nil {
		return nil, fmt.Errorf("%w: corrupt keychain entry: %v", ErrKeyStoreIO, err)
	}
	return &KeyEntry{
		Name:        data.Name,
		Pubkey:      data.Pubkey,
		KeypairData: data.KeypairData,
	}, nil
}

// Put stores a key entry in the keychain and updates the name index.
func (s *KeychainStore) Put(entry *KeyEntry, overwrite bool) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrKeyStoreClosed
	}

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	if _, exists := index[entry.Name]; exists && !overwrite {
		return ErrKeyExists
	}

	raw, err := json.Marshal(keychainKeyData{
		Name:        entry.Name,
		Pubkey:      entry.Pubkey,
		KeypairData: entry.KeypairData,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	if err := keyring.Set(s.serviceName, keychainKeyPrefix+entry.Name, string(raw)); err != nil {
		return fmt.Errorf("%w: %v", ErrKeychainUnavailable, err)
	}
	Zeroize(raw)

	index[entry.Name] = struct{}{}
	return s.saveIndex(index)
}

// Delete removes a key entry and updates the name index.
func (s *KeychainStore) Delete(name string) error {
	if err := ValidateKeyName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrKeyStoreClosed
	}

	err := keyring.Delete(s.serviceName, keychainKeyPrefix+name)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeychainUnavailable, err)
	}

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	delete(index, name)
	return s.saveIndex(index)
}

// List returns all key names from the maintained index.
func (s *KeychainStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrKeyStoreClosed
	}

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	return names, nil
}

// Has reports whether a key exists.
func (s *KeychainStore) Has(name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrKeyStoreClosed
	}

	index, err := s.loadIndex()
	if err != nil {
		return false, err
	}
	_, exists := index[name]
	return exists, nil
}

// Close marks the store closed. Entries remain in the OS keychain.
func (s *KeychainStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// loadIndex reads the name index entry. A missing index means an empty store.
func (s *KeychainStore) loadIndex() (map[string]struct{}, error) {
	secret, err := keyring.Get(s.serviceName, keychainListKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return make(map[string]struct{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeychainUnavailable, err)
	}

	var names []string
	if err := json.Unmarshal([]byte(secret), &names); err != nil {
		return nil, fmt.Errorf("%w: corrupt keychain index: %v", ErrKeyStoreIO, err)
	}
	index := make(map[string]struct{}, len(names))
	for _, n := range names {
		index[n] = struct{}{}
	}
	return index, nil
}

func (s *KeychainStore) saveIndex(index map[string]struct{}) error {
	names := make([]string, 0, len(index))
	for n := range index {
		names = append(names, n)
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	if err := keyring.Set(s.serviceName, keychainListKey, string(raw)); err != nil {
		return fmt.Errorf("%w: %v", ErrKeychainUnavailable, err)
	}
	return nil
}

var _ KeyStore = (*KeychainStore)(nil)
