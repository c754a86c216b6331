package crypto

import (
	"fmt"
	"sync"

	"cosmossdk.io/log"
)

// Keyring manages named venue keypairs on top of a KeyStore.
// All methods are thread-safe. Loaded keypairs are cached in memory until
// Close, which zeroizes them.
//
// The logger never receives secret material; only key names and public keys
// are logged.
type Keyring struct {
	store  KeyStore
	logger log.Logger

	mu     sync.Mutex
	cache  map[string]*Keypair
	closed bool
}

// NewKeyring creates a Keyring over the given store with no logging.
func NewKeyring(store KeyStore) *Keyring {
	return NewKeyringWithLogger(store, log.NewNopLogger())
}

// NewKeyringWithLogger creates a Keyring that logs key lifecycle events.
func NewKeyringWithLogger(store KeyStore, logger log.Logger) *Keyring {
	return &Keyring{
		store:  store,
		logger: logger,
		cache:  make(map[string]*Keypair),
	}
}

// NewKey generates a new keypair under the given name.
// Returns ErrKeyExists if the name is taken.
func (kr *Keyring) NewKey(name string) (*Keypair, error) {
	if err := ValidateKeyName(name); err != nil {
		return nil, err
	}

	kp, err := Generate()
	if err != nil {
		return nil, err
	}
	if err := kr.put(name, kp); err != nil {
		kp.Zeroize()
		return nil, err
	}
	kr.logger.Info("generated key", "name", name, "pubkey", kp.Pubkey().String())
	return kp, nil
}

// ImportKey stores an existing keypair under the given name.
// Returns ErrKeyExists if the name is taken.
func (kr *Keyring) ImportKey(name string, kp *Keypair) (*Keypair, error) {
	if err := ValidateKeyName(name); err != nil {
		return nil, err
	}
	if kp == nil {
		return nil, fmt.Errorf("%w: keypair is nil", ErrKeyFormat)
	}
	if err := kr.put(name, kp); err != nil {
		return nil, err
	}
	kr.logger.Info("imported key", "name", name, "pubkey", kp.Pubkey().String())
	return kp, nil
}

// GetKey retrieves a keypair by name, loading it from the store on first
// access and caching it thereafter.
// Returns ErrKeyNotFound if no key has that name.
func (kr *Keyring) GetKey(name string) (*Keypair, error) {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	if kr.closed {
		return nil, ErrKeyStoreClosed
	}
	if kp, ok := kr.cache[name]; ok {
		return kp, nil
	}

	entry, err := kr.store.Get(name)
	if err != nil {
		return nil, err
	}
	kp, err := FromBytes(entry.KeypairData)
	entry.Wipe()
	if err != nil {
		return nil, err
	}
	kr.cache[name] = kp
	return kp, nil
}

// ExportKey returns the base58-encoded keypair for external backup.
func (kr *Keyring) ExportKey(name string) (string, error) {
	kp, err := kr.GetKey(name)
	if err != nil {
		return "", err
	}
	kr.logger.Info("exported key", "name", name)
	return kp.ToBase58(), nil
}

// ListKeys returns all key names in the store.
func (kr *Keyring) ListKeys() ([]string, error) {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	if kr.closed {
		return nil, ErrKeyStoreClosed
	}
	return kr.store.List()
}

// DeleteKey removes a key from the store and zeroizes any cached copy.
func (kr *Keyring) DeleteKey(name string) error {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	if kr.closed {
		return ErrKeyStoreClosed
	}
	if kp, ok := kr.cache[name]; ok {
		kp.Zeroize()
		delete(kr.cache, name)
	}
	if err := kr.store.Delete(name); err != nil {
		return err
	}
	kr.logger.Info("deleted key", "name", name)
	return nil
}

// Close zeroizes all cached keypairs and closes the underlying store.
// After Close, all methods return ErrKeyStoreClosed.
//
// Shutdown order:
//  1. Zeroize cached keypairs (private keys in memory)
//  2. Close the underlying store
func (kr *Keyring) Close() error {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	if kr.closed {
		return nil
	}
	kr.closed = true
	for _, kp := range kr.cache {
		kp.Zeroize()
	}
	kr.cache = nil
	return kr.store.Close()
}

// put stores a keypair entry, guarding cache and store consistency.
func (kr *Keyring) put(name string, kp *Keypair) error {
	kr.mu.Lock()
	defer kr.mu.Unlock()

	if kr.closed {
		return ErrKeyStoreClosed
	}

	pk := kp.Pubkey()
	entry := &KeyEntry{
		Name:        name,
		Pubkey:      pk.Bytes(),
		KeypairData: kp.keypairBytes(),
	}
	err := kr.store.Put(entry, false)
	entry.Wipe()
	if err != nil {
		return err
	}
	kr.cache[name] = kp
	return nil
}
