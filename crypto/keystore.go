package crypto

import "fmt"

// MaxKeyNameLength is the maximum allowed length for a key name.
// Prevents resource exhaustion and keeps names within OS keychain limits.
const MaxKeyNameLength = 256

// KeyStore provides persistent storage for named venue keypairs.
// Implementations must be thread-safe.
type KeyStore interface {
	// Get retrieves a key entry by name.
	// Returns ErrKeyNotFound if the key doesn't exist.
	Get(name string) (*KeyEntry, error)

	// Put stores a key entry.
	// Returns ErrKeyExists if the name is taken and overwrite is false.
	Put(entry *KeyEntry, overwrite bool) error

	// Delete removes a key entry, wiping its material first.
	// Returns ErrKeyNotFound if the key doesn't exist.
	Delete(name string) error

	// List returns all key names, in no particular order.
	List() ([]string, error)

	// Has reports whether a key exists. Cheaper than Get when the entry
	// data isn't needed.
	Has(name string) (bool, error)

	// Close releases resources and wipes any key material the store holds
	// in memory. After Close, all operations return ErrKeyStoreClosed.
	Close() error
}

// KeyEntry is a stored keypair with metadata.
type KeyEntry struct {
	// Name is the unique identifier for this key.
	Name string `json:"name"`

	// Pubkey is the 32-byte public key, always plaintext.
	Pubkey []byte `json:"pubkey"`

	// KeypairData is the 64-byte keypair: raw for plaintext stores,
	// AES-GCM ciphertext when Encrypted is true.
	KeypairData []byte `json:"keypair_data"`

	// Encrypted indicates whether KeypairData is ciphertext.
	Encrypted bool `json:"encrypted"`

	// Salt is the PBKDF2 salt for encrypted entries.
	Salt []byte `json:"salt,omitempty"`

	// Nonce is the AES-GCM nonce for encrypted entries.
	Nonce []byte `json:"nonce,omitempty"`
}

// Clone creates a deep copy of the entry.
// Stores hand out clones so callers cannot mutate stored state.
func (e *KeyEntry) Clone() *KeyEntry {
	if e == nil {
		return nil
	}
	clone := &KeyEntry{
		Name:      e.Name,
		Encrypted: e.Encrypted,
	}
	clone.Pubkey = append([]byte(nil), e.Pubkey...)
	clone.KeypairData = append([]byte(nil), e.KeypairData...)
	clone.Salt = append([]byte(nil), e.Salt...)
	clone.Nonce = append([]byte(nil), e.Nonce...)
	return clone
}

// Wipe zeroizes the entry's keypair bytes.
// Call when done with a loaded entry to minimize memory exposure.
func (e *KeyEntry) Wipe() {
	if e == nil {
		return
	}
	Zeroize(e.KeypairData)
}

// ValidateKeyName validates a key name. Rejects empty names, overly long
// names, and names with path separators or control characters - this
// prevents path traversal in file-backed stores.
func ValidateKeyName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidKeyName)
	}
	if len(name) > MaxKeyNameLength {
		return fmt.Errorf("%w: name too long (max %d characters)", ErrInvalidKeyName, MaxKeyNameLength)
	}
	for _, r := range name {
		if r < 32 || r == '/' || r == '\\' || r == 0x7f {
			return fmt.Errorf("%w: name contains invalid characters", ErrInvalidKeyName)
		}
	}
	return nil
}

// validateEntry checks the structural invariants shared by all stores.
func validateEntry(entry *KeyEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidKeyName)
	}
	if err := ValidateKeyName(entry.Name); err != nil {
		return err
	}
	if len(entry.Pubkey) != PubkeySize {
		return fmt.Errorf("%w: entry %q has %d-byte public key, expected %d",
			ErrKeyFormat, entry.Name, len(entry.Pubkey), PubkeySize)
	}
	if len(entry.KeypairData) == 0 {
		return fmt.Errorf("%w: entry %q has no keypair data", ErrKeyFormat, entry.Name)
	}
	if entry.Encrypted && (len(entry.Salt) == 0 || len(entry.Nonce) == 0) {
		return fmt.Errorf("%w: encrypted entry %q missing salt or nonce", ErrKeyFormat, entry.Name)
	}
	return nil
}
