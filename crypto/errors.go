package crypto

import "errors"

// Key material errors.
var (
	// ErrEntropy is returned when the secure random source fails or is
	// exhausted during key or hash generation. This is the only retryable
	// cryptographic failure.
	ErrEntropy = errors.New("secure random source unavailable")

	// ErrKeyFormat is returned when imported key material is malformed:
	// wrong length, invalid base58 alphabet, or an embedded public key that
	// does not match the secret it travels with.
	ErrKeyFormat = errors.New("malformed key material")
)

// Key storage errors.
var (
	// ErrKeyNotFound is returned when a named key is not in the store.
	ErrKeyNotFound = errors.New("key not found in store")

	// ErrKeyExists is returned when storing a key under a name that is
	// already taken.
	ErrKeyExists = errors.New("key already exists in store")

	// ErrInvalidKeyName is returned when a key name fails validation.
	ErrInvalidKeyName = errors.New("invalid key name")

	// ErrKeyStoreClosed is returned when operations are attempted on a
	// closed store or keyring.
	ErrKeyStoreClosed = errors.New("key store is closed")

	// ErrInvalidPassword is returned when decryption fails due to a wrong
	// password.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrKeyStoreIO is returned when an I/O error occurs during store
	// operations.
	ErrKeyStoreIO = errors.New("key store I/O error")

	// ErrKeychainUnavailable is returned when the OS keychain cannot be
	// accessed. Common causes:
	//   - Linux: D-Bus not running, or no secret service daemon
	//   - Headless environments: no GUI session for authentication prompts
	ErrKeychainUnavailable = errors.New("keychain unavailable")
)
