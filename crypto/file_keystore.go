package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2 parameters - these are critical security settings.
	// 100,000 iterations is the minimum acceptable today.
	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 32 // AES-256 requires a 32-byte key
	saltLen          = 16 // 128-bit salt

	// AES-GCM nonce length: 96 bits, the recommended size for GCM.
	aesGCMNonceLen = 12

	keyFileExtension = ".key"

	// Restrictive permissions: owner read/write only.
	keyFilePermissions = 0600
	keyDirPermissions  = 0700
)

// FileKeyStore implements KeyStore with encrypted file storage.
// Keypairs are encrypted with AES-256-GCM under a PBKDF2-derived key; each
// entry uses a unique salt and nonce. Thread-safe via RWMutex.
//
// Security notes:
//   - The password is kept in memory for the lifetime of the store
//   - Files are created with mode 0600 (owner read/write only)
type FileKeyStore struct {
	dir      string
	password []byte
	mu       sync.RWMutex
	closed   bool
}

// fileKeyData is the JSON structure stored on disk. All byte fields base64.
type fileKeyData struct {
	Name        string `json:"name"`
	Pubkey      string `json:"pubkey"`
	KeypairData string `json:"keypair_data"` // encrypted
	Salt        string `json:"salt"`
	Nonce       string `json:"nonce"`
}

// NewFileKeyStore creates a FileKeyStore rooted at dir. The password derives
// per-entry encryption keys via PBKDF2-SHA256.
func NewFileKeyStore(dir, password string) (*FileKeyStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: directory path is empty", ErrKeyStoreIO)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password cannot be empty", ErrKeyStoreIO)
	}
	if err := os.MkdirAll(dir, keyDirPermissions); err != nil {
		return nil, fmt.Errorf("%w: failed to create directory: %v", ErrKeyStoreIO, err)
	}
	return &FileKeyStore{
		dir:      dir,
		password: []byte(password),
	}, nil
}

// Get loads and decrypts a key entry.
// The returned entry holds plaintext keypair bytes; the caller should Wipe
// it when done.
func (f *FileKeyStore) Get(name string) (*KeyEntry, error) {
	if err := ValidateKeyName(name); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, ErrKeyStoreClosed
	}

	raw, err := os.ReadFile(f.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}

	var data fileKeyData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: corrupt key file: %v", ErrKeyStoreIO, err)
	}

	pubkey, err := base64.StdEncoding.DecodeString(data.Pubkey)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt key file: %v", ErrKeyStoreIO, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(data.KeypairData)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt key file: %v", ErrKeyStoreIO, err)
	}
	salt, err := base64.StdEncoding.DecodeString(data.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt key file: %v", ErrKeyStoreIO, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(data.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt key file: %v", ErrKeyStoreIO, err)
	}

	plaintext, err := f.decrypt(ciphertext, salt, nonce)
	if err != nil {
		return nil, err
	}

	return &KeyEntry{
		Name:        data.Name,
		Pubkey:      pubkey,
		KeypairData: plaintext,
	}, nil
}

// Put encrypts and stores a key entry. The entry's KeypairData must be
// plaintext; it is encrypted with a fresh salt and nonce before writing.
func (f *FileKeyStore) Put(entry *KeyEntry, overwrite bool) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	if entry.Encrypted {
		return fmt.Errorf("%w: FileKeyStore encrypts entries itself, pass plaintext", ErrKeyFormat)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrKeyStoreClosed
	}

	path := f.path(entry.Name)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return ErrKeyExists
		}
	}

	ciphertext, salt, nonce, err := f.encrypt(entry.KeypairData)
	if err != nil {
		return err
	}

	data := fileKeyData{
		Name:        entry.Name,
		Pubkey:      base64.StdEncoding.EncodeToString(entry.Pubkey),
		KeypairData: base64.StdEncoding.EncodeToString(ciphertext),
		Salt:        base64.StdEncoding.EncodeToString(salt),
		Nonce:       base64.StdEncoding.EncodeToString(nonce),
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	if err := os.WriteFile(path, raw, keyFilePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	return nil
}

// Delete removes a key file.
func (f *FileKeyStore) Delete(name string) error {
	if err := ValidateKeyName(name); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrKeyStoreClosed
	}
	err := os.Remove(f.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	return nil
}

// List returns the names of all stored keys.
func (f *FileKeyStore) List() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, ErrKeyStoreClosed
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), keyFileExtension) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), keyFileExtension))
	}
	return names, nil
}

// Has reports whether a key exists.
func (f *FileKeyStore) Has(name string) (bool, error) {
	if err := ValidateKeyName(name); err != nil {
		return false, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return false, ErrKeyStoreClosed
	}
	_, err := os.Stat(f.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	return true, nil
}

// Close wipes the in-memory password and marks the store closed.
// Key files remain on disk, encrypted.
func (f *FileKeyStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	Zeroize(f.password)
	return nil
}

func (f *FileKeyStore) path(name string) string {
	return filepath.Join(f.dir, name+keyFileExtension)
}

// encrypt seals plaintext with AES-256-GCM under a key derived from the
// store password and a fresh random salt.
func (f *FileKeyStore) encrypt(plaintext []byte) (ciphertext, salt, nonce []byte, err error) {
	salt = make([]byte, saltLen)
	if _, err = io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	nonce = make([]byte, aesGCMNonceLen)
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrEntropy, err)
	}

	gcm, err := f.aead(salt)
	if err != nil {
		return nil, nil, nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, nil), salt, nonce, nil
}

// decrypt opens an AES-256-GCM sealed entry.
// A wrong password surfaces as ErrInvalidPassword (GCM authentication fails).
func (f *FileKeyStore) decrypt(ciphertext, salt, nonce []byte) ([]byte, error) {
	if len(salt) != saltLen || len(nonce) != aesGCMNonceLen {
		return nil, fmt.Errorf("%w: corrupt encryption metadata", ErrKeyStoreIO)
	}
	gcm, err := f.aead(salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}

func (f *FileKeyStore) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(f.password, salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	defer Zeroize(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyStoreIO, err)
	}
	return gcm, nil
}

var _ KeyStore = (*FileKeyStore)(nil)
