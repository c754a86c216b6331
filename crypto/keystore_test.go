package crypto

import (
	"errors"
	"testing"

	dbm "github.com/cosmos/cosmos-db"
)

// entryForTest builds a valid plaintext entry from a fresh keypair.
func entryForTest(t *testing.T, name string) *KeyEntry {
	t.Helper()
	kp, err := Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	pk := kp.Pubkey()
	return &KeyEntry{
		Name:        name,
		Pubkey:      pk.Bytes(),
		KeypairData: kp.keypairBytes(),
	}
}

// runKeyStoreSuite exercises the KeyStore contract common to all backends.
func runKeyStoreSuite(t *testing.T, store KeyStore) {
	t.Helper()

	entry := entryForTest(t, "trader-1")

	// Missing key
	if _, err := store.Get("trader-1"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get missing: expected ErrKeyNotFound, got %v", err)
	}

	// Put + Get round-trip
	if err := store.Put(entry, false); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := store.Get("trader-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != entry.Name {
		t.Errorf("Get returned name %q, want %q", got.Name, entry.Name)
	}
	if kp, err := FromBytes(got.KeypairData); err != nil {
		t.Errorf("stored keypair data unusable: %v", err)
	} else if kp.Pubkey().String() != (&KeyEntry{Pubkey: entry.Pubkey}).pubkeyString() {
		t.Error("stored keypair does not match stored public key")
	}

	// Duplicate without overwrite
	if err := store.Put(entry, false); !errors.Is(err, ErrKeyExists) {
		t.Errorf("duplicate Put: expected ErrKeyExists, got %v", err)
	}
	// Overwrite allowed
	if err := store.Put(entry, true); err != nil {
		t.Errorf("overwrite Put failed: %v", err)
	}

	// Has + List
	if ok, err := store.Has("trader-1"); err != nil || !ok {
		t.Errorf("Has = %v, %v; want true, nil", ok, err)
	}
	names, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 1 || names[0] != "trader-1" {
		t.Errorf("List = %v, want [trader-1]", names)
	}

	// Delete
	if err := store.Delete("trader-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete("trader-1"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("second Delete: expected ErrKeyNotFound, got %v", err)
	}

	// Closed store rejects everything
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := store.Get("trader-1"); !errors.Is(err, ErrKeyStoreClosed) {
		t.Errorf("Get after Close: expected ErrKeyStoreClosed, got %v", err)
	}
}

// pubkeyString is a test helper for comparing stored public key bytes.
func (e *KeyEntry) pubkeyString() string {
	pk, _ := PubkeyFromBytes(e.Pubkey)
	return pk.String()
}

func TestMemoryKeyStore(t *testing.T) {
	runKeyStoreSuite(t, NewMemoryKeyStore())
}

func TestFileKeyStore(t *testing.T) {
	store, err := NewFileKeyStore(t.TempDir(), "correct horse battery staple")
	if err != nil {
		t.Fatalf("NewFileKeyStore failed: %v", err)
	}
	runKeyStoreSuite(t, store)
}

func TestDBKeyStore(t *testing.T) {
	store, err := NewDBKeyStore(dbm.NewMemDB())
	if err != nil {
		t.Fatalf("NewDBKeyStore failed: %v", err)
	}
	runKeyStoreSuite(t, store)
}

func TestKeychainStore(t *testing.T) {
	store, err := NewKeychainStore("bulk-keychain-test")
	if err != nil {
		// Headless CI has no secret service; nothing to test here.
		t.Skipf("keychain unavailable: %v", err)
	}
	defer func() {
		// Best-effort cleanup of the shared OS keychain.
		_ = store.Delete("trader-1")
	}()
	runKeyStoreSuite(t, store)
}

func TestFileKeyStoreWrongPassword(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileKeyStore(dir, "password-one")
	if err != nil {
		t.Fatalf("NewFileKeyStore failed: %v", err)
	}
	if err := store.Put(entryForTest(t, "trader-1"), false); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewFileKeyStore(dir, "password-two")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if _, err := reopened.Get("trader-1"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestFileKeyStorePersistence(t *testing.T) {
	dir := t.TempDir()
	entry := entryForTest(t, "trader-1")

	store, err := NewFileKeyStore(dir, "hunter2hunter2")
	if err != nil {
		t.Fatalf("NewFileKeyStore failed: %v", err)
	}
	if err := store.Put(entry, false); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewFileKeyStore(dir, "hunter2hunter2")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("trader-1")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if _, err := FromBytes(got.KeypairData); err != nil {
		t.Errorf("persisted keypair unusable: %v", err)
	}
}

func TestValidateKeyName(t *testing.T) {
	valid := []string{"trader-1", "main account", "key.backup"}
	for _, name := range valid {
		if err := ValidateKeyName(name); err != nil {
			t.Errorf("ValidateKeyName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "a/b", "a\\b", "a\x00b", "a\nb", string(make([]byte, MaxKeyNameLength+1))}
	for _, name := range invalid {
		if err := ValidateKeyName(name); !errors.Is(err, ErrInvalidKeyName) {
			t.Errorf("ValidateKeyName(%q): expected ErrInvalidKeyName, got %v", name, err)
		}
	}
}

func TestKeyEntryWipe(t *testing.T) {
	entry := entryForTest(t, "trader-1")
	entry.Wipe()
	for _, b := range entry.KeypairData {
		if b != 0 {
			t.Fatal("Wipe left keypair data in memory")
		}
	}
}
