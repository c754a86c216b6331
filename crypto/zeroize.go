package crypto

import (
	"crypto/subtle"
	"runtime"
)

// Zeroize securely overwrites a byte slice with zeros.
// Used to clear sensitive data (private keys) from memory.
//
// Implementation uses subtle.XORBytes(b, b, b) which XORs each byte with
// itself, producing zeros. This cannot be optimized away by the compiler:
// crypto/subtle functions are designed to resist optimization, and
// runtime.KeepAlive ensures the slice isn't considered dead after zeroing.
//
// This is more robust than a naive loop like `for i := range b { b[i] = 0 }`
// which compilers may detect as a dead store and eliminate entirely.
func Zeroize(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.XORBytes(b, b, b)
	runtime.KeepAlive(b)
}
