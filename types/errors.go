package types

import "errors"

var (
	// ErrInvalidAction indicates an action failed structural validation.
	ErrInvalidAction = errors.New("invalid action")

	// ErrEncoding indicates an action could not be canonically encoded.
	// Range failures additionally match codec.ErrRange.
	ErrEncoding = errors.New("action encoding failed")

	// ErrInvalidSignature indicates a signed transaction failed
	// verification against its signer public key.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidTransaction indicates a malformed signed transaction.
	ErrInvalidTransaction = errors.New("invalid transaction")
)
