package signer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyGroup is returned when a group signing call receives no
	// actions. An empty group has no atomicity to offer and is always a
	// caller bug.
	ErrEmptyGroup = errors.New("cannot sign an empty group")

	// ErrIneligibleVariant is returned when a group member is not an
	// order. Only orders compose into atomic groups; cancels and settings
	// changes must be signed individually.
	ErrIneligibleVariant = errors.New("action variant is not eligible for grouping")

	// ErrNilKeypair is returned by constructors given a nil keypair.
	ErrNilKeypair = errors.New("keypair is nil")
)

// BatchElementError reports which element of a batch failed and why. The
// wrapped cause is reachable through errors.Is and errors.As, so callers can
// still distinguish a range error at index 50 from a clock failure.
type BatchElementError struct {
	Index int
	Err   error
}

func (e *BatchElementError) Error() string {
	return fmt.Sprintf("batch element %d: %v", e.Index, e.Err)
}

func (e *BatchElementError) Unwrap() error {
	return e.Err
}
