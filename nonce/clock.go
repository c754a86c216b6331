// Package nonce issues the per-signature nonces bound into every digest.
// Nonces are unique per Clock across its lifetime, non-decreasing in
// issuance order, and safe under concurrent callers.
package nonce

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Strategy selects how a Clock derives nonces.
type Strategy string

const (
	// StrategyTimestamp issues raw wall-clock milliseconds. Simple and
	// human-readable, but limited to one nonce per millisecond.
	StrategyTimestamp Strategy = "timestamp"

	// StrategyCounter issues a pure counter seeded from the wall clock at
	// construction. Never fails, but successive nonces carry no timing
	// information.
	StrategyCounter Strategy = "counter"

	// StrategyHighFrequency combines wall-clock milliseconds with a
	// per-millisecond tie-break counter, supporting up to counterPerMilli
	// nonces each millisecond. The default.
	StrategyHighFrequency Strategy = "highFrequency"
)

// counterPerMilli is the number of nonces the high-frequency strategy can
// issue within one wall-clock millisecond (one million signatures/second).
const counterPerMilli = 1000

var (
	// ErrClockExhausted is returned when the per-millisecond counter would
	// overflow. The caller should back off briefly and retry.
	ErrClockExhausted = errors.New("nonce counter exhausted for this millisecond")

	// ErrClockRegression is returned when the wall clock reads earlier
	// than the last issued millisecond (clock skew or rollback). Issuing
	// anyway could reuse a nonce, so the call fails instead. Retryable
	// after a short delay.
	ErrClockRegression = errors.New("wall clock moved backwards")

	// ErrUnknownStrategy is returned for an unrecognized strategy name.
	ErrUnknownStrategy = errors.New("unknown nonce strategy")
)

// Clock issues nonces for one signer instance.
//
// INVARIANT: no two calls to Next ever return the same value, and values
// never decrease, regardless of concurrency. A nonce is consumed the moment
// it is issued - if the signing that follows fails, the nonce is abandoned,
// never reissued (a gap is acceptable; a duplicate is not).
//
// All state is guarded by a mutex; Clock is safe for concurrent use.
type Clock struct {
	strategy Strategy
	now      func() int64 // wall clock in milliseconds, injectable for tests

	mu         sync.Mutex
	lastMillis int64
	counter    uint64
}

// NewClock creates a Clock with the given strategy.
func NewClock(strategy Strategy) (*Clock, error) {
	switch strategy {
	case StrategyTimestamp, StrategyCounter, StrategyHighFrequency:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	c := &Clock{
		strategy: strategy,
		now:      nowMillis,
	}
	if strategy == StrategyCounter {
		// Seed from the wall clock so restarts don't collide with nonces
		// issued by a previous process lifetime.
		c.counter = uint64(nowMillis()) * counterPerMilli
	}
	return c, nil
}

// NewHighFrequencyClock creates a Clock with the default strategy.
func NewHighFrequencyClock() *Clock {
	c, _ := NewClock(StrategyHighFrequency)
	return c
}

// Strategy returns the clock's strategy.
func (c *Clock) Strategy() Strategy {
	return c.strategy
}

// Next issues the next nonce.
// Returns ErrClockExhausted or ErrClockRegression per the strategy's rules;
// both are retryable by the caller after a brief pause.
func (c *Clock) Next() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next()
}

// NextN issues n nonces under a single lock acquisition, for batch signing.
// The returned slice is strictly increasing. On error, no nonces are
// returned and none of the attempted values will ever be reissued.
func (c *Clock) NextN(n int) ([]uint64, error) {
	if n <= 0 {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]uint64, n)
	for i := range out {
		v, err := c.next()
		if err != nil {
			return nil, fmt.Errorf("nonce %d of %d: %w", i, n, err)
		}
		out[i] = v
	}
	return out, nil
}

// next issues one nonce. Caller holds c.mu.
func (c *Clock) next() (uint64, error) {
	if c.strategy == StrategyCounter {
		c.counter++
		return c.counter, nil
	}

	millis := c.now()
	switch {
	case millis < c.lastMillis:
		return 0, fmt.Errorf("%w: clock reads %dms, last issued %dms",
			ErrClockRegression, millis, c.lastMillis)

	case millis == c.lastMillis:
		if c.strategy == StrategyTimestamp {
			return 0, fmt.Errorf("%w: timestamp strategy issues at most one nonce per millisecond",
				ErrClockExhausted)
		}
		if c.counter+1 >= counterPerMilli {
			return 0, fmt.Errorf("%w: %d nonces issued in millisecond %d",
				ErrClockExhausted, counterPerMilli, millis)
		}
		c.counter++

	default: // millis > c.lastMillis
		c.lastMillis = millis
		c.counter = 0
	}

	if c.strategy == StrategyTimestamp {
		return uint64(millis), nil
	}
	return uint64(c.lastMillis)*counterPerMilli + c.counter, nil
}

// nowMillis reads the wall clock in milliseconds.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
