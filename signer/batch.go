package signer

import (
	"runtime"
	"sync"

	"github.com/bulknetwork/bulk-keychain-go/codec"
	"github.com/bulknetwork/bulk-keychain-go/types"
)

// parallelThreshold is the batch size above which the Ed25519 sign step
// fans out across workers. Below it, goroutine overhead eats the win.
const parallelThreshold = 10

// SignAll signs each action independently: its own nonce, its own
// signature. Unlike SignGroup there is no atomicity; the venue may accept
// some and reject others.
//
// Output order matches input order and nonces are strictly increasing along
// it. Validation and encoding run serially and fail fast: the first invalid
// element aborts the whole batch with a *BatchElementError carrying its
// index, before any nonce is drawn.
func (s *Signer) SignAll(actions []types.Action) ([]*types.SignedTransaction, error) {
	if len(actions) == 0 {
		return nil, nil
	}

	payloads, err := encodeAll(actions)
	if err != nil {
		return nil, err
	}

	nonces, err := s.clock.NextN(len(actions))
	if err != nil {
		return nil, err
	}
	return s.sealAll(actions, payloads, nonces), nil
}

// SignAllFrom is SignAll with caller-managed consecutive nonces
// baseNonce, baseNonce+1, ... instead of the clock. The caller owns
// uniqueness against everything else it has signed.
func (s *Signer) SignAllFrom(actions []types.Action, baseNonce uint64) ([]*types.SignedTransaction, error) {
	if len(actions) == 0 {
		return nil, nil
	}

	payloads, err := encodeAll(actions)
	if err != nil {
		return nil, err
	}

	nonces := make([]uint64, len(actions))
	for i := range nonces {
		nonces[i] = baseNonce + uint64(i)
	}
	return s.sealAll(actions, payloads, nonces), nil
}

// encodeAll validates and encodes every action, fail-fast with the
// offending index.
func encodeAll(actions []types.Action) ([][]byte, error) {
	payloads := make([][]byte, len(actions))
	w := codec.NewWriter(128 * len(actions))
	for i, a := range actions {
		start := w.Len()
		if err := types.EncodeActionTo(w, a); err != nil {
			return nil, &BatchElementError{Index: i, Err: err}
		}
		payloads[i] = w.Bytes()[start:w.Len()]
	}
	return payloads, nil
}

// sealAll signs payload[i] under nonces[i] for every i, in parallel for
// large batches. Results are placed by index, so output order is input
// order regardless of worker scheduling.
func (s *Signer) sealAll(actions []types.Action, payloads [][]byte, nonces []uint64) []*types.SignedTransaction {
	txs := make([]*types.SignedTransaction, len(actions))

	if len(actions) <= parallelThreshold {
		for i := range actions {
			txs[i] = s.seal(actions[i], payloads[i], nonces[i])
		}
		return txs
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(actions) {
		workers = len(actions)
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				txs[i] = s.seal(actions[i], payloads[i], nonces[i])
			}
		}()
	}
	for i := range actions {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return txs
}

// VerifyAll checks every transaction's signature, returning a
// *BatchElementError for the first failure.
func VerifyAll(txs []*types.SignedTransaction) error {
	for i, tx := range txs {
		if err := tx.Verify(); err != nil {
			return &BatchElementError{Index: i, Err: err}
		}
	}
	return nil
}
