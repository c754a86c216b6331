package signer

import (
	"testing"

	"github.com/bulknetwork/bulk-keychain-go/crypto"
	"github.com/bulknetwork/bulk-keychain-go/types"
)

func benchSigner(b *testing.B) *Signer {
	b.Helper()
	kp, err := crypto.Generate()
	if err != nil {
		b.Fatal(err)
	}
	s, err := New(kp)
	if err != nil {
		b.Fatal(err)
	}
	return s
}

func benchOrder(b *testing.B) *types.Order {
	b.Helper()
	o, err := types.NewLimitOrder("BTC-PERP", true, 50_000.12345678, 0.5, types.TifGTC)
	if err != nil {
		b.Fatal(err)
	}
	return o
}

func BenchmarkSignOrder(b *testing.B) {
	s := benchSigner(b)
	o := benchOrder(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.SignWithNonce(o, uint64(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSignAll100(b *testing.B) {
	s := benchSigner(b)
	actions := make([]types.Action, 100)
	for i := range actions {
		actions[i] = benchOrder(b)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.SignAllFrom(actions, uint64(i)*100); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	s := benchSigner(b)
	tx, err := s.SignWithNonce(benchOrder(b), 1)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := tx.Verify(); err != nil {
			b.Fatal(err)
		}
	}
}
