package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestToFixed(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want uint64
	}{
		{"zero", 0, 0},
		{"one", 1.0, 100_000_000},
		{"price", 100000.0, 10_000_000_000_000},
		{"size", 0.1, 10_000_000},
		{"smallest", 0.00000001, 1},
		{"rounds half up", 0.000000015, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToFixed(tt.in)
			if err != nil {
				t.Fatalf("ToFixed(%g) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ToFixed(%g) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestToFixedRange(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.1, -1, maxFixed * 2} {
		if _, err := ToFixed(v); !errors.Is(err, ErrRange) {
			t.Errorf("ToFixed(%g): expected ErrRange, got %v", v, err)
		}
	}
}

func TestFixedRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.00000001, 0.1, 1, 3.5, 99999.99999999, 100000} {
		u, err := ToFixed(v)
		if err != nil {
			t.Fatalf("ToFixed(%g) failed: %v", v, err)
		}
		if got := FromFixed(u); got != v {
			t.Errorf("round-trip %g -> %d -> %g", v, u, got)
		}
	}
}

func TestWriterDeterminism(t *testing.T) {
	build := func() []byte {
		w := NewWriter(64)
		w.WriteU8(0x01)
		w.WriteString("BTC-USD")
		w.WriteBool(true)
		w.WriteU64(10_000_000_000_000)
		w.WriteU32(3)
		return append([]byte(nil), w.Bytes()...)
	}

	first := build()
	for i := 0; i < 10; i++ {
		if !bytes.Equal(first, build()) {
			t.Fatal("identical write sequences produced different bytes")
		}
	}
}

func TestWriterEncoding(t *testing.T) {
	w := NewWriter(0)
	w.WriteString("ab")
	want := []byte{2, 0, 0, 0, 'a', 'b'}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("WriteString = %x, want %x", w.Bytes(), want)
	}

	w.Reset()
	w.WriteU64(1)
	want = []byte{1, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("WriteU64 little-endian = %x, want %x", w.Bytes(), want)
	}

	w.Reset()
	w.WriteBool(false)
	w.WriteBool(true)
	if !bytes.Equal(w.Bytes(), []byte{0, 1}) {
		t.Errorf("WriteBool = %x", w.Bytes())
	}
}

func TestWriterReset(t *testing.T) {
	w := NewWriter(8)
	w.WriteU64(42)
	if w.Len() != 8 {
		t.Fatalf("Len = %d, want 8", w.Len())
	}
	w.Reset()
	if w.Len() != 0 {
		t.Fatalf("Len after Reset = %d, want 0", w.Len())
	}
}
