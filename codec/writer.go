package codec

import "encoding/binary"

// Writer builds a canonical byte payload. All multi-byte integers are
// little-endian; variable-length fields carry a u32 length prefix.
//
// INVARIANT: Two identical sequences of Write calls produce identical bytes.
// There is no map iteration, no padding, and no platform-dependent encoding
// anywhere in the writer.
//
// A Writer is not safe for concurrent use. The zero value is ready to use;
// Reset allows reuse across payloads to amortize allocations in batch paths.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Reset truncates the writer for reuse, keeping the allocated buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated payload. The returned slice aliases the
// writer's buffer; callers that keep it across a Reset must copy first.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteBool appends 0x01 for true, 0x00 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteU32 appends a little-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteU64 appends a little-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteString appends a u32 length prefix followed by the raw UTF-8 bytes.
// The length counts bytes, not runes.
func (w *Writer) WriteString(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBytes appends a u32 length prefix followed by the raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteRaw appends bytes with no length prefix. Used for fixed-width fields
// (32-byte hashes and public keys) whose length is part of the format.
func (w *Writer) WriteRaw(b []byte) {
	w.buf = append(w.buf, b...)
}
