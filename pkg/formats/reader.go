package formats

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader is a bounds-checked little-endian cursor over an immutable byte slice.
// A failed read never advances the cursor.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader positioned at offset 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Pos returns the current offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Seek moves the cursor to an absolute offset. Seeking to Len() is allowed.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.data) {
		return fmt.Errorf("%w: seek to %d (len %d)", ErrOutOfBounds, off, len(r.data))
	}
	r.pos = off
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if err := r.check(r.pos, n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.check(r.pos, n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// Uint16 reads a little-endian uint16 and advances.
func (r *Reader) Uint16() (uint16, error) {
	v, err := r.Uint16At(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += 2
	return v, nil
}

// Uint32 reads a little-endian uint32 and advances.
func (r *Reader) Uint32() (uint32, error) {
	v, err := r.Uint32At(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += 4
	return v, nil
}

// Float32 reads a little-endian IEEE 754 float32 and advances.
func (r *Reader) Float32() (float32, error) {
	v, err := r.Float32At(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += 4
	return v, nil
}

// PeekUint32 reads the uint32 at the cursor without advancing.
func (r *Reader) PeekUint32() (uint32, error) {
	return r.Uint32At(r.pos)
}

// Uint16At reads a uint16 at an absolute offset.
func (r *Reader) Uint16At(off int) (uint16, error) {
	if err := r.check(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.data[off:]), nil
}

// Uint32At reads a uint32 at an absolute offset.
func (r *Reader) Uint32At(off int) (uint32, error) {
	if err := r.check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.data[off:]), nil
}

// Float32At reads a float32 at an absolute offset.
func (r *Reader) Float32At(off int) (float32, error) {
	v, err := r.Uint32At(off)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *Reader) check(off, width int) error {
	if off < 0 || width < 0 || off > len(r.data)-width {
		return fmt.Errorf("%w: %d bytes at offset %d (len %d)", ErrOutOfBounds, width, off, len(r.data))
	}
	return nil
}
