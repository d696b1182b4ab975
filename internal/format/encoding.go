package format

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Little-endian helpers. encoding/binary is already inlined well by the
// compiler, so there is no unsafe fast path here.

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// span validates that [off, off+n) lies within a buffer of size size and
// returns the end offset.
func span(size int, off, n uint32) (int, error) {
	end := uint64(off) + uint64(n)
	if end > uint64(size) || end > math.MaxInt32 {
		return 0, fmt.Errorf("span [%d,+%d) in %d bytes: %w", off, n, size, ErrBadLength)
	}
	return int(end), nil
}

// Align rounds n up to the next multiple of a (a must be a power of two).
func Align(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// UnitsFromBytes converts UTF-16LE bytes into code units.
func UnitsFromBytes(b []byte) ([]uint16, error) {
	if len(b)%2 != 0 {
		return nil, ErrOddLength
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return units, nil
}

// PutUnits writes code units into b as UTF-16LE and returns the bytes written.
func PutUnits(b []byte, units []uint16) int {
	for i, u := range units {
		binary.LittleEndian.PutUint16(b[i*2:], u)
	}
	return len(units) * 2
}
