// Package wasmmem marshals values in and out of a guest's linear memory.
package wasmmem

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/mokiat/gog/opt"
)

// ErrOutOfRange is returned when an access falls outside linear memory.
var ErrOutOfRange = errors.New("memory access out of range")

// Memory is the subset of wazero's api.Memory used by the host.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	ReadUint32Le(offset uint32) (uint32, bool)
	WriteUint32Le(offset, v uint32) bool
}

// ReadBytes returns a view of count bytes at ptr. The view aliases guest
// memory and is only valid until the guest runs again.
func ReadBytes(mem Memory, ptr, count uint32) ([]byte, error) {
	b, ok := mem.Read(ptr, count)
	if !ok {
		return nil, fmt.Errorf("reading %d bytes at %#x: %w", count, ptr, ErrOutOfRange)
	}
	return b, nil
}

// ReadString decodes the UTF-8 string at (ptr, length). Invalid sequences are
// replaced with U+FFFD, matching the browser's TextDecoder.
func ReadString(mem Memory, ptr, length uint32) (string, error) {
	b, err := ReadBytes(mem, ptr, length)
	if err != nil {
		return "", err
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	return string([]rune(string(b))), nil
}

func ReadUint32(mem Memory, ptr uint32) (uint32, error) {
	v, ok := mem.ReadUint32Le(ptr)
	if !ok {
		return 0, fmt.Errorf("reading u32 at %#x: %w", ptr, ErrOutOfRange)
	}
	return v, nil
}

// ReadFloat32s reads count little-endian float32 values starting at ptr.
func ReadFloat32s(mem Memory, ptr, count uint32) ([]float32, error) {
	size := uint64(count) * 4
	if size > math.MaxUint32 {
		return nil, fmt.Errorf("reading %d floats at %#x: %w", count, ptr, ErrOutOfRange)
	}
	b, err := ReadBytes(mem, ptr, uint32(size))
	if err != nil {
		return nil, err
	}
	out := make([]float32, count)
	for i := range out {
		o := i * 4
		bits := uint32(b[o]) | uint32(b[o+1])<<8 | uint32(b[o+2])<<16 | uint32(b[o+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

// WriteBytes copies data into guest memory at ptr.
func WriteBytes(mem Memory, ptr uint32, data []byte) error {
	if !mem.Write(ptr, data) {
		return fmt.Errorf("writing %d bytes at %#x: %w", len(data), ptr, ErrOutOfRange)
	}
	return nil
}

// WriteCString writes text into the buffer (ptr, maxLen) as a NUL-terminated
// UTF-8 string. At most maxLen-1 bytes of text are written; longer text is
// truncated at a byte boundary. A zero maxLen writes no text. If lenOut is
// specified the number of text bytes written (excluding the terminator) is
// stored there as a u32.
func WriteCString(mem Memory, ptr, maxLen uint32, lenOut opt.T[uint32], text string) (uint32, error) {
	var n uint32
	if maxLen > 0 {
		n = uint32(min(uint64(len(text)), uint64(maxLen-1)))
		buf := make([]byte, n+1)
		copy(buf, text[:n])
		if err := WriteBytes(mem, ptr, buf); err != nil {
			return 0, err
		}
	}
	if lenOut.Specified {
		if !mem.WriteUint32Le(lenOut.Value, n) {
			return n, fmt.Errorf("writing length at %#x: %w", lenOut.Value, ErrOutOfRange)
		}
	}
	return n, nil
}

// OptionalPtr treats 0 as "no pointer", the guest's convention for optional
// out parameters.
func OptionalPtr(ptr uint32) opt.T[uint32] {
	if ptr == 0 {
		return opt.Unspecified[uint32]()
	}
	return opt.V(ptr)
}
