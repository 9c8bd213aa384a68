package wasmmem

import "encoding/binary"

// Buffer is a Memory backed by a byte slice. It stands in for guest memory in
// tests and tools that run without a guest.
type Buffer []byte

func (b Buffer) inRange(offset, count uint32) bool {
	return uint64(offset)+uint64(count) <= uint64(len(b))
}

func (b Buffer) Read(offset, byteCount uint32) ([]byte, bool) {
	if !b.inRange(offset, byteCount) {
		return nil, false
	}
	return b[offset : offset+byteCount : offset+byteCount], true
}

func (b Buffer) Write(offset uint32, v []byte) bool {
	if !b.inRange(offset, uint32(len(v))) {
		return false
	}
	copy(b[offset:], v)
	return true
}

func (b Buffer) ReadUint32Le(offset uint32) (uint32, bool) {
	if !b.inRange(offset, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[offset:]), true
}

func (b Buffer) WriteUint32Le(offset, v uint32) bool {
	if !b.inRange(offset, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(b[offset:], v)
	return true
}
