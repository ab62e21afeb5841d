package vm

import (
	"encoding/binary"
	"fmt"
	"math"

	"fortio.org/safecast"
)

// memBase is the address of the first byte; zero stays the null pointer.
const memBase = 0x1000

// DefaultMemoryLimit bounds the bytes a program may use for statics and
// frames.
const DefaultMemoryLimit = 64 << 20

// memory is one flat little-endian address space. Statics live at the
// bottom, frames are bump-allocated above them and released on return.
type memory struct {
	data  []byte
	top   int
	limit int
}

func newMemory(limit int) *memory {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &memory{data: make([]byte, 0, 4096), limit: limit}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	if r := n % align; r != 0 {
		return n + align - r
	}
	return n
}

// alloc reserves size zeroed bytes; ok is false when the limit is reached.
func (m *memory) alloc(size, align int) (uint64, bool) {
	start := roundUp(m.top, max(align, 1))
	end := start + size
	if end > m.limit {
		return 0, false
	}
	if end > len(m.data) {
		m.data = append(m.data, make([]byte, end-len(m.data))...)
	}
	clear(m.data[m.top:end])
	m.top = end
	return uint64(start) + memBase, true
}

func (m *memory) mark() int        { return m.top }
func (m *memory) release(mark int) { m.top = mark }

// slice returns the live bytes [addr, addr+n).
func (m *memory) slice(addr uint64, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if addr < memBase {
		return nil, fmt.Errorf("invalid memory access at %#x", addr)
	}
	off, err := safecast.Conv[int](addr - memBase)
	if err != nil || off+n > m.top || off+n < off {
		return nil, fmt.Errorf("invalid memory access at %#x (%d bytes)", addr, n)
	}
	return m.data[off : off+n], nil
}

// cstring reads a NUL-terminated byte string.
func (m *memory) cstring(addr uint64) ([]byte, error) {
	if addr < memBase {
		return nil, fmt.Errorf("invalid memory access at %#x", addr)
	}
	off, err := safecast.Conv[int](addr - memBase)
	if err != nil || off >= m.top {
		return nil, fmt.Errorf("invalid memory access at %#x", addr)
	}
	for i := off; i < m.top; i++ {
		if m.data[i] == 0 {
			return m.data[off:i], nil
		}
	}
	return nil, fmt.Errorf("unterminated C string at %#x", addr)
}

func getUint(b []byte) uint64 {
	switch len(b) {
	case 0:
		return 0
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	}
	return binary.LittleEndian.Uint64(b)
}

func putUint(b []byte, v uint64) {
	switch len(b) {
	case 0:
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, v)
	}
}

// signExtend widens the low n bytes of v as a signed integer.
func signExtend(v uint64, n int) int64 {
	if n >= 8 || n == 0 {
		return int64(v)
	}
	shift := uint(64 - n*8)
	return int64(v<<shift) >> shift
}

// truncate keeps the low n bytes of v.
func truncate(v uint64, n int) uint64 {
	if n >= 8 {
		return v
	}
	return v & (1<<(uint(n)*8) - 1)
}

func getFloat(b []byte) float64 {
	if len(b) == 4 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func putFloat(b []byte, f float64) {
	if len(b) == 4 {
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
		return
	}
	binary.LittleEndian.PutUint64(b, math.Float64bits(f))
}
