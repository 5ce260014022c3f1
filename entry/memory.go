package entry

import "github.com/IvanBrykalov/offheap/arena"

// Address identifies an entry block. It is the allocator's address type.
type Address = arena.Address

// Nil is the sentinel address: no entry, end of chain, end of list.
const Nil = arena.Nil

// Memory is the raw accessor the entry layer reads and writes through.
// *arena.Arena and *arena.Pool implement it.
//
// Word accessors use native byte order. The atomic methods operate on an
// 8-byte-aligned word in place and must be linearizable.
type Memory interface {
	Byte(a Address, off uint64) byte
	PutByte(a Address, off uint64, b byte)
	Word(a Address, off uint64) uint64
	PutWord(a Address, off uint64, v uint64)
	CopyIn(src []byte, a Address, off uint64)

	AtomicLoad(a Address, off uint64) uint64
	AtomicIncrement(a Address, off uint64)
	// AtomicDecrementReportZero subtracts one and reports whether the
	// result is exactly zero.
	AtomicDecrementReportZero(a Address, off uint64) bool
}

// Viewer is implemented by memories that can expose a range in place.
// Window must return a slice aliasing [a+off, a+off+n) with cap == n.
type Viewer interface {
	Window(a Address, off, n uint64) []byte
}

// KeySource is a serialized key supplied by the caller inserting a record.
type KeySource interface {
	Len() int
	Bytes() []byte
}

// Key adapts a byte slice to KeySource.
type Key []byte

func (k Key) Len() int      { return len(k) }
func (k Key) Bytes() []byte { return k }

var (
	_ Memory    = (*arena.Arena)(nil)
	_ Viewer    = (*arena.Arena)(nil)
	_ Memory    = (*arena.Pool)(nil)
	_ Viewer    = (*arena.Pool)(nil)
	_ KeySource = Key(nil)
)
