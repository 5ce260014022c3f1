package arena

import "fmt"

// Address identifies a block inside a Pool or Arena: the arena id in the
// high 16 bits and the byte offset inside that arena in the low 48 bits.
//
// Address values are opaque outside this package. Higher layers store them
// in entry headers and pass them back; they never do arithmetic on them.
type Address uint64

// Nil is the sentinel address: "no entry" or "end of list".
// Arena id 0 is never assigned, so no live block encodes to Nil.
const Nil Address = 0

const (
	offsetBits = 48
	offsetMask = 1<<offsetBits - 1

	// MaxArenaSize is the largest arena an Address offset can span.
	MaxArenaSize = 1 << offsetBits
	// MaxArenas is the number of distinct arena ids (id 0 is reserved).
	MaxArenas = 1<<16 - 1
)

func makeAddress(id uint16, off uint64) Address {
	return Address(uint64(id)<<offsetBits | off&offsetMask)
}

// ID returns the arena id part of the address.
func (a Address) ID() uint16 { return uint16(a >> offsetBits) }

// Offset returns the byte offset of the block inside its arena.
func (a Address) Offset() uint64 { return uint64(a) & offsetMask }

// IsNil reports whether a is the sentinel.
func (a Address) IsNil() bool { return a == Nil }

func (a Address) String() string {
	if a == Nil {
		return "nil"
	}
	return fmt.Sprintf("%d:%#x", a.ID(), a.Offset())
}
