package entry

import "fmt"

// Next returns the hash-chain successor of a, or Nil at the end of the
// chain. Next(Nil) is Nil.
func (e *Entries) Next(a Address) Address {
	if a == Nil {
		return Nil
	}
	return Address(e.mem.Word(a, OffNext))
}

// SetNext links a to next in its hash chain. It returns ErrSelfLoop when
// next == a, and is a no-op when a is Nil. The caller holds the bucket lock.
func (e *Entries) SetNext(a, next Address) error {
	if a == next {
		return fmt.Errorf("set next of %v: %w", a, ErrSelfLoop)
	}
	if a != Nil {
		e.mem.PutWord(a, OffNext, uint64(next))
	}
	return nil
}

// The four LRU accessors below are plain loads and stores. The recency list
// is cache-wide, so every mutation must happen under the eviction lock.

// LRUNext returns the successor of a in the LRU list.
func (e *Entries) LRUNext(a Address) Address { return Address(e.mem.Word(a, OffLRUNext)) }

// SetLRUNext sets the successor of a in the LRU list.
func (e *Entries) SetLRUNext(a, next Address) { e.mem.PutWord(a, OffLRUNext, uint64(next)) }

// LRUPrev returns the predecessor of a in the LRU list.
func (e *Entries) LRUPrev(a Address) Address { return Address(e.mem.Word(a, OffLRUPrev)) }

// SetLRUPrev sets the predecessor of a in the LRU list.
func (e *Entries) SetLRUPrev(a, prev Address) { e.mem.PutWord(a, OffLRUPrev, uint64(prev)) }
