package entry

import (
	"fmt"

	"github.com/IvanBrykalov/offheap/arena"
)

// Entries exposes the typed operations over entry blocks in one Memory.
// An Entries value holds no per-entry state and is safe for concurrent use;
// the concurrency contract of each operation is documented on the method.
type Entries struct {
	mem   Memory
	view  Viewer
	sizer Sizer
}

// New constructs an Entries accessor with the provided Options.
// Defaults:
//   - nil Sizer -> AllocLen
//
// New panics if Memory is nil, and panics with ErrNoViewSupport if Memory
// does not implement Viewer: without in-place windows the cache cannot hand
// out values, so there is nothing useful to fall back to.
func New(opt Options) *Entries {
	if opt.Memory == nil {
		panic("entry: Options.Memory is required")
	}
	v, ok := opt.Memory.(Viewer)
	if !ok {
		panic(ErrNoViewSupport)
	}
	if opt.Sizer == nil {
		opt.Sizer = AllocLen
	}
	return &Entries{mem: opt.Memory, view: v, sizer: opt.Sizer}
}

// Sizer returns the Sizer blocks must be allocated with.
func (e *Entries) Sizer() Sizer { return e.sizer }

// -------------------- lifecycle --------------------

// Init prepares a freshly allocated block at a: HASH, KEY_LENGTH and
// VALUE_LENGTH are written, NEXT and both LRU pointers are set to Nil, and
// REFCOUNT is set to 1 (the creator's reference). DATA is left untouched.
//
// The block must be exclusively owned by the caller and at least
// Sizer(keyLen, valueLen) bytes long.
func (e *Entries) Init(hash, keyLen, valueLen uint64, a Address) {
	e.mem.PutWord(a, OffHash, hash)
	e.mem.PutWord(a, OffNext, uint64(Nil))
	e.mem.PutWord(a, OffKeyLength, keyLen)
	e.mem.PutWord(a, OffValueLength, valueLen)
	e.mem.PutWord(a, OffRefCount, 1)
	e.mem.PutWord(a, OffLRUNext, uint64(Nil))
	e.mem.PutWord(a, OffLRUPrev, uint64(Nil))
}

// WriteKey copies the serialized key into the start of DATA.
// The key length must equal the KEY_LENGTH given to Init.
func (e *Entries) WriteKey(a Address, key KeySource) error {
	if want := e.KeyLen(a); uint64(key.Len()) != want {
		return fmt.Errorf("write %d key bytes into entry %v with key length %d: %w",
			key.Len(), a, want, ErrKeyLength)
	}
	e.mem.CopyIn(key.Bytes(), a, OffData)
	return nil
}

// WriteValue copies the serialized value into DATA right after the key.
// The value length must equal the VALUE_LENGTH given to Init.
func (e *Entries) WriteValue(a Address, value []byte) error {
	if want := e.ValueLen(a); uint64(len(value)) != want {
		return fmt.Errorf("write %d value bytes into entry %v with value length %d: %w",
			len(value), a, want, ErrValueLength)
	}
	e.mem.CopyIn(value, a, OffData+e.KeyLen(a))
	return nil
}

// Reference records one more durable holder of a (a chain slot, the LRU
// list, a reader). It must only be called while the caller already holds
// a reference; calling it on a released entry is undefined.
func (e *Entries) Reference(a Address) {
	if invariants {
		e.checkLive(a, "reference")
	}
	e.mem.AtomicIncrement(a, OffRefCount)
}

// Dereference drops one reference and reports whether it was the last.
//
// Across any set of concurrent Dereference calls on one entry exactly one
// returns true. That caller owns the teardown: it makes sure the entry is
// out of its chain and the LRU list, then frees the block.
func (e *Entries) Dereference(a Address) bool {
	if invariants {
		e.checkLive(a, "dereference")
	}
	return e.mem.AtomicDecrementReportZero(a, OffRefCount)
}

func (e *Entries) checkLive(a Address, op string) {
	if a == Nil {
		panic(fmt.Sprintf("entry: %s of nil entry", op))
	}
	if rc := e.mem.AtomicLoad(a, OffRefCount); rc == 0 || rc == arena.PoisonWord {
		panic(fmt.Sprintf("entry: %s of released entry %v (refcount %#x)", op, a, rc))
	}
}

// -------------------- field accessors --------------------

// Hash returns the cached key hash. It is immutable after Init.
func (e *Entries) Hash(a Address) uint64 { return e.mem.Word(a, OffHash) }

// KeyLen returns the serialized key length.
func (e *Entries) KeyLen(a Address) uint64 { return e.mem.Word(a, OffKeyLength) }

// SetKeyLen overwrites KEY_LENGTH. The block must still be large enough.
func (e *Entries) SetKeyLen(a Address, n uint64) { e.mem.PutWord(a, OffKeyLength, n) }

// ValueLen returns the serialized value length. It is immutable after Init.
func (e *Entries) ValueLen(a Address) uint64 { return e.mem.Word(a, OffValueLength) }

// AllocLen returns the block size implied by the stored lengths.
func (e *Entries) AllocLen(a Address) uint64 {
	return e.sizer(e.KeyLen(a), e.ValueLen(a))
}

// RefCount atomically reads REFCOUNT. The value may be stale by the time
// it is used; it is meant for diagnostics and tests, not for decisions.
func (e *Entries) RefCount(a Address) uint64 { return e.mem.AtomicLoad(a, OffRefCount) }
