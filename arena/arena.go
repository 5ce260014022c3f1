// Package arena provides off-heap memory regions addressed by Address
// values, the word-level accessors the entry layer reads and writes
// through, and a simple size-class block allocator.
//
// Design
//
//   - Regions: an Arena is one contiguous []byte obtained from anonymous
//     mmap (default) or the Go heap. A Pool groups up to MaxArenas arenas
//     and routes every Address to its arena by id.
//
//   - Allocation: blocks are rounded up to a power of two (at least 64
//     bytes). Freed blocks go to a per-class free list and are reused
//     before the bump pointer advances; a larger free block is split when
//     both are exhausted. When nothing fits, adjacent free blocks are
//     merged, a free tail is handed back to the bump pointer, and the
//     request is retried. Every block offset is a multiple of 64, so
//     64-bit header words are always 8-byte aligned.
//
//   - Access: Byte/Word/CopyIn/CopyOut are plain, unsynchronized
//     accesses. AtomicLoad/AtomicIncrement/AtomicDecrementReportZero use
//     sync/atomic on the word in place. Window returns a non-owning,
//     capacity-capped slice over a range.
//
//   - Debugging: with -tags invariants, Free fills released blocks with
//     PoisonByte so use-after-release shows up as PoisonWord in headers,
//     and a second Free of the same block panics.
//
// Accessors trust their Address: an out-of-range offset panics with a Go
// bounds error rather than touching foreign memory, but reading a block
// after it was freed is not detected outside invariants builds.
package arena

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/IvanBrykalov/offheap/internal/util"
)

const (
	// PoisonByte fills freed blocks in invariants builds.
	PoisonByte byte = 0xA5
	// PoisonWord is a 64-bit word read from a poisoned block.
	PoisonWord uint64 = 0xA5A5A5A5A5A5A5A5

	minClassShift = 6
	numClasses    = offsetBits + 1
)

// Arena is a single off-heap region with its own allocator lock.
// Accessor methods are safe for concurrent use on distinct blocks;
// Allocate, Free and Close are safe for concurrent use.
type Arena struct {
	id      uint16
	size    uint64 // len(data) at creation; immutable
	data    []byte
	backing Backing
	metrics Metrics

	// ---- guarded by mu ----
	mu     sync.Mutex
	next   uint64 // bump pointer
	free   [numClasses][]uint64
	closed bool

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	live   util.PaddedAtomicInt64
	allocs util.PaddedAtomicUint64
	frees  util.PaddedAtomicUint64
	fails  util.PaddedAtomicUint64
}

// Stats is a point-in-time snapshot of an arena's (or pool's) allocator.
type Stats struct {
	Capacity  int64  // total bytes mapped
	HighWater int64  // bytes below the bump pointer
	Live      int64  // bytes in currently allocated blocks
	Allocs    uint64 // successful allocations
	Frees     uint64 // released blocks
	Fails     uint64 // ErrOutOfMemory results
}

// New creates a standalone arena. Its blocks carry arena id 1.
func New(opt Options) (*Arena, error) {
	return newArena(1, opt)
}

func newArena(id uint16, opt Options) (*Arena, error) {
	if opt.Size <= 0 || opt.Size > MaxArenaSize || int64(int(opt.Size)) != opt.Size {
		return nil, fmt.Errorf("arena size %d: %w", opt.Size, ErrInvalidSize)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}

	var (
		data []byte
		err  error
	)
	switch opt.Backing {
	case BackingHeap:
		data = make([]byte, int(util.AlignUp(uint64(opt.Size), 1<<minClassShift)))
	default:
		data, err = mapRegion(int(util.AlignUp(uint64(opt.Size), uint64(pageSize))))
		if err != nil {
			return nil, err
		}
	}

	ar := &Arena{
		id:      id,
		size:    uint64(len(data)),
		data:    data,
		backing: opt.Backing,
		metrics: opt.Metrics,
	}
	ar.metrics.Mapped(int64(len(data)))
	return ar, nil
}

// ID returns the arena id encoded in every Address it hands out.
func (ar *Arena) ID() uint16 { return ar.id }

// Cap returns the arena capacity in bytes.
func (ar *Arena) Cap() int64 { return int64(ar.size) }

// Close releases the region. Addresses from this arena must not be used
// afterwards. Close is idempotent.
func (ar *Arena) Close() error {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	if ar.closed {
		return nil
	}
	ar.closed = true
	size := int64(ar.size)
	var err error
	if ar.backing != BackingHeap {
		err = unmapRegion(ar.data)
	}
	ar.data = nil
	ar.free = [numClasses][]uint64{}
	ar.metrics.Mapped(-size)
	return err
}

// classOf returns the free-list index and byte size of the block class
// that serves a request of size bytes.
func classOf(size uint64) (int, uint64) {
	c := util.NextPow2(size)
	if c < 1<<minClassShift {
		c = 1 << minClassShift
	}
	return util.Log2(c), c
}

// BlockSize reports how many bytes Allocate(size) actually reserves.
func BlockSize(size uint64) uint64 {
	_, c := classOf(size)
	return c
}

// Allocate reserves a block of at least size bytes and returns its address.
// The block contents are unspecified: they may be zero, stale data, or
// poison in invariants builds.
//
// ErrInvalidSize means the request can never be served by this arena;
// ErrOutOfMemory means it could be once enough blocks are freed.
func (ar *Arena) Allocate(size uint64) (Address, error) {
	ci, cb := classOf(size)
	if size == 0 || cb > ar.size {
		return Nil, fmt.Errorf("allocate %d bytes from a %d-byte arena: %w", size, ar.size, ErrInvalidSize)
	}

	ar.mu.Lock()
	if ar.closed {
		ar.mu.Unlock()
		return Nil, ErrClosed
	}
	off, ok := ar.takeLocked(ci, cb)
	if !ok && ar.compactLocked() {
		off, ok = ar.takeLocked(ci, cb)
	}
	if !ok {
		ar.mu.Unlock()
		ar.fails.Add(1)
		ar.metrics.AllocFail()
		return Nil, ErrOutOfMemory
	}
	if invariants {
		// A live block must not look freed to the double-free check.
		binary.NativeEndian.PutUint64(ar.data[off:off+8], 0)
	}
	ar.mu.Unlock()

	ar.allocs.Add(1)
	ar.live.Add(int64(cb))
	ar.metrics.Alloc(int64(cb))
	return makeAddress(ar.id, off), nil
}

// takeLocked finds room for one block of class ci: its free list first,
// then the bump pointer, then the smallest larger free block, split down.
func (ar *Arena) takeLocked(ci int, cb uint64) (uint64, bool) {
	if fl := ar.free[ci]; len(fl) > 0 {
		ar.free[ci] = fl[:len(fl)-1]
		return fl[len(fl)-1], true
	}
	if ar.next+cb <= ar.size {
		off := ar.next
		ar.next += cb
		return off, true
	}
	for j := ci + 1; j < numClasses; j++ {
		fl := ar.free[j]
		if len(fl) == 0 {
			continue
		}
		off := fl[len(fl)-1]
		ar.free[j] = fl[:len(fl)-1]
		// Keep the low half, return each upper half to the class below.
		for k := j; k > ci; k-- {
			ar.free[k-1] = append(ar.free[k-1], off+uint64(1)<<(k-1))
		}
		return off, true
	}
	return 0, false
}

type extent struct{ off, end uint64 }

// compactLocked merges adjacent free blocks, hands a free run at the top
// back to the bump pointer, and re-files the rest as the largest blocks
// that fit. It reports whether there was anything to merge.
func (ar *Arena) compactLocked() bool {
	var runs []extent
	for i, fl := range ar.free {
		for _, off := range fl {
			runs = append(runs, extent{off, off + uint64(1)<<i})
		}
		ar.free[i] = fl[:0]
	}
	if len(runs) == 0 {
		return false
	}
	slices.SortFunc(runs, func(a, b extent) int { return cmp.Compare(a.off, b.off) })

	merged := runs[:1]
	for _, r := range runs[1:] {
		if last := &merged[len(merged)-1]; r.off == last.end {
			last.end = r.end
		} else {
			merged = append(merged, r)
		}
	}
	if top := merged[len(merged)-1]; top.end == ar.next {
		ar.next = top.off
		merged = merged[:len(merged)-1]
	}
	for _, r := range merged {
		for off := r.off; off < r.end; {
			i := util.Log2(r.end - off)
			ar.free[i] = append(ar.free[i], off)
			off += uint64(1) << i
		}
	}
	return true
}

// Free returns the block at a to its free list. size must be the size
// passed to Allocate (any size in the same class is accepted). Freeing
// after Close is a no-op.
func (ar *Arena) Free(a Address, size uint64) {
	ci, cb := classOf(size)
	off := a.Offset()

	ar.mu.Lock()
	if ar.closed {
		ar.mu.Unlock()
		return
	}
	if invariants {
		ar.checkOwned(a)
		if binary.NativeEndian.Uint64(ar.data[off:off+8]) == PoisonWord {
			ar.mu.Unlock()
			panic(fmt.Sprintf("arena: double free of %v", a))
		}
		poison(ar.data[off : off+cb])
	}
	ar.free[ci] = append(ar.free[ci], off)
	ar.mu.Unlock()

	ar.frees.Add(1)
	ar.live.Add(-int64(cb))
	ar.metrics.Free(int64(cb))
}

// Stats returns allocator counters for this arena.
func (ar *Arena) Stats() Stats {
	ar.mu.Lock()
	hw := int64(ar.next)
	ar.mu.Unlock()
	return Stats{
		Capacity:  int64(ar.size),
		HighWater: hw,
		Live:      ar.live.Load(),
		Allocs:    ar.allocs.Load(),
		Frees:     ar.frees.Load(),
		Fails:     ar.fails.Load(),
	}
}

// ---- memory accessors ----

// Byte reads the byte at a+off.
func (ar *Arena) Byte(a Address, off uint64) byte {
	return ar.data[ar.index(a, off)]
}

// PutByte writes the byte at a+off.
func (ar *Arena) PutByte(a Address, off uint64, b byte) {
	ar.data[ar.index(a, off)] = b
}

// Word reads the native-order 64-bit word at a+off.
func (ar *Arena) Word(a Address, off uint64) uint64 {
	i := ar.index(a, off)
	return binary.NativeEndian.Uint64(ar.data[i : i+8])
}

// PutWord writes the native-order 64-bit word at a+off.
func (ar *Arena) PutWord(a Address, off uint64, v uint64) {
	i := ar.index(a, off)
	binary.NativeEndian.PutUint64(ar.data[i:i+8], v)
}

// CopyIn copies src into the arena starting at a+off.
func (ar *Arena) CopyIn(src []byte, a Address, off uint64) {
	i := ar.index(a, off)
	copy(ar.data[i:i+uint64(len(src))], src)
}

// CopyOut copies len(dst) bytes starting at a+off into dst.
func (ar *Arena) CopyOut(dst []byte, a Address, off uint64) {
	i := ar.index(a, off)
	copy(dst, ar.data[i:i+uint64(len(dst))])
}

// AtomicLoad atomically reads the 64-bit word at a+off.
func (ar *Arena) AtomicLoad(a Address, off uint64) uint64 {
	return atomic.LoadUint64(ar.word(a, off))
}

// AtomicIncrement atomically adds one to the 64-bit word at a+off.
func (ar *Arena) AtomicIncrement(a Address, off uint64) {
	atomic.AddUint64(ar.word(a, off), 1)
}

// AtomicDecrementReportZero atomically subtracts one from the word at
// a+off and reports whether the result is exactly zero.
func (ar *Arena) AtomicDecrementReportZero(a Address, off uint64) bool {
	return atomic.AddUint64(ar.word(a, off), ^uint64(0)) == 0
}

// Window returns a slice aliasing [a+off, a+off+n) with its capacity capped
// at n, so appends reallocate instead of spilling into neighbouring blocks.
// The bytes are not copied.
func (ar *Arena) Window(a Address, off, n uint64) []byte {
	i := ar.index(a, off)
	return ar.data[i : i+n : i+n]
}

func (ar *Arena) index(a Address, off uint64) uint64 {
	if invariants {
		ar.checkOwned(a)
	}
	return a.Offset() + off
}

// word returns a pointer to the 8-byte-aligned word at a+off.
func (ar *Arena) word(a Address, off uint64) *uint64 {
	i := ar.index(a, off)
	if invariants && i&7 != 0 {
		panic(fmt.Sprintf("arena: atomic access at %v+%d is not 8-byte aligned", a, off))
	}
	b := ar.data[i : i+8]
	// SAFETY: block offsets are multiples of 64 and the region base is page-
	// or allocator-aligned, so an aligned offset yields an aligned pointer.
	return (*uint64)(unsafe.Pointer(&b[0]))
}

func (ar *Arena) checkOwned(a Address) {
	if a.ID() != ar.id {
		panic(fmt.Sprintf("arena: address %v does not belong to arena %d", a, ar.id))
	}
}

func poison(b []byte) {
	for i := range b {
		b[i] = PoisonByte
	}
}
