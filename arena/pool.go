package arena

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/IvanBrykalov/offheap/internal/util"
)

// Pool is a set of arenas behind a single address space. Allocations are
// spread round-robin across arenas, each with its own lock, and fall
// through to the next arena when one is full.
//
// Pool implements the same accessor methods as Arena; each call is routed
// to the arena named by the Address id.
type Pool struct {
	arenas []*Arena
	rr     atomic.Uint64
	closed atomic.Bool
}

// NewPool creates opt.Arenas arenas of opt.ArenaSize bytes each.
// Arena ids are assigned 1..n in order.
func NewPool(opt PoolOptions) (*Pool, error) {
	n := opt.Arenas
	if n <= 0 {
		n = util.ReasonableArenaCount()
	}
	if n > MaxArenas {
		return nil, fmt.Errorf("pool of %d arenas exceeds %d: %w", n, MaxArenas, ErrInvalidSize)
	}

	p := &Pool{arenas: make([]*Arena, 0, n)}
	for i := 0; i < n; i++ {
		ar, err := newArena(uint16(i+1), Options{
			Size:    opt.ArenaSize,
			Backing: opt.Backing,
			Metrics: opt.Metrics,
		})
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("arena %d: %w", i+1, err)
		}
		p.arenas = append(p.arenas, ar)
	}
	return p, nil
}

// Len returns the number of arenas in the pool.
func (p *Pool) Len() int { return len(p.arenas) }

// Allocate reserves a block of at least size bytes from some arena.
// It returns ErrOutOfMemory only when every arena is full.
func (p *Pool) Allocate(size uint64) (Address, error) {
	if p.closed.Load() {
		return Nil, ErrClosed
	}
	n := uint64(len(p.arenas))
	start := p.rr.Add(1)
	var lastErr error
	for i := uint64(0); i < n; i++ {
		a, err := p.arenas[(start+i)%n].Allocate(size)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrOutOfMemory) {
			return Nil, err
		}
		lastErr = err
	}
	return Nil, lastErr
}

// Free returns the block at a to the arena that owns it.
func (p *Pool) Free(a Address, size uint64) { p.arena(a).Free(a, size) }

// Stats sums the counters of every arena.
func (p *Pool) Stats() Stats {
	var s Stats
	for _, ar := range p.arenas {
		as := ar.Stats()
		s.Capacity += as.Capacity
		s.HighWater += as.HighWater
		s.Live += as.Live
		s.Allocs += as.Allocs
		s.Frees += as.Frees
		s.Fails += as.Fails
	}
	return s
}

// Close releases every arena. Addresses from the pool must not be used
// afterwards.
func (p *Pool) Close() error {
	p.closed.Store(true)
	var errs []error
	for _, ar := range p.arenas {
		if err := ar.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pool) arena(a Address) *Arena {
	id := int(a.ID())
	if id == 0 || id > len(p.arenas) {
		panic(fmt.Sprintf("arena: address %v does not belong to this pool", a))
	}
	return p.arenas[id-1]
}

// ---- memory accessors (routed by arena id) ----

// Byte reads the byte at a+off.
func (p *Pool) Byte(a Address, off uint64) byte { return p.arena(a).Byte(a, off) }

// PutByte writes the byte at a+off.
func (p *Pool) PutByte(a Address, off uint64, b byte) { p.arena(a).PutByte(a, off, b) }

// Word reads the native-order 64-bit word at a+off.
func (p *Pool) Word(a Address, off uint64) uint64 { return p.arena(a).Word(a, off) }

// PutWord writes the native-order 64-bit word at a+off.
func (p *Pool) PutWord(a Address, off uint64, v uint64) { p.arena(a).PutWord(a, off, v) }

// CopyIn copies src into the owning arena starting at a+off.
func (p *Pool) CopyIn(src []byte, a Address, off uint64) { p.arena(a).CopyIn(src, a, off) }

// CopyOut copies len(dst) bytes starting at a+off into dst.
func (p *Pool) CopyOut(dst []byte, a Address, off uint64) { p.arena(a).CopyOut(dst, a, off) }

// AtomicLoad atomically reads the 64-bit word at a+off.
func (p *Pool) AtomicLoad(a Address, off uint64) uint64 { return p.arena(a).AtomicLoad(a, off) }

// AtomicIncrement atomically adds one to the 64-bit word at a+off.
func (p *Pool) AtomicIncrement(a Address, off uint64) { p.arena(a).AtomicIncrement(a, off) }

// AtomicDecrementReportZero atomically subtracts one from the word at
// a+off and reports whether the result is exactly zero.
func (p *Pool) AtomicDecrementReportZero(a Address, off uint64) bool {
	return p.arena(a).AtomicDecrementReportZero(a, off)
}

// Window returns a capacity-capped slice aliasing [a+off, a+off+n).
func (p *Pool) Window(a Address, off, n uint64) []byte { return p.arena(a).Window(a, off, n) }
