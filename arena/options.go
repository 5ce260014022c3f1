package arena

// Backing selects where arena memory comes from.
type Backing int

const (
	// BackingMmap maps anonymous private memory outside the Go heap.
	// On platforms without mmap it silently behaves like BackingHeap.
	BackingMmap Backing = iota
	// BackingHeap allocates one large []byte from the Go heap. The GC never
	// scans it for pointers, but it counts toward the heap size.
	BackingHeap
)

func (b Backing) String() string {
	switch b {
	case BackingHeap:
		return "heap"
	default:
		return "mmap"
	}
}

// Options configures a single Arena. Zero values are safe except Size:
//   - Backing zero value => BackingMmap
//   - nil Metrics        => NoopMetrics
type Options struct {
	// Size is the arena capacity in bytes. It is rounded up to the page
	// size for mmap backing and must not exceed MaxArenaSize.
	Size int64

	// Backing picks mmap (default) or Go heap memory.
	Backing Backing

	// Metrics receives Alloc/Free/AllocFail/Mapped signals.
	Metrics Metrics
}

// PoolOptions configures a Pool of equally sized arenas.
//   - Arenas <= 0 => auto (nextPow2(GOMAXPROCS), at most 64)
type PoolOptions struct {
	// Arenas is the number of arenas in the pool.
	Arenas int

	// ArenaSize is the capacity of each arena in bytes.
	ArenaSize int64

	Backing Backing
	Metrics Metrics
}
