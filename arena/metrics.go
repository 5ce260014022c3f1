package arena

// Metrics exposes allocator-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
//
// All sizes are block-class sizes, so an implementation can keep running
// totals by adding Alloc and subtracting Free. Several arenas may share one
// Metrics value; implementations must be safe for concurrent use.
type Metrics interface {
	// Alloc is called after every successful allocation.
	Alloc(bytes int64)
	// Free is called after every released block.
	Free(bytes int64)
	// AllocFail is called when Allocate returns ErrOutOfMemory.
	AllocFail()
	// Mapped is called with +size when an arena is created and -size on Close.
	Mapped(bytes int64)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Alloc(int64)  {}
func (NoopMetrics) Free(int64)   {}
func (NoopMetrics) AllocFail()   {}
func (NoopMetrics) Mapped(int64) {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
