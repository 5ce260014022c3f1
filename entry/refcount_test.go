package entry

import (
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

// N references then N+1 dereferences from many goroutines: exactly one
// Dereference observes zero.
func TestRefCount_ExactlyOneZero(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	a := put(t, es, ar, 9, []byte("key"), []byte("value"))

	const n = 4096
	const workers = 16

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < n/workers; i++ {
				es.Reference(a)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if got := es.RefCount(a); got != n+1 {
		t.Fatalf("RefCount = %d, want %d", got, n+1)
	}

	var zeros atomic.Int64
	var g2 errgroup.Group
	for w := 0; w < workers; w++ {
		g2.Go(func() error {
			for i := 0; i < n/workers; i++ {
				if es.Dereference(a) {
					zeros.Add(1)
				}
			}
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		t.Fatal(err)
	}
	if zeros.Load() != 0 {
		t.Fatalf("%d dereferences saw zero while the creator reference was held", zeros.Load())
	}
	if !es.Dereference(a) {
		t.Fatal("the final dereference must observe zero")
	}
}

// Readers take and drop references concurrently with the owner letting go
// of the creator reference. Whoever runs last sees zero, and only once.
func TestRefCount_InterleavedSingleZero(t *testing.T) {
	t.Parallel()

	for round := 0; round < 50; round++ {
		es, ar := newTestEntries(t)
		a := put(t, es, ar, 1, []byte("k"), []byte("v"))

		const readers = 8
		for i := 0; i < readers; i++ {
			es.Reference(a) // each reader's reference is granted up front
		}

		var zeros atomic.Int64
		var g errgroup.Group
		for i := 0; i < readers; i++ {
			g.Go(func() error {
				for j := 0; j < 100; j++ {
					es.Reference(a)
					if es.Dereference(a) {
						zeros.Add(1)
					}
				}
				if es.Dereference(a) {
					zeros.Add(1)
				}
				return nil
			})
		}
		g.Go(func() error {
			if es.Dereference(a) {
				zeros.Add(1)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			t.Fatal(err)
		}
		if got := zeros.Load(); got != 1 {
			t.Fatalf("round %d: %d dereferences observed zero, want 1", round, got)
		}
		if got := es.RefCount(a); got != 0 {
			t.Fatalf("round %d: RefCount = %d, want 0", round, got)
		}
	}
}

func BenchmarkReferenceDereference(b *testing.B) {
	es, ar := newTestEntries(b)
	a := put(b, es, ar, 1, []byte("k"), []byte("v"))

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			es.Reference(a)
			es.Dereference(a)
		}
	})
}
