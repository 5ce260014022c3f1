package prom

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/offheap/arena"
)

// gather returns sample values keyed by metric family name.
func gather(t *testing.T, g prometheus.Gatherer) map[string]float64 {
	t.Helper()
	mfs, err := g.Gather()
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]float64, len(mfs))
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	return out
}

func TestAdapter_TracksArena(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "offheap", "arena", prometheus.Labels{"pool": "test"})

	ar, err := arena.New(arena.Options{Size: 256, Backing: arena.BackingHeap, Metrics: m})
	if err != nil {
		t.Fatal(err)
	}

	a, err := ar.Allocate(100) // 128-byte class
	if err != nil {
		t.Fatal(err)
	}
	b, err := ar.Allocate(64)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ar.Allocate(128); !errors.Is(err, arena.ErrOutOfMemory) {
		t.Fatalf("want ErrOutOfMemory, got %v", err)
	}
	ar.Free(a, 100)

	got := gather(t, reg)
	want := map[string]float64{
		"offheap_arena_allocs_total":          2,
		"offheap_arena_frees_total":           1,
		"offheap_arena_alloc_failures_total":  1,
		"offheap_arena_allocated_bytes_total": 192,
		"offheap_arena_live_bytes":            64,
		"offheap_arena_mapped_bytes":          256,
	}
	for name, w := range want {
		if got[name] != w {
			t.Errorf("%s = %v, want %v", name, got[name], w)
		}
	}

	ar.Free(b, 64)
	if err := ar.Close(); err != nil {
		t.Fatal(err)
	}
	got = gather(t, reg)
	if got["offheap_arena_live_bytes"] != 0 || got["offheap_arena_mapped_bytes"] != 0 {
		t.Fatalf("after Close: live=%v mapped=%v", got["offheap_arena_live_bytes"], got["offheap_arena_mapped_bytes"])
	}
}
