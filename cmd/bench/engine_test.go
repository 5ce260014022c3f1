package main

import (
	"testing"

	"github.com/IvanBrykalov/offheap/arena"
)

// Every engine must honour the same put/get/delete contract.
func TestEngines_Contract(t *testing.T) {
	offheap := func() (engine, error) {
		pool, err := arena.NewPool(arena.PoolOptions{Arenas: 1, ArenaSize: 1 << 20, Backing: arena.BackingHeap})
		if err != nil {
			return nil, err
		}
		t.Cleanup(func() { _ = pool.Close() })
		return tableEngine{newTable(pool, 128)}, nil
	}

	for _, kind := range []string{"offheap", "freecache", "bigcache", "gocache"} {
		t.Run(kind, func(t *testing.T) {
			eng, err := newEngine(kind, 1<<20, offheap)
			if err != nil {
				t.Fatal(err)
			}
			defer eng.Close()

			if err := eng.Put([]byte("k1"), []byte("v1")); err != nil {
				t.Fatal(err)
			}
			if err := eng.Put([]byte("k1"), []byte("v1-new")); err != nil {
				t.Fatal(err)
			}
			var got string
			if !eng.Get([]byte("k1"), func(v []byte) { got = string(v) }) || got != "v1-new" {
				t.Fatalf("Get(k1) = %q", got)
			}
			if eng.Get([]byte("absent"), func([]byte) {}) {
				t.Fatal("absent key must miss")
			}
			if eng.Len() != 1 {
				t.Fatalf("Len = %d, want 1", eng.Len())
			}
			if !eng.Delete([]byte("k1")) {
				t.Fatal("Delete(k1) must report presence")
			}
			if eng.Delete([]byte("k1")) {
				t.Fatal("second Delete(k1) must report absence")
			}
			if eng.Get([]byte("k1"), func([]byte) {}) {
				t.Fatal("deleted key must miss")
			}
		})
	}
}

func TestNewEngine_Unknown(t *testing.T) {
	if _, err := newEngine("memcached", 1<<20, nil); err == nil {
		t.Fatal("unknown engine must fail")
	}
}

func TestBigcacheMiB(t *testing.T) {
	cases := []struct {
		in   int64
		want int
	}{{0, 1}, {512 << 10, 1}, {1 << 20, 1}, {3<<20 + 1, 3}, {64 << 20, 64}}
	for _, c := range cases {
		if got := bigcacheMiB(c.in); got != c.want {
			t.Fatalf("bigcacheMiB(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
