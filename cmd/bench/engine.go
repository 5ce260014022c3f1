package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/coocood/freecache"
	gocache "github.com/patrickmn/go-cache"

	"github.com/IvanBrykalov/offheap/entry"
)

// engine is the workload surface shared by the off-heap table and the
// third-party caches it is compared against.
type engine interface {
	// Get calls fn with the value on a hit. val is only valid inside fn.
	Get(key []byte, fn func(val []byte)) bool
	Put(key, val []byte) error
	Delete(key []byte) bool
	Len() int
	Close()
}

// newEngine builds the engine named by kind with roughly sizeBytes of room.
func newEngine(kind string, sizeBytes int64, offheap func() (engine, error)) (engine, error) {
	switch kind {
	case "offheap":
		return offheap()
	case "freecache":
		return &freeEngine{c: freecache.NewCache(int(sizeBytes))}, nil
	case "bigcache":
		cfg := bigcache.DefaultConfig(time.Hour)
		cfg.Verbose = false
		cfg.HardMaxCacheSize = bigcacheMiB(sizeBytes)
		c, err := bigcache.New(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("bigcache: %w", err)
		}
		return &bigEngine{c: c}, nil
	case "gocache":
		return &goEngine{c: gocache.New(gocache.NoExpiration, 0)}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (use offheap, freecache, bigcache or gocache)", kind)
	}
}

// bigcacheMiB converts a byte budget to bigcache's MiB limit. Zero means
// unlimited to bigcache, so budgets under 1 MiB round up to 1.
func bigcacheMiB(sizeBytes int64) int {
	return max(int(sizeBytes>>20), 1)
}

// tableEngine adapts table to engine by hiding entry.View.
type tableEngine struct{ *table }

func (t tableEngine) Get(key []byte, fn func([]byte)) bool {
	return t.table.Get(key, func(v entry.View) { fn(v.Bytes()) })
}

type freeEngine struct{ c *freecache.Cache }

func (f *freeEngine) Get(key []byte, fn func([]byte)) bool {
	return f.c.GetFn(key, func(v []byte) error { fn(v); return nil }) == nil
}

func (f *freeEngine) Put(key, val []byte) error { return f.c.Set(key, val, 0) }
func (f *freeEngine) Delete(key []byte) bool    { return f.c.Del(key) }
func (f *freeEngine) Len() int                  { return int(f.c.EntryCount()) }
func (f *freeEngine) Close()                    { f.c.Clear() }

type bigEngine struct{ c *bigcache.BigCache }

func (b *bigEngine) Get(key []byte, fn func([]byte)) bool {
	v, err := b.c.Get(string(key))
	if err != nil {
		return false
	}
	fn(v)
	return true
}

func (b *bigEngine) Put(key, val []byte) error { return b.c.Set(string(key), val) }

func (b *bigEngine) Delete(key []byte) bool {
	return !errors.Is(b.c.Delete(string(key)), bigcache.ErrEntryNotFound)
}

func (b *bigEngine) Len() int { return b.c.Len() }
func (b *bigEngine) Close()   { _ = b.c.Close() }

// goEngine is the on-heap baseline: every value is a Go allocation the
// collector has to trace. It has no size bound.
type goEngine struct{ c *gocache.Cache }

func (g *goEngine) Get(key []byte, fn func([]byte)) bool {
	v, ok := g.c.Get(string(key))
	if ok {
		fn(v.([]byte))
	}
	return ok
}

func (g *goEngine) Put(key, val []byte) error {
	g.c.Set(string(key), bytes.Clone(val), gocache.NoExpiration)
	return nil
}

func (g *goEngine) Delete(key []byte) bool {
	k := string(key)
	if _, ok := g.c.Get(k); !ok {
		return false
	}
	g.c.Delete(k)
	return true
}

func (g *goEngine) Len() int { return g.c.ItemCount() }
func (g *goEngine) Close()   { g.c.Flush() }
