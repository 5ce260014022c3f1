package main

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/offheap/arena"
	"github.com/IvanBrykalov/offheap/entry"
	"github.com/IvanBrykalov/offheap/internal/util"
	"github.com/IvanBrykalov/offheap/lru"
)

// table is a minimal chained hash table over off-heap entries, enough to
// drive the entry primitives the way a real cache would.
//
// Each chain slot owns the creator's reference. Readers take their own
// reference under the read lock and drop it after using the value view.
// Whoever drops the last reference frees the block.
type table struct {
	pool    *arena.Pool
	es      *entry.Entries
	mu      sync.RWMutex
	buckets []entry.Address
	recency *lru.List
	evicts  atomic.Uint64
}

func newTable(pool *arena.Pool, buckets int) *table {
	es := entry.New(entry.Options{Memory: pool})
	return &table{
		pool:    pool,
		es:      es,
		buckets: make([]entry.Address, util.NextPow2(uint64(buckets))),
		recency: lru.New(es),
	}
}

// Len returns the number of resident entries.
func (t *table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recency.Len()
}

// Evictions returns how many entries were dropped to make room.
func (t *table) Evictions() uint64 { return t.evicts.Load() }

// Get looks key up and, on a hit, calls fn with a view of the value.
// The view is only valid inside fn.
func (t *table) Get(key []byte, fn func(entry.View)) bool {
	hash := util.KeyHash(key)
	t.mu.RLock()
	a, _ := t.findLocked(hash, key)
	if a != entry.Nil {
		t.es.Reference(a)
	}
	t.mu.RUnlock()
	if a == entry.Nil {
		return false
	}
	fn(t.es.ValueView(a))
	t.release(a)
	return true
}

// Put inserts or replaces key. When the pool is full the least recently
// written entries are evicted until the new block fits.
func (t *table) Put(key, val []byte) error {
	hash := util.KeyHash(key)
	kl, vl := uint64(len(key)), uint64(len(val))
	size := t.es.Sizer()(kl, vl)

	a, err := t.pool.Allocate(size)
	for errors.Is(err, arena.ErrOutOfMemory) {
		if !t.evictOne() {
			return err
		}
		a, err = t.pool.Allocate(size)
	}
	if err != nil {
		return err
	}

	t.es.Init(hash, kl, vl, a)
	if err := t.es.WriteKey(a, entry.Key(key)); err != nil {
		t.pool.Free(a, size)
		return err
	}
	if err := t.es.WriteValue(a, val); err != nil {
		t.pool.Free(a, size)
		return err
	}

	b := util.BucketIndex(hash, len(t.buckets))
	t.mu.Lock()
	old := t.unlinkLocked(hash, key)
	if err := t.es.SetNext(a, t.buckets[b]); err != nil {
		t.mu.Unlock()
		t.pool.Free(a, size)
		return err
	}
	t.buckets[b] = a
	t.recency.PushFront(a)
	t.mu.Unlock()

	if old != entry.Nil {
		t.release(old)
	}
	return nil
}

// Delete removes key and reports whether it was present.
func (t *table) Delete(key []byte) bool {
	t.mu.Lock()
	old := t.unlinkLocked(util.KeyHash(key), key)
	t.mu.Unlock()
	if old == entry.Nil {
		return false
	}
	t.release(old)
	return true
}

// Close drops every resident entry. Concurrent readers may still hold
// references; their final release frees the block.
func (t *table) Close() {
	t.mu.Lock()
	var victims []entry.Address
	for a := t.recency.PopBack(); a != entry.Nil; a = t.recency.PopBack() {
		victims = append(victims, a)
	}
	clear(t.buckets)
	t.mu.Unlock()
	for _, a := range victims {
		t.release(a)
	}
}

func (t *table) evictOne() bool {
	t.mu.Lock()
	victim := t.recency.Back()
	if victim != entry.Nil {
		victim = t.unlinkLocked(t.es.Hash(victim), t.es.KeyView(victim).Bytes())
	}
	t.mu.Unlock()
	if victim == entry.Nil {
		return false
	}
	t.evicts.Add(1)
	t.release(victim)
	return true
}

// findLocked returns the entry for key and its chain predecessor.
func (t *table) findLocked(hash uint64, key []byte) (a, prev entry.Address) {
	prev = entry.Nil
	for a = t.buckets[util.BucketIndex(hash, len(t.buckets))]; a != entry.Nil; a = t.es.Next(a) {
		if t.es.Matches(a, hash, entry.Key(key)) {
			return a, prev
		}
		prev = a
	}
	return entry.Nil, entry.Nil
}

// unlinkLocked removes key from its chain and the recency list and returns
// the removed entry, whose chain reference now belongs to the caller.
func (t *table) unlinkLocked(hash uint64, key []byte) entry.Address {
	a, prev := t.findLocked(hash, key)
	if a == entry.Nil {
		return entry.Nil
	}
	next := t.es.Next(a)
	if prev == entry.Nil {
		t.buckets[util.BucketIndex(hash, len(t.buckets))] = next
	} else {
		// prev != next: a sits between them.
		_ = t.es.SetNext(prev, next)
	}
	_ = t.es.SetNext(a, entry.Nil)
	t.recency.Remove(a)
	return a
}

func (t *table) release(a entry.Address) {
	size := t.es.AllocLen(a)
	if t.es.Dereference(a) {
		t.pool.Free(a, size)
	}
}
