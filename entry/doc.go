// Package entry defines the binary layout of one off-heap cache record and
// the primitive operations every higher cache layer builds on: initialize,
// reference-count, compare keys, link into a hash chain and the LRU list,
// and expose zero-copy views.
//
// Layout
//
// An entry is one allocator block: seven native-order 64-bit header words
// followed by the key bytes and then the value bytes.
//
//	off  field
//	  0  HASH          cached key hash
//	  8  NEXT          hash-chain successor (Nil = end of chain)
//	 16  KEY_LENGTH
//	 24  VALUE_LENGTH
//	 32  REFCOUNT      atomic
//	 40  LRU_NEXT      cache-wide recency list
//	 48  LRU_PREV
//	 56  DATA          key, then value
//
// Every component in the process must agree on this layout. The block size
// is always Sizer(KEY_LENGTH, VALUE_LENGTH), AllocLen by default.
//
// Lifecycle
//
//   - The hash table allocates a block and calls Init, which sets
//     REFCOUNT to 1 on behalf of the creator, then WriteKey and WriteValue.
//   - Each new durable holder (chain slot, LRU list, reader) calls
//     Reference; each holder calls Dereference exactly once when done.
//   - The single Dereference that returns true owns the teardown: unlink
//     from chain and LRU list, then return the block to the allocator.
//
// Reference or Dereference on an entry whose count already reached zero is
// undefined. Build with -tags invariants to turn that mistake into a panic;
// the arena then also poisons freed blocks.
//
// Concurrency
//
// REFCOUNT is the only field this package updates atomically. NEXT, the LRU
// pointers, the lengths and the hash are single-writer by contract: the
// hash table and eviction layers hold their own locks around mutations.
// Operations on different entries never need coordination.
//
// All operations are O(1) except key comparison, which is O(key length).
// Nothing here blocks, allocates on the fast path, or spawns goroutines.
//
// Usage
//
//	pool, _ := arena.NewPool(arena.PoolOptions{ArenaSize: 64 << 20})
//	es := entry.New(entry.Options{Memory: pool})
//
//	key, val := entry.Key("user:42"), []byte("payload")
//	addr, _ := pool.Allocate(entry.AllocLen(uint64(len(key)), uint64(len(val))))
//	es.Init(xxhash.Sum64(key), uint64(len(key)), uint64(len(val)), addr)
//	_ = es.WriteKey(addr, key)
//	_ = es.WriteValue(addr, val)
//
//	es.Reference(addr)          // hand to a reader
//	v := es.ValueView(addr)     // zero-copy
//	_ = v.Bytes()
//	if es.Dereference(addr) {   // reader done
//	    pool.Free(addr, es.AllocLen(addr))
//	}
package entry
