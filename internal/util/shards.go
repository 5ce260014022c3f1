package util

import "runtime"

// ReasonableArenaCount picks a default number of arenas for a pool based on
// CPU parallelism. Heuristic: nextPow2(GOMAXPROCS), clamped to [1..64].
// Each arena has its own allocator lock, so this bounds allocator contention.
func ReasonableArenaCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p)))
	if n > 64 {
		n = 64
	}
	return n
}

// BucketIndex maps a 64-bit hash to a bucket index.
// Assumes bucket count is a power of two for the fast mask path,
// but remains correct for arbitrary counts (uses modulo).
func BucketIndex(hash uint64, buckets int) int {
	if buckets <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(buckets)) {
		return int(hash & uint64(buckets-1))
	}
	return int(hash % uint64(buckets))
}
