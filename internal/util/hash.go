// Package util contains internal helpers (hashing, alignment, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "github.com/cespare/xxhash/v2"

// KeyHash hashes serialized key bytes with 64-bit xxHash.
// The result is what callers store in an entry's HASH field.
func KeyHash(key []byte) uint64 {
	return xxhash.Sum64(key)
}

