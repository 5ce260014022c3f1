package entry

import "encoding/binary"

const wordSize = 8

// CompareKey reports whether key[:n] equals the n key bytes stored in the
// entry at a. It returns false for Nil, so a chain walk can pass the next
// pointer without checking for the end first, and false when key holds
// fewer than n bytes.
//
// n is expected to equal the entry's KEY_LENGTH; Matches checks that first.
// The bulk of the range is compared a word at a time, the tail byte-wise.
func (e *Entries) CompareKey(a Address, key []byte, n uint64) bool {
	if a == Nil || n > uint64(len(key)) {
		return false
	}
	p, off := uint64(0), uint64(OffData)
	for ; p+wordSize <= n; p, off = p+wordSize, off+wordSize {
		if e.mem.Word(a, off) != binary.NativeEndian.Uint64(key[p:]) {
			return false
		}
	}
	for ; p < n; p, off = p+1, off+1 {
		if e.mem.Byte(a, off) != key[p] {
			return false
		}
	}
	return true
}

// CompareEntryKeys reports whether the first n key bytes of the entries at
// a and b are equal. It lets an insert detect an existing entry for a key
// that so far lives only in a not-yet-linked block. Both entries must have
// KEY_LENGTH == n; a Nil on either side compares unequal.
func (e *Entries) CompareEntryKeys(a, b Address, n uint64) bool {
	if a == Nil || b == Nil {
		return false
	}
	p, off := uint64(0), uint64(OffData)
	for ; p+wordSize <= n; p, off = p+wordSize, off+wordSize {
		if e.mem.Word(a, off) != e.mem.Word(b, off) {
			return false
		}
	}
	for ; p < n; p, off = p+1, off+1 {
		if e.mem.Byte(a, off) != e.mem.Byte(b, off) {
			return false
		}
	}
	return true
}

// Matches is the chain-walk predicate: the entry at a is non-nil, carries
// hash, has a key of key.Len() bytes, and those bytes equal key.
func (e *Entries) Matches(a Address, hash uint64, key KeySource) bool {
	if a == Nil || e.Hash(a) != hash {
		return false
	}
	n := uint64(key.Len())
	if e.KeyLen(a) != n {
		return false
	}
	return e.CompareKey(a, key.Bytes(), n)
}

// SameKey is CompareEntryKeys guarded by the stored hashes and lengths, for
// comparing an unlinked candidate against a chain member.
func (e *Entries) SameKey(a, b Address) bool {
	if a == Nil || b == Nil || e.Hash(a) != e.Hash(b) {
		return false
	}
	n := e.KeyLen(a)
	if e.KeyLen(b) != n {
		return false
	}
	return e.CompareEntryKeys(a, b, n)
}
