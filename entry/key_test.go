package entry

import (
	"bytes"
	"testing"
)

// Lengths around the word size exercise both the word loop and the
// byte-wise tail; the last byte differs to catch a short tail loop.
func TestKey_CompareLengths(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	for _, n := range []int{0, 1, 7, 8, 9, 15, 16, 17, 63, 64, 65} {
		key := make([]byte, n)
		for i := range key {
			key[i] = byte(i*31 + 7)
		}
		a := put(t, es, ar, uint64(n), key, []byte("trailing-value"))

		if !es.CompareKey(a, key, uint64(n)) {
			t.Fatalf("n=%d: CompareKey must match own key", n)
		}
		if n == 0 {
			continue
		}
		for _, pos := range []int{0, n / 2, n - 1} {
			other := bytes.Clone(key)
			other[pos] ^= 0xff
			if es.CompareKey(a, other, uint64(n)) {
				t.Fatalf("n=%d: CompareKey must fail with byte %d flipped", n, pos)
			}
		}
	}
}

func TestKey_CompareSentinelAndShortCandidate(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	a := put(t, es, ar, 1, []byte("abcdefghij"), nil)

	if es.CompareKey(Nil, []byte("abcdefghij"), 10) {
		t.Fatal("CompareKey(Nil) must be false")
	}
	if es.CompareKey(a, []byte("abc"), 10) {
		t.Fatal("candidate shorter than n must not match")
	}
	// A longer candidate buffer is fine; only the first n bytes count.
	if !es.CompareKey(a, []byte("abcdefghij-extra"), 10) {
		t.Fatal("prefix of a longer buffer must match")
	}
}

func TestKey_CompareEntryKeys(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	for _, n := range []int{1, 5, 8, 13, 24} {
		key := bytes.Repeat([]byte{'k'}, n)
		a := put(t, es, ar, 5, key, []byte("first"))
		b := put(t, es, ar, 5, key, []byte("second value"))

		if !es.CompareEntryKeys(a, b, uint64(n)) {
			t.Fatalf("n=%d: identical keys must compare equal", n)
		}
		if !es.SameKey(a, b) {
			t.Fatalf("n=%d: SameKey must hold", n)
		}

		diff := bytes.Clone(key)
		diff[n-1] = 'x'
		c := put(t, es, ar, 5, diff, []byte("first"))
		if es.CompareEntryKeys(a, c, uint64(n)) {
			t.Fatalf("n=%d: keys differing in the last byte must compare unequal", n)
		}
		if es.SameKey(a, c) {
			t.Fatalf("n=%d: SameKey must fail", n)
		}
	}

	a := put(t, es, ar, 1, []byte("x"), nil)
	if es.CompareEntryKeys(Nil, a, 1) || es.CompareEntryKeys(a, Nil, 1) {
		t.Fatal("Nil on either side must compare unequal")
	}
}

// Entries whose keys differ only past n bytes of the value region must not
// be confused with each other: the tail loop stops at n.
func TestKey_CompareEntryKeysStopsAtLength(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	a := put(t, es, ar, 1, []byte("same"), []byte("A"))
	b := put(t, es, ar, 1, []byte("same"), []byte("B"))
	if !es.CompareEntryKeys(a, b, 4) {
		t.Fatal("comparison must not read the first value byte")
	}
}

func TestKey_Matches(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	a := put(t, es, ar, 77, []byte("user:1"), []byte("v"))

	cases := []struct {
		name string
		hash uint64
		key  string
		want bool
	}{
		{"match", 77, "user:1", true},
		{"wrong hash", 78, "user:1", false},
		{"wrong length", 77, "user:10", false},
		{"wrong bytes", 77, "user:2", false},
	}
	for _, c := range cases {
		if got := es.Matches(a, c.hash, Key(c.key)); got != c.want {
			t.Fatalf("%s: Matches = %v, want %v", c.name, got, c.want)
		}
	}
	if es.Matches(Nil, 77, Key("user:1")) {
		t.Fatal("Matches(Nil) must be false")
	}
}

// Fuzz CompareKey against bytes.Equal on arbitrary stored/candidate pairs.
func FuzzCompareKey(f *testing.F) {
	f.Add([]byte("abc"), []byte("abc"))
	f.Add([]byte("abcdefgh"), []byte("abcdefgX"))
	f.Add([]byte("abcdefghi"), []byte("abcdefghJ"))
	f.Add([]byte{}, []byte{})

	f.Fuzz(func(t *testing.T, stored, candidate []byte) {
		const limit = 1 << 10
		if len(stored) > limit {
			stored = stored[:limit]
		}
		if len(candidate) > limit {
			candidate = candidate[:limit]
		}
		es, ar := newTestEntries(t)
		a := put(t, es, ar, 0, stored, []byte{0xee})

		n := uint64(len(stored))
		want := len(candidate) >= len(stored) && bytes.Equal(stored, candidate[:len(stored)])
		if got := es.CompareKey(a, candidate, n); got != want {
			t.Fatalf("CompareKey(%q, %q) = %v, want %v", stored, candidate, got, want)
		}
	})
}

func BenchmarkCompareKey(b *testing.B) {
	es, ar := newTestEntries(b)
	key := bytes.Repeat([]byte("0123456789"), 7) // 70 bytes: words plus a tail
	a := put(b, es, ar, 1, key, []byte("v"))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !es.CompareKey(a, key, uint64(len(key))) {
			b.Fatal("mismatch")
		}
	}
}
