//go:build invariants

package entry

import "testing"

func TestInvariants_ReferenceAfterRelease(t *testing.T) {
	es, ar := newTestEntries(t)
	a := put(t, es, ar, 1, []byte("k"), []byte("v"))
	if !es.Dereference(a) {
		t.Fatal("single holder must see zero")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Reference on a released entry must panic")
		}
	}()
	es.Reference(a)
}

func TestInvariants_DereferenceAfterFree(t *testing.T) {
	es, ar := newTestEntries(t)
	a := put(t, es, ar, 1, []byte("k"), []byte("v"))
	size := es.AllocLen(a)
	if !es.Dereference(a) {
		t.Fatal("single holder must see zero")
	}
	ar.Free(a, size)

	defer func() {
		if recover() == nil {
			t.Fatal("Dereference on a freed entry must panic")
		}
	}()
	es.Dereference(a)
}
