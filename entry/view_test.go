package entry

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestView_Bounds(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	a := put(t, es, ar, 1, []byte("key"), []byte("value"))
	size := es.AllocLen(a)

	if _, err := es.View(a, 0, size); err != nil {
		t.Fatalf("whole block: %v", err)
	}
	if _, err := es.View(a, size, 0); err != nil {
		t.Fatalf("empty view at end: %v", err)
	}
	for _, c := range []struct{ off, n uint64 }{
		{0, size + 1},
		{size, 1},
		{size + 1, 0},
		{1, ^uint64(0)}, // wraps
	} {
		if _, err := es.View(a, c.off, c.n); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("View(%d,%d): want ErrOutOfBounds, got %v", c.off, c.n, err)
		}
	}
	if _, err := es.View(Nil, 0, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("View(Nil): want ErrInvalidArgument, got %v", err)
	}
}

func TestView_KeyAndValue(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	a := put(t, es, ar, 9, []byte("session:7"), []byte("hello world"))

	k, v := es.KeyView(a), es.ValueView(a)
	if diff := cmp.Diff([]byte("session:7"), k.Bytes()); diff != "" {
		t.Fatalf("key (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte("hello world"), v.Bytes()); diff != "" {
		t.Fatalf("value (-want +got):\n%s", diff)
	}
	if cap(v.Bytes()) != v.Len() {
		t.Fatalf("cap = %d, want %d", cap(v.Bytes()), v.Len())
	}
	if k.Entry() != a || v.Entry() != a {
		t.Fatal("views must report their entry")
	}

	// Appending to a window must not touch the neighbouring bytes.
	neighbour := put(t, es, ar, 10, []byte("n"), []byte("untouched"))
	_ = append(v.Bytes(), 'X')
	if !es.ValueView(neighbour).Equal([]byte("untouched")) {
		t.Fatal("append spilled out of the window")
	}
}

// The header is readable through a view in native order.
func TestView_HeaderWords(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	a := put(t, es, ar, 0xdeadbeefcafe, []byte("k"), []byte("v"))

	h, err := es.View(a, 0, HeaderSize)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.Uint64(int(OffHash)); got != es.Hash(a) {
		t.Fatalf("HASH word = %#x, want %#x", got, es.Hash(a))
	}
	if got := h.Uint64(int(OffKeyLength)); got != 1 {
		t.Fatalf("KEY_LENGTH word = %d, want 1", got)
	}
	if got := h.Uint64(int(OffRefCount)); got != 1 {
		t.Fatalf("REFCOUNT word = %d, want 1", got)
	}
}

func TestView_WritesGoToEntryMemory(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	a := put(t, es, ar, 1, []byte("k"), make([]byte, 16))

	v := es.ValueView(a)
	v.PutUint16(0, 0xbeef)
	v.PutUint32(2, 0x01020304)
	v.PutUint64(8, 1<<60|5)
	v.PutByte(6, 'z')

	w := es.ValueView(a)
	if w.Uint16(0) != 0xbeef || w.Uint32(2) != 0x01020304 || w.Uint64(8) != 1<<60|5 {
		t.Fatalf("round-trip mismatch: %x", w.Bytes())
	}
	if w.Byte(6) != 'z' {
		t.Fatalf("Byte(6) = %q", w.Byte(6))
	}
}

func TestView_ReadAt(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	a := put(t, es, ar, 1, []byte("k"), []byte("0123456789"))
	v := es.ValueView(a)

	p := make([]byte, 4)
	if n, err := v.ReadAt(p, 2); n != 4 || err != nil || string(p) != "2345" {
		t.Fatalf("ReadAt(2) = %d, %v, %q", n, err, p)
	}
	if n, err := v.ReadAt(p, 8); n != 2 || err != io.EOF || string(p[:n]) != "89" {
		t.Fatalf("ReadAt(8) = %d, %v, %q", n, err, p[:n])
	}
	if n, err := v.ReadAt(p, 10); n != 0 || err != io.EOF {
		t.Fatalf("ReadAt(10) = %d, %v", n, err)
	}
	if _, err := v.ReadAt(p, -1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("ReadAt(-1): want ErrOutOfBounds, got %v", err)
	}

	r := io.NewSectionReader(v, 0, int64(v.Len()))
	all, err := io.ReadAll(r)
	if err != nil || string(all) != "0123456789" {
		t.Fatalf("section read = %q, %v", all, err)
	}
}

func TestView_WriteToAndClone(t *testing.T) {
	t.Parallel()

	es, ar := newTestEntries(t)
	a := put(t, es, ar, 1, []byte("k"), []byte("payload"))
	v := es.ValueView(a)

	var buf bytes.Buffer
	if n, err := v.WriteTo(&buf); n != 7 || err != nil {
		t.Fatalf("WriteTo = %d, %v", n, err)
	}
	if buf.String() != "payload" {
		t.Fatalf("WriteTo wrote %q", buf.String())
	}

	c := v.Clone()
	v.PutByte(0, 'P')
	if string(c) != "payload" {
		t.Fatalf("clone changed with entry memory: %q", c)
	}
	if !v.Equal([]byte("Payload")) {
		t.Fatalf("view = %q", v.Bytes())
	}
}

func TestView_Zero(t *testing.T) {
	t.Parallel()

	var v View
	if v.Len() != 0 || v.Entry() != Nil || len(v.Clone()) != 0 {
		t.Fatal("zero View must be empty")
	}
	if n, err := v.ReadAt(make([]byte, 1), 0); n != 0 || err != io.EOF {
		t.Fatalf("ReadAt on zero View = %d, %v", n, err)
	}
}
