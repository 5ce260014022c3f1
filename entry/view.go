package entry

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// View is a bounded, non-owning window over part of an entry block.
// Reads and writes go straight to entry memory; nothing is copied.
//
// A View does not keep the entry alive. The holder must own a reference
// (see Entries.Reference) for as long as the View is used and drop it with
// Dereference afterwards. Using a View after the entry's last reference is
// gone is undefined. Multi-byte accessors use native byte order.
//
// The zero View is empty and valid.
type View struct {
	entry Address
	buf   []byte // cap(buf) == len(buf)
}

// View returns a window over [a+off, a+off+n). The range must lie inside
// the block, whose size is AllocLen(a).
func (e *Entries) View(a Address, off, n uint64) (View, error) {
	if a == Nil {
		return View{}, fmt.Errorf("view of nil entry: %w", ErrInvalidArgument)
	}
	size := e.AllocLen(a)
	if end := off + n; end < off || end > size {
		return View{}, fmt.Errorf("view [%d,%d) of %v (%d bytes): %w", off, off+n, a, size, ErrOutOfBounds)
	}
	return e.window(a, off, n), nil
}

// KeyView returns a window over the entry's key bytes.
func (e *Entries) KeyView(a Address) View {
	return e.window(a, OffData, e.KeyLen(a))
}

// ValueView returns a window over the entry's value bytes.
func (e *Entries) ValueView(a Address) View {
	return e.window(a, OffData+e.KeyLen(a), e.ValueLen(a))
}

func (e *Entries) window(a Address, off, n uint64) View {
	return View{entry: a, buf: e.view.Window(a, off, n)}
}

// Entry returns the address whose reference must be held while v is used.
func (v View) Entry() Address { return v.entry }

// Len returns the window length in bytes.
func (v View) Len() int { return len(v.buf) }

// Bytes returns the window as a slice aliasing entry memory. Its capacity
// equals its length, so append never writes past the window.
func (v View) Bytes() []byte { return v.buf }

// Clone copies the window into a fresh heap slice that outlives the entry.
func (v View) Clone() []byte { return bytes.Clone(v.buf) }

// Equal reports whether the window holds exactly b.
func (v View) Equal(b []byte) bool { return bytes.Equal(v.buf, b) }

// Byte returns the byte at i.
func (v View) Byte(i int) byte { return v.buf[i] }

// PutByte sets the byte at i.
func (v View) PutByte(i int, b byte) { v.buf[i] = b }

// Uint16 reads a native-order uint16 at off.
func (v View) Uint16(off int) uint16 { return binary.NativeEndian.Uint16(v.buf[off:]) }

// Uint32 reads a native-order uint32 at off.
func (v View) Uint32(off int) uint32 { return binary.NativeEndian.Uint32(v.buf[off:]) }

// Uint64 reads a native-order uint64 at off.
func (v View) Uint64(off int) uint64 { return binary.NativeEndian.Uint64(v.buf[off:]) }

// PutUint16 writes a native-order uint16 at off.
func (v View) PutUint16(off int, x uint16) { binary.NativeEndian.PutUint16(v.buf[off:], x) }

// PutUint32 writes a native-order uint32 at off.
func (v View) PutUint32(off int, x uint32) { binary.NativeEndian.PutUint32(v.buf[off:], x) }

// PutUint64 writes a native-order uint64 at off.
func (v View) PutUint64(off int, x uint64) { binary.NativeEndian.PutUint64(v.buf[off:], x) }

// ReadAt implements io.ReaderAt over the window.
func (v View) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("view read at %d: %w", off, ErrOutOfBounds)
	}
	if off >= int64(len(v.buf)) {
		return 0, io.EOF
	}
	n := copy(p, v.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteTo implements io.WriterTo, writing the whole window to w.
func (v View) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(v.buf)
	return int64(n), err
}

var (
	_ io.ReaderAt = View{}
	_ io.WriterTo = View{}
)
