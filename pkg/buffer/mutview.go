// pkg/buffer/mutview.go

package buffer

import (
    "bytes"
    "io"

    "github.com/pkg/errors"
)

// MutView is an exclusive, writable window into a Shared buffer. Several
// MutViews may coexist after splitting, but their ranges never overlap, so
// writers of different fragments never touch the same bytes.
//
// Growth (TryExtend, the growing half of TryResize, Write) is only allowed
// through a terminal view, one whose range reaches the current end of the
// buffer. A fragment left behind by a split loses that right; the fragment
// that still ends at the buffer's end keeps it.
type MutView struct {
    shared *Shared
    off    int
    length int
}

var _ io.Writer = (*MutView)(nil)

// Len returns the length of this view, not of the underlying storage.
func (m *MutView) Len() int {
    return m.length
}

// IsEmpty returns true if the MutView has length 0.
func (m *MutView) IsEmpty() bool {
    return m.length == 0
}

// Bytes returns the writable bytes this view covers. The slice aliases the
// shared storage; it is private to this view until the view is split.
func (m *MutView) Bytes() []byte {
    return m.shared.buf[m.off : m.off+m.length]
}

func (m *MutView) String() string {
    return string(m.Bytes())
}

// IsTerminal reports whether the view reaches the current end of the
// buffer, which is what grants growth rights.
func (m *MutView) IsTerminal() bool {
    return m.off+m.length == len(m.shared.buf)
}

// Slice narrows the view to [begin, end) of its own range, consuming m.
// Unlike View.Slice the receiver does not stay valid: two writable views
// over overlapping bytes would break exclusivity. On error m is untouched.
func (m *MutView) Slice(begin, end int) (*MutView, error) {
    if begin < 0 || begin > end || end > m.length {
        return nil, errors.Wrapf(ErrRange, "slice [%d:%d) of a %d-byte view", begin, end, m.length)
    }
    nm := &MutView{shared: m.shared, off: m.off + begin, length: end - begin}
    m.shared = nil // the write count moves to the new view
    return nm, nil
}

// SliceFrom narrows the view to [begin, len), consuming m.
func (m *MutView) SliceFrom(begin int) (*MutView, error) {
    return m.Slice(begin, m.length)
}

// SliceTo narrows the view to [0, end), consuming m.
func (m *MutView) SliceTo(end int) (*MutView, error) {
    return m.Slice(0, end)
}

// SplitOff divides the view at `at`. Afterwards m covers [0, at) and the
// returned MutView covers [at, len). If m was terminal, the right half is
// the one that still reaches the buffer's end and keeps growth rights.
func (m *MutView) SplitOff(at int) (*MutView, error) {
    if at < 0 || at > m.length {
        return nil, errors.Wrapf(ErrRange, "split at %d of a %d-byte view", at, m.length)
    }
    m.shared.addWriter()
    right := &MutView{shared: m.shared, off: m.off + at, length: m.length - at}
    m.length = at
    return right, nil
}

// SplitTo divides the view at `at`. Afterwards m covers [at, len) and the
// returned MutView covers [0, at).
func (m *MutView) SplitTo(at int) (*MutView, error) {
    if at < 0 || at > m.length {
        return nil, errors.Wrapf(ErrRange, "split at %d of a %d-byte view", at, m.length)
    }
    m.shared.addWriter()
    left := &MutView{shared: m.shared, off: m.off, length: at}
    m.off += at
    m.length -= at
    return left, nil
}

// Unsplit merges `other` into m. Same contiguity rule as View.Unsplit; on
// success `other` is released and the merged view is terminal iff its end
// equals the buffer's current length.
func (m *MutView) Unsplit(other *MutView) error {
    if other == m || m.shared != other.shared {
        return ErrNotContiguous
    }
    switch {
    case m.off+m.length == other.off:
        m.length += other.length
    case other.off+other.length == m.off:
        m.off = other.off
        m.length += other.length
    default:
        return ErrNotContiguous
    }
    other.Release()
    return nil
}

// Freeze downgrades the view to a read-only View over the same range.
// Exclusive-to-shared always succeeds; m is consumed.
func (m *MutView) Freeze() *View {
    s := m.shared
    // Take the read count before dropping the write count so no other
    // writer can be minted in between.
    s.addReader()
    v := &View{shared: s, off: m.off, length: m.length}
    m.shared = nil
    s.releaseWriter()
    return v
}

// Park trades this view's exclusivity for a rights-free Parked handle over
// the same range. m is consumed.
func (m *MutView) Park() *Parked {
    p := &Parked{shared: m.shared, off: m.off, length: m.length}
    m.shared.releaseWriter()
    m.shared = nil
    return p
}

// Reserve grows the buffer's capacity for at least `additional` more bytes
// without changing any length. Relocation is safe here: reaching this code
// means no reader exists, and handles address the buffer by index through
// the Shared, not by raw pointer.
func (m *MutView) Reserve(additional int) {
    m.shared.grow(additional)
}

// TryExtend appends p to this view and to the buffer. It fails with
// ErrNotExtensible, modifying nothing, unless the view is terminal.
func (m *MutView) TryExtend(p []byte) error {
    if !m.IsTerminal() {
        return ErrNotExtensible
    }
    s := m.shared
    s.grow(len(p))
    s.buf = append(s.buf, p...)
    m.length += len(p)
    return nil
}

// TryTruncate shrinks the view to newLen bytes. A terminal view shrinks
// the buffer with it; a non-terminal view only pulls its own end leftward,
// leaving the sibling fragments' bytes alone.
func (m *MutView) TryTruncate(newLen int) error {
    if newLen < 0 || newLen > m.length {
        return errors.Wrapf(ErrRange, "truncate to %d of a %d-byte view", newLen, m.length)
    }
    if m.IsTerminal() {
        m.shared.buf = m.shared.buf[:m.off+newLen]
    }
    m.length = newLen
    return nil
}

// TryResize grows the view to newLen bytes filled with `fill`, or shrinks
// it like TryTruncate. Growing requires a terminal view.
func (m *MutView) TryResize(newLen int, fill byte) error {
    switch {
    case newLen > m.length:
        if !m.IsTerminal() {
            return ErrNotExtensible
        }
        s := m.shared
        n := newLen - m.length
        s.grow(n)
        old := len(s.buf)
        s.buf = s.buf[:old+n]
        for i := old; i < len(s.buf); i++ {
            s.buf[i] = fill
        }
        m.length = newLen
    case newLen < m.length:
        return m.TryTruncate(newLen)
    }
    return nil
}

// Write implements io.Writer by appending, so it carries the same terminal
// requirement as TryExtend. Use Writer for overwrite-then-append cursor
// semantics, or Bytes for plain in-place access.
func (m *MutView) Write(p []byte) (int, error) {
    if err := m.TryExtend(p); err != nil {
        return 0, err
    }
    return len(p), nil
}

// Chunks consumes the view and returns a sequence of `size`-byte writable
// chunks. A zero or negative size is ErrRange.
func (m *MutView) Chunks(size int) (*MutChunks, error) {
    if size <= 0 {
        return nil, errors.Wrapf(ErrRange, "chunk size %d", size)
    }
    return &MutChunks{view: m, size: size}, nil
}

// Release gives up this view's write access. Idempotent.
func (m *MutView) Release() {
    if m.shared != nil {
        m.shared.releaseWriter()
        m.shared = nil
    }
}

// Equal compares by content, not identity.
func (m *MutView) Equal(other *MutView) bool {
    return bytes.Equal(m.Bytes(), other.Bytes())
}

// EqualBytes reports whether the view's content equals p.
func (m *MutView) EqualBytes(p []byte) bool {
    return bytes.Equal(m.Bytes(), p)
}

// Compare orders two views by content, like bytes.Compare.
func (m *MutView) Compare(other *MutView) int {
    return bytes.Compare(m.Bytes(), other.Bytes())
}
