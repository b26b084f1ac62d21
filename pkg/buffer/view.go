// pkg/buffer/view.go

package buffer

import (
    "bytes"
    "sync/atomic"

    "github.com/pkg/errors"
)

// View is a read-only window into a Shared buffer. Views of the same buffer
// may overlap freely; none of them can observe a write, because writers are
// locked out while any View is alive.
//
// A View counts as one reader until Release is called. Operations that
// consume the view (TryMut, Chunks) take that count with them.
type View struct {
    shared *Shared
    off    int
    length int
}

// Len returns the length of this view, not of the underlying storage.
func (v *View) Len() int {
    return v.length
}

// IsEmpty returns true if the View has length 0.
func (v *View) IsEmpty() bool {
    return v.length == 0
}

// Bytes returns the bytes this view covers. The returned slice aliases the
// shared storage and must not be modified.
func (v *View) Bytes() []byte {
    return v.shared.buf[v.off : v.off+v.length]
}

func (v *View) String() string {
    return string(v.Bytes())
}

// Slice returns a new View covering [begin, end) of this view's own range.
// Both views remain valid and are released independently.
func (v *View) Slice(begin, end int) (*View, error) {
    if begin < 0 || begin > end || end > v.length {
        return nil, errors.Wrapf(ErrRange, "slice [%d:%d) of a %d-byte view", begin, end, v.length)
    }
    v.shared.addReader()
    return &View{shared: v.shared, off: v.off + begin, length: end - begin}, nil
}

// SliceFrom returns a new View covering [begin, len).
func (v *View) SliceFrom(begin int) (*View, error) {
    return v.Slice(begin, v.length)
}

// SliceTo returns a new View covering [0, end).
func (v *View) SliceTo(end int) (*View, error) {
    return v.Slice(0, end)
}

// Clone returns an independent View over the same range.
func (v *View) Clone() *View {
    nv, _ := v.Slice(0, v.length)
    return nv
}

// SplitOff divides the view at `at`. Afterwards v covers [0, at) and the
// returned View covers [at, len). O(1), no bytes move.
func (v *View) SplitOff(at int) (*View, error) {
    if at < 0 || at > v.length {
        return nil, errors.Wrapf(ErrRange, "split at %d of a %d-byte view", at, v.length)
    }
    v.shared.addReader()
    right := &View{shared: v.shared, off: v.off + at, length: v.length - at}
    v.length = at
    return right, nil
}

// SplitTo divides the view at `at`. Afterwards v covers [at, len) and the
// returned View covers [0, at).
func (v *View) SplitTo(at int) (*View, error) {
    if at < 0 || at > v.length {
        return nil, errors.Wrapf(ErrRange, "split at %d of a %d-byte view", at, v.length)
    }
    v.shared.addReader()
    left := &View{shared: v.shared, off: v.off, length: at}
    v.off += at
    v.length -= at
    return left, nil
}

// Unsplit merges `other` into v. The two views must belong to the same
// Shared and be adjacent, in either order; otherwise ErrNotContiguous is
// returned and both views stay valid. On success `other` is released.
func (v *View) Unsplit(other *View) error {
    if other == v || v.shared != other.shared {
        return ErrNotContiguous
    }
    switch {
    case v.off+v.length == other.off:
        v.length += other.length
    case other.off+other.length == v.off:
        v.off = other.off
        v.length += other.length
    default:
        return ErrNotContiguous
    }
    other.Release()
    return nil
}

// TryMut upgrades the view to a MutView over the same range. It succeeds
// only when v is the sole view of the buffer; on success v is consumed, on
// failure it stays usable.
func (v *View) TryMut() (*MutView, error) {
    if !atomic.CompareAndSwapUint64(&v.shared.accessors, 1, oneWriter) {
        return nil, ErrAccessDenied
    }
    m := &MutView{shared: v.shared, off: v.off, length: v.length}
    v.shared = nil
    return m, nil
}

// Chunks consumes the view and returns a sequence of `size`-byte chunks.
// The last chunk holds the remainder when the length is not a multiple of
// size. A zero or negative size is ErrRange.
func (v *View) Chunks(size int) (*Chunks, error) {
    if size <= 0 {
        return nil, errors.Wrapf(ErrRange, "chunk size %d", size)
    }
    return &Chunks{view: v, size: size}, nil
}

// Release gives up this view's read access. Idempotent.
func (v *View) Release() {
    if v.shared != nil {
        v.shared.releaseReader()
        v.shared = nil
    }
}

// Equal compares by content, not identity.
func (v *View) Equal(other *View) bool {
    return bytes.Equal(v.Bytes(), other.Bytes())
}

// EqualBytes reports whether the view's content equals p.
func (v *View) EqualBytes(p []byte) bool {
    return bytes.Equal(v.Bytes(), p)
}

// Compare orders two views by content, like bytes.Compare.
func (v *View) Compare(other *View) int {
    return bytes.Compare(v.Bytes(), other.Bytes())
}
