// pkg/buffer/parked.go

package buffer

import "sync/atomic"

// Parked retains a position in a Shared buffer without holding any access
// rights: it contributes to neither the reader nor the writer count and
// never blocks other handles from existing. It is cheap to copy around as a
// stable marker while exclusivity is given up, and can be reactivated once
// the buffer is free again.
type Parked struct {
    shared *Shared
    off    int
    length int
}

// Len returns the length of the parked range.
func (p *Parked) Len() int {
    return p.length
}

// Range returns the parked [start, end) offsets into the buffer.
func (p *Parked) Range() (start, end int) {
    return p.off, p.off + p.length
}

// Clone duplicates the handle. There are no rights to contend over, so
// duplication is unrestricted.
func (p *Parked) Clone() *Parked {
    c := *p
    return &c
}

// TryMut reactivates the handle into a MutView over the same range, under
// the same rule as Shared.TryMut: no view of any kind may be alive. The
// Parked handle itself stays intact and reusable either way. Whether the
// new view is terminal depends on the buffer's length right now, not on
// what it was when the handle was parked.
func (p *Parked) TryMut() (*MutView, error) {
    if !atomic.CompareAndSwapUint64(&p.shared.accessors, 0, oneWriter) {
        return nil, ErrAccessDenied
    }
    return &MutView{shared: p.shared, off: p.off, length: p.length}, nil
}

// TryView reactivates the handle into a read-only View over the same
// range. It fails with ErrAccessDenied while any MutView is alive.
func (p *Parked) TryView() (*View, error) {
    if atomic.AddUint64(&p.shared.accessors, 1)>>writerShift != 0 {
        p.shared.releaseReader()
        return nil, ErrAccessDenied
    }
    return &View{shared: p.shared, off: p.off, length: p.length}, nil
}
