// pkg/buffer/shared.go

// Package buffer manages shared access to a single growable byte buffer.
//
// A Shared owns the storage but cannot touch the bytes itself. Access goes
// through View (shared, read-only) and MutView (exclusive, writable) handles,
// which can be split into smaller non-overlapping handles and merged back.
// At any instant the buffer has either readers or one group of disjoint
// writers, never both; conflicting acquisitions fail instead of blocking.
package buffer

import (
    "runtime"
    "sync/atomic"

    "AveBuf/pkg/utils"
    "github.com/pkg/errors"
)

var logger = utils.GetLogger("avebuf")

// Readers are counted in the low half of one word and writers in the high
// half, so a single compare-and-swap can inspect both sides at once.
const (
    writerShift = 32
    readerMask  = 1<<writerShift - 1
    oneWriter   = 1 << writerShift
)

var (
    // ErrAccessDenied means the requested access conflicts with views that
    // are still alive.
    ErrAccessDenied = errors.New("conflicting views are active")
    // ErrNotSoleOwner means an operation requiring total exclusivity found
    // outstanding views.
    ErrNotSoleOwner = errors.New("buffer has outstanding views")
    // ErrRange means a requested sub-range or split point is out of bounds.
    ErrRange = errors.New("range out of bounds")
    // ErrNotContiguous means the two views passed to Unsplit are not
    // adjacent ranges of the same buffer.
    ErrNotContiguous = errors.New("views are not contiguous")
    // ErrNotExtensible means a growth operation was attempted through a
    // view that does not reach the end of the buffer.
    ErrNotExtensible = errors.New("view does not reach the end of the buffer")
)

// Shared is the owner of a byte buffer. Handles minted from it keep it
// alive, so a Shared may be dropped while its views live on.
type Shared struct {
    accessors uint64 // atomic; readers low half, writers high half
    buf       []byte
    offHeap   bool
}

// New creates a Shared owning `data`.
func New(data []byte) *Shared {
    return &Shared{buf: data}
}

// FromString creates a Shared holding a copy of `s`.
func FromString(s string) *Shared {
    return New([]byte(s))
}

// WithCapacity creates an empty Shared that can hold `capacity` bytes
// without reallocating. It can only be populated through a MutView.
func WithCapacity(capacity int) *Shared {
    return New(make([]byte, 0, capacity))
}

// Uninitialized creates a Shared of the given length backed by off-heap
// memory whose content is unspecified. Every byte must be written before it
// is read. This is an explicit opt-in for large buffers that will be filled
// by I/O; use WithCapacity unless the zero-fill actually shows up in a
// profile.
func Uninitialized(length int) *Shared {
    s := &Shared{buf: utils.Alloc(length), offHeap: true}
    runtime.SetFinalizer(s, func(s *Shared) {
        if n := atomic.LoadUint64(&s.accessors); n != 0 {
            logger.Errorf("buffer %p collected with %d readers and %d writers still counted",
                s, n&readerMask, n>>writerShift)
        }
        if s.buf != nil {
            utils.Free(s.buf[:cap(s.buf)])
            s.buf = nil
        }
    })
    return s
}

// Len returns the number of bytes in the buffer.
func (s *Shared) Len() int {
    return len(s.buf)
}

// Cap returns the number of bytes the buffer can hold without reallocating.
func (s *Shared) Cap() int {
    return cap(s.buf)
}

// IsEmpty returns true if the buffer has length 0.
func (s *Shared) IsEmpty() bool {
    return len(s.buf) == 0
}

// TryView returns a read-only View covering the whole buffer. It fails with
// ErrAccessDenied if any MutView is alive. Any number of Views may coexist.
func (s *Shared) TryView() (*View, error) {
    if atomic.AddUint64(&s.accessors, 1)>>writerShift != 0 {
        atomic.AddUint64(&s.accessors, ^uint64(0))
        return nil, ErrAccessDenied
    }
    return &View{shared: s, length: len(s.buf)}, nil
}

// TryMut returns a writable MutView covering the whole buffer. It fails
// with ErrAccessDenied if any View or MutView is alive.
func (s *Shared) TryMut() (*MutView, error) {
    if !atomic.CompareAndSwapUint64(&s.accessors, 0, oneWriter) {
        return nil, ErrAccessDenied
    }
    return &MutView{shared: s, length: len(s.buf)}, nil
}

// Take hands back the underlying buffer and leaves the Shared empty. It
// fails with ErrNotSoleOwner while any view is alive. Off-heap storage is
// copied onto the heap so the caller never sees memory it cannot own.
func (s *Shared) Take() ([]byte, error) {
    if !atomic.CompareAndSwapUint64(&s.accessors, 0, oneWriter) {
        return nil, ErrNotSoleOwner
    }
    b := s.buf
    s.buf = nil
    if s.offHeap {
        heap := make([]byte, len(b))
        copy(heap, b)
        utils.Free(b[:cap(b)])
        b = heap
        s.offHeap = false
    }
    atomic.AddUint64(&s.accessors, ^uint64(oneWriter-1))
    return b, nil
}

// grow makes room for `additional` more bytes, relocating the buffer if
// needed. Only reachable through a MutView, so no reader can observe the
// move; handles index into s.buf and stay valid across it.
func (s *Shared) grow(additional int) {
    need := len(s.buf) + additional
    if need <= cap(s.buf) {
        return
    }
    newcap := 2 * cap(s.buf)
    if newcap < need {
        newcap = need
    }
    if s.offHeap {
        nb := utils.Alloc(newcap)
        n := copy(nb, s.buf)
        utils.Free(s.buf[:cap(s.buf)])
        s.buf = nb[:n]
    } else {
        nb := make([]byte, len(s.buf), newcap)
        copy(nb, s.buf)
        s.buf = nb
    }
}

func (s *Shared) addReader() {
    atomic.AddUint64(&s.accessors, 1)
}

func (s *Shared) releaseReader() {
    atomic.AddUint64(&s.accessors, ^uint64(0))
}

func (s *Shared) addWriter() {
    atomic.AddUint64(&s.accessors, oneWriter)
}

func (s *Shared) releaseWriter() {
    atomic.AddUint64(&s.accessors, ^uint64(oneWriter-1))
}
