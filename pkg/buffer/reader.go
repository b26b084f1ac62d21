// pkg/buffer/reader.go

package buffer

import (
    "io"

    "github.com/pkg/errors"
)

var (
    _ io.Reader   = (*Reader)(nil)
    _ io.ReaderAt = (*Reader)(nil)
    _ io.Closer   = (*Reader)(nil)
    _ io.Writer   = (*Writer)(nil)
    _ io.Closer   = (*Writer)(nil)
)

// Reader adapts a View to io.Reader and io.ReaderAt. It takes ownership of
// the view; Close releases it.
type Reader struct {
    v   *View
    off int
}

func NewReader(v *View) *Reader {
    return &Reader{v: v}
}

func (r *Reader) Read(p []byte) (int, error) {
    n, err := r.ReadAt(p, int64(r.off))
    r.off += n
    return n, err
}

func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
    if len(p) == 0 {
        return 0, nil
    }
    if r.v == nil {
        return 0, errors.New("view is already released")
    }
    if off < 0 {
        return 0, errors.New("negative read offset")
    }
    if int(off) >= r.v.Len() {
        return 0, io.EOF
    }
    n := copy(p, r.v.Bytes()[off:])
    if n < len(p) {
        return n, io.EOF
    }
    return n, nil
}

func (r *Reader) Close() error {
    if r.v != nil {
        r.v.Release()
        r.v = nil
    }
    return nil
}

// Writer adapts a MutView to a sequential write cursor: bytes inside the
// view are overwritten in place regardless of growth rights, and writing
// past the current end appends, which needs the view to be terminal. It
// takes ownership of the view; Close releases it.
type Writer struct {
    m   *MutView
    off int
}

func NewWriter(m *MutView) *Writer {
    return &Writer{m: m}
}

func (w *Writer) Write(p []byte) (int, error) {
    if w.m == nil {
        return 0, errors.New("view is already released")
    }
    var n int
    if w.off < w.m.Len() {
        n = copy(w.m.Bytes()[w.off:], p)
        w.off += n
    }
    if n < len(p) {
        if err := w.m.TryExtend(p[n:]); err != nil {
            return n, err
        }
        w.off += len(p) - n
        n = len(p)
    }
    return n, nil
}

func (w *Writer) Close() error {
    if w.m != nil {
        w.m.Release()
        w.m = nil
    }
    return nil
}
