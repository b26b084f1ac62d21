// pkg/buffer/mutview_test.go

package buffer

import (
    "io"
    "sync/atomic"
    "testing"

    "github.com/stretchr/testify/require"
)

func mustMut(t *testing.T, s *Shared) *MutView {
    t.Helper()
    m, err := s.TryMut()
    require.NoError(t, err)
    return m
}

func TestMutViewInPlace(t *testing.T) {
    s := New(make([]byte, 8))
    m := mustMut(t, s)
    copy(m.Bytes()[0:4], "Blue")
    require.Equal(t, []byte("Blue\x00\x00\x00\x00"), m.Bytes())
    v := m.Freeze()
    require.Equal(t, byte('B'), v.Bytes()[0])
    v.Release()
}

func TestMutViewTryExtend(t *testing.T) {
    s := WithCapacity(64)
    m := mustMut(t, s)
    require.True(t, m.IsTerminal())
    require.NoError(t, m.TryExtend([]byte{1, 2, 3}))
    require.NoError(t, m.TryExtend([]byte{4, 5, 6}))
    require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, m.Bytes())
    require.Equal(t, 6, s.Len())

    // a fragment cut off from the end has no growth rights
    right, err := m.SplitOff(3)
    require.NoError(t, err)
    require.False(t, m.IsTerminal())
    require.True(t, right.IsTerminal())
    require.ErrorIs(t, m.TryExtend([]byte{9}), ErrNotExtensible)
    require.Equal(t, []byte{1, 2, 3}, m.Bytes())
    require.Equal(t, 6, s.Len())

    require.NoError(t, right.TryExtend([]byte{7}))
    require.Equal(t, []byte{4, 5, 6, 7}, right.Bytes())
    require.Equal(t, 7, s.Len())

    m.Release()
    right.Release()
}

func TestMutViewExtendBeyondCapacity(t *testing.T) {
    s := WithCapacity(4)
    m := mustMut(t, s)
    data := make([]byte, 1000)
    for i := range data {
        data[i] = byte(i)
    }
    require.NoError(t, m.TryExtend(data))
    require.Equal(t, data, m.Bytes())
    require.GreaterOrEqual(t, s.Cap(), 1000)
    m.Release()
}

func TestMutViewFreeze(t *testing.T) {
    s := New([]byte{1, 2, 3, 4, 5, 6})
    m := mustMut(t, s)
    m.Bytes()[0] = 9
    v := m.Freeze()
    require.Equal(t, []byte{9, 2, 3, 4, 5, 6}, v.Bytes())
    // a frozen view is a plain reader; more readers may join
    v2, err := s.TryView()
    require.NoError(t, err)
    v2.Release()
    v.Release()
    require.Equal(t, uint64(0), atomic.LoadUint64(&s.accessors))
}

func TestMutViewTryTruncate(t *testing.T) {
    s := New([]byte{1, 2, 3, 4, 5, 6})
    m := mustMut(t, s)

    require.ErrorIs(t, m.TryTruncate(7), ErrRange)
    require.NoError(t, m.TryTruncate(3))
    require.Equal(t, []byte{1, 2, 3}, m.Bytes())
    require.Equal(t, 3, s.Len())
    m.Release()

    // a non-terminal fragment only narrows itself
    s = New([]byte{1, 2, 3, 4, 5, 6})
    m = mustMut(t, s)
    right, err := m.SplitOff(4)
    require.NoError(t, err)
    require.NoError(t, m.TryTruncate(1))
    require.Equal(t, []byte{1}, m.Bytes())
    require.Equal(t, 6, s.Len())
    require.Equal(t, []byte{5, 6}, right.Bytes())
    m.Release()
    right.Release()
}

func TestMutViewTryResize(t *testing.T) {
    s := WithCapacity(64)
    m := mustMut(t, s)

    require.NoError(t, m.TryResize(4, 0))
    require.Equal(t, []byte{0, 0, 0, 0}, m.Bytes())
    require.NoError(t, m.TryResize(6, 0xff))
    require.Equal(t, []byte{0, 0, 0, 0, 0xff, 0xff}, m.Bytes())
    require.NoError(t, m.TryResize(6, 1)) // no-op
    require.Equal(t, 6, m.Len())
    require.NoError(t, m.TryResize(2, 0))
    require.Equal(t, []byte{0, 0}, m.Bytes())
    require.Equal(t, 2, s.Len())

    right, err := m.SplitOff(1)
    require.NoError(t, err)
    require.ErrorIs(t, m.TryResize(5, 0), ErrNotExtensible)
    require.Equal(t, 1, m.Len())
    m.Release()
    right.Release()
}

func TestMutViewReserve(t *testing.T) {
    s := New([]byte{1, 2, 3, 4, 5, 6})
    m := mustMut(t, s)
    m.Reserve(66)
    require.GreaterOrEqual(t, s.Cap(), 72)
    require.Equal(t, 6, s.Len())
    require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, m.Bytes())

    // reserving through a non-terminal fragment is fine too
    right, err := m.SplitOff(3)
    require.NoError(t, err)
    m.Reserve(1000)
    require.GreaterOrEqual(t, s.Cap(), 1006)
    require.Equal(t, []byte{4, 5, 6}, right.Bytes())
    m.Release()
    right.Release()
}

func TestMutViewSlice(t *testing.T) {
    s := New([]byte{1, 2, 3, 4, 5, 6})
    m := mustMut(t, s)

    _, err := m.Slice(3, 2)
    require.ErrorIs(t, err, ErrRange)
    require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, m.Bytes()) // unchanged on error

    nm, err := m.Slice(1, 4)
    require.NoError(t, err)
    require.Equal(t, []byte{2, 3, 4}, nm.Bytes())
    // the write count moved with the narrowed view
    require.Equal(t, uint64(oneWriter), atomic.LoadUint64(&s.accessors))
    nm.Release()
    require.Equal(t, uint64(0), atomic.LoadUint64(&s.accessors))
}

func TestMutViewUnsplit(t *testing.T) {
    s := New([]byte{1, 2, 3, 4, 5, 6})
    m := mustMut(t, s)
    right, err := m.SplitOff(4)
    require.NoError(t, err)
    require.NoError(t, m.Unsplit(right))
    require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, m.Bytes())
    require.True(t, m.IsTerminal())
    require.Equal(t, uint64(oneWriter), atomic.LoadUint64(&s.accessors))

    mid, err := m.SplitOff(2)
    require.NoError(t, err)
    tail, err := mid.SplitOff(2)
    require.NoError(t, err)
    require.ErrorIs(t, m.Unsplit(tail), ErrNotContiguous)
    require.NoError(t, mid.Unsplit(tail))
    require.NoError(t, m.Unsplit(mid))
    m.Release()
    require.Equal(t, uint64(0), atomic.LoadUint64(&s.accessors))
}

func TestMutViewIoWriter(t *testing.T) {
    s := WithCapacity(16)
    m := mustMut(t, s)
    n, err := io.WriteString(m, "hello ")
    require.NoError(t, err)
    require.Equal(t, 6, n)
    n, err = m.Write([]byte("world"))
    require.NoError(t, err)
    require.Equal(t, 5, n)
    require.Equal(t, "hello world", m.String())

    left, err := m.SplitTo(5)
    require.NoError(t, err)
    _, err = left.Write([]byte("!"))
    require.ErrorIs(t, err, ErrNotExtensible)
    left.Release()
    m.Release()
}

func TestMutChunks(t *testing.T) {
    s := New([]byte{0, 1, 2, 3, 4, 5, 6, 7})
    m := mustMut(t, s)
    c, err := m.Chunks(3)
    require.NoError(t, err)
    require.Equal(t, 3, c.Remaining())

    var chunks []*MutView
    for chunk := c.Next(); chunk != nil; chunk = c.Next() {
        chunks = append(chunks, chunk)
    }
    require.Len(t, chunks, 3)
    require.Equal(t, []byte{6, 7}, chunks[2].Bytes())

    // only the last chunk still reaches the buffer's end
    require.False(t, chunks[0].IsTerminal())
    require.False(t, chunks[1].IsTerminal())
    require.True(t, chunks[2].IsTerminal())
    require.NoError(t, chunks[2].TryExtend([]byte{8}))
    require.ErrorIs(t, chunks[0].TryExtend([]byte{9}), ErrNotExtensible)

    for _, chunk := range chunks {
        for i := range chunk.Bytes() {
            chunk.Bytes()[i] += 100
        }
        chunk.Release()
    }
    v, err := s.TryView()
    require.NoError(t, err)
    require.Equal(t, []byte{100, 101, 102, 103, 104, 105, 106, 107, 108}, v.Bytes())
    v.Release()
}

func TestParked(t *testing.T) {
    s := New([]byte{1, 2, 3, 4, 5, 6})
    m := mustMut(t, s)
    right, err := m.SplitOff(3)
    require.NoError(t, err)

    parked := right.Park()
    require.Equal(t, 3, parked.Len())
    // parking released the fragment's exclusivity, but m still writes
    _, err = parked.TryMut()
    require.ErrorIs(t, err, ErrAccessDenied)
    dup := parked.Clone()
    m.Release()

    // terminal status is recomputed at reactivation
    back, err := dup.TryMut()
    require.NoError(t, err)
    require.True(t, back.IsTerminal())
    require.Equal(t, []byte{4, 5, 6}, back.Bytes())
    require.NoError(t, back.TryExtend([]byte{7}))
    back.Release()

    // the original parked handle survived its sibling's round trip
    v, err := parked.TryView()
    require.NoError(t, err)
    require.Equal(t, []byte{4, 5, 6}, v.Bytes())
    v2, err := parked.TryView()
    require.NoError(t, err)
    require.Equal(t, uint64(2), atomic.LoadUint64(&s.accessors))
    _, err = parked.TryMut()
    require.ErrorIs(t, err, ErrAccessDenied)
    v.Release()
    v2.Release()
}

func TestParkedViewDenied(t *testing.T) {
    s := New([]byte{1, 2, 3})
    m := mustMut(t, s)
    parked := m.Park()
    back, err := parked.TryMut()
    require.NoError(t, err)
    _, err = parked.TryView()
    require.ErrorIs(t, err, ErrAccessDenied)
    back.Release()
    v, err := parked.TryView()
    require.NoError(t, err)
    v.Release()
}

// The end-to-end flow from the documentation: build "hello", share it, then
// grow it through the terminal fragment only.
func TestAppendFreezeSplitScenario(t *testing.T) {
    s := WithCapacity(10)
    m := mustMut(t, s)
    require.NoError(t, m.TryExtend([]byte("hello")))
    require.Equal(t, 5, m.Len())
    require.True(t, m.IsTerminal())

    v := m.Freeze()
    require.Equal(t, "hello", v.String())
    mid, err := v.Slice(1, 4)
    require.NoError(t, err)
    require.Equal(t, "ell", mid.String())
    require.Equal(t, "hello", v.String())
    mid.Release()
    v.Release()

    m = mustMut(t, s)
    llo, err := m.SplitOff(2)
    require.NoError(t, err)
    require.Equal(t, "he", m.String())
    require.Equal(t, "llo", llo.String())
    require.ErrorIs(t, m.TryExtend([]byte("!")), ErrNotExtensible)
    require.NoError(t, llo.TryExtend([]byte("!")))
    require.Equal(t, "llo!", llo.String())
    require.NoError(t, m.Unsplit(llo))
    require.Equal(t, "hello!", m.String())
    m.Release()
}

func TestMutViewNegativePoints(t *testing.T) {
    s := New([]byte{1, 2, 3, 4, 5, 6})
    m := mustMut(t, s)
    right, err := m.SplitOff(3)
    require.NoError(t, err)

    // a negative point must not mint a view overlapping a sibling
    _, err = right.SplitOff(-1)
    require.ErrorIs(t, err, ErrRange)
    _, err = right.SplitTo(-1)
    require.ErrorIs(t, err, ErrRange)
    _, err = right.Slice(-1, 2)
    require.ErrorIs(t, err, ErrRange)

    copy(right.Bytes(), []byte{40, 50, 60})
    require.Equal(t, []byte{1, 2, 3}, m.Bytes())
    require.Equal(t, []byte{40, 50, 60}, right.Bytes())

    m.Release()
    right.Release()
    require.Equal(t, uint64(0), atomic.LoadUint64(&s.accessors))
}

func TestMutViewTruncateNegative(t *testing.T) {
    s := New([]byte{1, 2, 3, 4})
    m := mustMut(t, s)

    require.ErrorIs(t, m.TryTruncate(-1), ErrRange)
    require.Equal(t, []byte{1, 2, 3, 4}, m.Bytes())
    require.Equal(t, 4, s.Len())
    require.ErrorIs(t, m.TryResize(-1, 0), ErrRange)
    require.Equal(t, 4, m.Len())
    m.Release()

    // same refusal on a non-terminal fragment
    s = New([]byte{1, 2, 3, 4})
    m = mustMut(t, s)
    right, err := m.SplitOff(2)
    require.NoError(t, err)
    require.ErrorIs(t, m.TryTruncate(-1), ErrRange)
    require.Equal(t, []byte{1, 2}, m.Bytes())
    require.Equal(t, []byte{3, 4}, right.Bytes())
    m.Release()
    right.Release()
}

func TestMutViewUnsplitSelf(t *testing.T) {
    s := New([]byte{1, 2, 3})
    m := mustMut(t, s)
    empty, err := m.SplitOff(3)
    require.NoError(t, err)
    require.Equal(t, 0, empty.Len())

    require.ErrorIs(t, empty.Unsplit(empty), ErrNotContiguous)
    require.ErrorIs(t, m.Unsplit(m), ErrNotContiguous)

    require.NoError(t, m.Unsplit(empty))
    require.True(t, m.IsTerminal())
    m.Release()
    require.Equal(t, uint64(0), atomic.LoadUint64(&s.accessors))
}
