// pkg/buffer/chunks.go

package buffer

import "AveBuf/pkg/utils"

// Chunks is a lazy, one-shot splitter. It owns the not-yet-consumed part of
// the source view and hands out fixed-size prefixes of it in order. When
// the source is not evenly divisible, the last chunk holds the remainder.
type Chunks struct {
    view *View
    size int
}

// Next returns the next chunk, or nil when the sequence is exhausted. The
// read count of a drained sequence is released by the call that observes
// exhaustion.
func (c *Chunks) Next() *View {
    if c.view == nil {
        return nil
    }
    if c.view.IsEmpty() {
        c.Release()
        return nil
    }
    n := utils.Min(c.size, c.view.length)
    chunk, _ := c.view.SplitTo(n)
    return chunk
}

// Remaining returns how many chunks Next has yet to produce.
func (c *Chunks) Remaining() int {
    if c.view == nil {
        return 0
    }
    n := c.view.length / c.size
    if c.view.length%c.size != 0 {
        n++
    }
    return n
}

// Release drops the unconsumed remainder and its read access. Idempotent.
func (c *Chunks) Release() {
    if c.view != nil {
        c.view.Release()
        c.view = nil
    }
}

// MutChunks is the writable counterpart of Chunks. Terminal status follows
// the usual split rule: only the final chunk of a terminal source view can
// end up with growth rights.
type MutChunks struct {
    view *MutView
    size int
}

// Next returns the next writable chunk, or nil when exhausted.
func (c *MutChunks) Next() *MutView {
    if c.view == nil {
        return nil
    }
    if c.view.IsEmpty() {
        c.Release()
        return nil
    }
    n := utils.Min(c.size, c.view.length)
    chunk, _ := c.view.SplitTo(n)
    return chunk
}

// Remaining returns how many chunks Next has yet to produce.
func (c *MutChunks) Remaining() int {
    if c.view == nil {
        return 0
    }
    n := c.view.length / c.size
    if c.view.length%c.size != 0 {
        n++
    }
    return n
}

// Release drops the unconsumed remainder and its write access. Idempotent.
func (c *MutChunks) Release() {
    if c.view != nil {
        c.view.Release()
        c.view = nil
    }
}
