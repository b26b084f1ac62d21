// pkg/utils/alloc.go

//go:build !windows

package utils

import (
    "sync/atomic"

    "golang.org/x/sys/unix"
)

var logger = GetLogger("avebuf")

var allocated int64

// Alloc returns `size` bytes of off-heap memory. The memory is not managed
// by the Go garbage collector and must be returned with Free.
func Alloc(size int) []byte {
    if size == 0 {
        return nil
    }
    b, err := unix.Mmap(-1, 0, size,
        unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
    if err != nil {
        logger.Fatalf("mmap %d bytes: %s", size, err)
    }
    atomic.AddInt64(&allocated, int64(cap(b)))
    return b[:size]
}

// Free returns memory obtained from Alloc. The slice must cover the whole
// allocation, so callers reslice with b[:cap(b)] before handing it back.
func Free(b []byte) {
    if cap(b) == 0 {
        return
    }
    atomic.AddInt64(&allocated, -int64(cap(b)))
    if err := unix.Munmap(b[:cap(b)]); err != nil {
        logger.Fatalf("munmap %d bytes: %s", cap(b), err)
    }
}

// AllocMemory returns the current amount of off-heap memory.
func AllocMemory() int64 {
    return atomic.LoadInt64(&allocated)
}
