// cmd/bench.go

package main

import (
	"fmt"
	"time"

	"AveBuf/pkg/buffer"
	"AveBuf/pkg/utils"
	"github.com/urfave/cli/v2"
)

func benchFlags() *cli.Command {
	return &cli.Command{
		Name:   "bench",
		Usage:  "run micro-benchmarks against a shared buffer",
		Action: bench,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  "buf-size",
				Value: 64,
				Usage: "size of the shared buffer in MiB",
			},
			&cli.UintFlag{
				Name:  "block-size",
				Value: 128,
				Usage: "fragment size in KiB",
			},
			&cli.UintFlag{
				Name:  "count",
				Value: 100,
				Usage: "number of rounds per phase",
			},
			&cli.BoolFlag{
				Name:  "offheap",
				Usage: "back the buffer with off-heap memory",
			},
		},
	}
}

func newBuffer(c *cli.Context, size int) *buffer.Shared {
	if c.Bool("offheap") {
		return buffer.Uninitialized(size)
	}
	return buffer.New(make([]byte, size))
}

func bench(ctx *cli.Context) error {
	setLoggerLevel(ctx)
	bufSize := int(ctx.Uint("buf-size")) << 20
	blockSize := int(ctx.Uint("block-size")) << 10
	rounds := int(ctx.Uint("count"))
	if blockSize <= 0 || bufSize < blockSize {
		return fmt.Errorf("invalid sizes: buf %d block %d", bufSize, blockSize)
	}

	s := newBuffer(ctx, bufSize)
	logger.Debugf("benchmarking %d MiB buffer, %d KiB fragments, %d rounds",
		bufSize>>20, blockSize>>10, rounds)

	progress, bar := utils.NewDynProgressBar("bench: ", ctx.Bool("quiet"))
	bar.SetTotal(int64(rounds*3), false)

	writeCost, err := benchWrite(s, blockSize, rounds, func() { bar.Increment() })
	if err != nil {
		return err
	}
	readCost, err := benchRead(s, blockSize, rounds, func() { bar.Increment() })
	if err != nil {
		return err
	}
	appendCost, err := benchAppend(blockSize, bufSize, rounds, func() { bar.Increment() })
	if err != nil {
		return err
	}
	bar.SetTotal(0, true)
	progress.Wait()

	total := float64(bufSize) * float64(rounds) / (1 << 20)
	fmt.Printf("Write:  %8.1f MiB/s\n", total/writeCost.Seconds())
	fmt.Printf("Read:   %8.1f MiB/s\n", total/readCost.Seconds())
	fmt.Printf("Append: %8.1f MiB/s\n", total/appendCost.Seconds())
	if mem := utils.AllocMemory(); mem > 0 {
		fmt.Printf("Off-heap memory: %d MiB\n", mem>>20)
	}
	return nil
}

// benchWrite splits one writer into fragments and fills each in place.
func benchWrite(s *buffer.Shared, blockSize, rounds int, tick func()) (time.Duration, error) {
	start := time.Now()
	for i := 0; i < rounds; i++ {
		m, err := s.TryMut()
		if err != nil {
			return 0, err
		}
		chunks, err := m.Chunks(blockSize)
		if err != nil {
			return 0, err
		}
		for chunk := chunks.Next(); chunk != nil; chunk = chunks.Next() {
			b := chunk.Bytes()
			for j := 0; j < len(b); j += 256 {
				b[j] = byte(i)
			}
			chunk.Release()
		}
		tick()
	}
	return time.Since(start), nil
}

// benchRead shares the buffer between fragment readers and checksums them.
func benchRead(s *buffer.Shared, blockSize, rounds int, tick func()) (time.Duration, error) {
	start := time.Now()
	var sum uint64
	for i := 0; i < rounds; i++ {
		v, err := s.TryView()
		if err != nil {
			return 0, err
		}
		chunks, err := v.Chunks(blockSize)
		if err != nil {
			return 0, err
		}
		for chunk := chunks.Next(); chunk != nil; chunk = chunks.Next() {
			b := chunk.Bytes()
			for j := 0; j < len(b); j += 256 {
				sum += uint64(b[j])
			}
			chunk.Release()
		}
		tick()
	}
	logger.Tracef("read checksum %d", sum)
	return time.Since(start), nil
}

// benchAppend grows an empty buffer to full size through its terminal view.
func benchAppend(blockSize, bufSize, rounds int, tick func()) (time.Duration, error) {
	block := make([]byte, blockSize)
	start := time.Now()
	for i := 0; i < rounds; i++ {
		s := buffer.WithCapacity(bufSize)
		m, err := s.TryMut()
		if err != nil {
			return 0, err
		}
		for s.Len()+blockSize <= bufSize {
			if err = m.TryExtend(block); err != nil {
				return 0, err
			}
		}
		m.Release()
		tick()
	}
	return time.Since(start), nil
}
