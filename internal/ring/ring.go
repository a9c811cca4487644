// Package ring implements a single-producer/single-consumer float32 FIFO,
// used by the device adapter to bridge a host audio callback's variable
// frame count onto the engine's fixed render-quantum size.
package ring

import "sync/atomic"

// Buffer is a lock-free SPSC ring of float32 samples. Capacity is rounded
// up to the next power of two so indices can be masked instead of
// modulo'd, the same trick the jitter buffer uses for its per-sender
// slots. Safe for exactly one writer goroutine and one reader goroutine
// operating concurrently; anything else needs external synchronization.
type Buffer struct {
	data []float32
	mask uint64

	writeIdx atomic.Uint64
	readIdx  atomic.Uint64
}

// New returns a Buffer that can hold at least capacity samples.
func New(capacity int) *Buffer {
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &Buffer{
		data: make([]float32, n),
		mask: uint64(n - 1),
	}
}

// Len returns the ring's total capacity in samples.
func (b *Buffer) Len() int { return len(b.data) }

// AvailableForWriting returns how many samples can be pushed right now
// without overwriting unread data.
func (b *Buffer) AvailableForWriting() int {
	return len(b.data) - b.AvailableForReading()
}

// AvailableForReading returns how many samples are currently queued.
func (b *Buffer) AvailableForReading() int {
	return int(b.writeIdx.Load() - b.readIdx.Load())
}

// Write pushes as many samples from src as fit, returning the count
// actually written. Call only from the producer goroutine.
func (b *Buffer) Write(src []float32) int {
	avail := b.AvailableForWriting()
	n := len(src)
	if n > avail {
		n = avail
	}
	w := b.writeIdx.Load()
	for i := 0; i < n; i++ {
		b.data[(w+uint64(i))&b.mask] = src[i]
	}
	b.writeIdx.Store(w + uint64(n))
	return n
}

// Read pops as many samples into dst as are available, returning the
// count actually read. Unfilled tail elements of dst are left untouched;
// callers bridging into a fixed render quantum should zero dst first so a
// buffer underrun reads as silence rather than stale data. Call only from
// the consumer goroutine.
func (b *Buffer) Read(dst []float32) int {
	avail := b.AvailableForReading()
	n := len(dst)
	if n > avail {
		n = avail
	}
	r := b.readIdx.Load()
	for i := 0; i < n; i++ {
		dst[i] = b.data[(r+uint64(i))&b.mask]
	}
	b.readIdx.Store(r + uint64(n))
	return n
}

// Reset drops all buffered samples.
func (b *Buffer) Reset() {
	b.readIdx.Store(b.writeIdx.Load())
}
