// Package audiograph implements a realtime audio processing graph modeled
// on the Web Audio rendering model: client code assembles a directed graph
// of nodes, and a driver thread pulls fixed-size blocks from the graph's
// destination at the device's cadence.
package audiograph

// BlockSize is the fixed internal render quantum, in frames. Every pull
// through the graph produces exactly this many frames; the device adapter
// is the only place that reconciles it against a host's variable callback
// size (see the device package).
const BlockSize = 128

// DefaultSampleRate is used by Context when no other rate is configured.
const DefaultSampleRate = 44100

// MaxChannels bounds how wide a Bus can be. Node.SetChannelCount rejects
// larger values (spec.md §7 "Validation"); NewBus clamps to it.
const MaxChannels = 32

// Channel is a contiguous block of BlockSize float32 samples plus a silent
// flag. Writing into the channel through Data clears the flag implicitly
// only when the caller calls MarkActive; Zero is the only thing that sets
// it. This mirrors spec.md §3: "silent ⇔ every channel is silent" is a
// Bus-level invariant built out of these per-channel flags.
type Channel struct {
	data   [BlockSize]float32
	silent bool
}

// Data returns the channel's sample slice for in-place reads or writes.
// Callers that write non-zero samples into it must call MarkActive.
func (c *Channel) Data() []float32 {
	return c.data[:]
}

// Silent reports whether this channel is known to be all-zero.
func (c *Channel) Silent() bool {
	return c.silent
}

// Zero fills the channel with zero samples and marks it silent. This is
// the only path that may set the silent flag — spec.md's "zero() sets it"
// invariant.
func (c *Channel) Zero() {
	for i := range c.data {
		c.data[i] = 0
	}
	c.silent = true
}

// MarkActive clears the silent flag after the caller has written real
// samples into Data(). It does not inspect the data; process() functions
// that happen to produce all-zero output on a given block are still free
// to call MarkActive — the flag is an optimization hint, not a guarantee.
func (c *Channel) MarkActive() {
	c.silent = false
}

// CopyFrom copies from into c. If from is silent, c is zeroed instead of
// memcpy'd — spec.md §3: "copy(from: channel) where the source is silent
// must zero() the destination rather than memcpy."
func (c *Channel) CopyFrom(from *Channel) {
	if from.silent {
		c.Zero()
		return
	}
	c.data = from.data
	c.silent = false
}

// AddFrom adds from's samples into c sample-by-sample. A silent from is a
// no-op; if from is non-silent, c becomes non-silent too.
func (c *Channel) AddFrom(from *Channel) {
	if from.silent {
		return
	}
	for i := range c.data {
		c.data[i] += from.data[i]
	}
	c.silent = false
}

// vadd, vmul, vsma and vsmul are the narrow, audited primitives the rest
// of the package routes its per-sample math through, so the hot inner
// loops stay in one place and keep SIMD / asm options open without
// sprinkling unsafe pointer arithmetic through node code (spec.md §9).

// vadd computes dst[i] += src[i] for i in range.
func vadd(dst, src []float32) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// vsmul scales dst in place by gain.
func vsmul(dst []float32, gain float32) {
	for i := range dst {
		dst[i] *= gain
	}
}

// vmul multiplies dst[i] *= src[i] for i in range, used for per-sample gain
// vectors (the de-zipper ramp and sample-accurate gain application).
func vmul(dst, src []float32) {
	for i := range dst {
		dst[i] *= src[i]
	}
}

// vsma computes dst[i] += src[i]*gain (scale-multiply-add), the shape a
// summing junction uses to mix N upstream outputs into one bus.
func vsma(dst, src []float32, gain float32) {
	for i := range dst {
		dst[i] += src[i] * gain
	}
}
