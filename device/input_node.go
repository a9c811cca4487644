package device

import (
	"github.com/rustyguts/audiograph"
	"github.com/rustyguts/audiograph/internal/ring"
)

// DeviceInputNode is a graph leaf that renders captured microphone audio
// drained from a ring buffer the Adapter's capture goroutine fills. It
// has no input; Process is called once per quantum the same as any other
// node (spec.md §4.6).
type DeviceInputNode struct {
	node *audiograph.Node
	ring *ring.Buffer
}

// NewDeviceInputNode creates a DeviceInputNode with the given output
// channel count, draining r each quantum. Every output channel receives
// the same mono stream (r carries one channel's worth of samples; the
// Adapter downmixes capture to mono before writing it).
func NewDeviceInputNode(ctx *audiograph.Context, channels int, r *ring.Buffer) *DeviceInputNode {
	d := &DeviceInputNode{ring: r}
	d.node = audiograph.NewCustomNode(ctx, d, 0, 1, channels)
	return d
}

// Node returns the underlying graph node, for Context.Connect.
func (d *DeviceInputNode) Node() *audiograph.Node { return d.node }

// Process implements audiograph.Processor.
func (d *DeviceInputNode) Process(n *audiograph.Node, frames int) {
	out := n.Output(0).Bus()

	var tmp [audiograph.BlockSize]float32
	got := d.ring.Read(tmp[:frames])
	for i := got; i < frames; i++ {
		tmp[i] = 0 // underrun: pad with silence rather than stale samples
	}

	for c := 0; c < out.NumberOfChannels(); c++ {
		ch := out.Channel(c)
		copy(ch.Data(), tmp[:frames])
		ch.MarkActive()
	}
}

// TailTime implements audiograph.Processor.
func (d *DeviceInputNode) TailTime() float64 { return 0 }

// LatencyTime implements audiograph.Processor.
func (d *DeviceInputNode) LatencyTime() float64 { return 0 }

// PropagatesSilence implements audiograph.Processor. DeviceInputNode has
// no input of its own to judge silence by — it is always the capture
// source at the edge of the graph — so it must keep draining the ring
// buffer every quantum regardless of how quiet the microphone has been.
func (d *DeviceInputNode) PropagatesSilence() bool { return false }

// Reset implements audiograph.Processor.
func (d *DeviceInputNode) Reset() { d.ring.Reset() }
