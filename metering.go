package audiograph

import "github.com/rustyguts/audiograph/internal/level"

// MeteringNode is a passthrough tap: it forwards its input to its output
// unchanged while maintaining a held RMS level reading a UI thread can
// poll (spec.md §4.6 "MeteringNode"). It registers itself as an automatic
// pull node so the meter keeps updating even if nothing is connected
// downstream of it yet.
type MeteringNode struct {
	*Node
	meter *level.Meter
}

// NewMeteringNode creates a MeteringNode and registers it with ctx as an
// automatic pull node.
func NewMeteringNode(ctx *Context) *MeteringNode {
	n := newNode(ctx, nil, 1, 1, 2)
	m := &MeteringNode{Node: n, meter: level.New()}
	n.proc = m
	ctx.AddAutomaticPullNode(n)
	return m
}

// Level returns the most recently measured held RMS level, averaged
// across the input's channels.
func (m *MeteringNode) Level() float32 { return m.meter.Level() }

// Process implements Processor: copy input straight to output, and feed
// a mono-summed version of the block into the level meter.
func (m *MeteringNode) Process(n *Node, frames int) {
	in := n.InputBus(0)
	out := n.Output(0).Bus()
	out.CopyFrom(in, n.channelInterpretation)

	nCh := in.NumberOfChannels()
	if nCh == 0 {
		return
	}

	var mono [BlockSize]float32
	for c := 0; c < nCh; c++ {
		ch := in.Channel(c)
		if ch.Silent() {
			continue
		}
		data := ch.Data()
		for i := 0; i < frames; i++ {
			mono[i] += data[i]
		}
	}
	inv := float32(1) / float32(nCh)
	for i := 0; i < frames; i++ {
		mono[i] *= inv
	}
	m.meter.Update(mono[:frames])
}

// TailTime implements Processor.
func (m *MeteringNode) TailTime() float64 { return 0 }

// LatencyTime implements Processor.
func (m *MeteringNode) LatencyTime() float64 { return 0 }

// PropagatesSilence implements Processor: MeteringNode is an automatic
// pull node with no downstream consumer to notice a skipped quantum, but
// its held level must keep decaying toward zero across a silent input
// span rather than freezing at its last reading, so it always runs.
func (m *MeteringNode) PropagatesSilence() bool { return false }

// Reset implements Processor.
func (m *MeteringNode) Reset() { m.meter.Reset() }
