package audiograph

import "github.com/rustyguts/audiograph/internal/aec"

// EchoCancelNode removes acoustic echo from a captured (near-end) signal
// given a reference copy of what was just played back (far-end), using
// an NLMS adaptive filter (spec.md §6 lists echo cancellation among the
// engine's built-in nodes; the filter itself is adapted from the
// teacher's voice-chat pipeline, generalized from a fixed 20ms VoIP
// frame to one render quantum).
//
// Input 0 is the near-end (microphone) signal; input 1 is the far-end
// (speaker) reference. Only channel 0 of each input feeds the filter —
// acoustic echo cancellation operates on a single coupled signal path,
// so a stereo source is expected to have already been downmixed (e.g.
// through a PannerNode or an explicit sum) before reaching this node.
type EchoCancelNode struct {
	*Node
	canceller *aec.AEC
}

// NewEchoCancelNode creates an EchoCancelNode sized to one render
// quantum.
func NewEchoCancelNode(ctx *Context) *EchoCancelNode {
	n := newNode(ctx, nil, 2, 1, 1)
	n.autoMatchOutputChannels = false
	e := &EchoCancelNode{Node: n, canceller: aec.New(BlockSize)}
	n.proc = e
	return e
}

// SetEnabled enables or disables cancellation; disabling passes the
// near-end signal through unchanged, re-enabling resets the filter.
func (e *EchoCancelNode) SetEnabled(enabled bool) { e.canceller.SetEnabled(enabled) }

// Process implements Processor.
func (e *EchoCancelNode) Process(n *Node, frames int) {
	near := n.InputBus(0)
	far := n.InputBus(1)
	out := n.Output(0).Bus()

	if !far.IsSilent() {
		e.canceller.FeedFarEnd(far.Channel(0).Data()[:frames])
	}

	dst := out.Channel(0).Data()[:frames]
	copy(dst, near.Channel(0).Data()[:frames])
	e.canceller.Process(dst)
	if !near.Channel(0).Silent() {
		out.Channel(0).MarkActive()
	}
}

// TailTime implements Processor: the adaptive filter carries no
// perceptible tail of its own beyond the signal it is given.
func (e *EchoCancelNode) TailTime() float64 { return 0 }

// LatencyTime implements Processor.
func (e *EchoCancelNode) LatencyTime() float64 { return 0 }

// PropagatesSilence implements Processor: a silent near-end with nothing
// to cancel produces silent output.
func (e *EchoCancelNode) PropagatesSilence() bool { return true }

// Reset implements Processor: disabling then re-enabling zeroes the
// filter weights, same as a fresh EchoCancelNode.
func (e *EchoCancelNode) Reset() {
	e.canceller.SetEnabled(false)
	e.canceller.SetEnabled(true)
}
