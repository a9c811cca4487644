package audiograph

// GainNode scales its input by an automatable Gain param, sample-accurate
// across each quantum (spec.md §4.3, §6 "GainNode").
type GainNode struct {
	*Node
	gain *Param
}

// NewGainNode creates a GainNode with gain defaulting to 1.0 (unity,
// range [0, 1] is not enforced — negative gain inverts phase, which is a
// legitimate use, so the only bound applied is the generic Param clamp
// set here to a generous [-1e6, 1e6]).
func NewGainNode(ctx *Context) *GainNode {
	n := newNode(ctx, nil, 1, 1, 2)
	g := &GainNode{Node: n}
	n.proc = g
	g.gain = newParam(n, "gain", 1.0, -1e6, 1e6)
	n.addParam(g.gain)
	return g
}

// Gain returns the node's gain param.
func (g *GainNode) Gain() *Param { return g.gain }

// Process implements Processor.
func (g *GainNode) Process(n *Node, frames int) {
	in := n.InputBus(0)
	out := n.Output(0).Bus()

	values := g.gain.calculateSampleAccurateValues(n.context.currentTime(), frames)
	out.CopyWithSampleAccurateGainValues(in, values)
}

// TailTime implements Processor: a gain multiply has no tail.
func (g *GainNode) TailTime() float64 { return 0 }

// LatencyTime implements Processor: a gain multiply introduces no delay.
func (g *GainNode) LatencyTime() float64 { return 0 }

// PropagatesSilence implements Processor: a gain multiply of silence is
// silence, so ordinary input-driven silence propagation applies.
func (g *GainNode) PropagatesSilence() bool { return true }

// Reset implements Processor; GainNode carries no state beyond the param
// timeline, which CancelScheduledValues already covers.
func (g *GainNode) Reset() {}
