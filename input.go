package audiograph

// NodeInput is a summing junction belonging to one node: a graph edge
// destination. It owns an internal summing bus used whenever more than one
// output is connected (spec.md §3).
type NodeInput struct {
	summingJunction
	node  *Node
	index int

	channelCount int
	summingBus   *Bus
}

func newNodeInput(node *Node, index int) *NodeInput {
	return &NodeInput{
		node:         node,
		index:        index,
		channelCount: 1,
		summingBus:   NewBus(1, node.sampleRate),
	}
}

// updateRenderingState refreshes the render-thread fan-in list, then asks
// the owning node to recompute this input's negotiated channel count from
// the new fan-in (spec.md §4.1 "channel-count negotiation"). Must be
// called with the render lock held, at a quantum boundary.
func (in *NodeInput) updateRenderingState() {
	if !in.dirty {
		return
	}
	in.summingJunction.updateRenderingState()
	in.node.checkNumberOfChannelsForInput(in)
}

// setNumberOfChannels resizes the internal summing bus. Called by the
// owning node from checkNumberOfChannelsForInput. Must be called with the
// render lock held.
func (in *NodeInput) setNumberOfChannels(n int) {
	if n < 1 {
		n = 1
	}
	in.channelCount = n
	if in.summingBus == nil || in.summingBus.NumberOfChannels() != n {
		in.summingBus = NewBus(n, in.node.sampleRate)
	}
}

// NumberOfChannels returns this input's currently negotiated channel count.
func (in *NodeInput) NumberOfChannels() int { return in.channelCount }

// Pull implements the fan-in pull protocol (spec.md §4.1):
//
//   - 0 rendering outputs: zero and return the internal summing bus.
//   - 1 rendering output: forward the call directly, passing inPlaceBus
//     through (the in-place fast path).
//   - N>1 rendering outputs: zero the summing bus, pull each output with
//     no in-place bus, and sum the results according to the node's
//     channel interpretation.
func (in *NodeInput) Pull(inPlaceBus *Bus, frames int) *Bus {
	switch len(in.renderingOutputs) {
	case 0:
		in.summingBus.Zero()
		return in.summingBus
	case 1:
		o := in.renderingOutputs[0]
		rendered := o.Pull(inPlaceBus, frames)
		gain := in.fadeGainFor(o)
		if gain == 1.0 {
			return rendered
		}
		if rendered == inPlaceBus {
			// Sole consumer wrote directly into the caller's bus; it is
			// safe to scale it in place.
			for i := 0; i < rendered.NumberOfChannels(); i++ {
				vsmul(rendered.Channel(i).Data(), gain)
			}
			return rendered
		}
		in.summingBus.CopyWithGain(rendered, 1.0, gain)
		return in.summingBus
	default:
		in.summingBus.Zero()
		for _, o := range in.renderingOutputs {
			rendered := o.Pull(nil, frames)
			in.summingBus.sumFrom(rendered, in.node.channelInterpretation, in.fadeGainFor(o))
		}
		return in.summingBus
	}
}

// maxConnectedChannelCount returns the largest channel count among this
// input's render-thread connected outputs, or 1 if none are connected.
// Used by Node.checkNumberOfChannelsForInput for the "max" and
// "clampedMax" channel-count modes.
func (in *NodeInput) maxConnectedChannelCount() int {
	max := 1
	for _, o := range in.renderingOutputs {
		if n := o.NumberOfChannels(); n > max {
			max = n
		}
	}
	return max
}
