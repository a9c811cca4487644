package audiograph

// NodeOutput is one graph edge source. One or more NodeInputs or Params may
// reference it; it owns an internal bus of desiredNumberOfChannels x
// BlockSize frames (spec.md §3).
type NodeOutput struct {
	node  *Node
	index int

	desiredNumberOfChannels int
	bus                     *Bus

	// renderingConsumerCount is how many summing junctions had this output
	// in their renderingOutputs as of the last quantum boundary. It drives
	// the in-place fast path: Pull only writes directly into a caller's
	// bus when it is this quantum's sole consumer.
	renderingConsumerCount int

	// connectedInputs is the graph-thread reverse index of every
	// NodeInput this output currently feeds, maintained by Context
	// alongside each NodeInput's own connectedOutputs list. Context walks
	// it forward from a node to find what it feeds, for cycle detection
	// (spec.md §4.2 "reject an edge that would create a cycle"), and
	// Node.pullInputs reads it to withhold the in-place bus from an output
	// that feeds more than one NodeInput.
	connectedInputs []*NodeInput
}

func (o *NodeOutput) addConnectedInput(in *NodeInput) {
	o.connectedInputs = append(o.connectedInputs, in)
}

func (o *NodeOutput) removeConnectedInput(in *NodeInput) {
	for i, x := range o.connectedInputs {
		if x == in {
			o.connectedInputs = append(o.connectedInputs[:i], o.connectedInputs[i+1:]...)
			return
		}
	}
}

func newNodeOutput(node *Node, index, channels int, sampleRate float64) *NodeOutput {
	return &NodeOutput{
		node:                    node,
		index:                   index,
		desiredNumberOfChannels: channels,
		bus:                     NewBus(channels, sampleRate),
	}
}

// Bus returns the output's current internal (or in-place-swapped) bus. A
// node's process() method writes its results here.
func (o *NodeOutput) Bus() *Bus { return o.bus }

// NumberOfChannels returns the output's current channel count.
func (o *NodeOutput) NumberOfChannels() int { return o.desiredNumberOfChannels }

func (o *NodeOutput) addRenderingConsumer()    { o.renderingConsumerCount++ }
func (o *NodeOutput) removeRenderingConsumer() {
	if o.renderingConsumerCount > 0 {
		o.renderingConsumerCount--
	}
}

// setNumberOfChannels resizes the internal bus. Must be called with the
// render lock held and only at a quantum boundary (spec.md §4.1).
func (o *NodeOutput) setNumberOfChannels(n int) {
	if n == o.desiredNumberOfChannels && o.bus != nil {
		return
	}
	o.desiredNumberOfChannels = n
	o.bus = NewBus(n, o.bus.SampleRate())
}

// Pull runs this output's node if it hasn't already processed this
// quantum, then returns the bus holding the result. When inPlaceBus is
// non-nil, has the same channel count as this output, and this output has
// at most one rendering consumer, the node writes directly into
// inPlaceBus instead of the output's own internal bus — the in-place
// optimization (spec.md §4.1, glossary "In-place bus").
//
// If the node already processed this quantum (processIfNecessary's own
// lastProcessingTime guard makes Process a no-op here), the swap still
// happens but nothing writes through it: inPlaceBus comes back exactly
// as the caller passed it in, unwritten. Likewise, a later non-in-place
// Pull in the same quantum would get the output's own bus, which the
// in-place run never wrote. Both would need a node fanning out to two
// consumers while one of them takes the in-place path. The
// renderingConsumerCount <= 1 guard above covers fan-out already in
// renderingOutputs; a fan-out edge spliced in during this very quantum
// is covered by Node.pullInputs, which offers no in-place bus when the
// upstream output feeds more than one NodeInput in connectedInputs.
// Kept as a plain return rather than a panic/assert since those guards
// are the real invariant; this comment just documents why it's safe.
func (o *NodeOutput) Pull(inPlaceBus *Bus, frames int) *Bus {
	if inPlaceBus != nil && o.renderingConsumerCount <= 1 &&
		inPlaceBus.NumberOfChannels() == o.desiredNumberOfChannels {
		saved := o.bus
		o.bus = inPlaceBus
		o.node.processIfNecessary(frames)
		o.bus = saved
		return inPlaceBus
	}

	o.node.processIfNecessary(frames)
	return o.bus
}
