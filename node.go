package audiograph

import (
	"fmt"
)

// ChannelCountMode controls how a node computes an input's negotiated
// channel count from its connected outputs (spec.md §4.1).
type ChannelCountMode int

const (
	// Max takes the largest connected output channel count.
	Max ChannelCountMode = iota
	// ClampedMax takes min(largest connected output channel count, the
	// node's configured ChannelCount).
	ClampedMax
	// Explicit always uses the node's configured ChannelCount, regardless
	// of what is connected.
	Explicit
)

// Processor is the capability set every concrete node implements: the
// composition spec.md §9 calls for in place of the source's deep
// inheritance hierarchy (Node → ScheduledSourceNode → Player, etc).
type Processor interface {
	// Process is invoked at most once per render quantum, after inputs
	// have been pulled and a silence check has determined the node is
	// not eligible to skip processing. It reads n.InputBus(i) and writes
	// into n.Output(i).Bus().
	Process(n *Node, frames int)
	// TailTime is how long (seconds) this node continues producing
	// non-silent output after its inputs go silent (e.g. reverb tails).
	// Most nodes return 0.
	TailTime() float64
	// LatencyTime is the processing delay (seconds) this node introduces
	// before its output reflects a change at its input. Most nodes
	// return 0.
	LatencyTime() float64
	// PropagatesSilence reports whether this node is eligible to have
	// processIfNecessary skip Process and zero its outputs once all
	// pulled input buses have been silent past TailTime+LatencyTime.
	// Nodes with no inputs of their own to judge silence by — a
	// scheduled source while playing, a generating StreamNode, an
	// automatic-pull sink whose side effects must happen every quantum —
	// must return false so they keep running on their own schedule
	// instead of being silenced after their first quantum.
	PropagatesSilence() bool
	// Reset clears any internal state (e.g. a scheduled source's playback
	// position) back to initial conditions.
	Reset()
}

// Node is the graph's processing unit: an identity, its inputs/outputs/
// params, channel-count negotiation settings, and the lifecycle/silence
// bookkeeping the render path depends on (spec.md §3).
type Node struct {
	context    *Context
	id         uint64
	sampleRate float64

	inputs  []*NodeInput
	outputs []*NodeOutput
	params  []*Param

	channelCount          int
	channelCountMode      ChannelCountMode
	channelInterpretation ChannelInterpretation

	// autoMatchOutputChannels, when true and the node has exactly one
	// input and one output, resizes that output to match the input's
	// negotiated channel count (the default Web Audio "passthrough"
	// behavior GainNode and similar effects rely on).
	autoMatchOutputChannels bool

	initialized bool

	lastProcessingTime float64 // currentTime stamp of the last quantum this node processed; -1 before the first
	lastNonSilentTime  float64

	pulledBuses []*Bus

	proc Processor
}

// NewCustomNode is the composition entry point spec.md §9 calls for:
// code outside this package can implement Processor and wire it into the
// graph the same way every built-in node type does, without the package
// needing an inheritance hierarchy or a closed set of node kinds. The
// device package's DeviceInputNode is one such external Processor.
func NewCustomNode(ctx *Context, proc Processor, numInputs, numOutputs, numOutputChannels int) *Node {
	return newNode(ctx, proc, numInputs, numOutputs, numOutputChannels)
}

func newNode(ctx *Context, proc Processor, numInputs, numOutputs, numOutputChannels int) *Node {
	n := &Node{
		context:                 ctx,
		id:                      ctx.nextNodeID(),
		sampleRate:              ctx.SampleRate(),
		channelCount:            2,
		channelCountMode:        Max,
		channelInterpretation:   Speakers,
		autoMatchOutputChannels: true,
		proc:                    proc,
		initialized:             true,
		lastProcessingTime:      -1,
	}
	n.inputs = make([]*NodeInput, numInputs)
	for i := range n.inputs {
		n.inputs[i] = newNodeInput(n, i)
	}
	n.pulledBuses = make([]*Bus, numInputs)
	for i := range n.pulledBuses {
		n.pulledBuses[i] = n.inputs[i].summingBus
	}
	n.outputs = make([]*NodeOutput, numOutputs)
	for i := range n.outputs {
		n.outputs[i] = newNodeOutput(n, i, numOutputChannels, n.sampleRate)
	}
	return n
}

// ID returns this node's stable identity within its Context.
func (n *Node) ID() uint64 { return n.id }

// NumberOfInputs returns the (fixed) number of inputs this node exposes.
func (n *Node) NumberOfInputs() int { return len(n.inputs) }

// NumberOfOutputs returns the (fixed) number of outputs this node exposes.
func (n *Node) NumberOfOutputs() int { return len(n.outputs) }

// Input returns the i'th input.
func (n *Node) Input(i int) *NodeInput { return n.inputs[i] }

// Output returns the i'th output.
func (n *Node) Output(i int) *NodeOutput { return n.outputs[i] }

// InputBus returns the bus this node's i'th input produced during the
// current quantum's pullInputs call. Valid only from within Process.
func (n *Node) InputBus(i int) *Bus { return n.pulledBuses[i] }

// SetChannelCount sets the node's explicit channel count, used by the
// ClampedMax and Explicit channel-count modes. Values above MaxChannels
// are rejected (spec.md §7 Validation).
func (n *Node) SetChannelCount(c int) error {
	if c < 1 || c > MaxChannels {
		return errInvalidChannelCount(c)
	}
	n.channelCount = c
	for _, in := range n.inputs {
		in.markDirty()
	}
	return nil
}

// ChannelCount returns the node's explicit channel count setting.
func (n *Node) ChannelCount() int { return n.channelCount }

// SetChannelCountMode sets how inputs negotiate their channel count.
func (n *Node) SetChannelCountMode(m ChannelCountMode) {
	n.channelCountMode = m
	for _, in := range n.inputs {
		in.markDirty()
	}
}

// SetChannelInterpretation sets how this node sums mismatched channel
// counts when fanning multiple outputs into one input.
func (n *Node) SetChannelInterpretation(interp ChannelInterpretation) {
	n.channelInterpretation = interp
}

// Param returns the named parameter, or nil if this node has none by that
// name.
func (n *Node) Param(name string) *Param {
	for _, p := range n.params {
		if p.name == name {
			return p
		}
	}
	return nil
}

func (n *Node) addParam(p *Param) { n.params = append(n.params, p) }

// checkNumberOfChannelsForInput recomputes in's negotiated channel count
// from its rendering fan-in, per this node's channel-count mode, and
// (for the common single-in/single-out passthrough case) propagates that
// count to the node's output. Must run with the render lock held, at a
// quantum boundary (spec.md §4.1).
func (n *Node) checkNumberOfChannelsForInput(in *NodeInput) {
	var count int
	switch n.channelCountMode {
	case Explicit:
		count = n.channelCount
	case ClampedMax:
		count = in.maxConnectedChannelCount()
		if count > n.channelCount {
			count = n.channelCount
		}
	default: // Max
		count = in.maxConnectedChannelCount()
	}
	in.setNumberOfChannels(count)

	if n.autoMatchOutputChannels && len(n.inputs) == 1 && len(n.outputs) == 1 {
		n.outputs[0].setNumberOfChannels(count)
	}
}

// propagatesSilence reports whether this node may safely zero its outputs
// because all its inputs have been silent for longer than its tail and
// latency time (spec.md §4.1 "Silence propagation"). A node whose
// Processor opts out via PropagatesSilence always runs: a 0-input source
// has no pulled buses to judge silence by, so without this check the
// allSilent computation in processIfNecessary would trivially stay true
// forever and the node would never process again past its first quantum.
func (n *Node) propagatesSilence(currentTime float64) bool {
	if !n.proc.PropagatesSilence() {
		return false
	}
	return n.lastNonSilentTime+n.proc.TailTime()+n.proc.LatencyTime() < currentTime
}

func (n *Node) silenceOutputs() {
	for _, o := range n.outputs {
		o.Bus().Zero()
	}
}

func (n *Node) pullInputs(frames int) {
	singlePassthrough := len(n.inputs) == 1 && len(n.outputs) == 1
	for i, in := range n.inputs {
		// updateRenderingState reads connectedOutputs, which Connect,
		// ConnectParam and a disconnect crossfade's finalize all mutate
		// under graphMu. Taking graphMu here — nested inside the renderMu
		// this whole call tree already holds, never the other way around,
		// so this can never deadlock against a graphMu holder — is what
		// lets the render thread observe a fully-constructed edge set
		// instead of racing a concurrent append/remove on the slice.
		n.context.graphMu.Lock()
		n.context.applyPendingConnects()
		in.updateRenderingState()
		// An upstream output that already feeds another NodeInput must
		// render into its own bus, even when renderingConsumerCount has
		// not yet caught up with a fan-out edge spliced in this quantum.
		shared := len(in.renderingOutputs) == 1 && len(in.renderingOutputs[0].connectedInputs) > 1
		n.context.graphMu.Unlock()
		var inPlace *Bus
		if singlePassthrough && !shared {
			inPlace = n.outputs[0].Bus()
		}
		n.pulledBuses[i] = in.Pull(inPlace, frames)
	}
}

// processIfNecessary runs pullInputs + Process at most once per render
// quantum, guarded by lastProcessingTime, and applies silence propagation
// (spec.md §4.1, §8 "N.process is invoked at most once per Q").
func (n *Node) processIfNecessary(frames int) {
	ct := n.context.currentTime()
	if n.lastProcessingTime == ct {
		return
	}
	n.lastProcessingTime = ct

	if !n.initialized {
		// Programmer error: render before initialize. Yield silence
		// (spec.md §7).
		n.silenceOutputs()
		return
	}

	n.pullInputs(frames)

	allSilent := true
	for _, b := range n.pulledBuses {
		if b != nil && !b.IsSilent() {
			allSilent = false
			break
		}
	}
	if !allSilent {
		n.lastNonSilentTime = ct
	}

	if allSilent && n.propagatesSilence(ct) {
		n.silenceOutputs()
		return
	}

	n.proc.Process(n, frames)
}

func errInvalidChannelCount(c int) error {
	return &ValidationError{Msg: fmt.Sprintf("channel count out of range [1, %d]: %d", MaxChannels, c)}
}

// ValidationError is returned by graph-edit operations that fail
// synchronously (spec.md §7 "Validation" / "Topology").
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
