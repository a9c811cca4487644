package audiograph

import "sync"

// StreamCallback processes one quantum: in is nil if the node has no
// input, frames is always BlockSize. Implementations must not block or allocate — they
// run on the render thread.
type StreamCallback func(in, out *Bus, frames int)

// StreamNode lets application code splice an arbitrary per-quantum
// callback into the graph, the way ScriptProcessorNode/AudioWorkletNode
// do in Web Audio (spec.md §4.6 "StreamNode"). Until a callback is set
// via Set, it passes its input through unchanged (or is silent if it has
// no input).
type StreamNode struct {
	*Node

	mu       sync.Mutex
	callback StreamCallback
}

// NewStreamNode creates a StreamNode with the given input/output arity
// and output channel count.
func NewStreamNode(ctx *Context, numInputs, numOutputs, channels int) *StreamNode {
	n := newNode(ctx, nil, numInputs, numOutputs, channels)
	s := &StreamNode{Node: n}
	n.proc = s
	return s
}

// Set installs cb as the node's per-quantum processing callback. Pass nil
// to revert to passthrough/silence. Safe to call from any goroutine; the
// new callback takes effect starting with the next quantum processed.
func (s *StreamNode) Set(cb StreamCallback) {
	s.mu.Lock()
	s.callback = cb
	s.mu.Unlock()
}

// Process implements Processor.
func (s *StreamNode) Process(n *Node, frames int) {
	s.mu.Lock()
	cb := s.callback
	s.mu.Unlock()

	out := n.Output(0).Bus()

	var in *Bus
	if n.NumberOfInputs() > 0 {
		in = n.InputBus(0)
	}

	if cb == nil {
		if in != nil {
			out.CopyFrom(in, n.channelInterpretation)
		} else {
			out.Zero()
		}
		return
	}

	cb(in, out, frames)
}

// TailTime implements Processor; a callback-driven node's tail behavior
// is opaque to the graph, so it is assumed to have none. Callers needing
// a tail should keep producing non-silent output past their last real
// input instead.
func (s *StreamNode) TailTime() float64 { return 0 }

// LatencyTime implements Processor.
func (s *StreamNode) LatencyTime() float64 { return 0 }

// PropagatesSilence implements Processor. A StreamNode with real inputs
// propagates silence normally from them. A 0-input node with no callback
// installed is genuinely silent and may propagate too. But a 0-input
// node with a callback installed is a generator: it has no input to
// judge silence by, so it must keep calling Process every quantum or it
// would be silenced after its first one, exactly like a scheduled source.
func (s *StreamNode) PropagatesSilence() bool {
	if s.NumberOfInputs() > 0 {
		return true
	}
	s.mu.Lock()
	hasCallback := s.callback != nil
	s.mu.Unlock()
	return !hasCallback
}

// Reset implements Processor; StreamNode carries no graph-owned state to
// reset — any state lives in the callback's closure.
func (s *StreamNode) Reset() {}
