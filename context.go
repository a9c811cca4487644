package audiograph

import (
	"sync"
	"sync/atomic"
)

// Context is the audio engine's top-level handle: it owns the graph lock
// and render lock, the node-ID sequence, the render-quantum clock, the
// disconnect-crossfade queue, and the onEnded dispatcher (spec.md §3
// "Context", §5 "concurrency").
//
// Two locks protect graph state. They are not kept disjoint: the render
// path takes graphMu nested inside renderMu (Node.pullInputs,
// Param.updateRenderingState), and nothing takes renderMu while holding
// graphMu:
//
//   - graphMu guards structural mutation (connectedOutputs lists, param
//     timelines, node creation) from any goroutine calling the public
//     Connect/Disconnect API.
//   - renderMu guards one render quantum's worth of work: stepping
//     crossfades, refreshing renderingOutputs, pulling the graph, and
//     advancing the sample clock.
//
// Neither a connect nor a disconnect mutates connectedOutputs directly
// from the calling goroutine. A disconnect enqueues a crossfade
// (pendingQueue.begin); the render path ramps its gain to zero under
// renderMu once per quantum, and a dedicated update-loop goroutine —
// woken by a condition variable rather than polling — finalizes the edge
// removal under graphMu once the ramp finishes. A connect enqueues a
// pendingConnect instead, with no crossfade (a fresh edge has nothing to
// ramp from): applyPendingConnects splices every queued connect into the
// graph under graphMu the next time the render thread is about to read
// connectedOutputs — from Node.pullInputs or Param.updateRenderingState,
// both of which take graphMu (nested inside whatever render-thread lock
// the caller already holds) around that read. So the render thread only
// ever observes a fully-constructed edge set, never one being built
// mid-append by a concurrent Connect, and a connect takes effect as soon
// as anything next actually needs it rather than waiting on the
// update-loop goroutine's own schedule.
type Context struct {
	sampleRate float64

	graphMu sync.Mutex

	renderMu    sync.Mutex
	sampleFrame uint64 // atomic; advanced under renderMu, read by anyone

	pendingMu sync.Mutex
	pending   pendingQueue

	updateMu   sync.Mutex
	updateCond *sync.Cond
	hasWork    bool
	closed     bool
	stopCh     chan struct{}
	doneCh     chan struct{}

	dispatcher *dispatcher

	nextID uint64 // atomic

	destination *NodeOutput

	automaticPull map[*Node]bool
}

// NewContext creates a Context at the given sample rate and starts its
// update-loop goroutine.
func NewContext(sampleRate float64) *Context {
	c := &Context{
		sampleRate:    sampleRate,
		dispatcher:    newDispatcher(),
		automaticPull: make(map[*Node]bool),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	c.updateCond = sync.NewCond(&c.updateMu)
	go c.updateLoop()
	return c
}

// SampleRate returns the context's fixed sample rate.
func (c *Context) SampleRate() float64 { return c.sampleRate }

func (c *Context) nextNodeID() uint64 { return atomic.AddUint64(&c.nextID, 1) }

// currentSampleFrame returns the number of frames rendered so far.
func (c *Context) currentSampleFrame() uint64 { return atomic.LoadUint64(&c.sampleFrame) }

// currentTime returns currentSampleFrame expressed in seconds.
func (c *Context) currentTime() float64 {
	return float64(c.currentSampleFrame()) / c.sampleRate
}

// SetDestination designates the NodeOutput that RenderQuantum pulls from:
// the root of the graph's pull traversal (spec.md §3 "Destination").
func (c *Context) SetDestination(output *NodeOutput) {
	c.graphMu.Lock()
	c.destination = output
	c.graphMu.Unlock()
}

// AddAutomaticPullNode registers n to be pulled every quantum even if
// nothing downstream is connected to its outputs — used by nodes whose
// purpose is a side effect rather than producing audio for something else
// to hear (e.g. a recorder or a metering tap, spec.md §4.6 "Non-goals" is
// silent on this but the behavior mirrors Web Audio's
// ScriptProcessor/AnalyserNode keep-alive rule).
func (c *Context) AddAutomaticPullNode(n *Node) {
	c.graphMu.Lock()
	c.automaticPull[n] = true
	c.graphMu.Unlock()
}

// RemoveAutomaticPullNode undoes AddAutomaticPullNode.
func (c *Context) RemoveAutomaticPullNode(n *Node) {
	c.graphMu.Lock()
	delete(c.automaticPull, n)
	c.graphMu.Unlock()
}

// Connect wires output into input, rejecting the edge if it would create
// a cycle (spec.md §4.2, §7 "Topology"). The cycle check runs
// synchronously so callers get an immediate answer, but the edge itself
// is only enqueued here — it is not spliced into connectedOutputs until
// applyPendingConnects next runs, from Node.pullInputs or
// Param.updateRenderingState. Safe to call from any goroutine.
func (c *Context) Connect(output *NodeOutput, input *NodeInput) error {
	c.graphMu.Lock()
	cyclic := c.reaches(input.node, output.node)
	c.graphMu.Unlock()
	if cyclic {
		return &ValidationError{Msg: "connect would create a cycle"}
	}

	c.pendingMu.Lock()
	c.pending.beginConnect(output, input, nil)
	c.pendingMu.Unlock()
	return nil
}

// ConnectParam wires output into param for audio-rate modulation
// (spec.md §4.3). Like Connect, the edge is enqueued and spliced in by
// applyPendingConnects rather than immediately. Unlike Connect, no cycle
// check is made.
func (c *Context) ConnectParam(output *NodeOutput, param *Param) error {
	c.pendingMu.Lock()
	c.pending.beginConnect(output, nil, param)
	c.pendingMu.Unlock()
	return nil
}

// Disconnect begins a crossfade-out disconnect of the edge from output to
// input (spec.md §4.2). The edge is not actually removed from the graph
// until the crossfade completes a few quanta later; Disconnect itself
// returns immediately.
func (c *Context) Disconnect(output *NodeOutput, input *NodeInput) {
	c.graphMu.Lock()
	defer c.graphMu.Unlock()
	if !input.isConnected(output) {
		return
	}

	c.pendingMu.Lock()
	c.pending.begin(input, output, input)
	c.pendingMu.Unlock()
}

// DisconnectParam begins a crossfade-out disconnect of output's audio-rate
// modulation connection to param.
func (c *Context) DisconnectParam(output *NodeOutput, param *Param) {
	c.graphMu.Lock()
	defer c.graphMu.Unlock()
	if !param.isConnected(output) {
		return
	}

	c.pendingMu.Lock()
	c.pending.begin(param, output, nil)
	c.pendingMu.Unlock()
}

// applyPendingConnects splices every connect queued since the last call
// into the graph. Must be called with graphMu already held; a no-op when
// nothing is queued, so call sites that take graphMu for another reason
// (Node.pullInputs, Param.updateRenderingState) can call it unconditionally
// right after locking.
func (c *Context) applyPendingConnects() {
	c.pendingMu.Lock()
	connects := c.pending.drainConnects()
	c.pendingMu.Unlock()
	for _, pc := range connects {
		pc.finalize(c)
	}
}

// reaches reports whether target is reachable from start by following
// existing output -> connectedInputs edges forward, plus any connect
// already queued but not yet spliced in by applyPendingConnects. The pending
// edges matter because two Connect calls can race ahead of any render
// quantum: without counting a just-queued edge, a second Connect closing
// a cycle through it would pass its synchronous check, and the cycle
// would only surface once both were applied and too late to reject.
// Used by Connect (and defensively by pendingConnect.finalize) to reject
// edges that would close a cycle. Must be called with graphMu held.
func (c *Context) reaches(start, target *Node) bool {
	if start == target {
		return true
	}
	c.pendingMu.Lock()
	pending := c.pending.connects
	c.pendingMu.Unlock()

	visited := make(map[*Node]bool)
	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		if visited[n] {
			return false
		}
		visited[n] = true
		for _, out := range n.outputs {
			for _, in := range out.connectedInputs {
				if in.node == target || visit(in.node) {
					return true
				}
			}
		}
		for _, pc := range pending {
			if pc.input != nil && pc.output.node == n {
				if pc.input.node == target || visit(pc.input.node) {
					return true
				}
			}
		}
		return false
	}
	return visit(start)
}

// dispatch hands ev to the onEnded dispatcher and wakes the update loop so
// it gets drained promptly.
func (c *Context) dispatch(ev FinishedEvent) {
	c.dispatcher.post(ev)
	c.wake()
}

func (c *Context) wake() {
	c.updateMu.Lock()
	c.hasWork = true
	c.updateMu.Unlock()
	c.updateCond.Signal()
}

// updateLoop finalizes completed disconnect crossfades under the graph
// lock. It sleeps on a condition variable rather than polling, and is
// woken by wake() whenever the render path finishes a crossfade or posts
// a dispatcher event.
func (c *Context) updateLoop() {
	defer close(c.doneCh)
	for {
		c.updateMu.Lock()
		for !c.hasWork && !c.closed {
			c.updateCond.Wait()
		}
		if c.closed {
			c.updateMu.Unlock()
			return
		}
		c.hasWork = false
		c.updateMu.Unlock()

		c.pendingMu.Lock()
		done := c.pending.drainFinishing()
		c.pendingMu.Unlock()

		if len(done) > 0 {
			c.graphMu.Lock()
			for _, pd := range done {
				pd.finalize()
			}
			c.graphMu.Unlock()
		}

		for _, ev := range c.dispatcher.drain() {
			if ev.Callback != nil {
				ev.Callback()
			}
		}
	}
}

// Close stops the update-loop goroutine. The Context must not be used
// afterward.
func (c *Context) Close() {
	c.updateMu.Lock()
	c.closed = true
	c.updateMu.Unlock()
	c.updateCond.Signal()
	<-c.doneCh
}

// RenderQuantum renders exactly BlockSize frames from the destination
// output and advances the sample clock. It is the unit the device adapter
// bridges host callbacks onto (spec.md §4.6, §6).
func (c *Context) RenderQuantum() *Bus {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.pendingMu.Lock()
	c.pending.step()
	hasFinishing := len(c.pending.finishing) > 0
	c.pendingMu.Unlock()
	if hasFinishing {
		c.wake()
	}

	for n := range c.automaticPull {
		n.processIfNecessary(BlockSize)
	}

	var out *Bus
	if c.destination != nil {
		out = c.destination.Pull(nil, BlockSize)
	}

	atomic.AddUint64(&c.sampleFrame, BlockSize)
	return out
}
