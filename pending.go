package audiograph

import "log"

// crossfadeQuanta is how many render quanta a disconnect crossfade ramps
// over before the edge is actually removed from the graph (spec.md §4.2
// "begin a disconnect crossfade"). At 128 frames/quantum and 44.1kHz this
// is a little over 11ms, short enough to be inaudible as a ramp but long
// enough to avoid the click a same-quantum hard cut produces.
const crossfadeQuanta = 4

// fadeSink is satisfied by *NodeInput and *Param via their embedded
// summingJunction: both can be the destination end of a disconnect
// crossfade.
type fadeSink interface {
	setFadeGain(output *NodeOutput, gain float32)
	clearFadeGain(output *NodeOutput)
	disconnect(output *NodeOutput) bool
	markDirty()
}

// pendingDisconnect tracks one in-progress disconnect crossfade.
type pendingDisconnect struct {
	output *NodeOutput
	sink   fadeSink
	// input is set when sink is a *NodeInput, so the reverse
	// connectedInputs index on output can be cleaned up once the fade
	// finishes. nil when sink is a *Param.
	input *NodeInput

	remainingQuanta int
}

// pendingConnect tracks one connect edge waiting to be spliced into the
// graph. Context.Connect/ConnectParam enqueue these instead of mutating
// connectedOutputs themselves, so the render thread never observes a
// connectedOutputs slice a graph-editing goroutine is concurrently
// appending to (spec.md §4.1/§4.2). The queue is applied under the graph
// lock by Context.applyPendingConnects, on the render path rather than
// the update-loop goroutine.
type pendingConnect struct {
	output *NodeOutput
	input  *NodeInput // nil when connecting to a param instead of a node input
	param  *Param     // nil when connecting to a node input instead of a param
}

// finalize actually splices the edge in. Must be called with the graph
// lock held. Re-checks for a cycle (node-input connects only) before
// committing, since the edge may have sat queued across several other
// connects being validated and applied — a defensive re-check rather
// than the primary guard, which is the synchronous check Context.Connect
// already performed before enqueuing.
func (pc *pendingConnect) finalize(c *Context) {
	if pc.input != nil {
		if c.reaches(pc.input.node, pc.output.node) {
			log.Printf("[graph] dropping queued connect that would close a cycle (output of node %d into node %d)", pc.output.node.id, pc.input.node.id)
			return
		}
		pc.input.connect(pc.output)
		pc.output.addConnectedInput(pc.input)
		return
	}
	pc.param.connect(pc.output)
}

// pendingQueue holds every disconnect crossfade in flight and every
// connect not yet spliced into the graph. fading is stepped once per
// render quantum, under the render lock, by Context.RenderQuantum. Once
// a crossfade entry's ramp reaches zero it is moved to finishing, which
// the update-loop goroutine drains under the graph lock to actually sever
// the edge. connects is drained and applied (via Context.applyPendingConnects)
// the next time anything takes the graph lock to read connectedOutputs —
// whichever of Node.pullInputs or Param.updateRenderingState needs it
// first, not on a fixed schedule.
type pendingQueue struct {
	fading    []*pendingDisconnect
	finishing []*pendingDisconnect
	connects  []*pendingConnect
}

// beginConnect enqueues output -> input (or output -> param, if input is
// nil) to be spliced into the graph the next time it is applied via
// Context.applyPendingConnects. Exactly one of input/param must be non-nil.
func (q *pendingQueue) beginConnect(output *NodeOutput, input *NodeInput, param *Param) {
	q.connects = append(q.connects, &pendingConnect{output: output, input: input, param: param})
}

// drainConnects removes and returns every queued connect.
func (q *pendingQueue) drainConnects() []*pendingConnect {
	if len(q.connects) == 0 {
		return nil
	}
	out := q.connects
	q.connects = nil
	return out
}

// begin starts a new crossfade for sink/output, initializing its gain to
// full. Must be called with the graph lock held (the caller has just
// decided to disconnect this edge).
func (q *pendingQueue) begin(sink fadeSink, output *NodeOutput, input *NodeInput) {
	sink.setFadeGain(output, 1.0)
	q.fading = append(q.fading, &pendingDisconnect{
		output:          output,
		sink:            sink,
		input:           input,
		remainingQuanta: crossfadeQuanta,
	})
}

// step advances every in-flight crossfade by one quantum. Must be called
// with the render lock held, once per quantum, before the graph is
// pulled. Entries that reach zero gain move to finishing and are removed
// from fading.
func (q *pendingQueue) step() {
	if len(q.fading) == 0 {
		return
	}
	kept := q.fading[:0]
	for _, pd := range q.fading {
		pd.remainingQuanta--
		if pd.remainingQuanta <= 0 {
			pd.sink.setFadeGain(pd.output, 0)
			q.finishing = append(q.finishing, pd)
			continue
		}
		gain := float32(pd.remainingQuanta) / float32(crossfadeQuanta)
		pd.sink.setFadeGain(pd.output, gain)
		kept = append(kept, pd)
	}
	q.fading = kept
}

// drainFinishing removes and returns every crossfade that has reached
// zero gain and is ready for its edge to be severed.
func (q *pendingQueue) drainFinishing() []*pendingDisconnect {
	if len(q.finishing) == 0 {
		return nil
	}
	out := q.finishing
	q.finishing = nil
	return out
}

// finalize actually severs the edge. Must be called with the graph lock
// held (typically by the update-loop goroutine, never the render thread).
func (pd *pendingDisconnect) finalize() {
	pd.sink.disconnect(pd.output)
	pd.sink.clearFadeGain(pd.output)
	pd.sink.markDirty()
	if pd.input != nil {
		pd.output.removeConnectedInput(pd.input)
	}
}
