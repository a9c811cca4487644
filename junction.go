package audiograph

// summingJunction is the shared base for every fan-in point in the graph:
// a NodeInput (audio-rate signal fan-in) and a Param's modulation input
// both embed one (spec.md §3 "Summing junction").
//
// connectedOutputs is the graph-thread view, mutated only while the
// context's graph lock is held. renderingOutputs is the render-thread
// view, rebuilt from connectedOutputs via updateRenderingState, which the
// render path calls with the graph lock held (nested inside the render
// lock), so the copy never races a concurrent graph edit.
type summingJunction struct {
	connectedOutputs []*NodeOutput
	renderingOutputs []*NodeOutput
	dirty            bool

	// fadeGains holds a per-output gain override while a disconnect
	// crossfade is in progress (spec.md §4.2 "begin a disconnect
	// crossfade"). Absent entries mean full gain (1.0). Only ever
	// touched under the render lock, alongside renderingOutputs.
	fadeGains map[*NodeOutput]float32
}

// setFadeGain installs a crossfade gain for output, applied the next time
// it is summed into this junction's result.
func (j *summingJunction) setFadeGain(output *NodeOutput, gain float32) {
	if j.fadeGains == nil {
		j.fadeGains = make(map[*NodeOutput]float32, 1)
	}
	j.fadeGains[output] = gain
}

// clearFadeGain removes any crossfade override for output, restoring full
// gain.
func (j *summingJunction) clearFadeGain(output *NodeOutput) {
	delete(j.fadeGains, output)
}

func (j *summingJunction) fadeGainFor(output *NodeOutput) float32 {
	if j.fadeGains == nil {
		return 1.0
	}
	if g, ok := j.fadeGains[output]; ok {
		return g
	}
	return 1.0
}

// connect adds output to the graph-thread fan-in list. Must be called with
// the graph lock held. A no-op if output is already connected.
func (j *summingJunction) connect(output *NodeOutput) {
	if j.isConnected(output) {
		return
	}
	j.connectedOutputs = append(j.connectedOutputs, output)
	j.dirty = true
}

// disconnect removes output from the graph-thread fan-in list. Must be
// called with the graph lock held. Reports whether output was present.
func (j *summingJunction) disconnect(output *NodeOutput) bool {
	for i, o := range j.connectedOutputs {
		if o == output {
			j.connectedOutputs = append(j.connectedOutputs[:i], j.connectedOutputs[i+1:]...)
			j.dirty = true
			return true
		}
	}
	return false
}

// isConnected reports whether output is present in connectedOutputs. This
// is the one true definition spec.md §9 asks for — "define isConnected as
// 'output is present in connectedOutputs' and apply it consistently in
// both connect and disconnect" — fixing the source's inverted param-connect
// check.
func (j *summingJunction) isConnected(output *NodeOutput) bool {
	for _, o := range j.connectedOutputs {
		if o == output {
			return true
		}
	}
	return false
}

// markDirty flags that renderingOutputs must be refreshed before the next
// pull. Used when a node's own state changes in a way that should force a
// re-evaluation (e.g. channel count negotiation) without an actual
// connect/disconnect.
func (j *summingJunction) markDirty() {
	j.dirty = true
}

// updateRenderingState must be called with the render lock held, once per
// quantum at most, before this junction is pulled. It is a no-op unless the
// junction is dirty.
func (j *summingJunction) updateRenderingState() {
	if !j.dirty {
		return
	}
	for _, o := range j.renderingOutputs {
		o.removeRenderingConsumer()
	}
	j.renderingOutputs = append(j.renderingOutputs[:0:0], j.connectedOutputs...)
	for _, o := range j.renderingOutputs {
		o.addRenderingConsumer()
	}
	j.dirty = false
}

// numberOfRenderingOutputs returns the render-thread fan-in count — the
// value the pull protocol branches on (0 / 1 / N, spec.md §4.1).
func (j *summingJunction) numberOfRenderingOutputs() int {
	return len(j.renderingOutputs)
}

// numberOfConnectedOutputs returns the graph-thread fan-in count, used by
// Param.hasSampleAccurateValues and by client-facing introspection.
func (j *summingJunction) numberOfConnectedOutputs() int {
	return len(j.connectedOutputs)
}
