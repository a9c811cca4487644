package audiograph

// Param is an automatable, possibly audio-rate-modulated control value
// owned by a Node (spec.md §3 "Param"). It carries its own timeline of
// scheduled events and, via the embedded summingJunction, accepts
// connections from NodeOutputs for sample-accurate audio-rate modulation
// (e.g. an LFO driving a GainNode's gain param).
type Param struct {
	summingJunction

	node *Node
	name string

	defaultValue float64
	minValue     float64
	maxValue     float64

	// internalValue is the scalar set by SetValue, used whenever the
	// timeline is empty and nothing is connected.
	internalValue float64

	timeline paramTimeline

	modulationBus *Bus

	// values holds the per-sample result of the most recent
	// calculateSampleAccurateValues call, reused across quanta to avoid
	// allocating on the render thread.
	values [BlockSize]float32
}

func newParam(node *Node, name string, defaultValue, minValue, maxValue float64) *Param {
	return &Param{
		node:          node,
		name:          name,
		defaultValue:  defaultValue,
		minValue:      minValue,
		maxValue:      maxValue,
		internalValue: defaultValue,
		modulationBus: NewBus(1, node.sampleRate),
	}
}

// Name returns the param's identifier, as given to newParam.
func (p *Param) Name() string { return p.name }

// DefaultValue returns the value a freshly constructed param starts at.
func (p *Param) DefaultValue() float64 { return p.defaultValue }

// Value returns the param's current scalar value: the last value produced
// either by SetValue or by the most recent sample-accurate evaluation.
func (p *Param) Value() float64 { return p.internalValue }

func (p *Param) clamp(v float64) float64 {
	if v < p.minValue {
		return p.minValue
	}
	if v > p.maxValue {
		return p.maxValue
	}
	return v
}

// SetValue immediately sets the param's value, bypassing the timeline. This
// is the "plain assignment" path of spec.md §6, distinct from
// SetValueAtTime which schedules a future timeline event.
func (p *Param) SetValue(v float64) {
	p.internalValue = p.clamp(v)
}

// SetValueAtTime schedules an immediate jump to v at time (seconds, the
// context's currentTime timeline).
func (p *Param) SetValueAtTime(v float64, time float64) {
	p.timeline.insert(ParamEvent{Kind: SetValue, Value: p.clamp(v), Time: time})
}

// LinearRampToValueAtTime schedules a linear ramp from whatever value is in
// effect at the previous event's time to v, reached at time.
func (p *Param) LinearRampToValueAtTime(v float64, time float64) {
	p.timeline.insert(ParamEvent{Kind: LinearRampToValue, Value: p.clamp(v), Time: time})
}

// ExponentialRampToValueAtTime schedules an exponential ramp to v, reached
// at time. Both the value in effect at the start of the ramp and v must be
// strictly positive for the ramp to be exponential; otherwise the segment
// holds its starting value (spec.md §4.3 edge case).
func (p *Param) ExponentialRampToValueAtTime(v float64, time float64) {
	p.timeline.insert(ParamEvent{Kind: ExponentialRampToValue, Value: p.clamp(v), Time: time})
}

// CancelScheduledValues removes every timeline event at or after startTime.
func (p *Param) CancelScheduledValues(startTime float64) {
	p.timeline.cancelFrom(startTime)
}

// hasSampleAccurateValues reports whether this param needs per-sample
// evaluation this quantum: either it has timeline events, or a node output
// is connected to it for audio-rate modulation (spec.md §4.3).
func (p *Param) hasSampleAccurateValues() bool {
	return p.timeline.hasEvents() || p.numberOfRenderingOutputs() > 0
}

// updateRenderingState refreshes the render-thread fan-in list for audio-
// rate modulation connections. Must be called with the render lock held,
// at a quantum boundary. Takes the graph lock (nested inside the render
// lock the caller already holds) around the refresh, since connectedOutputs
// is mutated by ConnectParam/DisconnectParam under graphMu alone — the same
// race Node.pullInputs guards against for ordinary NodeInput connections.
func (p *Param) updateRenderingState() {
	p.node.context.graphMu.Lock()
	defer p.node.context.graphMu.Unlock()
	p.node.context.applyPendingConnects()
	if !p.dirty {
		return
	}
	p.summingJunction.updateRenderingState()
}

// calculateSampleAccurateValues fills p.values[:frames] with this param's
// value at each sample of the current quantum, starting at startTime, and
// returns that slice. The last value produced is stored as the new scalar
// Value().
// If the param has no timeline events and no modulation connections, every
// sample equals the current scalar value and no per-sample work happens.
func (p *Param) calculateSampleAccurateValues(startTime float64, frames int) []float32 {
	p.updateRenderingState()
	out := p.values[:frames]

	if !p.hasSampleAccurateValues() {
		for i := range out {
			out[i] = float32(p.internalValue)
		}
		return out
	}

	sampleRate := p.node.sampleRate
	endTime := startTime + float64(frames)/sampleRate

	last := p.internalValue
	if p.timeline.hasEvents() {
		last = p.timeline.evaluate(startTime, endTime, sampleRate, p.internalValue, out)
	} else {
		for i := range out {
			out[i] = float32(last)
		}
	}

	if p.numberOfRenderingOutputs() > 0 {
		mod := p.pullModulation(frames)
		ch := mod.Channel(0)
		if !ch.Silent() {
			data := ch.Data()
			for i := range out {
				out[i] += data[i]
				if v := float64(out[i]); v < p.minValue {
					out[i] = float32(p.minValue)
				} else if v > p.maxValue {
					out[i] = float32(p.maxValue)
				}
			}
			last = float64(out[len(out)-1])
		}
	}

	p.internalValue = last
	return out
}

// pullModulation pulls this param's connected audio-rate outputs and sums
// them into the param's single-channel modulation bus, following the same
// 0/1/N fan-in protocol as NodeInput.Pull.
func (p *Param) pullModulation(frames int) *Bus {
	switch len(p.renderingOutputs) {
	case 0:
		p.modulationBus.Zero()
		return p.modulationBus
	case 1:
		o := p.renderingOutputs[0]
		rendered := o.Pull(nil, frames)
		if g := p.fadeGainFor(o); g != 1.0 {
			p.modulationBus.Zero()
			p.modulationBus.sumFrom(rendered, Discrete, g)
			return p.modulationBus
		}
		return rendered
	default:
		p.modulationBus.Zero()
		for _, o := range p.renderingOutputs {
			rendered := o.Pull(nil, frames)
			p.modulationBus.sumFrom(rendered, Discrete, p.fadeGainFor(o))
		}
		return p.modulationBus
	}
}
