package audiograph

import "math"

// PannerNode applies equal-power stereo panning to its input, steered by
// an automatable Pan param in [-1, 1] (-1 hard left, 0 center, 1 hard
// right). Its output is always stereo; unlike GainNode it does not
// auto-match the input's channel count (spec.md §4.1 "channel-count
// negotiation", §6 "PannerNode").
type PannerNode struct {
	*Node
	pan *Param
}

// NewPannerNode creates a PannerNode with pan defaulting to 0 (center).
func NewPannerNode(ctx *Context) *PannerNode {
	n := newNode(ctx, nil, 1, 1, 2)
	n.autoMatchOutputChannels = false
	n.SetChannelCountMode(Explicit)
	n.SetChannelCount(2)
	p := &PannerNode{Node: n}
	n.proc = p
	p.pan = newParam(n, "pan", 0, -1, 1)
	n.addParam(p.pan)
	return p
}

// Pan returns the node's pan param.
func (p *PannerNode) Pan() *Param { return p.pan }

// Process implements Processor. A stereo input is downmixed to mono
// before panning; equal-power panning has no well-defined meaning for an
// already-positioned stereo signal.
func (p *PannerNode) Process(n *Node, frames int) {
	in := n.InputBus(0)
	out := n.Output(0).Bus()

	values := p.pan.calculateSampleAccurateValues(n.context.currentTime(), frames)

	l := out.Channel(0).Data()
	r := out.Channel(1).Data()

	switch in.NumberOfChannels() {
	case 1:
		src := in.Channel(0).Data()
		for i := 0; i < frames; i++ {
			gl, gr := equalPowerGains(values[i])
			l[i] = src[i] * gl
			r[i] = src[i] * gr
		}
	default:
		inL := in.Channel(0).Data()
		inR := in.Channel(1).Data()
		for i := 0; i < frames; i++ {
			mono := (inL[i] + inR[i]) * 0.5
			gl, gr := equalPowerGains(values[i])
			l[i] = mono * gl
			r[i] = mono * gr
		}
	}

	if !in.IsSilent() {
		out.Channel(0).MarkActive()
		out.Channel(1).MarkActive()
	}
}

// equalPowerGains maps pan in [-1, 1] to a (left, right) gain pair whose
// squared sum is constant, so a signal panned hard to one side is
// perceived at the same loudness as one centered.
func equalPowerGains(pan float32) (float32, float32) {
	if pan < -1 {
		pan = -1
	} else if pan > 1 {
		pan = 1
	}
	angle := float64(pan+1) * (math.Pi / 4)
	return float32(math.Cos(angle)), float32(math.Sin(angle))
}

// TailTime implements Processor.
func (p *PannerNode) TailTime() float64 { return 0 }

// LatencyTime implements Processor.
func (p *PannerNode) LatencyTime() float64 { return 0 }

// PropagatesSilence implements Processor: panning silence yields silence.
func (p *PannerNode) PropagatesSilence() bool { return true }

// Reset implements Processor.
func (p *PannerNode) Reset() {}
