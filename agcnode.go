package audiograph

import "github.com/rustyguts/audiograph/internal/agc"

// AGCNode applies automatic gain control independently to each channel
// of its input, adapting a per-channel gain toward a target RMS level
// with fast attack / slow release (spec.md §6 names this among the
// engine's built-in processing nodes; the AGC algorithm itself is
// adapted from the teacher's voice-chat gain stage).
type AGCNode struct {
	*Node
	channels []*agc.AGC
}

// NewAGCNode creates an AGCNode with one AGC per channel of the 2-channel
// default GainNode also uses; Process resizes the set to match the
// output's channel count.
func NewAGCNode(ctx *Context) *AGCNode {
	n := newNode(ctx, nil, 1, 1, 2)
	a := &AGCNode{Node: n}
	n.proc = a
	a.channels = make([]*agc.AGC, n.ChannelCount())
	for i := range a.channels {
		a.channels[i] = agc.New()
	}
	return a
}

// SetTargetLevel sets the desired RMS level for every channel. level is
// in [0, 100], mapped onto agc.AGC's internal [0.01, 0.50] target range.
func (a *AGCNode) SetTargetLevel(level int) {
	for _, c := range a.channels {
		c.SetTarget(level)
	}
}

// Gain returns channel i's current linear gain multiplier.
func (a *AGCNode) Gain(channel int) float64 { return a.channels[channel].Gain() }

// Process implements Processor.
func (a *AGCNode) Process(n *Node, frames int) {
	in := n.InputBus(0)
	out := n.Output(0).Bus()
	out.CopyFrom(in, n.channelInterpretation)

	nCh := out.NumberOfChannels()
	if len(a.channels) != nCh {
		channels := make([]*agc.AGC, nCh)
		copy(channels, a.channels)
		for i := len(a.channels); i < nCh; i++ {
			channels[i] = agc.New()
		}
		a.channels = channels
	}

	for c := 0; c < nCh; c++ {
		ch := out.Channel(c)
		if ch.Silent() {
			continue
		}
		a.channels[c].Process(ch.Data()[:frames])
	}
}

// TailTime implements Processor: the NLMS-free AGC has no tail.
func (a *AGCNode) TailTime() float64 { return 0 }

// LatencyTime implements Processor.
func (a *AGCNode) LatencyTime() float64 { return 0 }

// PropagatesSilence implements Processor: amplifying silence is silence.
func (a *AGCNode) PropagatesSilence() bool { return true }

// Reset implements Processor: returns every channel's gain to unity.
func (a *AGCNode) Reset() {
	for _, c := range a.channels {
		c.Reset()
	}
}
