package audiograph

// SampleBuffer is an in-memory, fully-decoded PCM clip: one []float32 per
// channel, all the same length. AudioPlayerNode renders from one; the
// device package's Decoder interface produces these from compressed or
// container formats (spec.md §6 "Decoder").
type SampleBuffer struct {
	Channels   [][]float32
	SampleRate float64
}

// NumberOfChannels returns how many channels the buffer carries.
func (b *SampleBuffer) NumberOfChannels() int { return len(b.Channels) }

// Length returns the buffer's length in frames.
func (b *SampleBuffer) Length() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// AudioPlayerNode renders a SampleBuffer into the graph, following the
// play/stop scheduled-source state machine (spec.md §4.4, §6
// "AudioPlayerNode"). It has no input.
type AudioPlayerNode struct {
	*Node
	scheduledSource

	buf      *SampleBuffer
	position int // next frame of buf to render
}

// NewAudioPlayerNode creates an AudioPlayerNode that will render buf once
// played. buf's channel count becomes the node's fixed output channel
// count.
func NewAudioPlayerNode(ctx *Context, buf *SampleBuffer) *AudioPlayerNode {
	channels := 1
	if buf != nil && buf.NumberOfChannels() > 0 {
		channels = buf.NumberOfChannels()
	}
	n := newNode(ctx, nil, 0, 1, channels)
	n.autoMatchOutputChannels = false
	p := &AudioPlayerNode{Node: n, buf: buf}
	n.proc = p
	return p
}

// Play schedules playback to begin at at (seconds on the owning Context's
// timeline). Only the first call takes effect.
func (p *AudioPlayerNode) Play(at float64) { p.play(at) }

// Stop schedules playback to end at at (seconds).
func (p *AudioPlayerNode) Stop(at float64) { p.stop(at) }

// OnEnded registers fn to run (via the Context's dispatcher) once this
// source reaches the finished state, whether by explicit Stop or by
// exhausting its buffer.
func (p *AudioPlayerNode) OnEnded(fn func()) { p.onEndedCallback(fn) }

// Process implements Processor.
func (p *AudioPlayerNode) Process(n *Node, frames int) {
	out := n.Output(0).Bus()
	out.Zero()

	if p.buf == nil {
		return
	}

	info := p.updateSchedulingInfo(n.context.currentSampleFrame(), frames, n.sampleRate)

	toProcess := info.framesToProcess
	if toProcess == 0 {
		if info.justFinished {
			p.finish(n.context, n.id)
		}
		return
	}

	remaining := p.buf.Length() - p.position
	if toProcess > remaining {
		toProcess = remaining
	}

	for c := 0; c < out.NumberOfChannels() && c < len(p.buf.Channels); c++ {
		src := p.buf.Channels[c][p.position : p.position+toProcess]
		dst := out.Channel(c).Data()[info.quantumFrameOffset : info.quantumFrameOffset+toProcess]
		copy(dst, src)
		if toProcess > 0 {
			out.Channel(c).MarkActive()
		}
	}

	p.position += toProcess
	exhausted := p.position >= p.buf.Length()

	if info.justFinished || exhausted {
		p.finish(n.context, n.id)
	}
}

// TailTime implements Processor.
func (p *AudioPlayerNode) TailTime() float64 { return 0 }

// LatencyTime implements Processor.
func (p *AudioPlayerNode) LatencyTime() float64 { return 0 }

// Reset implements Processor: rewinds playback and clears scheduling.
func (p *AudioPlayerNode) Reset() {
	p.reset()
	p.position = 0
}
