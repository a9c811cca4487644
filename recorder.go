package audiograph

// AudioRecorderNode captures its input into an in-memory buffer, frame by
// frame, every quantum while running; an unconnected input is captured
// as silence (spec.md §6 "AudioRecorderNode").
// It registers itself as an automatic pull node so capture continues even
// though it has no output for anything downstream to pull through.
type AudioRecorderNode struct {
	*Node

	captured [][]float32
	running  bool
}

// NewAudioRecorderNode creates an AudioRecorderNode with the given input
// channel count and registers it with ctx as an automatic pull node.
func NewAudioRecorderNode(ctx *Context, channels int) *AudioRecorderNode {
	n := newNode(ctx, nil, 1, 0, 0)
	r := &AudioRecorderNode{Node: n, running: true}
	n.proc = r
	r.captured = make([][]float32, channels)
	ctx.AddAutomaticPullNode(n)
	return r
}

// SetRunning starts or pauses capture without disconnecting the node.
func (r *AudioRecorderNode) SetRunning(running bool) { r.running = running }

// Buffer returns a SampleBuffer snapshotting everything captured so far.
// The returned buffer does not share storage with the recorder's internal
// state; further capture does not mutate it.
func (r *AudioRecorderNode) Buffer() *SampleBuffer {
	out := make([][]float32, len(r.captured))
	for i, ch := range r.captured {
		out[i] = append([]float32(nil), ch...)
	}
	return &SampleBuffer{Channels: out, SampleRate: r.Node.sampleRate}
}

// Clear discards everything captured so far.
func (r *AudioRecorderNode) Clear() {
	for i := range r.captured {
		r.captured[i] = r.captured[i][:0]
	}
}

// Process implements Processor.
func (r *AudioRecorderNode) Process(n *Node, frames int) {
	if !r.running {
		return
	}
	in := n.InputBus(0)
	if len(r.captured) == 0 {
		r.captured = make([][]float32, in.NumberOfChannels())
	}
	for c := range r.captured {
		if c >= in.NumberOfChannels() {
			r.captured[c] = append(r.captured[c], make([]float32, frames)...)
			continue
		}
		r.captured[c] = append(r.captured[c], in.Channel(c).Data()[:frames]...)
	}
}

// TailTime implements Processor.
func (r *AudioRecorderNode) TailTime() float64 { return 0 }

// LatencyTime implements Processor.
func (r *AudioRecorderNode) LatencyTime() float64 { return 0 }

// PropagatesSilence implements Processor: AudioRecorderNode is an
// automatic pull node whose job is to append one quantum's worth of
// frames to its buffer every time it runs, silent or not. Letting it be
// silence-skipped would shorten the captured buffer during any silent
// span of the input.
func (r *AudioRecorderNode) PropagatesSilence() bool { return false }

// Reset implements Processor.
func (r *AudioRecorderNode) Reset() { r.Clear() }
