package audiograph

import "math"

// playbackState is a scheduled source's lifecycle position (spec.md §4.4
// "Scheduled source state machine").
type playbackState int

const (
	unscheduled playbackState = iota
	scheduled
	playing
	finished
)

// scheduledSource is embedded by source node types (AudioPlayerNode, and
// any future oscillator/buffer-source node) to get the play/stop state
// machine and per-quantum scheduling arithmetic spec.md §4.4 describes.
// It does not implement Processor itself — the embedding node's Process
// method calls updateSchedulingInfo each quantum to learn which frame
// range of its own buffer to render.
type scheduledSource struct {
	state playbackState

	startTime   float64
	hasStop     bool
	stopTime    float64

	onEnded func()
}

// play schedules playback to begin at at (seconds). Calling play on an
// already-scheduled or playing source is a no-op (spec.md §4.4 edge case:
// only the first play() call takes effect).
func (s *scheduledSource) play(at float64) {
	if s.state != unscheduled {
		return
	}
	s.startTime = at
	s.state = scheduled
}

// stop schedules playback to end at at (seconds). Calling stop before play
// is invalid per the Web Audio state machine this mirrors, but is accepted
// here and simply takes effect once the source starts, since rejecting it
// synchronously would require a channel back to the caller this package
// does not have.
func (s *scheduledSource) stop(at float64) {
	s.hasStop = true
	s.stopTime = at
}

// onEndedCallback registers the function invoked (via the owning Context's
// dispatcher, off the render thread) when this source reaches the
// finished state.
func (s *scheduledSource) onEndedCallback(fn func()) {
	s.onEnded = fn
}

// reset returns the source to its initial, unscheduled state (Processor.Reset).
func (s *scheduledSource) reset() {
	s.state = unscheduled
	s.hasStop = false
	s.startTime = 0
	s.stopTime = 0
}

// schedulingInfo is the result of updateSchedulingInfo: which frames of
// the current render quantum this source should actually render, and
// whether it crossed into playing or finished state this quantum.
type schedulingInfo struct {
	// quantumFrameOffset is how many leading frames of this quantum are
	// silence because playback starts partway through it.
	quantumFrameOffset int
	// framesToProcess is how many frames starting at quantumFrameOffset
	// should be rendered from source data; the rest of the quantum
	// (before the offset, and after framesToProcess) is silence.
	framesToProcess int
	justFinished    bool
}

// updateSchedulingInfo computes this quantum's active frame range from the
// source's play/stop schedule, advances state from scheduled to playing
// once the quantum's frame range reaches startTime, and sets justFinished
// when it reaches stopTime; the caller then calls finish, which moves the
// source to finished and fires onEnded (spec.md §4.4).
func (s *scheduledSource) updateSchedulingInfo(quantumStartFrame uint64, frames int, sampleRate float64) schedulingInfo {
	if s.state == unscheduled || s.state == finished {
		return schedulingInfo{}
	}

	quantumEndFrame := quantumStartFrame + uint64(frames)
	startFrame := uint64(math.Round(s.startTime * sampleRate))

	if s.state == scheduled {
		if startFrame >= quantumEndFrame {
			// Hasn't started yet; this whole quantum is silence.
			return schedulingInfo{quantumFrameOffset: frames, framesToProcess: 0}
		}
		s.state = playing
	}

	offset := 0
	if startFrame > quantumStartFrame {
		offset = int(startFrame - quantumStartFrame)
	}

	nonSilentEndFrame := quantumEndFrame
	justFinished := false
	if s.hasStop {
		stopFrame := uint64(math.Round(s.stopTime * sampleRate))
		if stopFrame <= quantumStartFrame+uint64(offset) {
			// Already past the stop point: nothing to render, finish now.
			return schedulingInfo{quantumFrameOffset: offset, framesToProcess: 0, justFinished: true}
		}
		if stopFrame < nonSilentEndFrame {
			nonSilentEndFrame = stopFrame
			justFinished = true
		}
	}

	toProcess := 0
	if nonSilentEndFrame > quantumStartFrame+uint64(offset) {
		toProcess = int(nonSilentEndFrame - (quantumStartFrame + uint64(offset)))
	}

	return schedulingInfo{quantumFrameOffset: offset, framesToProcess: toProcess, justFinished: justFinished}
}

// PropagatesSilence implements Processor for the embedding node (e.g.
// AudioPlayerNode) via method promotion. A source with no inputs of its
// own has nothing to judge silence by — it must keep calling Process
// every quantum while scheduled or playing so its position/scheduling
// state keeps advancing; only once it is unscheduled or finished does
// ordinary tail/latency-based propagation apply.
func (s *scheduledSource) PropagatesSilence() bool {
	return s.state != scheduled && s.state != playing
}

// finish transitions the source directly to finished and fires onEnded
// (called when a source exhausts its own buffer or reaches its scheduled
// stop time). The callback is delivered through ctx's dispatcher so it never
// runs on the render thread itself.
func (s *scheduledSource) finish(ctx *Context, nodeID uint64) {
	if s.state == finished {
		return
	}
	s.state = finished
	if s.onEnded != nil {
		ctx.dispatch(FinishedEvent{NodeID: nodeID, Callback: s.onEnded})
	}
}
