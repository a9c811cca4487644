// Package aec provides a Normalized Least Mean Squares (NLMS) acoustic
// echo canceller, fed one render quantum at a time rather than a fixed
// 20ms VoIP frame.
//
// Usage:
//
//	canceller := aec.New(audiograph.BlockSize)
//
//	// after rendering playback for this quantum:
//	canceller.FeedFarEnd(playbackFrame)
//
//	// before anything else touches the captured frame:
//	canceller.Process(captureFrame) // modifies in-place
package aec

import "sync"

const (
	// DefaultDelay is the bulk delay (samples) assumed between playback
	// and the echo arriving at the microphone. 1920 samples is 40ms at
	// 48kHz, covering typical system latency (DAC + acoustic path + ADC).
	DefaultDelay = 1920

	// DefaultTaps is the NLMS filter length (samples): the window within
	// which the filter can track residual delay and room response after
	// the bulk delay.
	DefaultTaps = 480

	// DefaultStep is the NLMS step size mu (0 < mu < 2). Smaller values
	// converge more slowly but are more stable.
	DefaultStep = 0.1
)

// AEC is an NLMS-based acoustic echo canceller.
//
// The far-end circular buffer is large enough that the writer
// (FeedFarEnd) and reader (Process) access disjoint regions, so the
// mutex is only held briefly for the reference copy and for
// configuration changes.
type AEC struct {
	mu      sync.Mutex
	enabled bool

	weights []float64
	tapLen  int
	step    float64

	farBuf    []float32
	farHead   int
	bufLen    int
	delayLen  int
	frameSize int
}

// New creates an AEC for the given render-quantum size (in samples).
func New(frameSize int) *AEC {
	bufLen := frameSize + DefaultDelay + DefaultTaps
	return &AEC{
		enabled:   true,
		weights:   make([]float64, DefaultTaps),
		tapLen:    DefaultTaps,
		step:      DefaultStep,
		farBuf:    make([]float32, bufLen),
		bufLen:    bufLen,
		delayLen:  DefaultDelay,
		frameSize: frameSize,
	}
}

// SetEnabled enables or disables echo cancellation. Enabling resets the
// filter weights so it adapts cleanly from scratch.
func (a *AEC) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	if enabled {
		for i := range a.weights {
			a.weights[i] = 0
		}
	}
	a.mu.Unlock()
}

// FeedFarEnd stores the most recent playback quantum as the far-end
// reference.
func (a *AEC) FeedFarEnd(frame []float32) {
	a.mu.Lock()
	for _, s := range frame {
		a.farBuf[a.farHead] = s
		a.farHead = (a.farHead + 1) % a.bufLen
	}
	a.mu.Unlock()
}

// Process applies echo cancellation to a captured frame in-place.
//
// The algorithm:
//  1. Copies the relevant far-end reference window (locked briefly).
//  2. Runs NLMS sample-by-sample outside the lock.
//  3. Output sample = near_end[i] - sum(w[k]*far_end[i+tapLen-1-k]).
//     The NLMS update adapts the weights toward the actual echo path.
func (a *AEC) Process(frame []float32) {
	a.mu.Lock()
	if !a.enabled {
		a.mu.Unlock()
		return
	}

	refLen := a.frameSize + a.tapLen - 1
	ref := make([]float32, refLen)
	startIdx := a.farHead - a.frameSize - a.delayLen - a.tapLen + 1
	for j := range refLen {
		idx := ((startIdx+j)%a.bufLen + 3*a.bufLen) % a.bufLen
		ref[j] = a.farBuf[idx]
	}
	a.mu.Unlock()

	for i := range frame {
		refBase := i + a.tapLen - 1

		var y, powerSum float64
		for k := 0; k < a.tapLen; k++ {
			x := float64(ref[refBase-k])
			y += a.weights[k] * x
			powerSum += x * x
		}

		e := float64(frame[i]) - y

		if powerSum > 1e-10 {
			step := a.step * e / powerSum
			for k := 0; k < a.tapLen; k++ {
				a.weights[k] += step * float64(ref[refBase-k])
			}
		}

		frame[i] = float32(e)
	}
}
