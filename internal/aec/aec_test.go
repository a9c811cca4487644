package aec

import (
	"math"
	"testing"
)

const testFrameSize = 960

func rms(s []float32) float64 {
	var sum float64
	for _, v := range s {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(s)))
}

func sinFrame(freq float64, frameIdx int) []float32 {
	out := make([]float32, testFrameSize)
	for i := range testFrameSize {
		t := float64(frameIdx*testFrameSize+i) / 48000.0
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

func TestPassthroughWithNoReference(t *testing.T) {
	a := New(testFrameSize)
	frame := sinFrame(440, 0)
	original := make([]float32, len(frame))
	copy(original, frame)

	a.Process(frame)

	for i, v := range frame {
		if math.Abs(float64(v-original[i])) > 1e-6 {
			t.Errorf("sample %d: expected %v, got %v", i, original[i], v)
		}
	}
}

func TestEchoConvergence(t *testing.T) {
	a := New(testFrameSize)

	const numWarmup = 300

	freq := 440.0
	var initialRMS, finalRMS float64

	for frame := range numWarmup + 10 {
		far := sinFrame(freq, frame)
		near := sinFrame(freq, frame)
		a.FeedFarEnd(far)
		a.Process(near)
		if frame == 0 {
			initialRMS = rms(sinFrame(freq, frame))
		}
		if frame >= numWarmup {
			finalRMS += rms(near)
		}
	}
	finalRMS /= 10

	ratio := initialRMS / (finalRMS + 1e-12)
	if ratio < 3.16 { // 10 dB
		t.Errorf("echo not suppressed enough: initial RMS=%.4f final RMS=%.4f ratio=%.2f (want >=3.16)",
			initialRMS, finalRMS, ratio)
	}
}

func TestDisabledPassthrough(t *testing.T) {
	a := New(testFrameSize)
	a.SetEnabled(false)

	far := sinFrame(440, 0)
	near := sinFrame(440, 0)
	a.FeedFarEnd(far)

	original := make([]float32, len(near))
	copy(original, near)
	a.Process(near)

	for i, v := range near {
		if v != original[i] {
			t.Errorf("sample %d changed while disabled: %v -> %v", i, original[i], v)
		}
	}
}

func TestSetEnabledResetsWeights(t *testing.T) {
	a := New(testFrameSize)

	for i := range 20 {
		far := sinFrame(440, i)
		near := sinFrame(440, i)
		a.FeedFarEnd(far)
		a.Process(near)
	}

	anyNonZero := false
	for _, w := range a.weights {
		if w != 0 {
			anyNonZero = true
			break
		}
	}
	if !anyNonZero {
		t.Fatal("expected non-zero weights after adaptation")
	}

	a.SetEnabled(true)
	for _, w := range a.weights {
		if w != 0 {
			t.Errorf("expected weight reset to 0 after SetEnabled(true), got %v", w)
		}
	}
}

func TestFeedFarEndAdvancesHead(t *testing.T) {
	a := New(testFrameSize)
	before := a.farHead

	frame := sinFrame(220, 0)
	a.FeedFarEnd(frame)

	expected := (before + testFrameSize) % a.bufLen
	if a.farHead != expected {
		t.Errorf("farHead: want %d, got %d", expected, a.farHead)
	}
}

func TestFarEndBufferWraps(t *testing.T) {
	a := New(testFrameSize)

	totalFrames := a.bufLen/testFrameSize + 5
	for i := range totalFrames {
		a.FeedFarEnd(sinFrame(440, i))
	}

	if a.farHead < 0 || a.farHead >= a.bufLen {
		t.Errorf("farHead out of range: %d (bufLen=%d)", a.farHead, a.bufLen)
	}
}

func TestProcessOutputBounded(t *testing.T) {
	a := New(testFrameSize)
	for i := range 50 {
		far := sinFrame(440, i)
		near := sinFrame(440, i)
		a.FeedFarEnd(far)
		a.Process(near)
		for j, v := range near {
			if v < -2 || v > 2 {
				t.Errorf("frame %d sample %d out of bounds: %v", i, j, v)
			}
		}
	}
}

func TestNewDefaults(t *testing.T) {
	a := New(testFrameSize)

	if !a.enabled {
		t.Error("AEC should be enabled by default")
	}
	if a.tapLen != DefaultTaps {
		t.Errorf("tapLen: want %d, got %d", DefaultTaps, a.tapLen)
	}
	if a.delayLen != DefaultDelay {
		t.Errorf("delayLen: want %d, got %d", DefaultDelay, a.delayLen)
	}
	if a.step != DefaultStep {
		t.Errorf("step: want %v, got %v", DefaultStep, a.step)
	}
	if len(a.weights) != DefaultTaps {
		t.Errorf("weights len: want %d, got %d", DefaultTaps, len(a.weights))
	}
	expectedBuf := testFrameSize + DefaultDelay + DefaultTaps
	if a.bufLen != expectedBuf {
		t.Errorf("bufLen: want %d, got %d", expectedBuf, a.bufLen)
	}
}
