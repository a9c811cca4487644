package level

import (
	"math"
	"testing"
)

func makeSine(freq float64, amp float32, sampleRate float64, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amp * float32(math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

func TestRMSZeroOnEmpty(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}
}

func TestRMSSine(t *testing.T) {
	frame := makeSine(440, 1.0, 48000, 4800)
	got := RMS(frame)
	want := float32(1 / math.Sqrt2)
	if math.Abs(float64(got-want)) > 0.01 {
		t.Fatalf("RMS(sine amp=1) = %v, want ~%v", got, want)
	}
}

func TestMeterHoldsPeak(t *testing.T) {
	m := New()

	loud := makeSine(440, 0.9, 48000, 128)
	quiet := makeSine(440, 0.01, 48000, 128)

	peak := m.Update(loud)
	if peak <= 0.5 {
		t.Fatalf("Update(loud) = %v, want a high level", peak)
	}

	for i := 0; i < DefaultHold-1; i++ {
		held := m.Update(quiet)
		if held != peak {
			t.Fatalf("iteration %d: level dropped during hold window: got %v, want %v", i, held, peak)
		}
	}
}

func TestMeterDecaysAfterHold(t *testing.T) {
	m := New()

	loud := makeSine(440, 0.9, 48000, 128)
	silence := make([]float32, 128)

	peak := m.Update(loud)
	for i := 0; i < DefaultHold; i++ {
		m.Update(silence)
	}
	afterHold := m.Update(silence)

	if afterHold >= peak {
		t.Fatalf("level did not decay after hold expired: got %v, peak %v", afterHold, peak)
	}
}

func TestMeterReset(t *testing.T) {
	m := New()
	m.Update(makeSine(440, 0.9, 48000, 128))
	m.Reset()
	if m.Level() != 0 {
		t.Fatalf("Level() after Reset = %v, want 0", m.Level())
	}
}
