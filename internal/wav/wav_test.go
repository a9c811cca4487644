package wav

import (
	"bytes"
	"math"
	"testing"
)

func makeSine(freq float64, sampleRate float64, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = 0.5 * float32(math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := &SampleBuffer{
		Channels:   [][]float32{makeSine(440, 44100, 512), makeSine(220, 44100, 512)},
		SampleRate: 44100,
	}

	var buf bytes.Buffer
	var c Codec
	if err := c.Encode(&buf, in); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	out, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if out.SampleRate != in.SampleRate {
		t.Fatalf("SampleRate = %v, want %v", out.SampleRate, in.SampleRate)
	}
	if len(out.Channels) != len(in.Channels) {
		t.Fatalf("channel count = %d, want %d", len(out.Channels), len(in.Channels))
	}
	for c := range in.Channels {
		if len(out.Channels[c]) != len(in.Channels[c]) {
			t.Fatalf("channel %d length = %d, want %d", c, len(out.Channels[c]), len(in.Channels[c]))
		}
		for i := range in.Channels[c] {
			diff := math.Abs(float64(out.Channels[c][i] - in.Channels[c][i]))
			if diff > 1.0/32767.0+1e-6 {
				t.Fatalf("channel %d sample %d = %v, want ~%v (16-bit quantization)", c, i, out.Channels[c][i], in.Channels[c][i])
			}
		}
	}
}

func TestDecodeRejectsNonWAV(t *testing.T) {
	var c Codec
	if _, err := c.Decode(bytes.NewReader([]byte("not a wav file"))); err == nil {
		t.Fatal("Decode() on garbage input: expected error, got nil")
	}
}
