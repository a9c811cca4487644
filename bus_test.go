package audiograph

import "testing"

func TestBusZeroIsSilent(t *testing.T) {
	b := NewBus(2, DefaultSampleRate)
	b.Channel(0).Data()[0] = 1
	b.Channel(0).MarkActive()
	if b.IsSilent() {
		t.Fatal("IsSilent() = true after writing a non-zero sample")
	}
	b.Zero()
	if !b.IsSilent() {
		t.Fatal("IsSilent() = false after Zero()")
	}
}

func TestSumFromMonoToStereoDuplicates(t *testing.T) {
	mono := NewBus(1, DefaultSampleRate)
	for i := range mono.Channel(0).Data() {
		mono.Channel(0).Data()[i] = 1
	}
	mono.Channel(0).MarkActive()

	stereo := NewBus(2, DefaultSampleRate)
	stereo.SumFrom(mono, Speakers)

	for c := 0; c < 2; c++ {
		data := stereo.Channel(c).Data()
		for i, v := range data {
			if v != 1 {
				t.Fatalf("stereo channel %d sample %d = %v, want 1", c, i, v)
			}
		}
	}
}

func TestSumFromStereoToMonoAverages(t *testing.T) {
	stereo := NewBus(2, DefaultSampleRate)
	l := stereo.Channel(0).Data()
	r := stereo.Channel(1).Data()
	for i := range l {
		l[i] = 1
		r[i] = 3
	}
	stereo.Channel(0).MarkActive()
	stereo.Channel(1).MarkActive()

	mono := NewBus(1, DefaultSampleRate)
	mono.SumFrom(stereo, Speakers)

	for i, v := range mono.Channel(0).Data() {
		if v != 2 {
			t.Fatalf("mono sample %d = %v, want 2", i, v)
		}
	}
}

func TestCopyWithGainZeroesOnSilentSource(t *testing.T) {
	dst := NewBus(1, DefaultSampleRate)
	src := NewBus(1, DefaultSampleRate) // silent by construction
	dst.Channel(0).Data()[0] = 42
	dst.Channel(0).MarkActive()

	dst.CopyWithGain(src, 1, 1)
	if !dst.IsSilent() {
		t.Fatal("CopyWithGain from a silent source did not zero the destination")
	}
}

func TestCopyWithGainFlatWhenCloseToCurrent(t *testing.T) {
	dst := NewBus(1, DefaultSampleRate)
	src := NewBus(1, DefaultSampleRate)
	for i := range src.Channel(0).Data() {
		src.Channel(0).Data()[i] = 1
	}
	src.Channel(0).MarkActive()

	dst.CopyWithGain(src, 1, 0.5) // first call: ramps from the target itself
	for i, v := range dst.Channel(0).Data() {
		if v != 0.5 {
			t.Fatalf("sample %d = %v, want 0.5", i, v)
		}
	}

	// A second call at nearly the same gain should apply flat, not ramp.
	dst.CopyWithGain(src, 1, 0.5005)
	for i, v := range dst.Channel(0).Data() {
		if v < 0.5 || v > 0.501 {
			t.Fatalf("sample %d = %v, want ~0.5005 applied flat", i, v)
		}
	}
}

func TestCopyWithGainRampsAcrossLargeJump(t *testing.T) {
	dst := NewBus(1, DefaultSampleRate)
	src := NewBus(1, DefaultSampleRate)
	for i := range src.Channel(0).Data() {
		src.Channel(0).Data()[i] = 1
	}
	src.Channel(0).MarkActive()

	dst.CopyWithGain(src, 1, 0)    // settle at gain 0
	dst.CopyWithGain(src, 1, 1)    // now ramp 0 -> 1 across the block
	data := dst.Channel(0).Data()
	if data[0] >= data[len(data)-1] {
		t.Fatalf("expected an increasing ramp, got first=%v last=%v", data[0], data[len(data)-1])
	}
	if data[len(data)-1] <= 0 || data[len(data)-1] > 1 {
		t.Fatalf("ramp end value out of range: %v", data[len(data)-1])
	}
}
