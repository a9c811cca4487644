package device

import "testing"

func TestDownmixMonoIsIdentity(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	out := make([]float32, 3)
	downmix(in, out, 1)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestDownmixStereoAverages(t *testing.T) {
	interleaved := []float32{1, 3, 2, 4} // L,R,L,R
	mono := make([]float32, 2)
	downmix(interleaved, mono, 2)
	want := []float32{2, 3}
	for i := range want {
		if mono[i] != want[i] {
			t.Fatalf("mono[%d] = %v, want %v", i, mono[i], want[i])
		}
	}
}

func TestUpmixStereoDuplicates(t *testing.T) {
	mono := []float32{1, 2}
	interleaved := make([]float32, 4)
	upmix(mono, interleaved, 2)
	want := []float32{1, 1, 2, 2}
	for i := range want {
		if interleaved[i] != want[i] {
			t.Fatalf("interleaved[%d] = %v, want %v", i, interleaved[i], want[i])
		}
	}
}

func TestDownmixUpmixRoundTripMono(t *testing.T) {
	src := []float32{0.5, -0.5, 0.25}
	mono := make([]float32, 3)
	downmix(src, mono, 1)
	out := make([]float32, 3)
	upmix(mono, out, 1)
	for i := range src {
		if out[i] != src[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], src[i])
		}
	}
}
