package ring

import "testing"

func TestWriteReadRoundTrip(t *testing.T) {
	b := New(8)
	src := []float32{1, 2, 3, 4}
	if n := b.Write(src); n != 4 {
		t.Fatalf("Write() = %d, want 4", n)
	}

	dst := make([]float32, 4)
	if n := b.Read(dst); n != 4 {
		t.Fatalf("Read() = %d, want 4", n)
	}
	for i, v := range src {
		if dst[i] != v {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], v)
		}
	}
}

func TestCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	b := New(5)
	if got := b.Len(); got != 8 {
		t.Fatalf("Len() = %d, want 8", got)
	}
}

func TestWriteStopsAtCapacity(t *testing.T) {
	b := New(4)
	src := []float32{1, 2, 3, 4, 5, 6}
	if n := b.Write(src); n != 4 {
		t.Fatalf("Write() = %d, want 4 (capacity-limited)", n)
	}
	if avail := b.AvailableForWriting(); avail != 0 {
		t.Fatalf("AvailableForWriting() = %d, want 0", avail)
	}
}

func TestReadStopsAtAvailable(t *testing.T) {
	b := New(8)
	b.Write([]float32{1, 2})
	dst := make([]float32, 4)
	if n := b.Read(dst); n != 2 {
		t.Fatalf("Read() = %d, want 2", n)
	}
}

func TestWrapAround(t *testing.T) {
	b := New(4)
	b.Write([]float32{1, 2, 3})
	dst := make([]float32, 3)
	b.Read(dst)

	b.Write([]float32{4, 5, 6})
	dst2 := make([]float32, 3)
	n := b.Read(dst2)
	if n != 3 {
		t.Fatalf("Read() after wraparound = %d, want 3", n)
	}
	want := []float32{4, 5, 6}
	for i := range want {
		if dst2[i] != want[i] {
			t.Fatalf("dst2[%d] = %v, want %v", i, dst2[i], want[i])
		}
	}
}

func TestReset(t *testing.T) {
	b := New(8)
	b.Write([]float32{1, 2, 3})
	b.Reset()
	if avail := b.AvailableForReading(); avail != 0 {
		t.Fatalf("AvailableForReading() after Reset = %d, want 0", avail)
	}
}
