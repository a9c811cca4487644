package audiograph

import (
	"testing"
	"time"
)

func makeBuffer(n int, value float32) *SampleBuffer {
	data := make([]float32, n)
	for i := range data {
		data[i] = value
	}
	return &SampleBuffer{Channels: [][]float32{data}, SampleRate: DefaultSampleRate}
}

func TestAudioPlayerNodeSilentBeforePlay(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	player := NewAudioPlayerNode(ctx, makeBuffer(BlockSize*4, 1.0))
	ctx.SetDestination(player.Output(0))

	bus := ctx.RenderQuantum()
	if !bus.IsSilent() {
		t.Fatal("expected silence before Play is called")
	}
}

func TestAudioPlayerNodePlaysImmediately(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	player := NewAudioPlayerNode(ctx, makeBuffer(BlockSize*4, 1.0))
	player.Play(0)
	ctx.SetDestination(player.Output(0))

	bus := ctx.RenderQuantum()
	for _, v := range bus.Channel(0).Data() {
		if v != 1.0 {
			t.Fatalf("sample = %v, want 1.0", v)
		}
	}
}

func TestAudioPlayerNodeFinishesAtBufferEnd(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	player := NewAudioPlayerNode(ctx, makeBuffer(BlockSize, 1.0))
	player.Play(0)

	ended := make(chan struct{}, 1)
	player.OnEnded(func() { ended <- struct{}{} })

	ctx.SetDestination(player.Output(0))
	ctx.RenderQuantum() // consumes the entire one-quantum buffer

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("expected onEnded to fire once the buffer is exhausted")
	}
}

func TestAudioPlayerNodeContinuesAcrossMultipleQuanta(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	const numQuanta = 5
	player := NewAudioPlayerNode(ctx, makeBuffer(BlockSize*numQuanta, 1.0))
	player.Play(0)
	ctx.SetDestination(player.Output(0))

	for q := 0; q < numQuanta; q++ {
		bus := ctx.RenderQuantum()
		for i, v := range bus.Channel(0).Data() {
			if v != 1.0 {
				t.Fatalf("quantum %d sample %d = %v, want 1.0 (playback must continue past the first quantum)", q, i, v)
			}
		}
	}
}

func TestAudioPlayerNodeDelayedStartSpansMultipleQuanta(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	// Mirrors a player scheduled a few milliseconds into the future whose
	// buffer spans far more than one render quantum: the scheduled state
	// machine must keep driving Process every quantum while playing, not
	// just the one quantum where playback started.
	const numQuanta = 10
	player := NewAudioPlayerNode(ctx, makeBuffer(BlockSize*numQuanta, 1.0))
	player.Play(0.01)
	ctx.SetDestination(player.Output(0))

	sawSoundAfterStart := false
	for q := 0; q < numQuanta; q++ {
		bus := ctx.RenderQuantum()
		if q >= 4 && !bus.IsSilent() {
			sawSoundAfterStart = true
		}
	}
	if !sawSoundAfterStart {
		t.Fatal("expected playback to still be producing sound several quanta after its delayed start")
	}
}

func TestAudioPlayerNodeStopTruncates(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	player := NewAudioPlayerNode(ctx, makeBuffer(BlockSize, 1.0))
	player.Play(0)
	player.Stop(0) // stop immediately

	ctx.SetDestination(player.Output(0))
	bus := ctx.RenderQuantum()
	if !bus.IsSilent() {
		t.Fatal("expected silence after an immediate Stop")
	}
}
