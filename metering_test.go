package audiograph

import "testing"

func TestMeteringNodePassesInputThrough(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	src := newConstSourceNode(ctx, 0.25, 2)
	meter := NewMeteringNode(ctx)

	if err := ctx.Connect(src.Output(0), meter.Input(0)); err != nil {
		t.Fatal(err)
	}
	ctx.SetDestination(meter.Output(0))

	bus := ctx.RenderQuantum()
	for c := 0; c < bus.NumberOfChannels(); c++ {
		for _, v := range bus.Channel(c).Data() {
			if v != 0.25 {
				t.Fatalf("channel %d sample = %v, want 0.25", c, v)
			}
		}
	}
}

func TestMeteringNodeTracksLevel(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	src := newConstSourceNode(ctx, 1.0, 2)
	meter := NewMeteringNode(ctx)
	ctx.Connect(src.Output(0), meter.Input(0))
	ctx.SetDestination(meter.Output(0))

	if meter.Level() != 0 {
		t.Fatalf("Level() before any render = %v, want 0", meter.Level())
	}

	ctx.RenderQuantum()
	if meter.Level() <= 0 {
		t.Fatalf("Level() after rendering a full-scale signal = %v, want > 0", meter.Level())
	}
}

func TestMeteringNodeSilentInputHoldsZero(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	meter := NewMeteringNode(ctx)
	ctx.SetDestination(meter.Output(0))

	ctx.RenderQuantum()
	if meter.Level() != 0 {
		t.Fatalf("Level() with no input connected = %v, want 0", meter.Level())
	}
}

func TestMeteringNodeResetClearsHeldLevel(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	src := newConstSourceNode(ctx, 1.0, 2)
	meter := NewMeteringNode(ctx)
	ctx.Connect(src.Output(0), meter.Input(0))
	ctx.SetDestination(meter.Output(0))

	ctx.RenderQuantum()
	if meter.Level() == 0 {
		t.Fatal("expected a non-zero level before Reset")
	}

	meter.Reset()
	if meter.Level() != 0 {
		t.Fatalf("Level() after Reset = %v, want 0", meter.Level())
	}
}
