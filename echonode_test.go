package audiograph

import "testing"

func TestEchoCancelNodePassesNearEndWithNoFarEnd(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	near := newConstSourceNode(ctx, 0.3, 1)
	echo := NewEchoCancelNode(ctx)

	if err := ctx.Connect(near.Output(0), echo.Input(0)); err != nil {
		t.Fatal(err)
	}
	ctx.SetDestination(echo.Output(0))

	bus := ctx.RenderQuantum()
	for _, v := range bus.Channel(0).Data() {
		if v != 0.3 {
			t.Fatalf("sample = %v, want 0.3 (no far-end reference to cancel)", v)
		}
	}
}

func TestEchoCancelNodeDisabledIsExactPassthrough(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	near := newConstSourceNode(ctx, 0.5, 1)
	far := newConstSourceNode(ctx, 0.5, 1)
	echo := NewEchoCancelNode(ctx)
	echo.SetEnabled(false)

	ctx.Connect(near.Output(0), echo.Input(0))
	ctx.Connect(far.Output(0), echo.Input(1))
	ctx.SetDestination(echo.Output(0))

	bus := ctx.RenderQuantum()
	for _, v := range bus.Channel(0).Data() {
		if v != 0.5 {
			t.Fatalf("sample = %v, want 0.5 while disabled", v)
		}
	}
}

func TestEchoCancelNodeSilentWithNoInputs(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	echo := NewEchoCancelNode(ctx)
	ctx.SetDestination(echo.Output(0))

	bus := ctx.RenderQuantum()
	if !bus.IsSilent() {
		t.Fatal("expected silence with no inputs connected")
	}
}
