package audiograph

import "testing"

func TestAGCNodeAmplifiesQuietSignal(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	src := newConstSourceNode(ctx, 0.01, 2)
	node := NewAGCNode(ctx)
	node.SetTargetLevel(50)

	if err := ctx.Connect(src.Output(0), node.Input(0)); err != nil {
		t.Fatal(err)
	}
	ctx.SetDestination(node.Output(0))

	var last *Bus
	for i := 0; i < 500; i++ {
		last = ctx.RenderQuantum()
	}

	for _, v := range last.Channel(0).Data() {
		if v <= 0.01 {
			t.Fatalf("expected AGC to amplify a quiet constant signal, got %v", v)
		}
	}
}

func TestAGCNodeResetRestoresUnityGain(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	node := NewAGCNode(ctx)
	node.Gain(0) // exercise the accessor, no connection needed

	node.Reset()
	if g := node.Gain(0); g != 1.0 {
		t.Fatalf("Gain(0) after Reset = %v, want 1.0", g)
	}
}

func TestAGCNodeSilentInputStaysSilent(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	node := NewAGCNode(ctx)
	ctx.SetDestination(node.Output(0))

	bus := ctx.RenderQuantum()
	if !bus.IsSilent() {
		t.Fatal("expected silence with no input connected")
	}
}
