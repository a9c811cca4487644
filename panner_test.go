package audiograph

import (
	"math"
	"testing"
)

func TestEqualPowerGainsConstantPower(t *testing.T) {
	for _, pan := range []float32{-1, -0.5, 0, 0.25, 1} {
		l, r := equalPowerGains(pan)
		power := float64(l)*float64(l) + float64(r)*float64(r)
		if math.Abs(power-1.0) > 1e-5 {
			t.Fatalf("pan=%v: l^2+r^2 = %v, want 1.0", pan, power)
		}
	}
}

func TestEqualPowerGainsCenterIsBalanced(t *testing.T) {
	l, r := equalPowerGains(0)
	if math.Abs(float64(l-r)) > 1e-6 {
		t.Fatalf("pan=0: l=%v r=%v, want equal", l, r)
	}
}

func TestEqualPowerGainsClampsOutOfRange(t *testing.T) {
	lLow, rLow := equalPowerGains(-5)
	lAt, rAt := equalPowerGains(-1)
	if lLow != lAt || rLow != rAt {
		t.Fatalf("out-of-range pan not clamped: got (%v,%v), want (%v,%v)", lLow, rLow, lAt, rAt)
	}
}

func TestPannerNodeHardLeft(t *testing.T) {
	ctx := NewContext(DefaultSampleRate)
	defer ctx.Close()

	src := newConstSourceNode(ctx, 1.0, 1)
	panner := NewPannerNode(ctx)
	panner.Pan().SetValue(-1)

	ctx.Connect(src.Output(0), panner.Input(0))
	ctx.SetDestination(panner.Output(0))

	bus := ctx.RenderQuantum()
	right := bus.Channel(1).Data()[0]
	if math.Abs(float64(right)) > 1e-5 {
		t.Fatalf("hard-left pan leaked into right channel: %v", right)
	}
}
