package audiograph

import "math"

// ChannelInterpretation controls how a Bus with a mismatched channel count
// is summed into another (spec.md §4.1).
type ChannelInterpretation int

const (
	// Speakers applies the standard up/down-mix rules: mono→stereo
	// duplicates to L/R, stereo→mono averages (L+R)/2, anything else
	// falls back to discrete.
	Speakers ChannelInterpretation = iota
	// Discrete sums channel-by-channel; channels with no matching index on
	// the source side are left untouched (effectively zero-contribution).
	Discrete
)

// Bus is a fixed-length, fixed-channel-count collection of Channels plus a
// sample rate. Channel count is immutable after construction (spec.md §3).
type Bus struct {
	sampleRate float64
	channels   []*Channel

	// De-zipper state, spec.md §4.5. Owned by the bus, read/written only
	// under the render lock.
	lastMixGain float32
	isFirstTime bool

	// scratch is a reusable per-sample gain ramp vector, a fixed
	// BlockSize-long array. Keeping it on the bus means CopyWithGain
	// never allocates during a render quantum (spec.md §5 realtime-safety
	// contract).
	scratch [BlockSize]float32
}

// NewBus allocates a Bus with numberOfChannels channels (1..MaxChannels) at
// the given sample rate. Channel count cannot change afterward.
func NewBus(numberOfChannels int, sampleRate float64) *Bus {
	if numberOfChannels < 1 {
		numberOfChannels = 1
	}
	if numberOfChannels > MaxChannels {
		numberOfChannels = MaxChannels
	}
	b := &Bus{
		sampleRate:  sampleRate,
		channels:    make([]*Channel, numberOfChannels),
		isFirstTime: true,
	}
	for i := range b.channels {
		b.channels[i] = &Channel{}
		b.channels[i].Zero()
	}
	return b
}

// NumberOfChannels returns the bus's immutable channel count.
func (b *Bus) NumberOfChannels() int { return len(b.channels) }

// SampleRate returns the bus's sample rate.
func (b *Bus) SampleRate() float64 { return b.sampleRate }

// Channel returns the i'th channel. Panics on out-of-range index — callers
// are expected to have already validated against NumberOfChannels, the
// same "bounds are exclusive upper everywhere" convention spec.md §9 calls
// out as the fix for the source's off-by-one channel loops.
func (b *Bus) Channel(i int) *Channel {
	return b.channels[i]
}

// IsSilent reports whether every channel is silent.
func (b *Bus) IsSilent() bool {
	for _, c := range b.channels {
		if !c.Silent() {
			return false
		}
	}
	return true
}

// Zero zeroes every channel.
func (b *Bus) Zero() {
	for _, c := range b.channels {
		c.Zero()
	}
}

// ResetDezipper restarts the gain de-zipper so the next CopyWithGain call
// treats its target gain as the starting point rather than ramping from
// whatever lastMixGain was left at.
func (b *Bus) ResetDezipper() {
	b.isFirstTime = true
	b.lastMixGain = 0
}

// CopyFrom copies from into b channel-by-channel, summing according to
// interpretation if the channel counts differ (spec.md §4.1). Copying a
// bus onto itself (an in-place input) leaves it unchanged.
func (b *Bus) CopyFrom(from *Bus, interpretation ChannelInterpretation) {
	if from == b {
		return
	}
	b.Zero()
	b.sumFrom(from, interpretation, 1.0)
}

// SumFrom adds from into b (without zeroing first), honoring the same
// up/down-mix rules. This is the summing junction's fan-in primitive.
func (b *Bus) SumFrom(from *Bus, interpretation ChannelInterpretation) {
	b.sumFrom(from, interpretation, 1.0)
}

func (b *Bus) sumFrom(from *Bus, interpretation ChannelInterpretation, gain float32) {
	nFrom := from.NumberOfChannels()
	nTo := b.NumberOfChannels()

	if nFrom == nTo || interpretation == Discrete {
		n := nFrom
		if nTo < n {
			n = nTo
		}
		for i := 0; i < n; i++ {
			if gain == 1.0 {
				b.channels[i].AddFrom(from.channels[i])
			} else {
				vsma(b.channels[i].Data(), from.channels[i].Data(), gain)
				if !from.channels[i].Silent() {
					b.channels[i].MarkActive()
				}
			}
		}
		return
	}

	switch {
	case nFrom == 1 && nTo == 2:
		// mono -> stereo: duplicate to L/R.
		for i := 0; i < 2; i++ {
			vsma(b.channels[i].Data(), from.channels[0].Data(), gain)
			if !from.channels[0].Silent() {
				b.channels[i].MarkActive()
			}
		}
	case nFrom == 2 && nTo == 1:
		// stereo -> mono: average (L+R)/2.
		l, r := from.channels[0], from.channels[1]
		if l.Silent() && r.Silent() {
			return
		}
		dst := b.channels[0].Data()
		ld, rd := l.Data(), r.Data()
		for i := range dst {
			dst[i] += (ld[i] + rd[i]) * 0.5 * gain
		}
		b.channels[0].MarkActive()
	default:
		// Fall back to discrete pairwise summing.
		n := nFrom
		if nTo < n {
			n = nTo
		}
		for i := 0; i < n; i++ {
			vsma(b.channels[i].Data(), from.channels[i].Data(), gain)
			if !from.channels[i].Silent() {
				b.channels[i].MarkActive()
			}
		}
	}
}

// dezipGainStep is the per-sample ramp fraction applied when the target
// gain differs meaningfully from the currently-applied gain (spec.md §4.5:
// "gain ← gain + (totalDesiredGain − gain)·0.005 per sample").
const dezipGainStep = 0.005

// dezipFlatThreshold is how close totalDesiredGain must be to the ramp's
// current value before the block is applied flat instead of ramped
// (spec.md §4.5: "|totalDesiredGain − gain| < 0.001").
const dezipFlatThreshold = 0.001

// denormalFloor snaps tiny ramp values to zero to avoid denormal-induced
// slowdowns on the audio thread.
const denormalFloor = 1e-15

// CopyWithGain copies from into b, applying busGain*targetGain with
// de-zippering across the block (spec.md §4.5). If the topology mismatches
// or from is silent, b is zeroed instead.
func (b *Bus) CopyWithGain(from *Bus, busGain, targetGain float32) {
	if from.NumberOfChannels() != b.NumberOfChannels() || from.IsSilent() {
		b.Zero()
		return
	}

	totalDesiredGain := busGain * targetGain

	gain := totalDesiredGain
	if !b.isFirstTime {
		gain = b.lastMixGain
	}
	b.isFirstTime = false

	if absf32(totalDesiredGain-gain) < dezipFlatThreshold {
		for i, ch := range from.channels {
			dst := b.channels[i]
			dst.CopyFrom(ch)
			if !ch.Silent() {
				vsmul(dst.Data(), totalDesiredGain)
			}
		}
		b.lastMixGain = totalDesiredGain
		return
	}

	ramp := b.scratch[:]
	g := gain
	for i := range ramp {
		g += (totalDesiredGain - g) * dezipGainStep
		if float32(math.Abs(float64(g))) < denormalFloor {
			g = 0
		}
		ramp[i] = g
	}

	for i, ch := range from.channels {
		dst := b.channels[i]
		dst.CopyFrom(ch)
		if !ch.Silent() {
			vmul(dst.Data(), ramp)
		}
	}
	b.lastMixGain = g
}

// CopyWithSampleAccurateGainValues multiplies from by a caller-supplied
// per-sample gain buffer (spec.md §4.5). When from is mono and b has more
// than one channel, channel 0 of from is broadcast to every destination
// channel.
func (b *Bus) CopyWithSampleAccurateGainValues(from *Bus, gainValues []float32) {
	if from.IsSilent() {
		b.Zero()
		return
	}

	if from.NumberOfChannels() == 1 && b.NumberOfChannels() > 1 {
		src := from.channels[0]
		for _, dst := range b.channels {
			dst.CopyFrom(src)
			if !src.Silent() {
				vmul(dst.Data(), gainValues)
			}
		}
		return
	}

	n := from.NumberOfChannels()
	if b.NumberOfChannels() < n {
		n = b.NumberOfChannels()
	}
	for i := 0; i < n; i++ {
		dst, src := b.channels[i], from.channels[i]
		dst.CopyFrom(src)
		if !src.Silent() {
			vmul(dst.Data(), gainValues)
		}
	}
	for i := n; i < b.NumberOfChannels(); i++ {
		b.channels[i].Zero()
	}
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
