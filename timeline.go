package audiograph

import "math"

// ParamEventKind identifies the interpolation a param timeline event
// introduces (spec.md §3 "Param event").
type ParamEventKind int

const (
	SetValue ParamEventKind = iota
	LinearRampToValue
	ExponentialRampToValue
)

// ParamEvent is one scheduled change to a Param's value.
type ParamEvent struct {
	Kind  ParamEventKind
	Value float64
	Time  float64

	// TimeConstant, Duration and Curve are reserved fields for event
	// kinds this engine does not implement (setTargetAtTime,
	// setValueCurveAtTime) but are carried so a future event kind can be
	// added without another schema change.
	TimeConstant float64
	Duration     float64
	Curve        []float64
}

// paramTimeline is an ordered list of ParamEvents, sorted ascending by
// Time, with sample-accurate evaluation over a half-open range (spec.md
// §4.3).
type paramTimeline struct {
	events []ParamEvent
}

// insert adds e to the timeline in time order. A duplicate (Time, Kind)
// pair replaces the existing event rather than adding a second one
// (spec.md §3 "Duplicate (time, kind) replaces").
func (t *paramTimeline) insert(e ParamEvent) {
	for i := range t.events {
		if t.events[i].Time == e.Time && t.events[i].Kind == e.Kind {
			t.events[i] = e
			return
		}
	}
	i := len(t.events)
	for i > 0 && t.events[i-1].Time > e.Time {
		i--
	}
	t.events = append(t.events, ParamEvent{})
	copy(t.events[i+1:], t.events[i:])
	t.events[i] = e
}

// cancelFrom removes every event with Time >= startTime.
func (t *paramTimeline) cancelFrom(startTime float64) {
	i := 0
	for i < len(t.events) && t.events[i].Time < startTime {
		i++
	}
	t.events = t.events[:i]
}

func (t *paramTimeline) hasEvents() bool { return len(t.events) > 0 }

// evaluate fills out (length numberOfValues) with the timeline's value at
// each sample over [startTime, endTime), per spec.md §4.3, and returns the
// last value produced (the scalar summary).
func (t *paramTimeline) evaluate(startTime, endTime float64, sampleRate float64, defaultValue float64, out []float32) float64 {
	n := len(out)
	if n == 0 {
		return defaultValue
	}

	if len(t.events) == 0 || endTime <= t.events[0].Time {
		for i := range out {
			out[i] = float32(defaultValue)
		}
		return defaultValue
	}

	last := defaultValue
	dt := 1.0 / sampleRate
	write := 0

	// Frames before the first event hold defaultValue.
	for write < n {
		ct := startTime + float64(write)*dt
		if ct >= t.events[0].Time {
			break
		}
		out[write] = float32(defaultValue)
		last = defaultValue
		write++
	}

	for ei := 0; ei < len(t.events) && write < n; ei++ {
		e := t.events[ei]
		var next *ParamEvent
		if ei+1 < len(t.events) {
			next = &t.events[ei+1]
		}

		segEnd := endTime
		if next != nil && next.Time < segEnd {
			segEnd = next.Time
		}

		for write < n {
			ct := startTime + float64(write)*dt
			if ct < e.Time {
				break
			}
			if ct >= segEnd {
				break
			}

			var v float64
			if next == nil {
				v = e.Value
			} else {
				switch next.Kind {
				case LinearRampToValue:
					k := 1.0
					if next.Time > e.Time {
						k = (ct - e.Time) / (next.Time - e.Time)
					}
					v = (1-k)*e.Value + k*next.Value
				case ExponentialRampToValue:
					if e.Value <= 0 || next.Value <= 0 {
						v = e.Value
					} else {
						frac := 0.0
						if next.Time > e.Time {
							frac = (ct - e.Time) / (next.Time - e.Time)
						}
						v = e.Value * math.Pow(next.Value/e.Value, frac)
					}
				default: // SetValue, or holding until the next event
					v = e.Value
				}
			}
			out[write] = float32(v)
			last = v
			write++
		}
	}

	// Frames after the last event hold the last produced value.
	for write < n {
		out[write] = float32(last)
		write++
	}

	return last
}
