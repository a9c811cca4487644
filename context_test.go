package audiograph

// constSource is a minimal test Processor that fills its single output
// with a constant value every quantum, standing in for a real signal
// generator node.
type constSource struct {
	value float32
}

func (c *constSource) Process(n *Node, frames int) {
	out := n.Output(0).Bus()
	for ch := 0; ch < out.NumberOfChannels(); ch++ {
		data := out.Channel(ch).Data()
		for i := range data[:frames] {
			data[i] = c.value
		}
		out.Channel(ch).MarkActive()
	}
}
func (c *constSource) TailTime() float64       { return 0 }
func (c *constSource) LatencyTime() float64    { return 0 }
func (c *constSource) PropagatesSilence() bool { return false }
func (c *constSource) Reset()                  {}

func newConstSourceNode(ctx *Context, value float32, channels int) *Node {
	return newNode(ctx, &constSource{value: value}, 0, 1, channels)
}
