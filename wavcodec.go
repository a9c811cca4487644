package audiograph

import (
	"io"

	"github.com/rustyguts/audiograph/internal/wav"
)

// WAVCodec adapts internal/wav's 16-bit PCM codec to the Decoder/Encoder
// interfaces, giving AudioPlayerNode/AudioRecorderNode a concrete format
// to round-trip through without requiring every caller to write their own
// adapter.
type WAVCodec struct {
	codec wav.Codec
}

// Decode implements Decoder.
func (WAVCodec) Decode(r io.Reader) (*SampleBuffer, error) {
	var c wav.Codec
	b, err := c.Decode(r)
	if err != nil {
		return nil, err
	}
	return &SampleBuffer{Channels: b.Channels, SampleRate: b.SampleRate}, nil
}

// Encode implements Encoder.
func (WAVCodec) Encode(w io.Writer, buf *SampleBuffer) error {
	var c wav.Codec
	return c.Encode(w, &wav.SampleBuffer{Channels: buf.Channels, SampleRate: buf.SampleRate})
}
