package audiograph

import "io"

// Decoder turns an encoded audio stream into a fully-materialized
// SampleBuffer an AudioPlayerNode can render from (spec.md §6 "Decoder").
// Implementations typically read the entire stream before returning,
// since playback needs random access to the decoded frames.
type Decoder interface {
	Decode(r io.Reader) (*SampleBuffer, error)
}

// Encoder serializes a SampleBuffer (e.g. what an AudioRecorderNode
// captured) to an encoded stream (spec.md §6 "Encoder").
type Encoder interface {
	Encode(w io.Writer, buf *SampleBuffer) error
}
