// Package wav implements a minimal 16-bit PCM WAV codec, enough to give
// audiograph.Decoder/Encoder a concrete reference implementation for
// recorder round-trip testing.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	bitsPerSample = 16
	fmtPCM        = 1
)

// Codec implements audiograph.Decoder and audiograph.Encoder for 16-bit
// PCM WAV.
type Codec struct{}

// SampleBuffer mirrors audiograph.SampleBuffer's shape without importing
// the root package, keeping this an independently testable leaf package.
type SampleBuffer struct {
	Channels   [][]float32
	SampleRate float64
}

// Decode reads a WAV stream and returns its channel data as float32 in
// [-1, 1].
func (Codec) Decode(r io.Reader) (*SampleBuffer, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("wav: read header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: not a RIFF/WAVE stream")
	}

	var numChannels uint16
	var sampleRate uint32
	var bits uint16
	haveFmt := false

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("wav: read chunk header: %w", err)
		}
		chunkID := string(hdr[0:4])
		chunkSize := binary.LittleEndian.Uint32(hdr[4:8])

		switch chunkID {
		case "fmt ":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav: read fmt chunk: %w", err)
			}
			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			if audioFormat != fmtPCM {
				return nil, fmt.Errorf("wav: unsupported audio format %d", audioFormat)
			}
			numChannels = binary.LittleEndian.Uint16(body[2:4])
			sampleRate = binary.LittleEndian.Uint32(body[4:8])
			bits = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("wav: data chunk before fmt chunk")
			}
			if bits != bitsPerSample {
				return nil, fmt.Errorf("wav: unsupported bit depth %d", bits)
			}
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav: read data chunk: %w", err)
			}
			return decodePCM16(body, int(numChannels), float64(sampleRate)), nil

		default:
			if _, err := io.CopyN(io.Discard, r, int64(chunkSize)); err != nil {
				return nil, fmt.Errorf("wav: skip chunk %q: %w", chunkID, err)
			}
		}

		if chunkSize%2 == 1 {
			// Chunks are word-aligned; skip the pad byte.
			if _, err := io.CopyN(io.Discard, r, 1); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("wav: missing data chunk")
}

func decodePCM16(body []byte, numChannels int, sampleRate float64) *SampleBuffer {
	if numChannels < 1 {
		numChannels = 1
	}
	frameBytes := 2 * numChannels
	frames := len(body) / frameBytes

	channels := make([][]float32, numChannels)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for c := 0; c < numChannels; c++ {
			off := i*frameBytes + c*2
			v := int16(binary.LittleEndian.Uint16(body[off : off+2]))
			channels[c][i] = float32(v) / 32768.0
		}
	}

	return &SampleBuffer{Channels: channels, SampleRate: sampleRate}
}

// Encode writes buf out as a 16-bit PCM WAV stream.
func (Codec) Encode(w io.Writer, buf *SampleBuffer) error {
	numChannels := len(buf.Channels)
	if numChannels == 0 {
		return fmt.Errorf("wav: buffer has no channels")
	}
	frames := len(buf.Channels[0])
	dataSize := frames * numChannels * 2

	if err := writeRIFFHeader(w, uint32(dataSize)); err != nil {
		return err
	}
	if err := writeFmtChunk(w, uint16(numChannels), uint32(buf.SampleRate)); err != nil {
		return err
	}
	if err := writeDataChunkHeader(w, uint32(dataSize)); err != nil {
		return err
	}

	frame := make([]byte, numChannels*2)
	for i := 0; i < frames; i++ {
		for c := 0; c < numChannels; c++ {
			s := buf.Channels[c][i]
			binary.LittleEndian.PutUint16(frame[c*2:c*2+2], floatToPCM16(s))
		}
		if _, err := w.Write(frame); err != nil {
			return fmt.Errorf("wav: write data: %w", err)
		}
	}
	return nil
}

func floatToPCM16(s float32) uint16 {
	v := float64(s)
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return uint16(int16(math.Round(v * 32767)))
}

func writeRIFFHeader(w io.Writer, dataSize uint32) error {
	var hdr [12]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 36+dataSize)
	copy(hdr[8:12], "WAVE")
	_, err := w.Write(hdr[:])
	return err
}

func writeFmtChunk(w io.Writer, numChannels uint16, sampleRate uint32) error {
	var chunk [24]byte
	copy(chunk[0:4], "fmt ")
	binary.LittleEndian.PutUint32(chunk[4:8], 16)
	binary.LittleEndian.PutUint16(chunk[8:10], fmtPCM)
	binary.LittleEndian.PutUint16(chunk[10:12], numChannels)
	binary.LittleEndian.PutUint32(chunk[12:16], sampleRate)
	byteRate := sampleRate * uint32(numChannels) * bitsPerSample / 8
	binary.LittleEndian.PutUint32(chunk[16:20], byteRate)
	blockAlign := numChannels * bitsPerSample / 8
	binary.LittleEndian.PutUint16(chunk[20:22], blockAlign)
	binary.LittleEndian.PutUint16(chunk[22:24], bitsPerSample)
	_, err := w.Write(chunk[:])
	return err
}

func writeDataChunkHeader(w io.Writer, dataSize uint32) error {
	var hdr [8]byte
	copy(hdr[0:4], "data")
	binary.LittleEndian.PutUint32(hdr[4:8], dataSize)
	_, err := w.Write(hdr[:])
	return err
}
