package device

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioBackend implements Backend on top of PortAudio's blocking
// stream API, the same API client/audio.go drives via
// portaudio.OpenStream + Start/Read/Write/Stop/Close.
type PortAudioBackend struct {
	stream *portaudio.Stream
	config StreamConfig

	// buf is the sample buffer bound to stream at OpenStream time.
	// PortAudio's blocking API ties Read/Write to this fixed buffer
	// rather than accepting one per call, so Read/Write below copy to
	// and from it around each blocking call.
	buf []float32
}

// NewPortAudioBackend returns an unopened PortAudioBackend. Callers must
// have already called portaudio.Initialize (and will eventually call
// portaudio.Terminate) themselves — Adapter only owns one stream's
// lifecycle, not the library's global init state.
func NewPortAudioBackend() *PortAudioBackend {
	return &PortAudioBackend{}
}

// Open implements Backend.
func (b *PortAudioBackend) Open(config StreamConfig) error {
	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}

	inputDev, err := resolveDevice(devices, config.InputDeviceID, portaudio.DefaultInputDevice)
	if err != nil {
		return fmt.Errorf("device: resolve input device: %w", err)
	}
	outputDev, err := resolveDevice(devices, config.OutputDeviceID, portaudio.DefaultOutputDevice)
	if err != nil {
		return fmt.Errorf("device: resolve output device: %w", err)
	}

	buf := make([]float32, config.FramesPerBuffer*config.Channels)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   inputDev,
			Channels: config.Channels,
			Latency:  inputDev.DefaultLowInputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Device:   outputDev,
			Channels: config.Channels,
			Latency:  outputDev.DefaultLowOutputLatency,
		},
		SampleRate:      config.SampleRate,
		FramesPerBuffer: config.FramesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return fmt.Errorf("device: open stream: %w", err)
	}

	b.stream = stream
	b.config = config
	b.buf = buf
	return nil
}

// resolveDevice returns the device at idx if valid, otherwise calls
// fallback.
func resolveDevice(devices []*portaudio.DeviceInfo, idx int, fallback func() (*portaudio.DeviceInfo, error)) (*portaudio.DeviceInfo, error) {
	if idx >= 0 && idx < len(devices) {
		return devices[idx], nil
	}
	return fallback()
}

// Start implements Backend.
func (b *PortAudioBackend) Start() error { return b.stream.Start() }

// Stop implements Backend.
func (b *PortAudioBackend) Stop() error { return b.stream.Stop() }

// Close implements Backend.
func (b *PortAudioBackend) Close() error { return b.stream.Close() }

// Read implements Backend.
func (b *PortAudioBackend) Read(buf []float32) error {
	if err := b.stream.Read(); err != nil {
		return err
	}
	copy(buf, b.buf)
	return nil
}

// Write implements Backend.
func (b *PortAudioBackend) Write(buf []float32) error {
	copy(b.buf, buf)
	return b.stream.Write()
}

// ListInputDevices implements Backend.
func (b *PortAudioBackend) ListInputDevices() []DeviceInfo {
	return listDevices(func(d *portaudio.DeviceInfo) bool { return d.MaxInputChannels > 0 })
}

// ListOutputDevices implements Backend.
func (b *PortAudioBackend) ListOutputDevices() []DeviceInfo {
	return listDevices(func(d *portaudio.DeviceInfo) bool { return d.MaxOutputChannels > 0 })
}

func listDevices(match func(*portaudio.DeviceInfo) bool) []DeviceInfo {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil
	}
	var out []DeviceInfo
	for i, d := range devices {
		if match(d) {
			out = append(out, DeviceInfo{ID: i, Name: d.Name})
		}
	}
	return out
}
