// Package device bridges the fixed-size render quantum audiograph works
// in onto a real sound card's variable host callback size, the way
// client/audio.go bridges PortAudio's blocking Read/Write API onto
// Opus's fixed 20ms frame (spec.md §4.6, §6 "Device adapter").
package device

// StreamConfig describes the duplex stream a Backend should open.
type StreamConfig struct {
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
	InputDeviceID   int
	OutputDeviceID  int
}

// DefaultStreamConfig returns a StreamConfig for the system's default
// input/output devices at the engine's default sample rate, mirroring
// client/internal/config.Default()'s use of -1 to mean "system default
// device" rather than persisting a chosen ID (spec.md §3: no persisted
// state at the core level, so there is no Load/Save here, only a
// default).
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		SampleRate:      44100,
		Channels:        2,
		FramesPerBuffer: 480,
		InputDeviceID:   -1,
		OutputDeviceID:  -1,
	}
}

// DeviceInfo describes one enumerated input or output device.
type DeviceInfo struct {
	ID   int
	Name string
}

// Backend is the capability set a concrete sound API (PortAudio, ALSA,
// CoreAudio, WASAPI) must provide for Adapter to drive it. Read and Write
// block until FramesPerBuffer frames have been transferred, mirroring
// PortAudio's blocking stream API (spec.md §6 "Decoder"/"Encoder" sit
// beside this as the other two external-interface seams).
type Backend interface {
	// Open prepares (but does not start) a duplex stream per config.
	Open(config StreamConfig) error
	// Start begins the stream; Read/Write become valid afterward.
	Start() error
	// Stop halts the stream; any blocked Read/Write call returns an
	// error.
	Stop() error
	// Close releases the stream's native resources. Must only be called
	// after Stop.
	Close() error

	// Read blocks until buf is filled with one host buffer's worth of
	// captured samples, interleaved across config.Channels.
	Read(buf []float32) error
	// Write blocks until buf (interleaved) has been handed to the
	// output device.
	Write(buf []float32) error

	// ListInputDevices and ListOutputDevices enumerate available
	// devices for UI/config purposes.
	ListInputDevices() []DeviceInfo
	ListOutputDevices() []DeviceInfo
}
