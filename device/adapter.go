package device

import (
	"fmt"
	"sync"

	"github.com/rustyguts/audiograph"
	"github.com/rustyguts/audiograph/internal/ring"
)

// ringCapacity is sized generously relative to a typical host buffer (a
// few hundred to a couple thousand frames) so Adapter's goroutines never
// contend on a full ring under normal scheduling jitter.
const ringCapacity = 8192

// Adapter drives a Backend's blocking Read/Write stream from two
// goroutines and reconciles its host-chosen buffer size against
// audiograph's fixed BlockSize quanta via a ring buffer on each side
// (spec.md §4.6 "device adapter"). Sequencing mirrors
// client/audio.go's Start/Stop: Stop halts the backend stream first
// (unblocking any in-flight Read/Write), then waits for both goroutines
// to exit before Close releases native resources.
type Adapter struct {
	ctx     *audiograph.Context
	backend Backend
	config  StreamConfig

	inputNode *DeviceInputNode
	inputRing *ring.Buffer

	outputRing *ring.Buffer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewAdapter wires backend into ctx. The returned Adapter's InputNode
// must be connected into the graph (typically straight into a GainNode
// or directly into ctx's automatic-pull set) before Start is called.
func NewAdapter(ctx *audiograph.Context, backend Backend, config StreamConfig) *Adapter {
	inputRing := ring.New(ringCapacity)
	a := &Adapter{
		ctx:        ctx,
		backend:    backend,
		config:     config,
		inputRing:  inputRing,
		outputRing: ring.New(ringCapacity),
	}
	a.inputNode = NewDeviceInputNode(ctx, config.Channels, inputRing)
	return a
}

// InputNode exposes the graph node capture audio arrives on.
func (a *Adapter) InputNode() *DeviceInputNode { return a.inputNode }

// Start opens and starts the backend stream and launches the capture and
// playback goroutines.
func (a *Adapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return nil
	}

	if err := a.backend.Open(a.config); err != nil {
		return fmt.Errorf("device: open: %w", err)
	}
	if err := a.backend.Start(); err != nil {
		a.backend.Close()
		return fmt.Errorf("device: start: %w", err)
	}

	a.stopCh = make(chan struct{})
	a.running = true

	a.wg.Add(2)
	go func() { defer a.wg.Done(); a.captureLoop() }()
	go func() { defer a.wg.Done(); a.playbackLoop() }()
	return nil
}

// Stop halts the backend stream and waits for both goroutines to exit
// before releasing native resources. See the Adapter doc comment for why
// the ordering matters.
func (a *Adapter) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.stopCh)
	a.backend.Stop()
	a.mu.Unlock()

	a.wg.Wait()
	a.backend.Close()
}

// captureLoop reads host-sized buffers from the backend and writes them
// into inputRing for DeviceInputNode to drain one quantum at a time.
func (a *Adapter) captureLoop() {
	buf := make([]float32, a.config.FramesPerBuffer*a.config.Channels)
	mono := make([]float32, a.config.FramesPerBuffer)
	for {
		select {
		case <-a.stopCh:
			return
		default:
		}
		if err := a.backend.Read(buf); err != nil {
			return
		}
		downmix(buf, mono, a.config.Channels)
		a.inputRing.Write(mono)
	}
}

// playbackLoop renders quanta from ctx and writes host-sized buffers to
// the backend, using outputRing to absorb the size mismatch between
// BlockSize and FramesPerBuffer.
func (a *Adapter) playbackLoop() {
	hostBuf := make([]float32, a.config.FramesPerBuffer*a.config.Channels)
	quantum := make([]float32, audiograph.BlockSize)

	for {
		select {
		case <-a.stopCh:
			return
		default:
		}

		for a.outputRing.AvailableForReading() < len(hostBuf)/max(a.config.Channels, 1) {
			bus := a.ctx.RenderQuantum()
			if bus == nil || bus.NumberOfChannels() == 0 {
				for i := range quantum {
					quantum[i] = 0
				}
			} else {
				copy(quantum, bus.Channel(0).Data()[:audiograph.BlockSize])
			}
			a.outputRing.Write(quantum)
		}

		mono := make([]float32, len(hostBuf)/max(a.config.Channels, 1))
		a.outputRing.Read(mono)
		upmix(mono, hostBuf, a.config.Channels)

		if err := a.backend.Write(hostBuf); err != nil {
			return
		}
	}
}

func downmix(interleaved, mono []float32, channels int) {
	if channels <= 1 {
		copy(mono, interleaved)
		return
	}
	for i := range mono {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float32(channels)
	}
}

func upmix(mono, interleaved []float32, channels int) {
	if channels <= 1 {
		copy(interleaved, mono)
		return
	}
	for i, s := range mono {
		for c := 0; c < channels; c++ {
			interleaved[i*channels+c] = s
		}
	}
}
