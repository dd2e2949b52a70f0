package usecase

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"audiora/internal/domain"
	"audiora/internal/observability/logging"
	"audiora/internal/ports"
)

var (
	ErrEmptyCapture      = errors.New("no audio was captured")
	ErrAlreadyFinalized  = errors.New("capture already finalized")
	ErrCaptureNotStarted = errors.New("capture not started")
	ErrStaleCapture      = errors.New("capture superseded by a newer session")
)

const drainTimeout = 2 * time.Second

// CaptureBuffer accumulates audio fragments from a device handle and
// assembles them into a single encoded unit.
type CaptureBuffer struct {
	encoder   ports.AudioEncoder
	chunkSize int
	onChunk   func(n int)
	logger    zerolog.Logger

	mu        sync.Mutex
	gen       int
	chunks    [][]byte
	listening bool
	started   bool
	finalized bool
	readErr   error
	done      chan struct{}
}

func NewCaptureBuffer(encoder ports.AudioEncoder, chunkSize int, onChunk func(n int)) *CaptureBuffer {
	if chunkSize < 256 {
		chunkSize = 4096
	}
	return &CaptureBuffer{
		encoder:   encoder,
		chunkSize: chunkSize,
		onChunk:   onChunk,
		logger:    logging.WithComponent("capture"),
	}
}

// Start resets the chunk sequence and begins reading from handle. The returned
// generation identifies this capture to Finalize and Discard.
func (b *CaptureBuffer) Start(handle ports.DeviceHandle) int {
	done := make(chan struct{})

	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.chunks = nil
	b.listening = true
	b.started = true
	b.finalized = false
	b.readErr = nil
	b.done = done
	b.mu.Unlock()

	push := func(chunk []byte) { b.push(gen, chunk) }
	fail := func(err error) { b.fail(gen, err) }
	go pumpAudioChunks(handle, b.chunkSize, push, fail, done)
	return gen
}

// Finalize stops listening and encodes every fragment received so far.
// It may be called once per Start. A generation replaced by a later Start
// yields ErrStaleCapture and leaves the newer capture untouched.
func (b *CaptureBuffer) Finalize(gen int) (domain.AudioUnit, error) {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return domain.AudioUnit{}, ErrCaptureNotStarted
	}
	if gen != b.gen {
		b.mu.Unlock()
		return domain.AudioUnit{}, ErrStaleCapture
	}
	if b.finalized {
		b.mu.Unlock()
		return domain.AudioUnit{}, ErrAlreadyFinalized
	}
	b.finalized = true
	done := b.done
	b.mu.Unlock()

	b.drain(done)

	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return domain.AudioUnit{}, ErrStaleCapture
	}
	b.listening = false
	chunks := b.chunks
	b.chunks = nil
	readErr := b.readErr
	b.mu.Unlock()

	if readErr != nil {
		b.logger.Warn().Err(readErr).Msg("capture ended with read error")
	}
	if len(chunks) == 0 {
		return domain.AudioUnit{}, ErrEmptyCapture
	}

	size := 0
	for _, chunk := range chunks {
		size += len(chunk)
	}
	raw := make([]byte, 0, size)
	for _, chunk := range chunks {
		raw = append(raw, chunk...)
	}

	return b.encoder.Encode(raw)
}

// Discard drops partial audio of generation gen without encoding it.
func (b *CaptureBuffer) Discard(gen int) {
	b.mu.Lock()
	if !b.started || gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.listening = false
	b.chunks = nil
	done := b.done
	b.mu.Unlock()

	b.drain(done)
}

// Len returns the number of fragments held.
func (b *CaptureBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// drain waits for the reader to observe the released device.
func (b *CaptureBuffer) drain(done chan struct{}) {
	if done == nil {
		return
	}
	timer := time.NewTimer(drainTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		b.logger.Warn().Dur("timeout", drainTimeout).Msg("device reader did not stop; finalizing with fragments received so far")
	}
}

func (b *CaptureBuffer) push(gen int, chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	copied := append([]byte(nil), chunk...)

	b.mu.Lock()
	if gen != b.gen || !b.listening {
		b.mu.Unlock()
		return
	}
	b.chunks = append(b.chunks, copied)
	b.mu.Unlock()

	if b.onChunk != nil {
		b.onChunk(len(copied))
	}
}

func (b *CaptureBuffer) fail(gen int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen == b.gen {
		b.readErr = err
	}
}

func pumpAudioChunks(
	handle ports.DeviceHandle,
	chunkSize int,
	push func([]byte),
	fail func(error),
	done chan struct{},
) {
	defer close(done)

	buf := make([]byte, chunkSize)
	for {
		n, err := handle.Read(buf)
		if n > 0 {
			push(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fail(err)
			}
			return
		}
	}
}
