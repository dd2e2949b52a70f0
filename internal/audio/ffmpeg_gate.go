package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"audiora/internal/ports"
)

// ErrDeviceUnavailable is returned when the microphone could not be opened.
var ErrDeviceUnavailable = errors.New("microphone unavailable")

// Config describes how the microphone should be captured.
type Config struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	if c.InputFormat == "" {
		c.InputFormat = "pulse"
	}
	if c.InputDevice == "" {
		c.InputDevice = "default"
	}
	return c
}

// FFMPEGGate grants microphone access by spawning ffmpeg against the input device.
// A device that refuses to open is reported as ErrDeviceUnavailable.
type FFMPEGGate struct {
	command string
	cfg     Config
	settle  time.Duration
}

func NewFFMPEGGate(command string, cfg Config) *FFMPEGGate {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGGate{command: command, cfg: cfg.withDefaults(), settle: 250 * time.Millisecond}
}

func (g *FFMPEGGate) RequestAccess(ctx context.Context) (ports.DeviceHandle, error) {
	cfg := g.cfg
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}

	cmd := exec.CommandContext(ctx, g.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrDeviceUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("%w: ffmpeg exited before capture started: %v: %s", ErrDeviceUnavailable, err, trimOutput(stderr.String()))
		}
		return nil, fmt.Errorf("%w: ffmpeg exited before capture started", ErrDeviceUnavailable)
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-waitErr
		return nil, ctx.Err()
	case <-time.After(g.settle):
	}

	return &ffmpegHandle{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

type ffmpegHandle struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	releaseOnce sync.Once
	releaseErr  error
}

func (h *ffmpegHandle) Read(p []byte) (int, error) {
	return h.stdout.Read(p)
}

// Release interrupts ffmpeg, escalating to kill if it does not exit promptly.
func (h *ffmpegHandle) Release() error {
	h.releaseOnce.Do(func() {
		if h.process != nil {
			_ = h.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-h.waitErr:
			if ok {
				h.releaseErr = normalizeStopErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if h.process != nil {
				_ = h.process.Kill()
			}
			err, ok := <-h.waitErr
			if ok {
				h.releaseErr = normalizeStopErr(err)
			}
		}

		if closeErr := h.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			if h.releaseErr == nil {
				h.releaseErr = closeErr
			}
		}

		if h.releaseErr != nil && h.stderr != nil && h.stderr.Len() > 0 {
			h.releaseErr = fmt.Errorf("%w: %s", h.releaseErr, trimOutput(h.stderr.String()))
		}
	})

	return h.releaseErr
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimOutput(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
