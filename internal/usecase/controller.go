package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"audiora/internal/domain"
	"audiora/internal/observability/logging"
	"audiora/internal/observability/metrics"
	"audiora/internal/ports"
)

var (
	ErrNoActiveSession  = errors.New("no active recording session")
	ErrSessionBusy      = errors.New("a recording session is already in progress")
	ErrPermissionDenied = errors.New("microphone access denied; dismiss before retrying")
)

// Config controls recording behavior.
type Config struct {
	MaxDurationSeconds int
	ChunkSize          int
	CopyResult         bool
	NewTicker          TickerFactory
	Metrics            *metrics.Metrics
}

// Sinks are the presentation collaborators the controller reports to.
type Sinks struct {
	Notifications ports.NotificationSink
	Navigation    ports.NavigationSink
	Status        ports.StatusSink
}

type stopTrigger string

const (
	stopManual stopTrigger = "manual"
	stopLimit  stopTrigger = "limit"
)

// SessionController owns the microphone and drives one recording session at a time.
type SessionController struct {
	gate       ports.PermissionGate
	recognizer ports.Recognizer
	buffer     *CaptureBuffer
	timer      *SessionTimer
	present    presenter
	finalizer  resultFinalizer
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	mu      sync.Mutex
	current *session
}

func NewSessionController(
	gate ports.PermissionGate,
	encoder ports.AudioEncoder,
	recognizer ports.Recognizer,
	clipboard ports.Clipboard,
	sinks Sinks,
	cfg Config,
) *SessionController {
	if cfg.MaxDurationSeconds <= 0 {
		cfg.MaxDurationSeconds = MaxDurationSeconds
	}
	m := cfg.Metrics
	return &SessionController{
		gate:       gate,
		recognizer: recognizer,
		buffer:     NewCaptureBuffer(encoder, cfg.ChunkSize, m.RecordCaptured),
		timer:      NewSessionTimer(cfg.MaxDurationSeconds, cfg.NewTicker),
		present: presenter{
			notifications: sinks.Notifications,
			navigation:    sinks.Navigation,
			status:        sinks.Status,
		},
		finalizer: newResultFinalizer(clipboard, cfg.CopyResult),
		metrics:   m,
		logger:    logging.WithComponent("controller"),
	}
}

// Toggle starts a session when idle or finished and stops the recording when
// one is in progress. Toggles while permission or recognition is pending are
// rejected with ErrSessionBusy.
func (c *SessionController) Toggle(ctx context.Context) (domain.Status, error) {
	c.mu.Lock()
	state := c.stateLocked()
	switch state {
	case domain.SessionStateIdle, domain.SessionStateSucceeded, domain.SessionStateFailed:
		s := c.beginLocked(ctx)
		c.mu.Unlock()
		c.present.statusChanged(c.Status())
		c.acquire(s)
		return c.Status(), nil
	case domain.SessionStateRecording:
		id := c.current.id
		c.mu.Unlock()
		c.stop(id, stopManual)
		return c.Status(), nil
	case domain.SessionStatePermissionDenied:
		c.mu.Unlock()
		return c.Status(), ErrPermissionDenied
	default:
		c.mu.Unlock()
		c.logger.Debug().Str("state", state.String()).Msg("toggle ignored while session is busy")
		return c.Status(), ErrSessionBusy
	}
}

// Dismiss clears a finished session, returning the controller to Idle.
// It is the only way out of PermissionDenied.
func (c *SessionController) Dismiss() error {
	c.mu.Lock()
	s := c.current
	if s == nil || !s.state.IsTerminal() {
		c.mu.Unlock()
		return ErrNoActiveSession
	}
	c.current = nil
	c.mu.Unlock()

	s.logger.Debug().Str("from", s.state.String()).Msg("session dismissed")
	c.present.statusChanged(c.Status())
	return nil
}

// Teardown force-stops the timer, releases the microphone and discards partial
// audio. It is safe to call on every exit path, including when nothing is running.
func (c *SessionController) Teardown() {
	c.mu.Lock()
	s := c.current
	if s == nil || !s.state.Active() {
		c.mu.Unlock()
		return
	}
	from := s.state
	s.state = domain.SessionStateIdle
	c.current = nil
	c.timer.Stop()
	device := s.detachDevice()
	gen := s.captureGen
	s.cancel()
	c.mu.Unlock()

	releaseDevice(s.logger, device)
	if from.HoldsDevice() {
		c.buffer.Discard(gen)
	}
	c.metrics.RecordSessionEnd("torn_down")
	s.logger.Info().Str("from", from.String()).Msg("session torn down")
	c.present.statusChanged(c.Status())
}

// Status returns the current controller status.
func (c *SessionController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *SessionController) stateLocked() domain.SessionState {
	if c.current == nil {
		return domain.SessionStateIdle
	}
	return c.current.state
}

func (c *SessionController) statusLocked() domain.Status {
	maxSeconds := c.timer.MaxSeconds()
	if c.current == nil {
		return domain.Status{
			State:            domain.SessionStateIdle,
			RemainingSeconds: maxSeconds,
			MaxSeconds:       maxSeconds,
		}
	}
	s := c.current
	remaining := maxSeconds - s.elapsed
	if remaining < 0 {
		remaining = 0
	}
	return domain.Status{
		State:            s.state,
		Active:           s.state.Active(),
		SessionID:        s.id,
		ElapsedSeconds:   s.elapsed,
		RemainingSeconds: remaining,
		MaxSeconds:       maxSeconds,
	}
}

func (c *SessionController) beginLocked(ctx context.Context) *session {
	id := uuid.NewString()
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &session{
		id:     id,
		ctx:    sessionCtx,
		cancel: cancel,
		logger: logging.WithSession("controller", id),
		state:  domain.SessionStateAwaitingPermission,
	}
	c.current = s
	c.metrics.RecordSessionStart()
	s.logger.Debug().Msg("awaiting microphone permission")
	return s
}

// acquire resolves the permission request and enters Recording or PermissionDenied.
func (c *SessionController) acquire(s *session) {
	handle, err := c.gate.RequestAccess(s.ctx)

	c.mu.Lock()
	if c.current != s || s.state != domain.SessionStateAwaitingPermission {
		c.mu.Unlock()
		if handle != nil {
			_ = handle.Release()
		}
		s.logger.Debug().Msg("permission resolved after teardown; device returned")
		return
	}

	if err != nil || handle == nil {
		s.state = domain.SessionStatePermissionDenied
		s.cancel()
		c.mu.Unlock()

		s.logger.Warn().Err(err).Msg("microphone access denied")
		c.metrics.RecordSessionEnd(domain.SessionStatePermissionDenied.String())
		c.present.permissionDenied()
		c.present.statusChanged(c.Status())
		return
	}

	s.device = handle
	s.state = domain.SessionStateRecording
	s.elapsed = 0
	s.captureGen = c.buffer.Start(handle)
	id := s.id
	if err := c.timer.Start(
		func(elapsed int) { c.onTick(id, elapsed) },
		func() { c.stop(id, stopLimit) },
	); err != nil {
		s.logger.Error().Err(err).Msg("session timer failed to start")
	}
	c.mu.Unlock()

	s.logger.Debug().Msg("recording started")
	c.present.recordingStarted()
	c.present.statusChanged(c.Status())
}

func (c *SessionController) onTick(id string, elapsed int) {
	c.mu.Lock()
	s := c.current
	if s == nil || s.id != id || s.state != domain.SessionStateRecording {
		c.mu.Unlock()
		return
	}
	s.elapsed = elapsed
	status := c.statusLocked()
	c.mu.Unlock()

	c.present.statusChanged(status)
}

// stop is the single Recording -> Finalizing path shared by manual and automatic stops.
func (c *SessionController) stop(id string, trigger stopTrigger) {
	c.mu.Lock()
	s := c.current
	if s == nil || s.id != id || s.state != domain.SessionStateRecording {
		c.mu.Unlock()
		return
	}
	c.timer.Stop()
	device := s.detachDevice()
	s.state = domain.SessionStateFinalizing
	elapsed := s.elapsed
	gen := s.captureGen
	c.mu.Unlock()

	releaseDevice(s.logger, device)
	s.logger.Debug().Str("trigger", string(trigger)).Int("elapsed", elapsed).Msg("recording stopped")
	c.metrics.RecordRecordingStopped(elapsed)
	c.present.statusChanged(c.Status())

	unit, err := c.buffer.Finalize(gen)

	c.mu.Lock()
	if c.current != s || s.state != domain.SessionStateFinalizing {
		c.mu.Unlock()
		return
	}
	if err != nil {
		s.state = domain.SessionStateFailed
		c.mu.Unlock()

		code := domain.ErrorCodeEmptyCapture
		if errors.Is(err, ErrEmptyCapture) {
			s.logger.Warn().Msg("recording produced no audio; nothing to upload")
		} else {
			code = domain.ErrorCodeEncode
			s.logger.Error().Err(err).Msg("failed to assemble recording")
		}
		c.finish(s, domain.Failure(code, domain.MessageGenericFailure))
		return
	}
	s.state = domain.SessionStateUploading
	c.mu.Unlock()

	s.logger.Debug().Int("bytes", len(unit.Data)).Msg("uploading recording")
	c.present.processing()
	c.present.statusChanged(c.Status())

	started := time.Now()
	result := c.recognizer.Recognize(s.ctx, unit)
	latency := time.Since(started).Seconds()

	c.mu.Lock()
	if c.current != s || s.state != domain.SessionStateUploading {
		c.mu.Unlock()
		return
	}
	if result.Matched() {
		s.state = domain.SessionStateSucceeded
	} else {
		s.state = domain.SessionStateFailed
	}
	c.mu.Unlock()

	outcome := "match"
	if !result.Matched() {
		if result.Code == "" {
			result.Code = domain.ErrorCodeTransport
		}
		outcome = string(result.Code)
	}
	c.metrics.RecordRecognition(outcome, latency)
	c.finish(s, result)
}

// finish reports a terminal session exactly once.
func (c *SessionController) finish(s *session, result domain.Result) {
	defer s.cancel()

	c.mu.Lock()
	state := s.state
	c.mu.Unlock()

	c.metrics.RecordSessionEnd(state.String())
	if state == domain.SessionStateSucceeded {
		copied := c.finalizer.Finalize(s.ctx, s.logger, result)
		s.logger.Info().Str("song", result.Song).Bool("copied", copied).Msg("song identified")
		c.present.succeeded(result)
	} else {
		s.logger.Warn().Str("code", string(result.Code)).Str("error", result.Error).Msg("recognition failed")
		c.present.failed(result)
	}
	c.present.statusChanged(c.Status())
}
