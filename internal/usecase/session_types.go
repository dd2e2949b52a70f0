package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"audiora/internal/domain"
	"audiora/internal/ports"
)

// session is the single recording attempt owned by the controller.
// All fields are guarded by SessionController.mu.
type session struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	logger  zerolog.Logger
	state   domain.SessionState
	elapsed int

	device     ports.DeviceHandle
	captureGen int
}

// detachDevice hands the microphone to the caller, who releases it after
// dropping the controller lock. Later calls return nil.
func (s *session) detachDevice() ports.DeviceHandle {
	device := s.device
	s.device = nil
	return device
}

// releaseDevice gives the microphone back. A nil handle is ignored.
func releaseDevice(logger zerolog.Logger, device ports.DeviceHandle) {
	if device == nil {
		return
	}
	if err := device.Release(); err != nil {
		logger.Warn().Err(err).Msg("microphone release reported an error")
	}
}
