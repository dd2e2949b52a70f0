package bootstrap

import (
	"context"

	"audiora/internal/audio"
	"audiora/internal/config"
	"audiora/internal/notify"
	"audiora/internal/observability"
	"audiora/internal/observability/logging"
	"audiora/internal/observability/metrics"
	"audiora/internal/ports"
	"audiora/internal/providers/recognizer"
	"audiora/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller    *usecase.SessionController
	Config        config.Config
	Observability *observability.Server
}

// Close tears down the active session and stops the metrics server.
func (s Services) Close(ctx context.Context) error {
	if s.Controller != nil {
		s.Controller.Teardown()
	}
	if s.Observability != nil {
		return s.Observability.Shutdown(ctx)
	}
	return nil
}

// Build wires all backend dependencies for the current runtime.
func Build(sinks usecase.Sinks, clipboard ports.Clipboard) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}
	logging.Init(cfg.Log.Logging())
	logger := logging.WithComponent("bootstrap")

	sinks.Notifications = notificationSink(cfg.Notify, sinks.Notifications)

	controller := usecase.NewSessionController(
		audio.NewFFMPEGGate(cfg.Audio.RecorderCommand, audio.Config{
			SampleRate:  cfg.Audio.SampleRate,
			Channels:    cfg.Audio.Channels,
			InputFormat: cfg.Audio.InputFormat,
			InputDevice: cfg.Audio.InputDevice,
		}),
		audio.NewWAVEncoder(cfg.Audio.SampleRate, cfg.Audio.Channels),
		newRecognizer(cfg.Recognizer),
		clipboard,
		sinks,
		usecase.Config{
			MaxDurationSeconds: cfg.Session.MaxDurationSeconds,
			ChunkSize:          cfg.Session.ChunkSize,
			CopyResult:         cfg.Session.CopyResult,
			Metrics:            metrics.DefaultMetrics,
		},
	)

	services := Services{Controller: controller, Config: cfg}
	if cfg.Metrics.Addr != "" {
		services.Observability = observability.NewServer(cfg.Metrics.Addr)
		services.Observability.Start()
		services.Observability.SetReady(true)
	}

	logger.Info().
		Str("recognizer", cfg.Recognizer.Mode).
		Str("audioInput", cfg.Audio.InputDevice).
		Int("maxDuration", cfg.Session.MaxDurationSeconds).
		Msg("recorder ready")
	return services, nil
}

func newRecognizer(cfg config.RecognizerConfig) ports.Recognizer {
	if cfg.Mode == "mock" {
		return recognizer.NewMock(recognizer.DefaultMockConfig())
	}
	return recognizer.NewClient(recognizer.Config{URL: cfg.UploadURL, Timeout: cfg.Timeout})
}

// notificationSink mirrors toasts to the desktop when system notifications are on.
func notificationSink(cfg config.NotifyConfig, next ports.NotificationSink) ports.NotificationSink {
	if !cfg.System {
		return next
	}
	return notify.NewDesktop(next)
}
