package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"audiora/internal/observability/logging"
)

// Config stores runtime configuration for the desktop recorder.
type Config struct {
	Recognizer RecognizerConfig
	Audio      AudioConfig
	Session    SessionConfig
	Notify     NotifyConfig
	Log        LogConfig
	Metrics    MetricsConfig
}

type RecognizerConfig struct {
	// Mode selects the upload client: "http" posts to UploadURL, "mock" simulates results.
	Mode      string        `env:"AUDIORA_RECOGNIZER" envDefault:"http" validate:"oneof=http mock"`
	UploadURL string        `env:"AUDIORA_UPLOAD_URL" envDefault:"http://localhost:8000/upload-audio" validate:"required,url"`
	Timeout   time.Duration `env:"AUDIORA_UPLOAD_TIMEOUT" envDefault:"30s" validate:"gt=0"`
}

type AudioConfig struct {
	RecorderCommand string `env:"AUDIORA_FFMPEG_COMMAND" envDefault:"ffmpeg" validate:"required"`
	InputFormat     string `env:"AUDIORA_AUDIO_INPUT_FORMAT" envDefault:"pulse" validate:"required"`
	InputDevice     string `env:"AUDIORA_AUDIO_INPUT_DEVICE" envDefault:"default" validate:"required"`
	SampleRate      int    `env:"AUDIORA_SAMPLE_RATE" envDefault:"16000" validate:"min=8000,max=48000"`
	Channels        int    `env:"AUDIORA_CHANNELS" envDefault:"1" validate:"min=1,max=2"`
}

type SessionConfig struct {
	MaxDurationSeconds int  `env:"AUDIORA_MAX_DURATION" envDefault:"12" validate:"min=1,max=60"`
	ChunkSize          int  `env:"AUDIORA_CHUNK_SIZE" envDefault:"4096" validate:"min=256"`
	CopyResult         bool `env:"AUDIORA_COPY_RESULT" envDefault:"true"`
}

type NotifyConfig struct {
	System bool `env:"AUDIORA_SYSTEM_NOTIFICATIONS" envDefault:"false"`
}

type LogConfig struct {
	Level  string `env:"AUDIORA_LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	Format string `env:"AUDIORA_LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
	File   string `env:"AUDIORA_LOG_FILE"`
}

// Logging converts the settings for logging.Init.
func (c LogConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.File = c.File
	return cfg
}

type MetricsConfig struct {
	// Addr serves /metrics when set.
	Addr string `env:"AUDIORA_METRICS_ADDR"`
}

// GatewayConfig stores runtime configuration for the upload gateway.
type GatewayConfig struct {
	Addr           string        `env:"AUDIORA_GATEWAY_ADDR" envDefault:":8000" validate:"required"`
	EngineURL      string        `env:"AUDIORA_ENGINE_URL" envDefault:"http://engine:5000/process" validate:"required,url"`
	EngineTimeout  time.Duration `env:"AUDIORA_ENGINE_TIMEOUT" envDefault:"60s" validate:"gt=0"`
	MaxUploadBytes int64         `env:"AUDIORA_GATEWAY_MAX_UPLOAD_BYTES" envDefault:"10485760" validate:"gt=0"`
	Kafka          KafkaConfig
	Log            LogConfig
	Metrics        MetricsConfig
}

type KafkaConfig struct {
	Enabled bool     `env:"AUDIORA_KAFKA_ENABLED" envDefault:"false"`
	Brokers []string `env:"AUDIORA_KAFKA_BROKERS" envSeparator:"," validate:"required_if=Enabled true"`
	Topic   string   `env:"AUDIORA_KAFKA_TOPIC" envDefault:"audiora.recognitions" validate:"required"`
}

var validate = validator.New()

// Load resolves recorder configuration from environment variables and defaults.
func Load() (Config, error) {
	var cfg Config
	if err := parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadGateway resolves gateway configuration from environment variables and defaults.
func LoadGateway() (GatewayConfig, error) {
	var cfg GatewayConfig
	if err := parse(&cfg); err != nil {
		return GatewayConfig{}, err
	}
	return cfg, nil
}

func parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
