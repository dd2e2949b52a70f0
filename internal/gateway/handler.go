package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"audiora/internal/domain"
	"audiora/internal/events"
	"audiora/internal/observability/logging"
	"audiora/internal/observability/metrics"
	"audiora/internal/providers/recognizer"
)

// DefaultMaxUploadBytes caps the request body.
const DefaultMaxUploadBytes int64 = 10 << 20

const sniffLen = 512

var allowedTypes = map[string]bool{
	"audio/wav":      true,
	"audio/wave":     true,
	"audio/x-wav":    true,
	"audio/x-pn-wav": true,
	"audio/mp3":      true,
	"audio/mpeg":     true,
	"audio/webm":     true,
	"video/webm":     true,
}

// Engine forwards an accepted upload to the recognition engine.
type Engine interface {
	Upload(ctx context.Context, unit domain.AudioUnit, filename string) ([]byte, error)
}

// Publisher receives one event per upload that reached the engine.
type Publisher interface {
	Publish(ctx context.Context, event events.RecognitionEvent) error
}

// ProcessResponse is the canonical result schema.
type ProcessResponse struct {
	MatchResult *MatchResult `json:"match_result,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type MatchResult struct {
	SongName string `json:"song_name"`
}

// Handler serves the gateway endpoints.
type Handler struct {
	engine         Engine
	publisher      Publisher
	metrics        *metrics.Metrics
	maxUploadBytes int64
	logger         zerolog.Logger
}

func NewHandler(engine Engine, publisher Publisher, m *metrics.Metrics, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		engine:         engine,
		publisher:      publisher,
		metrics:        m,
		maxUploadBytes: maxUploadBytes,
		logger:         logging.WithComponent("gateway"),
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// UploadAudio accepts a multipart "audio" file and answers with the engine's
// result in the canonical schema.
func (h *Handler) UploadAudio(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.reject(c, http.StatusBadRequest, "Error parsing form data: "+err.Error())
		return
	}

	file, header, err := c.Request.FormFile(recognizer.FieldName)
	if err != nil {
		h.reject(c, http.StatusBadRequest, "Error retrieving the file: "+err.Error())
		return
	}
	defer file.Close()

	if header.Size == 0 {
		h.reject(c, http.StatusBadRequest, "Uploaded file is empty")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.reject(c, http.StatusInternalServerError, "Unable to read file for type detection")
		return
	}
	if len(data) == 0 {
		h.reject(c, http.StatusBadRequest, "Uploaded file is empty")
		return
	}

	sniff := data
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}
	contentType := http.DetectContentType(sniff)
	if !allowedTypes[contentType] {
		h.reject(c, http.StatusBadRequest, "Unsupported file type: "+contentType)
		return
	}

	id := uuid.NewString()
	started := time.Now()
	body, err := h.engine.Upload(c.Request.Context(), domain.AudioUnit{Data: data, MediaType: contentType}, engineFilename(header.Filename))
	latency := time.Since(started)
	if err != nil {
		h.logger.Error().Err(err).Str("uploadId", id).Msg("engine request failed")
		h.metrics.RecordUpload("engine_error", len(data), latency.Seconds())
		c.String(http.StatusInternalServerError, "Processing failed: "+err.Error())
		return
	}

	result := recognizer.Normalize(body)
	if result.Code == domain.ErrorCodeTransport {
		h.logger.Error().Str("uploadId", id).Msg("engine returned an unreadable body")
		h.metrics.RecordUpload("engine_error", len(data), latency.Seconds())
		c.String(http.StatusInternalServerError, "Processing failed: failed to parse processing API response")
		return
	}

	outcome := "match"
	resp := ProcessResponse{}
	if result.Matched() {
		resp.MatchResult = &MatchResult{SongName: result.Song}
	} else {
		outcome = "no_match"
		resp.Error = result.Error
	}
	h.metrics.RecordUpload(outcome, len(data), latency.Seconds())

	h.logger.Info().
		Str("uploadId", id).
		Str("contentType", contentType).
		Int("bytes", len(data)).
		Str("outcome", outcome).
		Dur("engineLatency", latency).
		Msg("upload processed")

	h.publish(c.Request.Context(), events.RecognitionEvent{
		ID:         id,
		Song:       result.Song,
		Error:      result.Error,
		Bytes:      len(data),
		DurationMs: latency.Milliseconds(),
		At:         started.UTC(),
	})

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) reject(c *gin.Context, status int, message string) {
	h.logger.Warn().Int("status", status).Str("reason", message).Msg("upload rejected")
	h.metrics.RecordUpload("rejected", 0, 0)
	c.String(status, message)
}

// publish logs failures without affecting the response.
func (h *Handler) publish(ctx context.Context, event events.RecognitionEvent) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		h.logger.Warn().Err(err).Str("uploadId", event.ID).Msg("recognition event not published")
	}
}

func engineFilename(original string) string {
	ext := filepath.Ext(original)
	if ext == "" {
		ext = ".webm"
	}
	return fmt.Sprintf("audio_%d%s", time.Now().UnixNano(), ext)
}
