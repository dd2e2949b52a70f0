// Package recognizer uploads finalized recordings to the recognition service
// and normalizes its responses.
package recognizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"audiora/internal/domain"
	"audiora/internal/observability/logging"
)

const (
	// FieldName is the multipart field carrying the audio payload.
	FieldName = "audio"
	// DefaultFilename is attached to every recording upload.
	DefaultFilename = "recording.wav"
)

// ErrNoMatch reports a successful response that identifies no song.
var ErrNoMatch = errors.New(domain.MessageNoMatch)

// TransportError is returned for non-2xx responses. Its message is shown to the user.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("Server responded with status: %d.", e.StatusCode)
	}
	return fmt.Sprintf("Server responded with status: %d. %s", e.StatusCode, e.Body)
}

// Config configures the upload client.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client posts audio as multipart form data. It never retries.
type Client struct {
	http   *resty.Client
	url    string
	logger zerolog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		url:    strings.TrimSpace(cfg.URL),
		logger: logging.WithComponent("recognizer"),
	}
}

// URL returns the endpoint uploads are sent to.
func (c *Client) URL() string {
	return c.url
}

// Upload sends unit under filename and returns the raw success body.
// Non-2xx responses yield a *TransportError.
func (c *Client) Upload(ctx context.Context, unit domain.AudioUnit, filename string) ([]byte, error) {
	if filename == "" {
		filename = DefaultFilename
	}
	mediaType := unit.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField(FieldName, filename, mediaType, bytes.NewReader(unit.Data)).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("upload audio: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &TransportError{
			StatusCode: resp.StatusCode(),
			Body:       strings.TrimSpace(resp.String()),
		}
	}

	c.logger.Debug().
		Int("status", resp.StatusCode()).
		Int("bytes", len(unit.Data)).
		Dur("latency", resp.Time()).
		Msg("upload completed")
	return resp.Body(), nil
}

// Recognize uploads unit and maps the outcome onto a view result.
func (c *Client) Recognize(ctx context.Context, unit domain.AudioUnit) domain.Result {
	body, err := c.Upload(ctx, unit, DefaultFilename)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", c.url).Msg("upload failed")
		return FailureFromError(err)
	}
	return Normalize(body)
}

// FailureFromError converts an upload error into a transport failure. Server
// text is kept; other errors leave the message empty so the generic text is shown.
func FailureFromError(err error) domain.Result {
	var transport *TransportError
	if errors.As(err, &transport) {
		return domain.Failure(domain.ErrorCodeTransport, transport.Error())
	}
	return domain.Failure(domain.ErrorCodeTransport, "")
}

// songPaths lists where a song name may appear, canonical schema first.
var songPaths = []string{
	"match_result.song_name",
	"song",
	"song.title",
	"song.name",
}

// Normalize reads a success body in either the canonical schema
// ({"match_result":{"song_name":...}} / {"error":...}) or the flat schema
// ({"song": "..."} or {"song": {"title"|"name": ...}}).
func Normalize(body []byte) domain.Result {
	if !gjson.ValidBytes(body) {
		return domain.Failure(domain.ErrorCodeTransport, "")
	}
	parsed := gjson.ParseBytes(body)

	for _, path := range songPaths {
		value := parsed.Get(path)
		if value.Type != gjson.String {
			continue
		}
		if song := strings.TrimSpace(value.String()); song != "" {
			return domain.Result{Song: song}
		}
	}

	if msg := strings.TrimSpace(parsed.Get("error").String()); msg != "" {
		return domain.Failure(domain.ErrorCodeNoMatch, msg)
	}
	return domain.Failure(domain.ErrorCodeNoMatch, ErrNoMatch.Error())
}
