package domain

import "fmt"

// SessionState models the lifecycle of one recording attempt.
type SessionState string

const (
	SessionStateIdle               SessionState = "idle"
	SessionStateAwaitingPermission SessionState = "awaiting_permission"
	SessionStateRecording          SessionState = "recording"
	SessionStateFinalizing         SessionState = "finalizing"
	SessionStateUploading          SessionState = "uploading"
	SessionStateSucceeded          SessionState = "succeeded"
	SessionStateFailed             SessionState = "failed"
	SessionStatePermissionDenied   SessionState = "permission_denied"
)

func (s SessionState) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions happen until a new session starts.
func (s SessionState) IsTerminal() bool {
	switch s {
	case SessionStateSucceeded, SessionStateFailed, SessionStatePermissionDenied:
		return true
	default:
		return false
	}
}

// Active reports whether a session is in flight.
func (s SessionState) Active() bool {
	switch s {
	case SessionStateAwaitingPermission, SessionStateRecording, SessionStateFinalizing, SessionStateUploading:
		return true
	default:
		return false
	}
}

// HoldsDevice reports whether the microphone is owned in this state.
func (s SessionState) HoldsDevice() bool {
	return s == SessionStateRecording || s == SessionStateFinalizing
}

// Severity controls how a notification is styled.
type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityDestructive Severity = "destructive"
)

// Notification is a transient user-facing message.
type Notification struct {
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	DurationMs int      `json:"durationMs,omitempty"`
}

// Result is the payload handed to the results view.
type Result struct {
	Song  string `json:"song,omitempty"`
	Error string `json:"error,omitempty"`

	// Code classifies a failed result; it is not part of the view payload.
	Code ErrorCode `json:"-"`
}

// Failure builds an error result.
func Failure(code ErrorCode, message string) Result {
	return Result{Error: message, Code: code}
}

// Matched reports whether the result identifies a song.
func (r Result) Matched() bool {
	return r.Song != ""
}

// MediaTypeWAV tags every finalized audio unit.
const MediaTypeWAV = "audio/wav"

// AudioUnit is the single encoded payload produced when a recording finalizes.
type AudioUnit struct {
	Data      []byte
	MediaType string
}

func (u AudioUnit) String() string {
	return fmt.Sprintf("%s (%d bytes)", u.MediaType, len(u.Data))
}

// Fixed user-facing failure text.
const (
	MessageGenericFailure = "Failed to process audio. Please try again."
	MessageNoMatch        = "No match found"
)

// ErrorCode identifies the kind of failure that ended a session.
type ErrorCode string

const (
	ErrorCodeStartup          ErrorCode = "startup"
	ErrorCodePermissionDenied ErrorCode = "permission_denied"
	ErrorCodeEmptyCapture     ErrorCode = "empty_capture"
	ErrorCodeEncode           ErrorCode = "encode"
	ErrorCodeTransport        ErrorCode = "transport"
	ErrorCodeNoMatch          ErrorCode = "no_match"
	ErrorCodeClipboard        ErrorCode = "clipboard"
)

// Status summarizes the current controller state for the UI.
type Status struct {
	State            SessionState `json:"state"`
	Active           bool         `json:"active"`
	SessionID        string       `json:"sessionId,omitempty"`
	ElapsedSeconds   int          `json:"elapsedSeconds"`
	RemainingSeconds int          `json:"remainingSeconds"`
	MaxSeconds       int          `json:"maxSeconds"`
	Message          string       `json:"message,omitempty"`
}
