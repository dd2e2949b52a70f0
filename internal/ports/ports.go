package ports

import (
	"context"
	"io"

	"audiora/internal/domain"
)

// DeviceHandle is exclusive ownership of a live microphone stream.
// Read yields raw audio fragments; Release stops the device and is safe to call more than once.
type DeviceHandle interface {
	io.Reader
	Release() error
}

// PermissionGate requests microphone access.
type PermissionGate interface {
	RequestAccess(ctx context.Context) (DeviceHandle, error)
}

// AudioEncoder turns the concatenated capture into one transmittable unit.
type AudioEncoder interface {
	Encode(raw []byte) (domain.AudioUnit, error)
}

// Recognizer submits a finalized audio unit to the recognition service.
// Exactly one Result is returned per call; transport failures and missing
// matches are reported through Result.Error and Result.Code.
type Recognizer interface {
	Recognize(ctx context.Context, unit domain.AudioUnit) domain.Result
}

// NotificationSink shows transient user feedback.
type NotificationSink interface {
	Notify(n domain.Notification)
}

// NavigationSink moves the user to the results view.
type NavigationSink interface {
	Navigate(result domain.Result)
}

// StatusSink receives controller status snapshots for rendering.
type StatusSink interface {
	StatusChanged(status domain.Status)
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}
