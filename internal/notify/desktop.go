// Package notify mirrors in-app toasts as native desktop notifications.
package notify

import (
	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"

	"audiora/internal/domain"
	"audiora/internal/observability/logging"
	"audiora/internal/ports"
)

// AppName is the title prefix shown by the desktop notification daemon.
const AppName = "Audiora"

type sendFunc func(title, message string) error

// Desktop forwards every notification to next and also raises a native
// notification. Destructive notifications use an alert.
type Desktop struct {
	next   ports.NotificationSink
	notify sendFunc
	alert  sendFunc
	logger zerolog.Logger
}

func NewDesktop(next ports.NotificationSink) *Desktop {
	return &Desktop{
		next:   next,
		notify: func(title, message string) error { return beeep.Notify(title, message, "") },
		alert:  func(title, message string) error { return beeep.Alert(title, message, "") },
		logger: logging.WithComponent("notify"),
	}
}

func (d *Desktop) Notify(n domain.Notification) {
	if d.next != nil {
		d.next.Notify(n)
	}

	send := d.notify
	if n.Severity == domain.SeverityDestructive {
		send = d.alert
	}
	if err := send(AppName+": "+n.Title, n.Message); err != nil {
		d.logger.Debug().Err(err).Str("title", n.Title).Msg("desktop notification failed")
	}
}
