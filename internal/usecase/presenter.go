package usecase

import (
	"audiora/internal/domain"
	"audiora/internal/ports"
)

// presenter maps controller transitions onto notification and navigation calls.
type presenter struct {
	notifications ports.NotificationSink
	navigation    ports.NavigationSink
	status        ports.StatusSink
}

func (p presenter) recordingStarted() {
	p.notify(domain.Notification{
		Title:      "Recording started",
		Message:    "Listening for music...",
		Severity:   domain.SeverityInfo,
		DurationMs: 2000,
	})
}

func (p presenter) permissionDenied() {
	p.notify(domain.Notification{
		Title:    "Microphone Access Denied",
		Message:  "Please allow microphone access to use this app.",
		Severity: domain.SeverityDestructive,
	})
}

func (p presenter) processing() {
	p.notify(domain.Notification{
		Title:      "Processing audio",
		Message:    "Analyzing your recording...",
		Severity:   domain.SeverityInfo,
		DurationMs: 3000,
	})
}

func (p presenter) succeeded(result domain.Result) {
	p.navigate(domain.Result{Song: result.Song})
}

// failed reports a terminal failure once and carries it into the results view.
func (p presenter) failed(result domain.Result) {
	title := "Processing Error"
	if result.Code == domain.ErrorCodeNoMatch {
		title = "No Match Found"
	}
	message := result.Error
	if message == "" {
		message = domain.MessageGenericFailure
	}
	p.notify(domain.Notification{
		Title:    title,
		Message:  message,
		Severity: domain.SeverityDestructive,
	})
	p.navigate(domain.Result{Error: message, Code: result.Code})
}

func (p presenter) statusChanged(status domain.Status) {
	if p.status != nil {
		p.status.StatusChanged(status)
	}
}

func (p presenter) notify(n domain.Notification) {
	if p.notifications != nil {
		p.notifications.Notify(n)
	}
}

func (p presenter) navigate(result domain.Result) {
	if p.navigation != nil {
		p.navigation.Navigate(result)
	}
}
