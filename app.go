package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"audiora/internal/bootstrap"
	"audiora/internal/config"
	"audiora/internal/domain"
	"audiora/internal/usecase"
)

const (
	eventStatus = "audiora:status"
	eventNotify = "audiora:notify"
	eventResult = "audiora:result"
	eventError  = "audiora:error"
)

type emitFunc func(ctx context.Context, name string, data ...interface{})

// App is the Wails application root. It is also the notification, navigation
// and status sink of the session controller.
type App struct {
	ctx  context.Context
	emit emitFunc

	services   bootstrap.Services
	controller *usecase.SessionController
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{emit: runtime.EventsEmit}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(usecase.Sinks{
		Notifications: a,
		Navigation:    a,
		Status:        a,
	}, &wailsClipboard{})
	if err != nil {
		a.bootErr = err
		a.emitEvent(eventError, map[string]string{
			"code":    string(domain.ErrorCodeStartup),
			"message": "Startup failed",
			"detail":  err.Error(),
		})
		return
	}

	a.services = services
	a.cfg = services.Config
	a.controller = services.Controller
	a.StatusChanged(a.controller.Status())
}

// shutdown releases the microphone on window close.
func (a *App) shutdown(ctx context.Context) {
	if err := a.services.Close(ctx); err != nil {
		a.emitEvent(eventError, map[string]string{"message": err.Error()})
	}
}

// ToggleRecording starts a session when idle and stops the recording when one is running.
func (a *App) ToggleRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	status, err := a.controller.Toggle(a.ctx)
	if errors.Is(err, usecase.ErrSessionBusy) {
		return status, nil
	}
	return status, err
}

// DismissPermission clears a finished session so a new one can start.
func (a *App) DismissPermission() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.Dismiss(); err != nil && !errors.Is(err, usecase.ErrNoActiveSession) {
		return domain.Status{}, err
	}
	return a.controller.Status(), nil
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		maxSeconds := usecase.MaxDurationSeconds
		status := domain.Status{State: domain.SessionStateIdle, RemainingSeconds: maxSeconds, MaxSeconds: maxSeconds}
		if a.bootErr != nil {
			status.Message = a.bootErr.Error()
		}
		return status
	}
	return a.controller.Status()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"recognizer":       a.cfg.Recognizer.Mode,
		"uploadUrl":        a.cfg.Recognizer.UploadURL,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"maxDuration":      strconv.Itoa(a.cfg.Session.MaxDurationSeconds),
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// Notify shows a toast in the frontend.
func (a *App) Notify(n domain.Notification) {
	a.emitEvent(eventNotify, n)
}

// Navigate opens the results view.
func (a *App) Navigate(result domain.Result) {
	a.emitEvent(eventResult, result)
}

// StatusChanged pushes the countdown and button state to the frontend.
func (a *App) StatusChanged(status domain.Status) {
	a.emitEvent(eventStatus, status)
}

func (a *App) emitEvent(name string, payload interface{}) {
	if a.ctx == nil || a.emit == nil {
		return
	}
	a.emit(a.ctx, name, payload)
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
