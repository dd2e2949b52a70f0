package usecase

import (
	"errors"
	"sync"
	"time"
)

// MaxDurationSeconds bounds every recording session.
const MaxDurationSeconds = 12

var ErrTimerRunning = errors.New("session timer is already running")

// Ticker is the part of time.Ticker the session timer depends on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type stdTicker struct {
	t *time.Ticker
}

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// SessionTimer counts elapsed seconds and fires onLimit once maxSeconds is reached.
type SessionTimer struct {
	maxSeconds int
	interval   time.Duration
	newTicker  TickerFactory

	mu   sync.Mutex
	stop chan struct{}
}

func NewSessionTimer(maxSeconds int, newTicker TickerFactory) *SessionTimer {
	if maxSeconds <= 0 {
		maxSeconds = MaxDurationSeconds
	}
	if newTicker == nil {
		newTicker = newStdTicker
	}
	return &SessionTimer{maxSeconds: maxSeconds, interval: time.Second, newTicker: newTicker}
}

// MaxSeconds returns the configured limit.
func (t *SessionTimer) MaxSeconds() int {
	return t.maxSeconds
}

// Start begins counting. onTick receives 1, 2, ... maxSeconds; onLimit fires
// right after the final tick and the timer stops itself. Callbacks run on the
// timer goroutine and are never invoked once Stop has returned, except for a
// callback already in progress.
func (t *SessionTimer) Start(onTick func(elapsed int), onLimit func()) error {
	t.mu.Lock()
	if t.stop != nil {
		t.mu.Unlock()
		return ErrTimerRunning
	}
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	ticker := t.newTicker(t.interval)
	go t.run(ticker, stop, onTick, onLimit)
	return nil
}

func (t *SessionTimer) run(ticker Ticker, stop chan struct{}, onTick func(int), onLimit func()) {
	defer ticker.Stop()

	elapsed := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
		}

		// Stop wins over a tick that became ready at the same time.
		select {
		case <-stop:
			return
		default:
		}

		elapsed++
		if onTick != nil {
			onTick(elapsed)
		}
		if elapsed >= t.maxSeconds {
			if t.release(stop) && onLimit != nil {
				onLimit()
			}
			return
		}
	}
}

// Stop halts the timer. Calling it on a stopped timer is a no-op, and it never
// blocks, so it may be called from inside a timer callback.
func (t *SessionTimer) Stop() {
	t.mu.Lock()
	stop := t.stop
	t.mu.Unlock()
	if stop != nil {
		t.release(stop)
	}
}

// Running reports whether a count is in progress.
func (t *SessionTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

func (t *SessionTimer) release(stop chan struct{}) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != stop {
		return false
	}
	close(stop)
	t.stop = nil
	return true
}
