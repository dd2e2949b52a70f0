package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"audiora/internal/domain"
	"audiora/internal/ports"
)

func TestSessionControllerManualStopUploadsAndNavigates(t *testing.T) {
	t.Parallel()

	device := newFakeDevice([]byte("abc"), []byte("def"))
	h := newControllerHarness(t, &fakeGate{device: device}, &fakeRecognizer{result: domain.Result{Song: "X"}})

	status, err := h.ctrl.Toggle(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if status.State != domain.SessionStateRecording {
		t.Fatalf("expected recording, got %s", status.State)
	}
	ticker := h.tickers.next(t)
	for i := 0; i < 3; i++ {
		ticker.tick(t)
	}
	waitFor(t, func() bool { return h.ctrl.Status().ElapsedSeconds == 3 })

	status, err = h.ctrl.Toggle(context.Background())
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if status.State != domain.SessionStateSucceeded {
		t.Fatalf("expected succeeded, got %s", status.State)
	}

	ticker.tryTick()
	if got := h.sink.maxElapsed(); got != 3 {
		t.Fatalf("expected elapsed to stay at 3 after stop, got %d", got)
	}
	if got := device.releases(); got != 1 {
		t.Fatalf("expected device released once, got %d", got)
	}
	if got := string(h.recognizer.lastUnit().Data); got != "abcdef" {
		t.Fatalf("expected fragments in order, got %q", got)
	}
	if h.recognizer.lastUnit().MediaType != domain.MediaTypeWAV {
		t.Fatalf("expected wav media type, got %q", h.recognizer.lastUnit().MediaType)
	}
	navs := h.sink.navigationsSnapshot()
	if len(navs) != 1 || navs[0].Song != "X" || navs[0].Error != "" {
		t.Fatalf("unexpected navigations: %+v", navs)
	}
	if got := h.clipboard.text(); got != "X" {
		t.Fatalf("expected song copied to clipboard, got %q", got)
	}
	if !h.sink.hasNotification("Recording started") || !h.sink.hasNotification("Processing audio") {
		t.Fatalf("missing lifecycle notifications: %+v", h.sink.notificationsSnapshot())
	}
	if h.sink.hasNotification("Processing Error") {
		t.Fatalf("success must not emit an error notification")
	}
}

func TestSessionControllerAutoStopsAtLimit(t *testing.T) {
	t.Parallel()

	device := newFakeDevice([]byte("pcm"))
	h := newControllerHarness(t, &fakeGate{device: device}, &fakeRecognizer{result: domain.Result{Song: "Imagine - John Lennon"}})
	h.sink.watch(device)

	if _, err := h.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	ticker := h.tickers.next(t)
	for i := 0; i < MaxDurationSeconds; i++ {
		ticker.tick(t)
	}

	waitFor(t, func() bool { return len(h.sink.navigationsSnapshot()) == 1 })

	status := h.ctrl.Status()
	if status.State != domain.SessionStateSucceeded {
		t.Fatalf("expected succeeded, got %s", status.State)
	}
	if status.ElapsedSeconds != MaxDurationSeconds || status.RemainingSeconds != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if got := h.sink.releasesAtFinalizing(); got != 1 {
		t.Fatalf("expected device released before finalizing, got %d releases", got)
	}
	if got := h.recognizer.callCount(); got != 1 {
		t.Fatalf("expected exactly one upload, got %d", got)
	}
	if got := device.releases(); got != 1 {
		t.Fatalf("expected device released once, got %d", got)
	}
}

func TestSessionControllerPermissionDenied(t *testing.T) {
	t.Parallel()

	h := newControllerHarness(t, &fakeGate{err: errors.New("denied")}, &fakeRecognizer{})

	status, err := h.ctrl.Toggle(context.Background())
	if err != nil {
		t.Fatalf("toggle returned error: %v", err)
	}
	if status.State != domain.SessionStatePermissionDenied {
		t.Fatalf("expected permission denied, got %s", status.State)
	}
	if h.tickers.count() != 0 {
		t.Fatalf("timer must not start without permission")
	}
	notes := h.sink.notificationsSnapshot()
	if len(notes) != 1 || notes[0].Title != "Microphone Access Denied" || notes[0].Severity != domain.SeverityDestructive {
		t.Fatalf("unexpected notifications: %+v", notes)
	}
	if len(h.sink.navigationsSnapshot()) != 0 {
		t.Fatalf("permission denial must not navigate")
	}

	if _, err := h.ctrl.Toggle(context.Background()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := h.ctrl.Dismiss(); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}
	if got := h.ctrl.Status().State; got != domain.SessionStateIdle {
		t.Fatalf("expected idle after dismiss, got %s", got)
	}
	if h.recognizer.callCount() != 0 {
		t.Fatalf("recognizer must not be called")
	}
}

func TestSessionControllerEmptyCaptureFailsWithoutUpload(t *testing.T) {
	t.Parallel()

	device := newFakeDevice()
	h := newControllerHarness(t, &fakeGate{device: device}, &fakeRecognizer{result: domain.Result{Song: "X"}})

	if _, err := h.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	status, err := h.ctrl.Toggle(context.Background())
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if status.State != domain.SessionStateFailed {
		t.Fatalf("expected failed, got %s", status.State)
	}
	if h.recognizer.callCount() != 0 {
		t.Fatalf("empty capture must not be uploaded")
	}
	navs := h.sink.navigationsSnapshot()
	if len(navs) != 1 || navs[0].Error != domain.MessageGenericFailure || navs[0].Code != domain.ErrorCodeEmptyCapture {
		t.Fatalf("unexpected navigations: %+v", navs)
	}
}

func TestSessionControllerEncoderFailureIsNotEmptyCapture(t *testing.T) {
	t.Parallel()

	h := newControllerHarnessWithEncoder(t,
		&fakeGate{device: newFakeDevice([]byte("pcm"))},
		&fakeRecognizer{result: domain.Result{Song: "X"}},
		failingEncoder{err: errors.New("wav header")},
	)

	if _, err := h.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	status, _ := h.ctrl.Toggle(context.Background())
	if status.State != domain.SessionStateFailed {
		t.Fatalf("expected failed, got %s", status.State)
	}
	if h.recognizer.callCount() != 0 {
		t.Fatalf("unencoded audio must not be uploaded")
	}
	navs := h.sink.navigationsSnapshot()
	if len(navs) != 1 || navs[0].Error != domain.MessageGenericFailure || navs[0].Code != domain.ErrorCodeEncode {
		t.Fatalf("unexpected navigations: %+v", navs)
	}
}

func TestSessionControllerTransportFailureSurfacesServerText(t *testing.T) {
	t.Parallel()

	message := "Server responded with status: 500. boom"
	h := newControllerHarness(t,
		&fakeGate{device: newFakeDevice([]byte("pcm"))},
		&fakeRecognizer{result: domain.Failure(domain.ErrorCodeTransport, message)},
	)

	if _, err := h.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	status, _ := h.ctrl.Toggle(context.Background())
	if status.State != domain.SessionStateFailed {
		t.Fatalf("expected failed, got %s", status.State)
	}

	navs := h.sink.navigationsSnapshot()
	if len(navs) != 1 || navs[0].Error != message {
		t.Fatalf("unexpected navigations: %+v", navs)
	}
	errorNotes := 0
	for _, n := range h.sink.notificationsSnapshot() {
		if n.Severity == domain.SeverityDestructive {
			errorNotes++
			if n.Title != "Processing Error" {
				t.Fatalf("unexpected error title %q", n.Title)
			}
		}
	}
	if errorNotes != 1 {
		t.Fatalf("expected one error notification, got %d", errorNotes)
	}
	if h.clipboard.text() != "" {
		t.Fatalf("failures must not touch the clipboard")
	}
}

func TestSessionControllerNoMatchUsesDedicatedTitle(t *testing.T) {
	t.Parallel()

	h := newControllerHarness(t,
		&fakeGate{device: newFakeDevice([]byte("pcm"))},
		&fakeRecognizer{result: domain.Failure(domain.ErrorCodeNoMatch, domain.MessageNoMatch)},
	)

	if _, err := h.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.ctrl.Toggle(context.Background())

	if !h.sink.hasNotification("No Match Found") {
		t.Fatalf("expected no-match notification, got %+v", h.sink.notificationsSnapshot())
	}
	navs := h.sink.navigationsSnapshot()
	if len(navs) != 1 || navs[0].Error != domain.MessageNoMatch {
		t.Fatalf("unexpected navigations: %+v", navs)
	}
}

func TestSessionControllerIgnoresToggleWhileUploading(t *testing.T) {
	t.Parallel()

	rec := &fakeRecognizer{
		result:  domain.Result{Song: "X"},
		entered: make(chan struct{}),
		block:   make(chan struct{}),
	}
	device := newFakeDevice([]byte("pcm"))
	h := newControllerHarness(t, &fakeGate{device: device}, rec)

	if _, err := h.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.tickers.next(t)

	stopped := make(chan domain.Status, 1)
	go func() {
		status, _ := h.ctrl.Toggle(context.Background())
		stopped <- status
	}()

	select {
	case <-rec.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("upload never started")
	}

	status, err := h.ctrl.Toggle(context.Background())
	if !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
	if status.State != domain.SessionStateUploading {
		t.Fatalf("expected uploading, got %s", status.State)
	}
	if h.tickers.count() != 0 {
		t.Fatalf("busy toggle must not start a new session")
	}

	close(rec.block)
	select {
	case status = <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("stop never returned")
	}
	if status.State != domain.SessionStateSucceeded {
		t.Fatalf("expected succeeded, got %s", status.State)
	}
	if rec.callCount() != 1 || device.releases() != 1 {
		t.Fatalf("expected one upload and one release, got %d and %d", rec.callCount(), device.releases())
	}
}

func TestSessionControllerTeardownWhileRecording(t *testing.T) {
	t.Parallel()

	device := newFakeDevice([]byte("pcm"))
	h := newControllerHarness(t, &fakeGate{device: device}, &fakeRecognizer{result: domain.Result{Song: "X"}})

	if _, err := h.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	ticker := h.tickers.next(t)
	ticker.tick(t)
	waitFor(t, func() bool { return h.ctrl.Status().ElapsedSeconds == 1 })

	h.ctrl.Teardown()
	h.ctrl.Teardown()

	waitFor(t, ticker.isStopped)
	ticker.tryTick()

	if got := device.releases(); got != 1 {
		t.Fatalf("expected device released once, got %d", got)
	}
	status := h.ctrl.Status()
	if status.State != domain.SessionStateIdle || status.Active {
		t.Fatalf("expected idle after teardown, got %+v", status)
	}
	if h.recognizer.callCount() != 0 || len(h.sink.navigationsSnapshot()) != 0 {
		t.Fatalf("teardown must not upload or navigate")
	}
	if got := h.sink.maxElapsed(); got != 1 {
		t.Fatalf("expected no ticks after teardown, got elapsed %d", got)
	}
}

func TestSessionControllerStatusAvailableWhileDeviceReleases(t *testing.T) {
	t.Parallel()

	device := &slowReleaseDevice{
		fakeDevice: newFakeDevice([]byte("pcm")),
		releasing:  make(chan struct{}),
		unblock:    make(chan struct{}),
	}
	h := newControllerHarness(t, &fakeGate{device: device}, &fakeRecognizer{result: domain.Result{Song: "X"}})

	if _, err := h.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.tickers.next(t)

	stopped := make(chan domain.Status, 1)
	go func() {
		status, _ := h.ctrl.Toggle(context.Background())
		stopped <- status
	}()
	select {
	case <-device.releasing:
	case <-time.After(2 * time.Second):
		t.Fatalf("device was never released")
	}

	current := make(chan domain.Status, 1)
	go func() { current <- h.ctrl.Status() }()
	select {
	case status := <-current:
		if status.State != domain.SessionStateFinalizing {
			t.Fatalf("expected finalizing, got %s", status.State)
		}
	case <-time.After(time.Second):
		t.Fatalf("status blocked while the device was being released")
	}
	for _, status := range h.sink.statusesSnapshot() {
		if status.State == domain.SessionStateFinalizing {
			t.Fatalf("finalizing published before the device was released")
		}
	}

	close(device.unblock)
	select {
	case status := <-stopped:
		if status.State != domain.SessionStateSucceeded {
			t.Fatalf("expected succeeded, got %s", status.State)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stop never returned")
	}
	if got := device.releases(); got != 1 {
		t.Fatalf("expected device released once, got %d", got)
	}
}

func TestSessionControllerTeardownWhileAwaitingPermission(t *testing.T) {
	t.Parallel()

	device := newFakeDevice([]byte("pcm"))
	gate := &fakeGate{device: device, entered: make(chan struct{}), block: make(chan struct{})}
	h := newControllerHarness(t, gate, &fakeRecognizer{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ctrl.Toggle(context.Background())
	}()
	select {
	case <-gate.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("permission was never requested")
	}
	if got := h.ctrl.Status().State; got != domain.SessionStateAwaitingPermission {
		t.Fatalf("expected awaiting permission, got %s", got)
	}

	h.ctrl.Teardown()
	close(gate.block)
	<-done

	if got := device.releases(); got != 1 {
		t.Fatalf("expected late grant to be released, got %d", got)
	}
	if h.tickers.count() != 0 {
		t.Fatalf("timer must not start after teardown")
	}
	if h.sink.hasNotification("Recording started") {
		t.Fatalf("recording must not start after teardown")
	}
	if got := h.ctrl.Status().State; got != domain.SessionStateIdle {
		t.Fatalf("expected idle, got %s", got)
	}
}

func TestSessionControllerTeardownDuringUploadDropsResult(t *testing.T) {
	t.Parallel()

	rec := &fakeRecognizer{
		result:    domain.Result{Song: "X"},
		entered:   make(chan struct{}),
		block:     make(chan struct{}),
		honourCtx: true,
	}
	h := newControllerHarness(t, &fakeGate{device: newFakeDevice([]byte("pcm"))}, rec)

	if _, err := h.ctrl.Toggle(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ctrl.Toggle(context.Background())
	}()
	<-rec.entered

	h.ctrl.Teardown()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("upload was not cancelled")
	}

	if !rec.sawCancel() {
		t.Fatalf("expected upload context to be cancelled")
	}
	if len(h.sink.navigationsSnapshot()) != 0 {
		t.Fatalf("results after teardown must be ignored")
	}
	if got := h.ctrl.Status().State; got != domain.SessionStateIdle {
		t.Fatalf("expected idle, got %s", got)
	}
}

func TestSessionControllerRestartsAfterTerminalState(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{device: newFakeDevice([]byte("one"))}
	h := newControllerHarness(t, gate, &fakeRecognizer{result: domain.Result{Song: "X"}})

	h.ctrl.Toggle(context.Background())
	first, _ := h.ctrl.Toggle(context.Background())
	if first.State != domain.SessionStateSucceeded {
		t.Fatalf("expected succeeded, got %s", first.State)
	}

	gate.setDevice(newFakeDevice([]byte("two")))
	second, err := h.ctrl.Toggle(context.Background())
	if err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if second.State != domain.SessionStateRecording || second.SessionID == first.SessionID {
		t.Fatalf("expected a fresh recording session, got %+v", second)
	}
	if second.ElapsedSeconds != 0 || second.RemainingSeconds != MaxDurationSeconds {
		t.Fatalf("expected counter reset, got %+v", second)
	}

	h.ctrl.Toggle(context.Background())
	if got := string(h.recognizer.lastUnit().Data); got != "two" {
		t.Fatalf("expected only the second recording, got %q", got)
	}
}

func TestSessionControllerDismissRequiresTerminalState(t *testing.T) {
	t.Parallel()

	h := newControllerHarness(t, &fakeGate{device: newFakeDevice([]byte("pcm"))}, &fakeRecognizer{result: domain.Result{Song: "X"}})
	if err := h.ctrl.Dismiss(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	h.ctrl.Toggle(context.Background())
	if err := h.ctrl.Dismiss(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession while recording, got %v", err)
	}
	h.ctrl.Teardown()
}

type controllerHarness struct {
	ctrl       *SessionController
	tickers    *manualTickerFactory
	sink       *recordingSink
	recognizer *fakeRecognizer
	clipboard  *fakeClipboard
}

func newControllerHarness(t *testing.T, gate *fakeGate, rec *fakeRecognizer) *controllerHarness {
	t.Helper()
	return newControllerHarnessWithEncoder(t, gate, rec, passthroughEncoder{})
}

func newControllerHarnessWithEncoder(t *testing.T, gate *fakeGate, rec *fakeRecognizer, encoder ports.AudioEncoder) *controllerHarness {
	t.Helper()
	h := &controllerHarness{
		tickers:    newManualTickerFactory(),
		sink:       &recordingSink{},
		recognizer: rec,
		clipboard:  &fakeClipboard{},
	}
	h.ctrl = NewSessionController(gate, encoder, rec, h.clipboard,
		Sinks{Notifications: h.sink, Navigation: h.sink, Status: h.sink},
		Config{CopyResult: true, NewTicker: h.tickers.New},
	)
	t.Cleanup(h.ctrl.Teardown)
	return h
}

type fakeDevice struct {
	mu       sync.Mutex
	chunks   [][]byte
	released chan struct{}
	calls    int
}

func newFakeDevice(chunks ...[]byte) *fakeDevice {
	return &fakeDevice{chunks: chunks, released: make(chan struct{})}
}

// Read hands out the queued chunks, then blocks until the device is released.
func (d *fakeDevice) Read(p []byte) (int, error) {
	d.mu.Lock()
	if len(d.chunks) > 0 {
		n := copy(p, d.chunks[0])
		d.chunks = d.chunks[1:]
		d.mu.Unlock()
		return n, nil
	}
	d.mu.Unlock()

	<-d.released
	return 0, io.EOF
}

func (d *fakeDevice) Release() error {
	d.mu.Lock()
	d.calls++
	first := d.calls == 1
	d.mu.Unlock()
	if first {
		close(d.released)
	}
	return nil
}

func (d *fakeDevice) releases() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// slowReleaseDevice blocks Release until unblock is closed.
type slowReleaseDevice struct {
	*fakeDevice
	releasing chan struct{}
	unblock   chan struct{}
}

func (d *slowReleaseDevice) Release() error {
	close(d.releasing)
	<-d.unblock
	return d.fakeDevice.Release()
}

type fakeGate struct {
	mu      sync.Mutex
	device  ports.DeviceHandle
	err     error
	entered chan struct{}
	block   chan struct{}
}

func (g *fakeGate) RequestAccess(context.Context) (ports.DeviceHandle, error) {
	if g.entered != nil {
		close(g.entered)
	}
	if g.block != nil {
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.device, nil
}

func (g *fakeGate) setDevice(device ports.DeviceHandle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.device = device
}

type passthroughEncoder struct{}

func (passthroughEncoder) Encode(raw []byte) (domain.AudioUnit, error) {
	return domain.AudioUnit{Data: raw, MediaType: domain.MediaTypeWAV}, nil
}

type fakeRecognizer struct {
	result    domain.Result
	entered   chan struct{}
	block     chan struct{}
	honourCtx bool

	mu        sync.Mutex
	calls     int
	unit      domain.AudioUnit
	cancelled bool
}

func (r *fakeRecognizer) Recognize(ctx context.Context, unit domain.AudioUnit) domain.Result {
	r.mu.Lock()
	r.calls++
	r.unit = unit
	r.mu.Unlock()

	if r.entered != nil {
		close(r.entered)
	}
	if r.block != nil {
		if r.honourCtx {
			select {
			case <-r.block:
			case <-ctx.Done():
				r.mu.Lock()
				r.cancelled = true
				r.mu.Unlock()
				return domain.Failure(domain.ErrorCodeTransport, ctx.Err().Error())
			}
		} else {
			<-r.block
		}
	}
	return r.result
}

func (r *fakeRecognizer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *fakeRecognizer) lastUnit() domain.AudioUnit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unit
}

func (r *fakeRecognizer) sawCancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

type fakeClipboard struct {
	mu   sync.Mutex
	last string
	err  error
}

func (c *fakeClipboard) SetText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.last = text
	return nil
}

func (c *fakeClipboard) text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

type recordingSink struct {
	mu            sync.Mutex
	notifications []domain.Notification
	navigations   []domain.Result
	statuses      []domain.Status

	watched            *fakeDevice
	releasedFinalizing int
}

func (s *recordingSink) Notify(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

func (s *recordingSink) Navigate(r domain.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigations = append(s.navigations, r)
}

func (s *recordingSink) StatusChanged(status domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	if status.State == domain.SessionStateFinalizing && s.watched != nil {
		s.releasedFinalizing = s.watched.releases()
	}
}

func (s *recordingSink) watch(device *fakeDevice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watched = device
	s.releasedFinalizing = -1
}

func (s *recordingSink) releasesAtFinalizing() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releasedFinalizing
}

func (s *recordingSink) statusesSnapshot() []domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Status(nil), s.statuses...)
}

func (s *recordingSink) notificationsSnapshot() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.notifications...)
}

func (s *recordingSink) navigationsSnapshot() []domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Result(nil), s.navigations...)
}

func (s *recordingSink) hasNotification(title string) bool {
	for _, n := range s.notificationsSnapshot() {
		if n.Title == title {
			return true
		}
	}
	return false
}

func (s *recordingSink) maxElapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	highest := 0
	for _, status := range s.statuses {
		if status.ElapsedSeconds > highest {
			highest = status.ElapsedSeconds
		}
	}
	return highest
}
