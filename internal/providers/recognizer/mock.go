package recognizer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"audiora/internal/domain"
)

// DefaultSongs are the canned matches returned by the simulated recognizer.
var DefaultSongs = []string{
	"Bohemian Rhapsody - Queen",
	"Imagine - John Lennon",
	"Hotel California - Eagles",
	"Billie Jean - Michael Jackson",
	"Shape of You - Ed Sheeran",
	"Starboy - The Weeknd",
	"Bad Guy - Billie Eilish",
	"Blinding Lights - The Weeknd",
	"Uptown Funk - Mark Ronson ft. Bruno Mars",
}

// DefaultErrors are the canned failures returned by the simulated recognizer.
var DefaultErrors = []string{
	"No match found. Please try again.",
	"The recording was too short to identify.",
	"We couldn't hear enough music. Please record where the music is louder.",
	"The audio quality was too low. Please try again in a quieter environment.",
}

// MockConfig tunes the simulated recognizer.
type MockConfig struct {
	Seed        int64
	MinDelay    time.Duration
	MaxDelay    time.Duration
	SuccessRate float64
}

// DefaultMockConfig mirrors a real round-trip: 1.5-3s and roughly 80% matches.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		Seed:        time.Now().UnixNano(),
		MinDelay:    1500 * time.Millisecond,
		MaxDelay:    3 * time.Second,
		SuccessRate: 0.8,
	}
}

// Mock simulates the recognition service for development without a backend.
type Mock struct {
	cfg MockConfig

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMock(cfg MockConfig) *Mock {
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	return &Mock{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Recognize waits for the simulated latency and returns a canned outcome.
func (m *Mock) Recognize(ctx context.Context, unit domain.AudioUnit) domain.Result {
	m.mu.Lock()
	delay := m.cfg.MinDelay
	if spread := m.cfg.MaxDelay - m.cfg.MinDelay; spread > 0 {
		delay += time.Duration(m.rng.Int63n(int64(spread)))
	}
	matched := m.rng.Float64() < m.cfg.SuccessRate
	song := DefaultSongs[m.rng.Intn(len(DefaultSongs))]
	failure := DefaultErrors[m.rng.Intn(len(DefaultErrors))]
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.Failure(domain.ErrorCodeTransport, "")
		case <-timer.C:
		}
	}

	if len(unit.Data) == 0 {
		return domain.Failure(domain.ErrorCodeNoMatch, DefaultErrors[1])
	}
	if matched {
		return domain.Result{Song: song}
	}
	return domain.Failure(domain.ErrorCodeNoMatch, failure)
}
