package breaker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tair/stock-ledger/pkg/logger"
)

// ErrOpen is returned by Call while the circuit rejects work
var ErrOpen = errors.New("circuit breaker is open")

// State represents the state of a circuit breaker
type State string

const (
	StateClosed   State = "closed"    // Normal operation
	StateOpen     State = "open"      // Blocking calls
	StateHalfOpen State = "half-open" // Probing for recovery
)

// Config tunes a Breaker. Zero values fall back to defaults.
type Config struct {
	Name string
	// MaxFailures is the consecutive failure count that opens the circuit.
	MaxFailures int
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenSuccesses closes the circuit again after this many probes pass.
	HalfOpenSuccesses int
}

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name              string
	maxFailures       int
	openTimeout       time.Duration
	halfOpenSuccesses int

	mu              sync.Mutex
	state           State
	failures        int
	successCount    int
	lastFailureTime time.Time
	lastStateChange time.Time

	now func() time.Time
}

// New creates a closed breaker
func New(cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenSuccesses <= 0 {
		cfg.HalfOpenSuccesses = 3
	}

	return &Breaker{
		name:              cfg.Name,
		maxFailures:       cfg.MaxFailures,
		openTimeout:       cfg.OpenTimeout,
		halfOpenSuccesses: cfg.HalfOpenSuccesses,
		state:             StateClosed,
		lastStateChange:   time.Now(),
		now:               time.Now,
	}
}

// Call executes fn unless the circuit is open
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == StateOpen && b.now().Sub(b.lastStateChange) >= b.openTimeout {
		b.transition(StateHalfOpen)
		b.successCount = 0
		logger.Logger.Info().
			Str("circuit", b.name).
			Msg("Circuit breaker transitioning to half-open")
	}
	current := b.state
	b.mu.Unlock()

	if current == StateOpen {
		return fmt.Errorf("%w: %s", ErrOpen, b.name)
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) onFailure() {
	b.failures++
	b.lastFailureTime = b.now()

	switch {
	case b.state == StateHalfOpen:
		b.transition(StateOpen)
		logger.Logger.Warn().
			Str("circuit", b.name).
			Msg("Circuit breaker reopened after half-open failure")
	case b.state == StateClosed && b.failures >= b.maxFailures:
		b.transition(StateOpen)
		logger.Logger.Error().
			Str("circuit", b.name).
			Int("failures", b.failures).
			Int("threshold", b.maxFailures).
			Msg("Circuit breaker opened")
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.halfOpenSuccesses {
			b.transition(StateClosed)
			b.failures = 0
			b.successCount = 0
			logger.Logger.Info().
				Str("circuit", b.name).
				Msg("Circuit breaker closed after successful recovery")
		}
	case StateClosed:
		b.failures = 0
	}
}

func (b *Breaker) transition(to State) {
	b.state = to
	b.lastStateChange = b.now()
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats is a point-in-time snapshot for health output
type Stats struct {
	Name            string    `json:"name"`
	State           State     `json:"state"`
	Failures        int       `json:"failures"`
	MaxFailures     int       `json:"max_failures"`
	LastFailureTime time.Time `json:"last_failure_time"`
	LastStateChange time.Time `json:"last_state_change"`
}

// Stats returns circuit breaker statistics
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		Name:            b.name,
		State:           b.state,
		Failures:        b.failures,
		MaxFailures:     b.maxFailures,
		LastFailureTime: b.lastFailureTime,
		LastStateChange: b.lastStateChange,
	}
}
