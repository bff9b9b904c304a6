package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Closed → Open → Half-Open breaker around outbound calls (SMTP relay).
// While open every call fails fast with ErrCircuitOpen; after OpenTimeout a
// probe is let through and SuccessThreshold successes close it again.

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures before opening
	SuccessThreshold int           // half-open successes before closing
	OpenTimeout      time.Duration // time spent open before a probe
}

// DefaultCBConfig returns the defaults used for the mail relay.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "smtp",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      5 * time.Minute,
	}
}

type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      CircuitBreakerConfig
	state    CBState
	failures int
	probes   int
	openedAt time.Time
	now      func() time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	return &CircuitBreaker{cfg: cfg, state: CBClosed, now: time.Now}
}

// State returns the current state, moving open → half-open once the timeout
// has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

func (cb *CircuitBreaker) stateLocked() CBState {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.probes = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) recordFailure() {
	cb.failures++
	switch cb.state {
	case CBClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.trip()
		}
	case CBHalfOpen:
		cb.trip()
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.probes++
		if cb.probes >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.failures = 0
			cb.probes = 0
			log.Info().Str("breaker", cb.cfg.Name).Msg("circuit breaker closed")
		}
	}
}

func (cb *CircuitBreaker) trip() {
	cb.state = CBOpen
	cb.openedAt = cb.now()
	cb.failures = 0
	cb.probes = 0
	log.Warn().Str("breaker", cb.cfg.Name).Dur("open_for", cb.cfg.OpenTimeout).Msg("circuit breaker opened")
}
