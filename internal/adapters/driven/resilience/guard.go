// Package resilience wraps embedding and LLM gateways with rate limiting,
// per-call timeouts, retries with exponential backoff and a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/corpus/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/logger"
	"github.com/custodia-labs/corpus/internal/metrics"
)

// Gateway names used for breaker names and metric labels.
const (
	GatewayEmbedding = "embedding"
	GatewayLLM       = "llm"
)

// Default breaker cooldown before a half-open trial call.
const DefaultBreakerCooldown = 30 * time.Second

// Config controls one Guard.
type Config struct {
	// Name labels the breaker, logs and metrics.
	Name string

	// RequestsPerSecond is the sustained rate. Zero or less disables limiting.
	RequestsPerSecond float64
	Burst             int

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Timeout bounds a single attempt. Zero means no per-call timeout.
	Timeout time.Duration

	// BreakerFailures is the consecutive failure count that opens the
	// breaker. Zero disables tripping.
	BreakerFailures int

	// BreakerCooldown is how long the breaker stays open.
	BreakerCooldown time.Duration

	// InitialInterval is the first backoff delay (default 200ms).
	InitialInterval time.Duration

	Metrics *metrics.Metrics
}

// ConfigFromSettings builds a Config from the gateway settings.
func ConfigFromSettings(name string, s domain.GatewaySettings, m *metrics.Metrics) Config {
	return Config{
		Name:              name,
		RequestsPerSecond: s.RequestsPerSecond,
		Burst:             s.Burst,
		MaxRetries:        s.MaxRetries,
		Timeout:           time.Duration(s.TimeoutSeconds) * time.Second,
		BreakerFailures:   s.BreakerFailures,
		Metrics:           m,
	}
}

// Guard runs gateway calls under one limiter and one breaker.
type Guard struct {
	cfg     Config
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuard creates a Guard.
func NewGuard(cfg Config) *Guard {
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = DefaultBreakerCooldown
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	g := &Guard{
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, burst),
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.BreakerFailures > 0 && counts.ConsecutiveFailures >= uint32(cfg.BreakerFailures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Gateway %s: circuit %s -> %s", name, from, to)
			cfg.Metrics.SetBreakerOpen(name, to == gobreaker.StateOpen)
		},
	})
	return g
}

// Name returns the gateway name.
func (g *Guard) Name() string {
	return g.cfg.Name
}

// BreakerOpen reports whether the breaker is rejecting calls.
func (g *Guard) BreakerOpen() bool {
	return g.breaker.State() == gobreaker.StateOpen
}

// Do runs fn, retrying transient failures. Errors from an open breaker
// and permanent provider errors are returned without retrying.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()
	attempt := 0

	op := func() error {
		attempt++
		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit: %w", err))
		}

		_, err := g.breaker.Execute(func() (any, error) {
			callCtx, cancel := g.callContext(ctx)
			defer cancel()
			return nil, fn(callCtx)
		})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !isTransient(err) {
			return backoff.Permanent(err)
		}
		logger.Debug("Gateway %s: attempt %d failed: %v", g.cfg.Name, attempt, err)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.cfg.InitialInterval
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(g.cfg.MaxRetries)), ctx))

	g.cfg.Metrics.RecordGatewayCall(g.cfg.Name, err, time.Since(start))
	return err
}

func (g *Guard) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.cfg.Timeout)
}

// isTransient reports whether a failed call may succeed if repeated.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var statusErr *httpapi.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}
