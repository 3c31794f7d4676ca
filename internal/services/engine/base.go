package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FilingLens/internal/domain/repository"
	xhttp "FilingLens/pkg/http"
	"FilingLens/pkg/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("analytics engine unavailable")

// BaseOption configures httpBase.
type BaseOption func(*httpBase)

// WithRateLimit paces outbound calls. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) BaseOption {
	return func(b *httpBase) {
		if rps > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithBreaker trips after n consecutive failures and probes again after openFor.
func WithBreaker(n uint32, openFor time.Duration) BaseOption {
	return func(b *httpBase) {
		b.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "analytics-engine",
			MaxRequests: 1,
			Timeout:     openFor,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= n
			},
			// a 4xx is the caller's fault, not the engine's
			IsSuccessful: func(err error) bool {
				var se *xhttp.StatusError
				if errors.As(err, &se) {
					return se.Code < http.StatusInternalServerError
				}
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				b.log.Warn("circuit breaker state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			},
		})
	}
}

func WithMetrics(m repository.Metrics) BaseOption {
	return func(b *httpBase) { b.metrics = m }
}

func WithHTTPClient(c *xhttp.Client) BaseOption {
	return func(b *httpBase) { b.client = c }
}

// httpBase sends JSON requests to the engine. Calls are never retried here:
// every retry in this system is user-initiated.
type httpBase struct {
	baseURL string
	client  *xhttp.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics repository.Metrics
	log     *logger.Logger
}

func newHTTPBase(baseURL string, timeout time.Duration, l *logger.Logger, opts ...BaseOption) (*httpBase, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("engine base url %q: invalid", baseURL)
	}
	b := &httpBase{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     l,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.client == nil {
		b.client = xhttp.NewClient(xhttp.WithTimeout(timeout))
	}
	return b, nil
}

// call issues one request. op labels logs and metrics.
func (b *httpBase) call(ctx context.Context, op, method, path string, query url.Values, payload, dest interface{}) error {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limit: %w", op, err)
		}
	}

	opts := &xhttp.RequestOptions{
		Method:      method,
		URL:         b.baseURL + path,
		QueryParams: query,
		Body:        payload,
	}
	send := func() (interface{}, error) {
		return nil, b.client.SendAndParse(ctx, opts, dest)
	}

	start := time.Now()
	var err error
	if b.breaker != nil {
		_, err = b.breaker.Execute(send)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	} else {
		_, err = send()
	}
	elapsed := time.Since(start)

	if b.metrics != nil {
		b.metrics.RecordEngineCall(op, elapsed, err)
	}
	if err != nil {
		b.log.Debug("engine call failed",
			logger.String("op", op),
			logger.Duration("duration_ms", elapsed),
			logger.Error(err),
		)
		return fmt.Errorf("%s: %w", op, err)
	}
	b.log.Debug("engine call", logger.String("op", op), logger.Duration("duration_ms", elapsed))
	return nil
}
