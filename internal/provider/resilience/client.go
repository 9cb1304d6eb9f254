// Package resilience provides a resilient HTTP client with circuit breaker,
// timeout, and retry logic for outbound provider calls.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming.
	Name string

	// Timeout is the request timeout for individual HTTP calls.
	// Default: 60 seconds (document analysis calls are slow).
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts. Default: 2.
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval. Default: 250ms.
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval. Default: 5 seconds.
	MaxInterval time.Duration

	// CircuitBreaker configures the breaker. Nil uses defaults for Name.
	CircuitBreaker *CircuitBreakerConfig
}

// DefaultClientConfig returns sensible defaults for the resilient client.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         60 * time.Second,
		MaxRetries:      2,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		CircuitBreaker:  &cbConfig,
	}
}

// Client is a resilient HTTP client with circuit breaker and retry logic.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	config         ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 250 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cbConfig := cfg.CircuitBreaker
	if cbConfig == nil {
		defaultCB := DefaultCircuitBreakerConfig(cfg.Name)
		cbConfig = &defaultCB
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: NewCircuitBreaker[*http.Response](*cbConfig),
		config:         cfg,
	}
}

// Do executes an HTTP request with circuit breaker protection and retry on
// transient failures (5xx, network errors). Returns ErrCircuitOpen without
// issuing the request when the breaker is open. The request body must be
// replayable via req.GetBody for retries to work.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			reqClone := req.Clone(ctx)
			if req.GetBody != nil {
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return nil, backoff.Permanent(bodyErr)
				}
				reqClone.Body = body
			}

			r, doErr := c.httpClient.Do(reqClone)
			if doErr != nil {
				return nil, doErr
			}

			// 5xx responses count as failures for the breaker and are retried.
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	err := backoff.Retry(operation, policy)
	if err != nil {
		// A 5xx that exhausted retries still carries a usable response.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

// DoWithContext executes an HTTP request bound to ctx.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.Do(req.WithContext(ctx))
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}
