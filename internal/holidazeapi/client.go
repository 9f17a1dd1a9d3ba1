// Package holidazeapi is a typed client for the Noroff Holidaze REST API.
package holidazeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"holidaze/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Noroff v2 API.
const DefaultBaseURL = "https://v2.api.noroff.dev"

// Credentials authorise requests. Either field may be empty.
type Credentials struct {
	AccessToken string
	APIKey      string
}

// Credentials lets a plain value act as a CredentialSource.
func (c Credentials) Credentials() Credentials {
	return c
}

// CredentialSource supplies credentials for each request.
type CredentialSource interface {
	Credentials() Credentials
}

type credentialsKey struct{}

// ContextWithCredentials overrides the client's credentials for requests
// made with ctx.
func ContextWithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// Client calls the Holidaze API.
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit limits outgoing requests to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l.With().Str("component", "holidazeapi").Logger() }
}

// NewClient constructs a client. creds may be nil for anonymous access.
func NewClient(baseURL string, creds CredentialSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker("holidaze-api", c.logger)
	return c
}

func newBreaker(name string, logger zerolog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
		// Client errors are the caller's fault, not an outage.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
		},
	})
}

// UseRedisCache configures optional Redis caching for venue GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

func (c *Client) credentials(ctx context.Context) Credentials {
	if creds, ok := ctx.Value(credentialsKey{}).(Credentials); ok {
		return creds
	}
	if c.creds == nil {
		return Credentials{}
	}
	return c.creds.Credentials()
}

func (c *Client) doGet(ctx context.Context, name, path string, query url.Values, out any) error {
	return c.do(ctx, name, http.MethodGet, path, query, nil, out)
}

func (c *Client) doPost(ctx context.Context, name, path string, query url.Values, body, out any) error {
	return c.do(ctx, name, http.MethodPost, path, query, body, out)
}

func (c *Client) doDelete(ctx context.Context, name, path string) error {
	return c.do(ctx, name, http.MethodDelete, path, nil, nil, nil)
}

// do performs exactly one HTTP request. Nothing is retried.
func (c *Client) do(ctx context.Context, name, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s request: %w", name, err)
		}
	}

	status := 0
	start := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		var reader io.Reader = http.NoBody
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, err
		}
		c.addHeaders(ctx, req, payload != nil)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		status = resp.StatusCode

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, parseError(resp.StatusCode, data)
		}
		if out == nil || len(data) == 0 {
			return nil, nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", name, err)
		}
		return nil, nil
	})
	metrics.ObserveAPIRequest(method, name, status, time.Since(start).Seconds())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("holidaze api unavailable: %w", err)
	}
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("endpoint", name).Int("status", status).Msg("api request failed")
	}
	return err
}

func (c *Client) addHeaders(ctx context.Context, req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	creds := c.credentials(ctx)
	if creds.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}
	if creds.APIKey != "" {
		req.Header.Set("X-Noroff-API-Key", creds.APIKey)
	}
}
