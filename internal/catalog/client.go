package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/rocketcart/pkg/config"
	pkgerrors "github.com/angelmondragon/rocketcart/pkg/errors"
	"github.com/angelmondragon/rocketcart/pkg/logger"
	"github.com/angelmondragon/rocketcart/pkg/metrics"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker/v2"
)

const (
	resourceStock   = "stock"
	resourceProduct = "products"

	maxBodyBytes = 1 << 20
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client queries the remote stock/product service.
type Client struct {
	baseURL    *url.URL
	http       httpDoer
	breaker    *gobreaker.CircuitBreaker[[]byte]
	maxRetries uint64
	retryBase  time.Duration
	metrics    *metrics.CartMetrics
	logg       *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(doer httpDoer) Option {
	return func(c *Client) { c.http = doer }
}

func WithMetrics(m *metrics.CartMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) { c.logg = logg }
}

// NewClient builds a catalog client from config.
func NewClient(cfg config.CatalogConfig, opts ...Option) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing catalog base url: %w", err)
	}

	c := &Client{
		baseURL:    parsed,
		http:       &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		retryBase:  cfg.RetryBase,
	}
	if c.retryBase <= 0 {
		c.retryBase = 100 * time.Millisecond
	}
	for _, opt := range opts {
		opt(c)
	}

	trips := cfg.BreakerTrips
	if trips == 0 {
		trips = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "catalog",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trips
		},
		// not-found responses keep the breaker closed
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrProductNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if c.logg == nil {
				return
			}
			ctx := c.logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			c.logg.Warn(ctx, "catalog.breaker.state_change")
		},
	})

	return c, nil
}

// GetStock returns the available amount for productID.
func (c *Client) GetStock(ctx context.Context, productID int64) (Stock, error) {
	var stock Stock
	if err := c.get(ctx, resourceStock, productID, &stock); err != nil {
		return Stock{}, err
	}
	if stock.Amount < 0 {
		return Stock{}, pkgerrors.New(pkgerrors.CodeDependency, "malformed stock response").
			WithDetails(map[string]any{"product_id": productID, "amount": stock.Amount})
	}
	return stock, nil
}

// GetProduct returns the catalog record for productID.
func (c *Client) GetProduct(ctx context.Context, productID int64) (Product, error) {
	var product Product
	if err := c.get(ctx, resourceProduct, productID, &product); err != nil {
		return Product{}, err
	}
	if product.ID != productID {
		return Product{}, pkgerrors.New(pkgerrors.CodeDependency, "malformed product response").
			WithDetails(map[string]any{"product_id": productID, "got_id": product.ID})
	}
	return product, nil
}

func (c *Client) get(ctx context.Context, resource string, productID int64, dest any) error {
	endpoint := c.baseURL.JoinPath(resource, strconv.FormatInt(productID, 10)).String()

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	var body []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		payload, err := c.breaker.Execute(func() ([]byte, error) {
			return c.fetch(ctx, endpoint)
		})
		if err != nil {
			if isRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		body = payload
		return nil
	})
	if err != nil {
		c.metrics.IncCatalogRequest(resource, resultLabel(err))
		if errors.Is(err, ErrProductNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("%s %d not found", resource, productID))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("catalog %s request failed", resource))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		c.metrics.IncCatalogRequest(resource, "malformed")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("malformed %s response", resource))
	}
	c.metrics.IncCatalogRequest(resource, "ok")
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &transportError{err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProductNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &statusError{code: resp.StatusCode}
	}
	return body, nil
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return "catalog transport: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("catalog responded %d", e.code) }

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return false
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	default:
		return "error"
	}
}
