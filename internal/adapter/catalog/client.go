package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/pkg/logger"
	"github.com/rl1809/inventory-service/pkg/metrics"
)

const (
	APIKeyHeader = "X-API-KEY"

	defaultTimeout         = 5 * time.Second
	defaultRetryBackoff    = 100 * time.Millisecond
	responseBodyReadLimit  = 1024
	maxRetryBackoffCeiling = 2 * time.Second
)

var (
	errBaseURLRequired = errors.New("catalog base url is required")
	errAPIKeyRequired  = errors.New("catalog api key is required")
)

// Client fetches product snapshots from the catalog service.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	maxRetries   uint64
	retryBackoff time.Duration
	logg         *logger.Logger
	metrics      *metrics.InventoryMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry retries transport failures and 5xx responses up to maxRetries
// extra times with exponential backoff starting at backoff.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxRetries < 0 {
			maxRetries = 0
		}
		c.maxRetries = uint64(maxRetries)
		if backoff > 0 {
			c.retryBackoff = backoff
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

func WithMetrics(m *metrics.InventoryMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a catalog client for the products endpoint at baseURL,
// e.g. http://products:8080/api/products.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	trimmedURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedURL == "" {
		return nil, errBaseURLRequired
	}
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		baseURL:      trimmedURL,
		apiKey:       trimmedKey,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type productEnvelope struct {
	Data *struct {
		Type       string          `json:"type"`
		ID         int64           `json:"id"`
		Attributes *productPayload `json:"attributes"`
	} `json:"data"`
}

type productPayload struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// errProductNotFound short-circuits the retry loop on a 404.
var errProductNotFound = errors.New("product not found")

// GetProduct returns the product snapshot, nil when the catalog answers 404,
// or an UpstreamUnavailable fault for any other failure.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	if c == nil {
		return nil, domain.NewFault(domain.FaultUpstreamUnavailable, "catalog client not configured")
	}

	start := time.Now()
	var product *domain.Product

	backoff := retry.WithMaxRetries(c.maxRetries,
		retry.WithCappedDuration(maxRetryBackoffCeiling, retry.NewExponential(c.retryBackoff)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := c.fetch(ctx, productID)
		if err != nil {
			return err
		}
		product = p
		return nil
	})

	switch {
	case errors.Is(err, errProductNotFound):
		c.metrics.ObserveLookup(metrics.OutcomeAbsent, time.Since(start))
		return nil, nil
	case err != nil:
		c.metrics.ObserveLookup(metrics.OutcomeError, time.Since(start))
		ctx = c.logg.WithProductID(ctx, productID)
		c.logg.Error(ctx, "catalog.lookup.failed", err)
		if fault := domain.AsFault(err); fault != nil {
			return nil, fault
		}
		return nil, domain.WrapFault(domain.FaultUpstreamUnavailable, err, "catalog request failed")
	}

	c.metrics.ObserveLookup(metrics.OutcomeSuccess, time.Since(start))
	return product, nil
}

// fetch performs one round trip. Errors marked retryable are transport
// failures and 5xx responses.
func (c *Client) fetch(ctx context.Context, productID int64) (*domain.Product, error) {
	url := c.baseURL + "/" + strconv.FormatInt(productID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.WrapFault(domain.FaultUpstreamUnavailable, err, "build catalog request")
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.WrapFault(domain.FaultUpstreamUnavailable, err, "catalog request cancelled")
		}
		return nil, retry.RetryableError(domain.WrapFault(domain.FaultUpstreamUnavailable, err, "execute catalog request"))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errProductNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, retry.RetryableError(statusFault(resp, "catalog unavailable"))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, statusFault(resp, "catalog rejected credentials")
	case resp.StatusCode != http.StatusOK:
		return nil, statusFault(resp, "unexpected catalog response")
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, domain.WrapFault(domain.FaultUpstreamUnavailable, err, "decode catalog response")
	}
	return toProduct(envelope, productID)
}

func toProduct(envelope productEnvelope, productID int64) (*domain.Product, error) {
	if envelope.Data == nil || envelope.Data.Attributes == nil {
		return nil, domain.NewFault(domain.FaultUpstreamUnavailable, "catalog response missing product data")
	}
	attrs := envelope.Data.Attributes

	id := attrs.ID
	if id == 0 {
		id = envelope.Data.ID
	}
	if id != productID {
		return nil, domain.NewFault(domain.FaultUpstreamUnavailable,
			fmt.Sprintf("catalog returned product %d for id %d", id, productID))
	}
	if attrs.Price.IsNegative() {
		return nil, domain.NewFault(domain.FaultUpstreamUnavailable,
			fmt.Sprintf("catalog returned negative price for product %d", productID))
	}

	return &domain.Product{
		ID:          id,
		Name:        attrs.Name,
		Price:       attrs.Price,
		Description: attrs.Description,
	}, nil
}

func statusFault(resp *http.Response, message string) *domain.Fault {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	return domain.WrapFault(domain.FaultUpstreamUnavailable,
		fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), message)
}
