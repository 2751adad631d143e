package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/retry"
)

var _ port.CatalogFetcher = (*Client)(nil)

// DefaultMaxBodyBytes caps the catalog response body.
const DefaultMaxBodyBytes = 10 << 20

var (
	errNotArray     = errors.New("response body is not a JSON array")
	errBodyTooLarge = errors.New("response body is too large")
)

// productID accepts any JSON scalar. Strings are kept unquoted, other
// values keep their JSON text and null becomes empty.
type productID string

func (id *productID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) != 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = productID(s)
	default:
		*id = productID(b)
	}
	return nil
}

type productDTO struct {
	ID          productID   `json:"id" validate:"required"`
	Title       string      `json:"title" validate:"required"`
	Price       *float64    `json:"price" validate:"required,gte=0"`
	Description string      `json:"description"`
	Image       string      `json:"image" validate:"required,url"`
}

type Opt func(*Client)

func HTTPClientOpt(cl *http.Client) Opt {
	return func(c *Client) {
		c.httpClient = cl
	}
}

// RetryOpt enables retries of connection failures and 5xx responses.
func RetryOpt(maxAttempts int, backoff time.Duration) Opt {
	return func(c *Client) {
		c.retryCfg.MaxAttempts = maxAttempts
		c.retryCfg.Backoff = retry.ExponentialBackoff(backoff)
	}
}

// ValidateShapeOpt turns product shape validation on or off.
func ValidateShapeOpt(enabled bool) Opt {
	return func(c *Client) {
		c.validateShape = enabled
	}
}

// MaxBodyBytesOpt sets the largest response body the client reads.
// Larger bodies fail with a [*domain.ParseError].
func MaxBodyBytesOpt(n int64) Opt {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// A Client reads the product catalog from an HTTP endpoint returning a
// JSON array of products.
type Client struct {
	url           string
	httpClient    *http.Client
	validate      *validator.Validate
	validateShape bool
	maxBodyBytes  int64
	retryCfg      retry.RetryConfig
}

func New(url string, opts ...Opt) Client {
	c := Client{
		url:           url,
		httpClient:    http.DefaultClient,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		validateShape: true,
		maxBodyBytes:  DefaultMaxBodyBytes,
		retryCfg: retry.RetryConfig{
			MaxAttempts: 1,
			ShouldRetry: isTemporary,
		},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// FetchCatalog returns the products in response order.
//
// Failures are [*domain.NetworkError] or [*domain.ParseError].
func (c Client) FetchCatalog(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.FetchCatalog"

	ps, err := retry.DoWithResult(ctx, c.retryCfg, func() ([]domain.Product, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (c Client) fetch(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.NetworkError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, &domain.ParseError{
			Err: fmt.Errorf("%w: over %d bytes", errBodyTooLarge, c.maxBodyBytes),
		}
	}

	var dtos []productDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, &domain.ParseError{Err: err}
	}
	if dtos == nil {
		return nil, &domain.ParseError{Err: errNotArray}
	}

	if c.validateShape {
		if err := c.validateProducts(dtos); err != nil {
			return nil, &domain.ParseError{Err: err}
		}
	}

	return toDomain(dtos), nil
}

func (c Client) validateProducts(dtos []productDTO) error {
	for i := range dtos {
		if err := c.validate.Struct(&dtos[i]); err != nil {
			return fmt.Errorf("product %d: %w", i, err)
		}
	}
	return nil
}

func toDomain(dtos []productDTO) []domain.Product {
	ps := make([]domain.Product, len(dtos))
	for i, v := range dtos {
		ps[i] = domain.Product{
			ID:          string(v.ID),
			Title:       v.Title,
			Description: v.Description,
			Image:       v.Image,
		}
		if v.Price != nil {
			ps[i].Price = *v.Price
		}
	}
	return ps
}

func isTemporary(err error) bool {
	var netErr *domain.NetworkError
	return errors.As(err, &netErr) && netErr.Temporary()
}
