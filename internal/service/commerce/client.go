package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/botify/storebot/backend/internal/config"
	"github.com/botify/storebot/backend/internal/model/commerce"
)

// GatewayError reports a failed storefront request. It is never used for "no match".
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("commerce gateway %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("commerce gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Client is a read-only storefront admin API client.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	token       string
	timeout     time.Duration
	limiter     *rate.Limiter
	searchLimit int
}

// NewClient creates a Client. httpClient may be nil.
func NewClient(cfg config.CommerceConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	searchLimit := cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = 1
	}

	return &Client{
		httpClient:  httpClient,
		endpoint:    cfg.Endpoint(),
		token:       cfg.AccessToken,
		timeout:     timeout,
		limiter:     rate.NewLimiter(limit, 2),
		searchLimit: searchLimit,
	}
}

// FindProductByTitle returns the first product the storefront matches for name.
func (c *Client) FindProductByTitle(ctx context.Context, name string) (commerce.ProductLookup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return commerce.ProductLookup{}, nil
	}

	query := url.Values{}
	query.Set("title", name)
	query.Set("limit", strconv.Itoa(c.searchLimit))

	var payload struct {
		Products *[]commerce.Product `json:"products"`
	}
	if err := c.get(ctx, "find product", "/products.json", query, &payload); err != nil {
		return commerce.ProductLookup{}, err
	}
	if payload.Products == nil {
		return commerce.ProductLookup{}, &GatewayError{Op: "find product", Err: errMissingField("products")}
	}
	if len(*payload.Products) == 0 {
		return commerce.ProductLookup{}, nil
	}
	return commerce.ProductLookup{Found: true, Product: (*payload.Products)[0]}, nil
}

// FindOrder looks an order up by id, or by email when no id is given.
// With neither set it reports not found without calling the storefront.
func (c *Client) FindOrder(ctx context.Context, orderID, email string) (commerce.OrderLookup, error) {
	orderID = strings.TrimLeft(strings.TrimSpace(orderID), "#")
	email = strings.TrimSpace(email)

	query := url.Values{}
	query.Set("status", "any")
	query.Set("limit", "1")
	switch {
	case orderID != "":
		query.Set("name", "#"+orderID)
	case email != "":
		query.Set("email", email)
	default:
		return commerce.OrderLookup{}, nil
	}

	var payload struct {
		Orders *[]commerce.Order `json:"orders"`
	}
	if err := c.get(ctx, "find order", "/orders.json", query, &payload); err != nil {
		return commerce.OrderLookup{}, err
	}
	if payload.Orders == nil {
		return commerce.OrderLookup{}, &GatewayError{Op: "find order", Err: errMissingField("orders")}
	}
	if len(*payload.Orders) == 0 {
		return commerce.OrderLookup{}, nil
	}
	return commerce.OrderLookup{Found: true, Order: (*payload.Orders)[0]}, nil
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return &GatewayError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path+"?"+query.Encode(), nil)
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Str("component", "commerce").
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("storefront request")

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(body)))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

type errMissingField string

func (e errMissingField) Error() string {
	return fmt.Sprintf("response has no %q field", string(e))
}
