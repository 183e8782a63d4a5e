// Package remote is the typed client for the networked system of record.
// It speaks plain JSON CRUD: a 2xx response is success, anything else is
// an APIError for the caller to tally.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dstrand/tally/internal/model"
)

// APIError is a non-2xx response from the remote store.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote store returned %d: %s", e.StatusCode, e.Body)
}

// Snapshot is the full remote state at the moment of fetch.
type Snapshot struct {
	Products   []model.Product  `json:"products"`
	Categories []model.Category `json:"categories"`
	Sales      []model.Sale     `json:"sales"`
}

// Client talks to the remote store's REST surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Ping checks reachability with a cheap read.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/categories", nil, nil)
}

func resourcePath(entity model.EntityType) string {
	switch entity {
	case model.EntityProduct:
		return "/products"
	case model.EntitySale:
		return "/sales"
	default:
		return "/categories"
	}
}

// Replay dispatches one queued mutation using the action-to-verb mapping:
// add POSTs the payload to the collection root, update PATCHes the
// record's resource, delete DELETEs it with no body.
func (c *Client) Replay(ctx context.Context, entity model.EntityType, action model.Action, payload json.RawMessage) error {
	root := resourcePath(entity)

	switch action {
	case model.ActionAdd:
		return c.do(ctx, http.MethodPost, root, payload, nil)
	case model.ActionUpdate, model.ActionDelete:
		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(payload, &ref); err != nil {
			return fmt.Errorf("extract id from payload: %w", err)
		}
		if ref.ID == "" {
			return fmt.Errorf("payload has no id")
		}
		if action == model.ActionUpdate {
			return c.do(ctx, http.MethodPatch, root+"/"+url.PathEscape(ref.ID), payload, nil)
		}
		return c.do(ctx, http.MethodDelete, root+"/"+url.PathEscape(ref.ID), nil, nil)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListSales(ctx context.Context) ([]model.Sale, error) {
	var out []model.Sale
	if err := c.do(ctx, http.MethodGet, "/sales", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSalesByDate returns remote sales for one YYYY-MM-DD day.
func (c *Client) ListSalesByDate(ctx context.Context, date string) ([]model.Sale, error) {
	var out []model.Sale
	if err := c.do(ctx, http.MethodGet, "/sales?date="+url.QueryEscape(date), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Pull fetches all three collections, retrying transient failures with
// fibonacci backoff. Any persistent failure returns an error and the
// caller stays on local data.
func (c *Client) Pull(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot

	b := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		s, err := c.pullOnce(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		snap = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (c *Client) pullOnce(ctx context.Context) (*Snapshot, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("pull products: %w", err)
	}
	categories, err := c.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("pull categories: %w", err)
	}
	sales, err := c.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("pull sales: %w", err)
	}
	return &Snapshot{Products: products, Categories: categories, Sales: sales}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body json.RawMessage, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}
