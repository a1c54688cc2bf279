// Package catalog is a client for the Tiki product API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const DefaultBaseURL = "https://tiki.vn"

var (
	// ErrUpstream means the catalog answered with an error status or garbage.
	ErrUpstream = errors.New("catalog upstream error")
	// ErrUnavailable means the breaker is open and the call was not attempted.
	ErrUnavailable = errors.New("catalog temporarily unavailable")
	ErrNotFound    = errors.New("catalog item not found")
)

// Product is one search hit.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	URLPath       string  `json:"url_path"`
	BrandName     string  `json:"brand_name"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price"`
	ReviewCount   int     `json:"review_count"`
	ThumbnailURL  string  `json:"thumbnail_url"`
}

type Attribute struct {
	Code  string         `json:"code,omitempty"`
	Name  string         `json:"name"`
	Value AttributeValue `json:"value"`
}

type Specification struct {
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

// AttributeValue accepts JSON strings, numbers and booleans.
type AttributeValue string

func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = AttributeValue(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	*v = AttributeValue(data)
	return nil
}

type ProductDetail struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Price          float64         `json:"price"`
	BrandName      string          `json:"brand_name,omitempty"`
	Description    string          `json:"description"`
	Specifications []Specification `json:"specifications"`
}

type productDetailPayload struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Price          float64         `json:"price"`
	Description    string          `json:"description"`
	Specifications []Specification `json:"specifications"`
	Brand          *struct {
		Name string `json:"name"`
	} `json:"brand"`
}

// Reviews is passed through mostly untouched.
type Reviews struct {
	Stars         json.RawMessage `json:"stars"`
	RatingAverage float64         `json:"rating_average"`
	ReviewsCount  int             `json:"reviews_count"`
	Reviews       json.RawMessage `json:"reviews"`
	Paging        json.RawMessage `json:"paging"`
}

type reviewsPayload struct {
	Stars         json.RawMessage `json:"stars"`
	RatingAverage float64         `json:"rating_average"`
	ReviewsCount  int             `json:"reviews_count"`
	Data          json.RawMessage `json:"data"`
	Paging        json.RawMessage `json:"paging"`
}

// Observer receives one call per upstream request.
type Observer interface {
	ObserveUpstream(endpoint, outcome string, elapsed time.Duration)
}

type Client struct {
	baseURL  string
	fetcher  Fetcher
	breaker  *gobreaker.CircuitBreaker
	observer Observer
}

type Option func(*Client)

// WithObserver reports request outcomes, e.g. to metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithBreakerSettings overrides the default circuit breaker.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *Client) { c.breaker = gobreaker.NewCircuitBreaker(withSuccessRule(st)) }
}

// NewClient creates a client. The breaker opens after three consecutive
// transport failures or 5xx answers and probes again after 30s.
func NewClient(baseURL string, fetcher Fetcher, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		fetcher: fetcher,
		breaker: gobreaker.NewCircuitBreaker(withSuccessRule(gobreaker.Settings{
			Name:     "catalog",
			Interval: 60 * time.Second,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		})),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// withSuccessRule keeps client-side answers (404) from tripping the breaker.
func withSuccessRule(st gobreaker.Settings) gobreaker.Settings {
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
	}
	return st
}

func (c *Client) Search(ctx context.Context, query string) ([]Product, error) {
	endpoint := c.baseURL + "/api/v2/products?limit=100&include=advertisement&aggregations=2&q=" + url.QueryEscape(query)

	var payload struct {
		Data []Product `json:"data"`
	}
	if err := c.getJSON(ctx, "search", endpoint, &payload); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(payload.Data))
	for _, p := range payload.Data {
		p.URLPath = c.baseURL + "/" + strings.TrimLeft(p.URLPath, "/")
		products = append(products, p)
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*ProductDetail, error) {
	endpoint := fmt.Sprintf("%s/api/v2/products/%d?platform=web&spid=%d&version=3", c.baseURL, id, id)

	var payload productDetailPayload
	if err := c.getJSON(ctx, "product", endpoint, &payload); err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		ID:             payload.ID,
		Name:           payload.Name,
		Price:          payload.Price,
		Description:    payload.Description,
		Specifications: payload.Specifications,
	}
	if detail.ID == 0 {
		detail.ID = id
	}
	if payload.Brand != nil {
		detail.BrandName = payload.Brand.Name
	}
	if detail.Specifications == nil {
		detail.Specifications = []Specification{}
	}
	return detail, nil
}

func (c *Client) Reviews(ctx context.Context, productID int64, page int) (*Reviews, error) {
	if page < 1 {
		page = 1
	}
	endpoint := c.baseURL + "/api/v2/reviews?limit=5&page=" + strconv.Itoa(page) + "&product_id=" + strconv.FormatInt(productID, 10)

	var payload reviewsPayload
	if err := c.getJSON(ctx, "reviews", endpoint, &payload); err != nil {
		return nil, err
	}

	return &Reviews{
		Stars:         orDefault(payload.Stars, "{}"),
		RatingAverage: payload.RatingAverage,
		ReviewsCount:  payload.ReviewsCount,
		Reviews:       orDefault(payload.Data, "[]"),
		Paging:        orDefault(payload.Paging, "{}"),
	}, nil
}

func orDefault(raw json.RawMessage, fallback string) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(fallback)
	}
	return raw
}

func (c *Client) getJSON(ctx context.Context, name, endpoint string, dst interface{}) error {
	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.fetcher.Get(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
		}
		return resp.Body, nil
	})
	c.observe(name, err, time.Since(start))
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ErrUnavailable
		}
		return err
	}

	if err := json.Unmarshal(result.([]byte), dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, name, err)
	}
	return nil
}

func (c *Client) observe(name string, err error, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	c.observer.ObserveUpstream(name, outcome, elapsed)
}
