package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Noooste/azuretls-client"

	"shopcompare/backend/internal/config"
)

// maxBodySize caps upstream responses.
const maxBodySize = 8 << 20

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher performs a GET against the upstream catalog.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*Response, error)
}

// HTTPFetcher uses a plain net/http client.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", config.ChromeUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// AzureFetcher sends requests with a Chrome TLS fingerprint and header order,
// for upstreams that block non-browser clients.
type AzureFetcher struct {
	session *azuretls.Session
}

func NewAzureFetcher(session *azuretls.Session) *AzureFetcher {
	return &AzureFetcher{session: session}
}

func (f *AzureFetcher) Get(ctx context.Context, rawURL string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headers := azuretls.OrderedHeaders{
		{"accept", "application/json, text/plain, */*"},
		{"accept-language", "vi-VN,vi;q=0.9,en;q=0.8"},
		{"sec-ch-ua", config.ChromeSecChUa},
		{"sec-ch-ua-mobile", "?0"},
		{"sec-ch-ua-platform", `"Windows"`},
		{"sec-fetch-dest", "empty"},
		{"sec-fetch-mode", "cors"},
		{"sec-fetch-site", "same-origin"},
		{"user-agent", config.ChromeUserAgent},
	}

	resp, err := f.session.Do(&azuretls.Request{
		Method:         http.MethodGet,
		Url:            rawURL,
		OrderedHeaders: headers,
	})
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

// Close releases the underlying session.
func (f *AzureFetcher) Close() {
	f.session.Close()
}
