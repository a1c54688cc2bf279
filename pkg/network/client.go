package network

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Noooste/azuretls-client"
)

// ProxyProvider provides proxy configuration.
type ProxyProvider interface {
	GetProxyURL(ctx context.Context) string
}

// StaticProxy is a ProxyProvider backed by a fixed URL; empty means direct.
type StaticProxy string

func (p StaticProxy) GetProxyURL(ctx context.Context) string {
	return strings.TrimSpace(string(p))
}

// ClientFactory creates outbound HTTP clients that share proxy settings.
type ClientFactory struct {
	proxyProvider  ProxyProvider
	testHTTPClient *http.Client // For testing only
}

// NewClientFactory creates a new client factory. A nil provider means direct connections.
func NewClientFactory(proxyProvider ProxyProvider) *ClientFactory {
	if proxyProvider == nil {
		proxyProvider = StaticProxy("")
	}
	return &ClientFactory{proxyProvider: proxyProvider}
}

// NewClientFactoryForTest creates a client factory that always returns client.
func NewClientFactoryForTest(client *http.Client) *ClientFactory {
	return &ClientFactory{
		proxyProvider:  StaticProxy(""),
		testHTTPClient: client,
	}
}

// NewHTTPClient creates a standard http.Client with proxy configuration.
func (f *ClientFactory) NewHTTPClient(ctx context.Context, timeout time.Duration) *http.Client {
	if f.testHTTPClient != nil {
		return f.testHTTPClient
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: f.NewHTTPTransport(ctx),
	}
}

// NewHTTPTransport creates an http.Transport with proxy configuration.
// Unparseable proxy URLs are ignored and the transport dials directly.
func (f *ClientFactory) NewHTTPTransport(ctx context.Context) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil

	if parsed := parseProxyURL(f.proxyProvider.GetProxyURL(ctx)); parsed != nil {
		transport.Proxy = http.ProxyURL(parsed)
	}
	return transport
}

// NewAzureSession creates an azuretls.Session that presents a Chrome TLS
// fingerprint, with proxy configuration.
func (f *ClientFactory) NewAzureSession(ctx context.Context, timeout time.Duration) *azuretls.Session {
	session := azuretls.NewSession()
	session.Browser = azuretls.Chrome
	session.SetTimeout(timeout)

	if parsed := parseProxyURL(f.proxyProvider.GetProxyURL(ctx)); parsed != nil {
		_ = session.SetProxy(parsed.String())
	}

	return session
}

// GetProxyURL returns the current proxy URL.
func (f *ClientFactory) GetProxyURL(ctx context.Context) string {
	return f.proxyProvider.GetProxyURL(ctx)
}

// ExtractHost returns the host[:port] of rawURL, or "" if it has none.
func ExtractHost(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return parsed.Host
}

func parseProxyURL(raw string) *url.URL {
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return nil
	}
	switch parsed.Scheme {
	case "http", "https", "socks5":
		return parsed
	default:
		return nil
	}
}
