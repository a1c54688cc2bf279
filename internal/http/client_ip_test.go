package http_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"shopcompare/backend/internal/handler"
	gh "shopcompare/backend/internal/http"
	"shopcompare/backend/internal/repository"
	"shopcompare/backend/internal/repository/testutil"
	"shopcompare/backend/internal/service"
	"shopcompare/backend/internal/service/mock"
)

type echoProvider struct{}

func (echoProvider) Name() string { return "echo" }

func (echoProvider) Complete(_ context.Context, _, content string) (string, error) {
	return "compared: " + content, nil
}

// newLimitedRouter wires the real SQLite-backed limiter behind /api/compare.
func newLimitedRouter(t *testing.T, opts gh.RouterOptions) *echo.Echo {
	t.Helper()
	ctrl := gomock.NewController(t)
	auth := mock.NewMockAuthService(ctrl)
	catalog := mock.NewMockCatalogService(ctrl)

	db := testutil.NewTestDB(t)
	limiter := service.NewRateLimitService(
		repository.NewRateLimitRepository(db, time.UTC, time.Second),
		nil,
		service.WithLocation(time.UTC),
	)
	compare := service.NewCompareService(limiter, catalog, echoProvider{}, nil)

	return gh.NewRouter(
		handler.NewAuthHandler(auth),
		handler.NewCatalogHandler(catalog),
		handler.NewCompareHandler(compare),
		auth,
		opts,
	)
}

func postCompare(e *echo.Echo, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(`{"prompt":"phone A vs phone B"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_GuestCannotRotateForwardedHeaders(t *testing.T) {
	e := newLimitedRouter(t, gh.RouterOptions{})

	for i := 1; i <= 5; i++ {
		rec := postCompare(e, "198.51.100.50:40000", map[string]string{
			echo.HeaderXForwardedFor: fmt.Sprintf("10.0.0.%d", i),
			echo.HeaderXRealIP:       fmt.Sprintf("172.16.0.%d", i),
		})
		require.Equal(t, http.StatusOK, rec.Code, "call %d", i)
		require.Equal(t, fmt.Sprint(5-i), rec.Header().Get(handler.HeaderRateLimitRemaining))
	}

	rec := postCompare(e, "198.51.100.50:40001", map[string]string{echo.HeaderXForwardedFor: "10.0.0.99"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get(handler.HeaderRetryAfter))

	rec = postCompare(e, "198.51.100.51:40000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_TrustedProxyForwardsClientAddress(t *testing.T) {
	proxies, err := gh.ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	e := newLimitedRouter(t, gh.RouterOptions{TrustedProxies: proxies})

	for i := 0; i < 5; i++ {
		rec := postCompare(e, "10.1.2.3:5000", map[string]string{echo.HeaderXForwardedFor: "203.0.113.9"})
		require.Equal(t, http.StatusOK, rec.Code, "call %d", i+1)
	}
	rec := postCompare(e, "10.1.2.3:5000", map[string]string{echo.HeaderXForwardedFor: "203.0.113.9"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// a different client behind the same proxy has its own counter
	rec = postCompare(e, "10.1.2.3:5000", map[string]string{echo.HeaderXForwardedFor: "203.0.113.10"})
	require.Equal(t, http.StatusOK, rec.Code)

	// an untrusted peer cannot borrow the exhausted client's address, nor escape its own
	rec = postCompare(e, "198.51.100.60:5000", map[string]string{echo.HeaderXForwardedFor: "203.0.113.9"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "4", rec.Header().Get(handler.HeaderRateLimitRemaining))
}

func TestParseTrustedProxies(t *testing.T) {
	nets, err := gh.ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.10 ", "", "2001:db8::1"})
	require.NoError(t, err)
	require.Len(t, nets, 3)
	require.True(t, nets[0].Contains(net.ParseIP("10.200.1.1")))
	require.True(t, nets[1].Contains(net.ParseIP("192.0.2.10")))
	require.False(t, nets[1].Contains(net.ParseIP("192.0.2.11")))
	require.True(t, nets[2].Contains(net.ParseIP("2001:db8::1")))

	for _, bad := range []string{"not-an-ip", "10.0.0.0/33"} {
		_, err := gh.ParseTrustedProxies([]string{bad})
		require.Error(t, err, bad)
	}
}
