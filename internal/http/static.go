package http

import (
	nethttp "net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"shopcompare/backend/pkg/logger"
)

// reservedPrefixes are never answered with the SPA index.
var reservedPrefixes = []string{"/api", "/swagger", "/metrics", "/healthz"}

func isReservedPath(p string) bool {
	for _, prefix := range reservedPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

// registerStatic serves the built frontend from dir, falling back to
// index.html for client-side routes.
func registerStatic(e *echo.Echo, dir string) {
	if dir == "" {
		return
	}
	indexPath := filepath.Join(dir, "index.html")
	info, err := os.Stat(indexPath)
	if err != nil || info.IsDir() {
		logger.Warn("static index not found", "module", "http", "action", "register", "resource", "static", "result", "skipped", "path", indexPath)
		return
	}

	fileServer := nethttp.FileServer(nethttp.Dir(dir))
	serveIndex := func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		return c.File(indexPath)
	}

	e.GET("/*", func(c echo.Context) error {
		requestPath := c.Request().URL.Path
		if isReservedPath(requestPath) {
			return echo.ErrNotFound
		}

		cleanPath := strings.TrimPrefix(path.Clean(requestPath), "/")
		if cleanPath == "." || cleanPath == "" || cleanPath == "index.html" {
			return serveIndex(c)
		}

		candidate := filepath.Join(dir, filepath.FromSlash(cleanPath))
		fileInfo, err := os.Stat(candidate)
		if err == nil && !fileInfo.IsDir() {
			if strings.HasPrefix(cleanPath, "assets/") {
				c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=31536000, immutable")
			}
			fileServer.ServeHTTP(c.Response(), c.Request())
			return nil
		}

		return serveIndex(c)
	})
}
