package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

var errNonPositiveID = errors.New("id must be positive")

func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errNonPositiveID
	}
	return id, nil
}

// parsePageQuery defaults to the first page when the parameter is absent.
func parsePageQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, errors.New("page must be a positive integer")
	}
	return page, nil
}
