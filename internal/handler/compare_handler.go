package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"shopcompare/backend/internal/service"
)

type CompareHandler struct {
	service service.CompareService
}

type compareRequest struct {
	Prompt     string  `json:"prompt"`
	ProductIDs []int64 `json:"productIds"`
	Language   string  `json:"language"`
}

type compareResponse struct {
	Comparison        string `json:"comparison"`
	RemainingAttempts int    `json:"remainingAttempts"`
	MaxAttempts       int    `json:"maxAttempts"`
}

type quotaResponse struct {
	RemainingAttempts int    `json:"remainingAttempts"`
	MaxAttempts       int    `json:"maxAttempts"`
	IsGuest           bool   `json:"isGuest"`
	ResetAt           string `json:"resetAt"`
}

func NewCompareHandler(service service.CompareService) *CompareHandler {
	return &CompareHandler{service: service}
}

func (h *CompareHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/compare", h.Compare)
	g.GET("/compare/quota", h.Quota)
}

// Compare godoc
// @Summary Compare products with the configured language model
// @Description Charges one request against the caller's daily allowance.
// @Tags compare
// @Accept json
// @Produce json
// @Param body body compareRequest true "prompt or product ids"
// @Success 200 {object} compareResponse
// @Failure 400 {object} errorResponse
// @Failure 429 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /compare [post]
func (h *CompareHandler) Compare(c echo.Context) error {
	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	result, err := h.service.Compare(c.Request().Context(), service.CompareRequest{
		Subject:    SubjectFromContext(c),
		Prompt:     req.Prompt,
		ProductIDs: req.ProductIDs,
		Language:   req.Language,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	setRateLimitHeaders(c, result.Max, result.Remaining)
	return c.JSON(http.StatusOK, compareResponse{
		Comparison:        result.Comparison,
		RemainingAttempts: result.Remaining,
		MaxAttempts:       result.Max,
	})
}

// Quota godoc
// @Summary Remaining comparisons for today
// @Tags compare
// @Produce json
// @Success 200 {object} quotaResponse
// @Router /compare/quota [get]
func (h *CompareHandler) Quota(c echo.Context) error {
	subject := SubjectFromContext(c)
	decision, err := h.service.Quota(c.Request().Context(), subject)
	if err != nil {
		return writeServiceError(c, err)
	}
	setRateLimitHeaders(c, decision.Max, decision.Remaining)
	return c.JSON(http.StatusOK, quotaResponse{
		RemainingAttempts: decision.Remaining,
		MaxAttempts:       decision.Max,
		IsGuest:           subject.IsGuest(),
		ResetAt:           decision.ResetAt.Format(time.RFC3339),
	})
}
