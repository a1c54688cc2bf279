package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shopcompare/backend/internal/catalog"
	"shopcompare/backend/internal/service"
)

type CatalogHandler struct {
	service service.CatalogService
}

type productDetailResponse struct {
	ID             int64                   `json:"id"`
	Name           string                  `json:"name"`
	Price          float64                 `json:"price"`
	BrandName      string                  `json:"brand_name,omitempty"`
	Description    string                  `json:"description"`
	Specifications []catalog.Specification `json:"specifications"`
}

func NewCatalogHandler(service service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
	g.GET("/product/:id", h.Product)
	g.GET("/product/:id/reviews", h.Reviews)
}

// Search godoc
// @Summary Search products
// @Tags catalog
// @Produce json
// @Param query query string true "search text"
// @Success 200 {array} catalog.Product
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /search [get]
func (h *CatalogHandler) Search(c echo.Context) error {
	products, err := h.service.Search(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return writeServiceError(c, err)
	}
	if products == nil {
		products = []catalog.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

// Product godoc
// @Summary Product detail
// @Tags catalog
// @Produce json
// @Param id path int true "product id"
// @Success 200 {object} productDetailResponse
// @Failure 404 {object} errorResponse
// @Router /product/{id} [get]
func (h *CatalogHandler) Product(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid product id")
	}
	detail, err := h.service.Product(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	specs := detail.Specifications
	if specs == nil {
		specs = []catalog.Specification{}
	}
	return c.JSON(http.StatusOK, productDetailResponse{
		ID:             detail.ID,
		Name:           detail.Name,
		Price:          detail.Price,
		BrandName:      detail.BrandName,
		Description:    detail.Description,
		Specifications: specs,
	})
}

// Reviews godoc
// @Summary Product reviews
// @Tags catalog
// @Produce json
// @Param id path int true "product id"
// @Param page query int false "page, from 1"
// @Success 200 {object} catalog.Reviews
// @Router /product/{id}/reviews [get]
func (h *CatalogHandler) Reviews(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid product id")
	}
	page, err := parsePageQuery(c, "page")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}
	reviews, err := h.service.Reviews(c.Request().Context(), id, page)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}
