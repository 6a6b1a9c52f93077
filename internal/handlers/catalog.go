package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogHandler struct {
	Catalog *service.CatalogService
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	items, err := h.Catalog.ListProducts(c.Request().Context(), c.QueryParam("categoria"))
	if err != nil {
		return serviceError(c, "list_products", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.Catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, "get_product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) Categories(c echo.Context) error {
	cats, err := h.Catalog.Categories(c.Request().Context())
	if err != nil {
		return serviceError(c, "list_categories", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHandler) Search(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Catalog.Search(c.Request().Context(), c.QueryParam("q"), page, size)
	if err != nil {
		return serviceError(c, "search", err)
	}
	return c.JSON(http.StatusOK, res)
}
