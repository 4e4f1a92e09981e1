package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/pagination"
	"github.com/Skotchmaster/vente_shop/pkg/validate"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/transport"
)

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	kind := c.QueryParam("kind")
	if kind == "" {
		kind = models.KindProduct
	}
	out, err := h.Svc.ListCategories(c.Request().Context(), kind)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.CreateCategoryRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		logging.FromContext(ctx).Warn("category_create_error", "kind", req.Kind, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	kind := c.QueryParam("kind")
	if kind == "" {
		kind = models.KindProduct
	}
	if err := h.Svc.DeleteCategory(c.Request().Context(), kind, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()

	page := pagination.FromQuery(c)
	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page.Size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total":  len(res.Items),
		"items":  res.Items,
		"source": res.Source,
	})
}
