package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/pagination"
	"github.com/Skotchmaster/vente_shop/pkg/validate"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/service"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/transport"
)

func (h *CatalogHTTP) GetEquipment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	eq, err := h.Svc.GetEquipment(ctx, id)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			logging.FromContext(ctx).Error("get_equipment_failed", "status", 500, "error", err)
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, eq)
}

func (h *CatalogHTTP) ListEquipment(c echo.Context) error {
	ctx := c.Request().Context()

	page := pagination.FromQuery(c)
	filter, err := listFilter(c, page)
	if err != nil {
		return err
	}

	total, items, err := h.Svc.ListEquipment(ctx, filter)
	if err != nil {
		logging.FromContext(ctx).Error("list_equipment_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list equipment")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": pagination.Meta(page, total),
	})
}

func (h *CatalogHTTP) CreateEquipment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "equipment.create")

	var req transport.CreateEquipmentRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	eq, err := h.Svc.CreateEquipment(ctx, req)
	if err != nil {
		l.Warn("equipment_create_error", "error", err)
		return httpError(err)
	}

	l.Info("create_equipment_success", "equipment_id", eq.ID)
	return c.JSON(http.StatusCreated, eq)
}

func (h *CatalogHTTP) PatchEquipment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "equipment.patch")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.PatchEquipmentRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		return err
	}

	eq, err := h.Svc.PatchEquipment(ctx, id, req)
	if err != nil {
		l.Warn("equipment_patch_error", "equipment_id", id, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, eq)
}

func (h *CatalogHTTP) DeleteEquipment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteEquipment(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("equipment_delete_error", "equipment_id", id, "error", err)
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
