package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/vente_shop/pkg/pagination"
	"github.com/Skotchmaster/vente_shop/pkg/validate"
	"github.com/Skotchmaster/vente_shop/services/feedback/internal/service"
	"github.com/Skotchmaster/vente_shop/services/feedback/internal/transport"
)

type FeedbackHTTP struct {
	Svc *service.FeedbackService
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not a positive integer")
	}
	return uint(id), nil
}

func author(c echo.Context) *uint {
	if id, ok := middleware.UserID(c); ok {
		return &id
	}
	return nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *FeedbackHTTP) CreateMessage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback.create_message")

	var req transport.ContactRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		l.Warn("create_message_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	msg, err := h.Svc.CreateMessage(ctx, author(c), req)
	if err != nil {
		l.Error("create_message_error", "error", err)
		return httpError(err)
	}

	l.Info("create_message_success", "message_id", msg.ID)
	return c.JSON(http.StatusCreated, map[string]any{"message": "Message sent successfully", "id": msg.ID})
}

func (h *FeedbackHTTP) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback.list_messages")

	page := pagination.FromQuery(c)
	total, items, err := h.Svc.ListMessages(ctx, c.QueryParam("responded"), page.Offset, page.Size)
	if err != nil {
		if !errors.Is(err, service.ErrValidation) {
			l.Error("list_messages_error", "status", 500, "error", err)
		}
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": pagination.Meta(page, total),
	})
}

func (h *FeedbackHTTP) Respond(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback.respond")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.RespondRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		l.Warn("respond_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	msg, err := h.Svc.Respond(ctx, id, req.Response)
	if err != nil {
		l.Warn("respond_error", "message_id", id, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Response sent", "data": msg})
}

func (h *FeedbackHTTP) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback.create_review")

	var req transport.ReviewRequest
	if err := validate.BindAndValidate(c, &req); err != nil {
		l.Warn("create_review_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	rev, err := h.Svc.CreateReview(ctx, author(c), req)
	if err != nil {
		l.Warn("create_review_error", "error", err)
		return httpError(err)
	}

	l.Info("create_review_success", "review_id", rev.ID)
	return c.JSON(http.StatusCreated, rev)
}

func (h *FeedbackHTTP) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()

	page := pagination.FromQuery(c)
	total, items, err := h.Svc.ListApproved(ctx, page.Offset, page.Size)
	if err != nil {
		logging.FromContext(ctx).Error("list_reviews_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list reviews")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": pagination.Meta(page, total),
	})
}

func (h *FeedbackHTTP) ListAllReviews(c echo.Context) error {
	ctx := c.Request().Context()

	page := pagination.FromQuery(c)
	total, items, err := h.Svc.ListAll(ctx, page.Offset, page.Size)
	if err != nil {
		logging.FromContext(ctx).Error("list_all_reviews_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list reviews")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": pagination.Meta(page, total),
	})
}

func (h *FeedbackHTTP) ApproveReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback.approve_review")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	rev, err := h.Svc.Approve(ctx, id)
	if err != nil {
		l.Warn("approve_review_error", "review_id", id, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rev)
}

func (h *FeedbackHTTP) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback.delete_review")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		l.Warn("delete_review_error", "review_id", id, "error", err)
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FeedbackHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	d, err := h.Svc.Dashboard(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("dashboard_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load dashboard")
	}
	return c.JSON(http.StatusOK, d)
}
