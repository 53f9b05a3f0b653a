package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/service"
	"github.com/Skotchmaster/shopdb/internal/transport"
	"github.com/Skotchmaster/shopdb/internal/util"
	"github.com/Skotchmaster/shopdb/pkg/logging"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func (h *UsersHTTP) Create(c echo.Context) error {
	const handler = "users.create"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	var req transport.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "create_user_failed", err)
	}

	u, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(c, handler, "create_user_failed", err)
	}

	l.Info("create_user_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, u)
}

func (h *UsersHTTP) FindAll(c echo.Context) error {
	users, err := h.Svc.FindAll(c.Request().Context())
	if err != nil {
		return fail(c, "users.find_all", "find_users_failed", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) FindOne(c echo.Context) error {
	const handler = "users.find_one"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "find_user_failed", err)
	}

	u, err := h.Svc.FindOne(c.Request().Context(), id)
	if err != nil {
		return fail(c, handler, "find_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) Update(c echo.Context) error {
	const handler = "users.update"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "update_user_failed", err)
	}
	var req transport.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "update_user_failed", err)
	}

	u, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(c, handler, "update_user_failed", err)
	}

	l.Info("update_user_success", "user_id", u.ID)
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) Remove(c echo.Context) error {
	const handler = "users.remove"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "remove_user_failed", err)
	}
	if err := h.Svc.Remove(ctx, id); err != nil {
		return fail(c, handler, "remove_user_failed", err)
	}

	l.Info("remove_user_success", "user_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) Search(c echo.Context) error {
	users, err := h.Svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return fail(c, "users.search", "search_users_failed", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) FindByRole(c echo.Context) error {
	users, err := h.Svc.FindByRole(c.Request().Context(), models.UserRole(c.Param("role")))
	if err != nil {
		return fail(c, "users.find_by_role", "find_users_failed", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) FindByStatus(c echo.Context) error {
	users, err := h.Svc.FindByStatus(c.Request().Context(), models.UserStatus(c.Param("status")))
	if err != nil {
		return fail(c, "users.find_by_status", "find_users_failed", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) FindByEmail(c echo.Context) error {
	u, err := h.Svc.FindByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return fail(c, "users.find_by_email", "find_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) FindByUsername(c echo.Context) error {
	u, err := h.Svc.FindByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return fail(c, "users.find_by_username", "find_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHTTP) Page(c echo.Context) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", util.DefaultPageSize)

	res, err := h.Svc.Page(c.Request().Context(), page, limit)
	if err != nil {
		return fail(c, "users.page", "page_users_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UsersHTTP) Stats(c echo.Context) error {
	st, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		return fail(c, "users.stats", "user_stats_failed", err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *UsersHTTP) ActiveWithOrders(c echo.Context) error {
	users, err := h.Svc.ActiveWithOrders(c.Request().Context())
	if err != nil {
		return fail(c, "users.active_with_orders", "find_users_failed", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) WithOrderCount(c echo.Context) error {
	rows, err := h.Svc.WithOrderCount(c.Request().Context())
	if err != nil {
		return fail(c, "users.with_order_count", "user_order_report_failed", err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *UsersHTTP) UpdateMultipleStatus(c echo.Context) error {
	const handler = "users.batch_status"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	var req transport.UpdateMultipleStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "batch_status_failed", err)
	}
	if err := h.Svc.UpdateMultipleStatus(ctx, req.UserIDs, req.Status); err != nil {
		return fail(c, handler, "batch_status_failed", err)
	}

	l.Info("batch_status_success", "count", len(req.UserIDs), "user_status", req.Status)
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) DeleteMultiple(c echo.Context) error {
	const handler = "users.batch_delete"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	var req transport.DeleteMultipleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "batch_delete_failed", err)
	}
	if err := h.Svc.DeleteMultiple(ctx, req.UserIDs); err != nil {
		return fail(c, handler, "batch_delete_failed", err)
	}

	l.Info("batch_delete_success", "count", len(req.UserIDs))
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) TransferBalance(c echo.Context) error {
	const handler = "users.transfer_balance"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	var req transport.TransferBalanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "transfer_balance_failed", err)
	}
	if err := h.Svc.TransferBalance(ctx, req.FromUserID, req.ToUserID, req.Amount); err != nil {
		return fail(c, handler, "transfer_balance_failed", err)
	}

	l.Info("transfer_balance_success", "from", req.FromUserID, "to", req.ToUserID, "amount", req.Amount)
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) SoftDelete(c echo.Context) error {
	const handler = "users.soft_delete"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "soft_delete_user_failed", err)
	}
	if err := h.Svc.SoftDelete(c.Request().Context(), id); err != nil {
		return fail(c, handler, "soft_delete_user_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) Restore(c echo.Context) error {
	const handler = "users.restore"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "restore_user_failed", err)
	}
	u, err := h.Svc.Restore(c.Request().Context(), id)
	if err != nil {
		return fail(c, handler, "restore_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}
