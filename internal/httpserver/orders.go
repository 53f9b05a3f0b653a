package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/service"
	"github.com/Skotchmaster/shopdb/internal/transport"
	"github.com/Skotchmaster/shopdb/pkg/logging"
)

type OrdersHTTP struct {
	Svc *service.OrderService
}

func (h *OrdersHTTP) Create(c echo.Context) error {
	const handler = "orders.create"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	var req transport.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "create_order_failed", err)
	}

	o, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(c, handler, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", o.ID, "order_number", o.OrderNumber)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrdersHTTP) CreateWithItems(c echo.Context) error {
	const handler = "orders.create_with_items"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	var req transport.CreateOrderWithItemsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "create_order_failed", err)
	}

	o, err := h.Svc.CreateWithItems(ctx, req)
	if err != nil {
		return fail(c, handler, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", o.ID, "order_number", o.OrderNumber, "total", o.TotalAmount)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrdersHTTP) FindAll(c echo.Context) error {
	orders, err := h.Svc.FindAll(c.Request().Context())
	if err != nil {
		return fail(c, "orders.find_all", "find_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrdersHTTP) FindOne(c echo.Context) error {
	const handler = "orders.find_one"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "find_order_failed", err)
	}

	o, err := h.Svc.FindOne(c.Request().Context(), id)
	if err != nil {
		return fail(c, handler, "find_order_failed", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrdersHTTP) Update(c echo.Context) error {
	const handler = "orders.update"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "update_order_failed", err)
	}
	var req transport.UpdateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "update_order_failed", err)
	}

	o, err := h.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, handler, "update_order_failed", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrdersHTTP) Remove(c echo.Context) error {
	const handler = "orders.remove"
	ctx := c.Request().Context()

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "remove_order_failed", err)
	}
	if err := h.Svc.Remove(ctx, id); err != nil {
		return fail(c, handler, "remove_order_failed", err)
	}

	logging.FromContext(ctx).With("handler", handler).Info("remove_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *OrdersHTTP) FindByUser(c echo.Context) error {
	const handler = "orders.find_by_user"
	id, err := paramUUID(c, "userId")
	if err != nil {
		return badRequest(c, handler, "find_orders_failed", err)
	}
	orders, err := h.Svc.FindByUser(c.Request().Context(), id)
	if err != nil {
		return fail(c, handler, "find_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrdersHTTP) FindByStatus(c echo.Context) error {
	orders, err := h.Svc.FindByStatus(c.Request().Context(), models.OrderStatus(c.Param("status")))
	if err != nil {
		return fail(c, "orders.find_by_status", "find_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrdersHTTP) FindByPaymentStatus(c echo.Context) error {
	orders, err := h.Svc.FindByPaymentStatus(c.Request().Context(), models.PaymentStatus(c.Param("paymentStatus")))
	if err != nil {
		return fail(c, "orders.find_by_payment_status", "find_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrdersHTTP) UpdateStatus(c echo.Context) error {
	const handler = "orders.update_status"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "update_order_status_failed", err)
	}
	var req transport.UpdateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "update_order_status_failed", err)
	}

	o, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(c, handler, "update_order_status_failed", err)
	}

	l.Info("update_order_status_success", "order_id", o.ID, "order_status", o.Status)
	return c.JSON(http.StatusOK, o)
}

func (h *OrdersHTTP) UpdatePaymentStatus(c echo.Context) error {
	const handler = "orders.update_payment_status"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "update_payment_status_failed", err)
	}
	var req transport.UpdatePaymentStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "update_payment_status_failed", err)
	}

	o, err := h.Svc.UpdatePaymentStatus(c.Request().Context(), id, req.PaymentStatus)
	if err != nil {
		return fail(c, handler, "update_payment_status_failed", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrdersHTTP) Stats(c echo.Context) error {
	st, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		return fail(c, "orders.stats", "order_stats_failed", err)
	}
	return c.JSON(http.StatusOK, st)
}
