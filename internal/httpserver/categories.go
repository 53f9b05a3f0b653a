package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopdb/internal/service"
	"github.com/Skotchmaster/shopdb/internal/transport"
	"github.com/Skotchmaster/shopdb/pkg/logging"
)

type CategoriesHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoriesHTTP) Create(c echo.Context) error {
	const handler = "categories.create"
	ctx := c.Request().Context()

	var req transport.CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "create_category_failed", err)
	}

	cat, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(c, handler, "create_category_failed", err)
	}

	logging.FromContext(ctx).With("handler", handler).Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoriesHTTP) FindAll(c echo.Context) error {
	cats, err := h.Svc.FindAll(c.Request().Context())
	if err != nil {
		return fail(c, "categories.find_all", "find_categories_failed", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CategoriesHTTP) FindOne(c echo.Context) error {
	const handler = "categories.find_one"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "find_category_failed", err)
	}

	cat, err := h.Svc.FindOne(c.Request().Context(), id)
	if err != nil {
		return fail(c, handler, "find_category_failed", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoriesHTTP) Update(c echo.Context) error {
	const handler = "categories.update"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "update_category_failed", err)
	}
	var req transport.UpdateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "update_category_failed", err)
	}

	cat, err := h.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, handler, "update_category_failed", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoriesHTTP) Remove(c echo.Context) error {
	const handler = "categories.remove"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "remove_category_failed", err)
	}
	if err := h.Svc.Remove(c.Request().Context(), id); err != nil {
		return fail(c, handler, "remove_category_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
