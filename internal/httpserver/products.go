package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/service"
	"github.com/Skotchmaster/shopdb/internal/transport"
	"github.com/Skotchmaster/shopdb/internal/util"
	"github.com/Skotchmaster/shopdb/pkg/logging"
)

type ProductsHTTP struct {
	Svc *service.ProductService
}

func (h *ProductsHTTP) Create(c echo.Context) error {
	const handler = "products.create"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	var req transport.CreateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "create_product_failed", err)
	}

	p, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(c, handler, "create_product_failed", err)
	}

	l.Info("create_product_success", "product_id", p.ID, "sku", p.SKU)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductsHTTP) FindAll(c echo.Context) error {
	return h.list(c, "products.find_all", h.Svc.FindAll)
}

func (h *ProductsHTTP) FindOne(c echo.Context) error {
	const handler = "products.find_one"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "find_product_failed", err)
	}

	p, err := h.Svc.FindOne(c.Request().Context(), id)
	if err != nil {
		return fail(c, handler, "find_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductsHTTP) Update(c echo.Context) error {
	const handler = "products.update"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "update_product_failed", err)
	}
	var req transport.UpdateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "update_product_failed", err)
	}

	p, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(c, handler, "update_product_failed", err)
	}

	l.Info("update_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductsHTTP) Remove(c echo.Context) error {
	const handler = "products.remove"
	ctx := c.Request().Context()

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "remove_product_failed", err)
	}
	if err := h.Svc.Remove(ctx, id); err != nil {
		return fail(c, handler, "remove_product_failed", err)
	}

	logging.FromContext(ctx).With("handler", handler).Info("remove_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductsHTTP) FindByCategory(c echo.Context) error {
	const handler = "products.find_by_category"
	id, err := paramUUID(c, "categoryId")
	if err != nil {
		return badRequest(c, handler, "find_products_failed", err)
	}
	products, err := h.Svc.FindByCategory(c.Request().Context(), id)
	if err != nil {
		return fail(c, handler, "find_products_failed", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) FindByStatus(c echo.Context) error {
	products, err := h.Svc.FindByStatus(c.Request().Context(), models.ProductStatus(c.Param("status")))
	if err != nil {
		return fail(c, "products.find_by_status", "find_products_failed", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) FindByType(c echo.Context) error {
	products, err := h.Svc.FindByType(c.Request().Context(), models.ProductType(c.Param("type")))
	if err != nil {
		return fail(c, "products.find_by_type", "find_products_failed", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) Search(c echo.Context) error {
	products, err := h.Svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return fail(c, "products.search", "search_products_failed", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) FullTextSearch(c echo.Context) error {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", util.DefaultPageSize)

	res, err := h.Svc.FullTextSearch(c.Request().Context(), strings.TrimSpace(c.QueryParam("q")), page, size)
	if err != nil {
		return fail(c, "products.full_text_search", "full_text_search_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ProductsHTTP) PriceRange(c echo.Context) error {
	const handler = "products.price_range"

	lo, err := decimal.NewFromString(c.QueryParam("min"))
	if err != nil {
		return badRequest(c, handler, "price_range_failed", echo.NewHTTPError(http.StatusBadRequest, "min must be a number").SetInternal(err))
	}
	hi, err := decimal.NewFromString(c.QueryParam("max"))
	if err != nil {
		return badRequest(c, handler, "price_range_failed", echo.NewHTTPError(http.StatusBadRequest, "max must be a number").SetInternal(err))
	}

	products, err := h.Svc.PriceRange(c.Request().Context(), lo, hi)
	if err != nil {
		return fail(c, handler, "price_range_failed", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) InStock(c echo.Context) error {
	return h.list(c, "products.in_stock", h.Svc.InStock)
}

func (h *ProductsHTTP) LowStock(c echo.Context) error {
	return h.list(c, "products.low_stock", h.Svc.LowStock)
}

func (h *ProductsHTTP) OutOfStock(c echo.Context) error {
	return h.list(c, "products.out_of_stock", h.Svc.OutOfStock)
}

func (h *ProductsHTTP) Discounted(c echo.Context) error {
	return h.list(c, "products.discounted", h.Svc.Discounted)
}

func (h *ProductsHTTP) Popular(c echo.Context) error {
	products, err := h.Svc.Popular(c.Request().Context(), queryInt(c, "limit", util.DefaultPageSize))
	if err != nil {
		return fail(c, "products.popular", "find_products_failed", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) Latest(c echo.Context) error {
	products, err := h.Svc.Latest(c.Request().Context(), queryInt(c, "limit", util.DefaultPageSize))
	if err != nil {
		return fail(c, "products.latest", "find_products_failed", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) Page(c echo.Context) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", util.DefaultPageSize)

	res, err := h.Svc.Page(c.Request().Context(), page, limit)
	if err != nil {
		return fail(c, "products.page", "page_products_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ProductsHTTP) Stats(c echo.Context) error {
	st, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		return fail(c, "products.stats", "product_stats_failed", err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *ProductsHTTP) SalesData(c echo.Context) error {
	rows, err := h.Svc.SalesData(c.Request().Context())
	if err != nil {
		return fail(c, "products.sales_data", "sales_data_failed", err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *ProductsHTTP) ByTags(c echo.Context) error {
	var tags []string
	if raw := c.QueryParam("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			tags = append(tags, strings.TrimSpace(t))
		}
	}

	products, err := h.Svc.ByTags(c.Request().Context(), tags)
	if err != nil {
		return fail(c, "products.by_tags", "find_products_failed", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) ByAttributes(c echo.Context) error {
	const handler = "products.by_attributes"

	var attrs map[string]any
	if err := c.Bind(&attrs); err != nil {
		return badRequest(c, handler, "find_products_failed", err)
	}

	products, err := h.Svc.ByAttributes(c.Request().Context(), attrs)
	if err != nil {
		return fail(c, handler, "find_products_failed", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHTTP) UpdateStock(c echo.Context) error {
	const handler = "products.update_stock"
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "update_stock_failed", err)
	}
	var req transport.UpdateStockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "update_stock_failed", err)
	}

	p, err := h.Svc.UpdateStock(ctx, id, req.Quantity)
	if err != nil {
		return fail(c, handler, "update_stock_failed", err)
	}

	l.Info("update_stock_success", "product_id", p.ID, "delta", req.Quantity, "stock", p.StockQuantity)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductsHTTP) BatchUpdateStock(c echo.Context) error {
	const handler = "products.batch_update_stock"

	var req transport.BatchUpdateStockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "batch_update_stock_failed", err)
	}

	res, err := h.Svc.BatchUpdateStock(c.Request().Context(), req.Updates)
	if err != nil {
		return fail(c, handler, "batch_update_stock_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ProductsHTTP) IncrementSold(c echo.Context) error {
	const handler = "products.increment_sold"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "increment_sold_failed", err)
	}
	var req transport.IncrementSoldRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "increment_sold_failed", err)
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if err := h.Svc.IncrementSold(c.Request().Context(), id, qty); err != nil {
		return fail(c, handler, "increment_sold_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductsHTTP) IncrementView(c echo.Context) error {
	const handler = "products.increment_view"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "increment_view_failed", err)
	}
	if err := h.Svc.IncrementView(c.Request().Context(), id); err != nil {
		return fail(c, handler, "increment_view_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductsHTTP) UpdateRating(c echo.Context) error {
	const handler = "products.update_rating"
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, handler, "update_rating_failed", err)
	}
	var req transport.UpdateRatingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, handler, "update_rating_failed", err)
	}

	p, err := h.Svc.UpdateRating(c.Request().Context(), id, req.Rating)
	if err != nil {
		return fail(c, handler, "update_rating_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

// list serves the parameterless product listings.
func (h *ProductsHTTP) list(c echo.Context, handler string, find func(ctx context.Context) ([]models.Product, error)) error {
	products, err := find(c.Request().Context())
	if err != nil {
		return fail(c, handler, "find_products_failed", err)
	}
	return c.JSON(http.StatusOK, products)
}
