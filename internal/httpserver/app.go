package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopdb/pkg/logging"
)

const banner = "shopdb: users, products, categories and orders over a relational store"

type AppHTTP struct {
	Name    string
	Version string
	Env     string
	Started time.Time
	// Ping checks the database; nil means always ready.
	Ping func(ctx context.Context) error
}

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Environment string    `json:"environment"`
}

type infoResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Modules     []string `json:"modules"`
}

func (h *AppHTTP) Root(c echo.Context) error {
	return c.String(http.StatusOK, banner)
}

func (h *AppHTTP) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.Started).Seconds(),
		Environment: h.Env,
	})
}

func (h *AppHTTP) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, infoResponse{
		Name:        h.Name,
		Version:     h.Version,
		Description: "Shop backend: CRUD, relations, filtered queries, transactions and statistics",
		Features: []string{
			"CRUD operations",
			"Entity relations",
			"Filtered queries",
			"Transactions",
			"Request validation",
			"Pagination and search",
			"Statistics",
		},
		Modules: []string{
			"Users - user management",
			"Products - product management",
			"Categories - category management",
			"Orders - order management",
		},
	})
}

func (h *AppHTTP) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *AppHTTP) Ready(c echo.Context) error {
	if h.Ping == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.Ping(ctx); err != nil {
		logging.FromContext(ctx).Warn("readiness_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}
