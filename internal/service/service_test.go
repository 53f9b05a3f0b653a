package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/repo"
	"github.com/Skotchmaster/shopdb/internal/storetest"
	"github.com/Skotchmaster/shopdb/pkg/cache"
	"github.com/Skotchmaster/shopdb/pkg/events"
)

func newTestDeps(t *testing.T) (*Deps, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	return &Deps{
		Repo:     repo.New(storetest.Open(t)),
		Events:   rec,
		Cache:    cache.NewMemory(),
		CacheTTL: time.Minute,
	}, rec
}

// seedUser inserts a user directly, skipping password hashing.
func seedUser(t *testing.T, d *Deps, name string, balance int64) *models.User {
	t.Helper()
	u := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "x",
		Balance:  decimal.NewFromInt(balance),
	}
	require.NoError(t, d.Repo.CreateUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, d *Deps, sku string, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:          "Product " + sku,
		SKU:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		MinStockLevel: 2,
		Images:        models.StringList{"https://cdn.example.com/" + sku + ".png"},
	}
	require.NoError(t, d.Repo.CreateProduct(context.Background(), p))
	return p
}

func ptr[T any](v T) *T { return &v }
