package httpserver

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/transport"
)

func createProduct(t *testing.T, s *testServer, body map[string]any) models.Product {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/products", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Product](t, rec)
}

func TestCategories_CRUD(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/categories", map[string]any{"name": "Books", "sortOrder": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cat := decode[models.Category](t, rec)
	assert.True(t, cat.IsActive)

	rec = s.do(t, http.MethodPost, "/categories", map[string]any{"name": "Books"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPatch, "/categories/"+cat.ID.String(), map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.Category](t, rec).IsActive)

	createProduct(t, s, map[string]any{"name": "Novel", "sku": "BK-1", "price": 9.5, "categoryId": cat.ID})

	rec = s.do(t, http.MethodGet, "/products/category/"+cat.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Product](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/categories/"+cat.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/categories/"+cat.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProducts_CRUD(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	p := createProduct(t, s, map[string]any{
		"name": "Lamp", "sku": "LAMP-1", "price": 20, "originalPrice": 25, "stockQuantity": 3,
		"tags": []string{"home", "light"}, "attributes": map[string]any{"color": "white"},
	})
	assert.Equal(t, models.ProductActive, p.Status)
	assert.True(t, p.HasDiscount)
	assert.Equal(t, 20, p.DiscountPercentage)

	rec := s.do(t, http.MethodPost, "/products", map[string]any{"name": "Copy", "sku": "LAMP-1", "price": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/products", map[string]any{"name": "Orphan", "sku": "ORPH", "price": 1, "categoryId": uuid.New()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/products", map[string]any{"name": "Neg", "sku": "NEG", "price": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, "/products/"+p.ID.String(), map[string]any{"name": "Desk lamp"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Desk lamp", decode[models.Product](t, rec).Name)

	rec = s.do(t, http.MethodGet, "/products/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/products/tags/search?tags=home,%20light", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Product](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/products/tags/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/products/attributes/search", map[string]any{"color": "white"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Product](t, rec), 1)

	rec = s.do(t, http.MethodPost, "/products/attributes/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/products/"+p.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/products/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{"product_created", "product_updated", "product_deleted"}, s.events.Types("product_events"))
}

func TestProducts_Listings(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	createProduct(t, s, map[string]any{"name": "Cheap", "sku": "C", "price": 5, "stockQuantity": 50})
	createProduct(t, s, map[string]any{"name": "Mid", "sku": "M", "price": 15, "stockQuantity": 4})
	createProduct(t, s, map[string]any{"name": "Gone", "sku": "G", "price": 30, "stockQuantity": 0})

	tests := []struct {
		path string
		want int
	}{
		{"/products", 3},
		{"/products/price/range?min=1&max=20", 2},
		{"/products/stock/in-stock", 2},
		{"/products/stock/low-stock", 2},
		{"/products/stock/out-of-stock", 1},
		{"/products/discounted/list", 0},
		{"/products/popular/list?limit=2", 2},
		{"/products/latest/list", 3},
		{"/products/status/active", 3},
		{"/products/type/physical", 3},
		{"/products/search/query?q=mi", 1},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Len(t, decode[[]models.Product](t, rec), tt.want)
		})
	}

	for _, path := range []string{
		"/products/price/range?min=abc&max=2",
		"/products/price/range?min=10&max=2",
		"/products/status/unknown",
		"/products/type/unknown",
	} {
		rec := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	rec := s.do(t, http.MethodGet, "/products/page/list?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transport.ProductPage](t, rec)
	assert.EqualValues(t, 3, page.Total)
	assert.EqualValues(t, 2, page.TotalPages)
	assert.Len(t, page.Products, 2)

	rec = s.do(t, http.MethodGet, "/products/search/full-text?q=Cheap", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[transport.SearchResult](t, rec)
	assert.Equal(t, "database", res.Via)
	assert.EqualValues(t, 1, res.Total)

	rec = s.do(t, http.MethodGet, "/products/search/full-text?q=%20", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/products/stats/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[transport.ProductStats](t, rec)
	assert.EqualValues(t, 3, st.Total)
	assert.EqualValues(t, 3, st.Active)
	assert.EqualValues(t, 1, st.OutOfStock)

	rec = s.do(t, http.MethodGet, "/products/sales/data", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProducts_StockAndCounters(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	p := createProduct(t, s, map[string]any{"name": "Mug", "sku": "MUG", "price": 7, "stockQuantity": 2})
	path := "/products/" + p.ID.String()

	rec := s.do(t, http.MethodPatch, path+"/stock", map[string]any{"quantity": -2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[models.Product](t, rec)
	assert.Equal(t, 0, got.StockQuantity)
	assert.Equal(t, models.ProductOutOfStock, got.Status)

	rec = s.do(t, http.MethodPatch, path+"/stock", map[string]any{"quantity": -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Message, "Insufficient stock")

	rec = s.do(t, http.MethodPost, "/products/stock/batch-update", map[string]any{
		"updates": []map[string]any{
			{"productId": p.ID, "quantity": 5},
			{"productId": uuid.New(), "quantity": 1},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	batch := decode[transport.BatchUpdateStockResult](t, rec)
	assert.Equal(t, []uuid.UUID{p.ID}, batch.Updated)
	assert.Len(t, batch.Skipped, 1)

	rec = s.do(t, http.MethodPost, path+"/increment-sold", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodPost, path+"/increment-sold", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodPost, path+"/increment-view", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodPost, "/products/"+uuid.NewString()+"/increment-view", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, path+"/update-rating", map[string]any{"rating": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, path+"/update-rating", map[string]any{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[models.Product](t, rec)
	assert.Equal(t, 5, got.StockQuantity)
	assert.Equal(t, models.ProductActive, got.Status)
	assert.Equal(t, 4, got.SoldCount)
	assert.Equal(t, 1, got.ViewCount)
	assert.Equal(t, 1, got.ReviewCount)
	assert.Equal(t, "4", got.Rating.String())
}
