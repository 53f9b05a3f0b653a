package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/storetest"
)

func newSQLiteRepo(t *testing.T) *GormRepo {
	return New(storetest.Open(t))
}

func newMockRepo(t *testing.T) (*GormRepo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return New(gdb), mock
}

func TestJSONContains(t *testing.T) {
	have := map[string]any{
		"color": "red",
		"size":  map[string]any{"eu": 42.0, "us": 9.0},
		"tags":  []any{"a", "b"},
	}

	assert.True(t, jsonContains(have, map[string]any{"color": "red"}))
	assert.True(t, jsonContains(have, map[string]any{"size": map[string]any{"eu": 42.0}}))
	assert.True(t, jsonContains(have, map[string]any{"tags": []any{"b"}}))
	assert.False(t, jsonContains(have, map[string]any{"color": "blue"}))
	assert.False(t, jsonContains(have, map[string]any{"weight": 1.0}))
	assert.False(t, jsonContains(have, map[string]any{"tags": []any{"c"}}))
}

func TestActiveProductsWithTags_PostgresUsesJSONB(t *testing.T) {
	r, mock := newMockRepo(t)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "name", "sku", "price", "status", "tags"}).
		AddRow(id.String(), "Lamp", "L-1", "10.00", "active", `["home","light"]`)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE status = \$1 AND tags @> \$2::jsonb ORDER BY created_at DESC`).
		WithArgs(models.ProductActive, `["home"]`).
		WillReturnRows(rows)

	out, err := r.ActiveProductsWithTags(context.Background(), []string{"home"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, id, out[0].ID)
	assert.Equal(t, models.StringList{"home", "light"}, out[0].Tags)
	assert.True(t, out[0].Price.Equal(decimal.NewFromInt(10)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveProductsWithAttributes_PostgresUsesJSONB(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(`attributes @> \$2::jsonb`).
		WithArgs(models.ProductActive, `{"color":"red"}`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	out, err := r.ActiveProductsWithAttributes(context.Background(), map[string]any{"color": "red"})
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveProductsWithTagsAndAttributes_SQLite(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	mk := func(sku string, status models.ProductStatus, tags []string, attrs models.JSONMap) {
		require.NoError(t, r.CreateProduct(ctx, &models.Product{
			Name: sku, SKU: sku, Price: decimal.NewFromInt(1), Status: status,
			Tags: tags, Attributes: attrs, StockQuantity: 1,
		}))
	}
	mk("A", models.ProductActive, []string{"home", "light"}, models.JSONMap{"color": "red"})
	mk("B", models.ProductActive, []string{"home"}, models.JSONMap{"color": "blue"})
	mk("C", models.ProductInactive, []string{"home", "light"}, models.JSONMap{"color": "red"})

	byTags, err := r.ActiveProductsWithTags(ctx, []string{"home", "light"})
	require.NoError(t, err)
	require.Len(t, byTags, 1)
	assert.Equal(t, "A", byTags[0].SKU)

	byAttrs, err := r.ActiveProductsWithAttributes(ctx, map[string]any{"color": "blue"})
	require.NoError(t, err)
	require.Len(t, byAttrs, 1)
	assert.Equal(t, "B", byAttrs[0].SKU)
}

func TestUsersWithOrderCount(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	big := &models.User{Username: "big", Email: "big@x.io", Password: "h"}
	none := &models.User{Username: "none", Email: "none@x.io", Password: "h"}
	banned := &models.User{Username: "banned", Email: "banned@x.io", Password: "h", Status: models.UserBanned}
	for _, u := range []*models.User{big, none, banned} {
		require.NoError(t, r.CreateUser(ctx, u))
	}
	for i, amt := range []int64{30, 70} {
		require.NoError(t, r.CreateOrder(ctx, &models.Order{
			OrderNumber: "N" + string(rune('0'+i)),
			UserID:      big.ID,
			Subtotal:    decimal.NewFromInt(amt),
			TotalAmount: decimal.NewFromInt(amt),
		}))
	}

	rows, err := r.UsersWithOrderCount(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "big", rows[0].Username)
	assert.EqualValues(t, 2, rows[0].OrderCount)
	assert.True(t, rows[0].TotalSpent.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "none", rows[1].Username)
	assert.True(t, rows[1].TotalSpent.IsZero())
}

func TestSoftDeleteAndRestoreUser(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	u := &models.User{Username: "ghost", Email: "ghost@x.io", Password: "h"}
	require.NoError(t, r.CreateUser(ctx, u))

	require.ErrorIs(t, r.RestoreUser(ctx, u.ID), gorm.ErrRecordNotFound)
	require.NoError(t, r.SoftDeleteUser(ctx, u.ID))

	_, err := r.GetUser(ctx, u.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.ErrorIs(t, r.SoftDeleteUser(ctx, u.ID), gorm.ErrRecordNotFound)

	require.NoError(t, r.RestoreUser(ctx, u.ID))
	got, err := r.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ghost", got.Username)
}

func TestDeleteCategoryDetachesProducts(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	c := &models.Category{Name: "Lights", IsActive: true}
	require.NoError(t, r.CreateCategory(ctx, c))
	p := &models.Product{Name: "Lamp", SKU: "L", Price: decimal.NewFromInt(5), CategoryID: &c.ID}
	require.NoError(t, r.CreateProduct(ctx, p))

	require.NoError(t, r.DeleteCategory(ctx, c.ID))
	require.ErrorIs(t, r.DeleteCategory(ctx, c.ID), gorm.ErrRecordNotFound)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}

func TestGroupCount(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	for i, role := range []models.UserRole{models.RoleAdmin, models.RoleUser, models.RoleUser} {
		name := "u" + string(rune('a'+i))
		require.NoError(t, r.CreateUser(ctx, &models.User{Username: name, Email: name + "@x.io", Password: "h", Role: role}))
	}

	rows, err := r.UserGroupCount(ctx, "role")
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{{Key: "admin", Count: 1}, {Key: "user", Count: 2}}, rows)
}
