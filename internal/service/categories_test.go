package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopdb/internal/transport"
)

func TestCategoryService_CRUD(t *testing.T) {
	d, _ := newTestDeps(t)
	svc := NewCategoryService(d)
	ctx := context.Background()

	c, err := svc.Create(ctx, transport.CreateCategoryRequest{Name: "Garden", SortOrder: ptr(2)})
	require.NoError(t, err)
	assert.True(t, c.IsActive)
	assert.Equal(t, "CAT-"+strings.ToUpper(c.ID.String()[:8]), c.DisplayID)

	hidden, err := svc.Create(ctx, transport.CreateCategoryRequest{Name: "Archive", IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, hidden.IsActive)

	_, err = svc.Create(ctx, transport.CreateCategoryRequest{Name: "Garden"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Update(ctx, c.ID, transport.UpdateCategoryRequest{Name: ptr("Archive")})
	assert.ErrorIs(t, err, ErrConflict)

	upd, err := svc.Update(ctx, c.ID, transport.UpdateCategoryRequest{Name: ptr("Outdoor"), Description: ptr("plants and tools")})
	require.NoError(t, err)
	assert.Equal(t, "Outdoor", upd.Name)

	all, err := svc.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Archive", all[0].Name)

	require.NoError(t, svc.Remove(ctx, c.ID))
	_, err = svc.FindOne(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Remove(ctx, uuid.New()), ErrNotFound)
}
