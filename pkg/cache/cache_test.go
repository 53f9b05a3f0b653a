package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cmd/server closes the store on shutdown through io.Closer.
var _ io.Closer = (*Redis)(nil)

type stats struct {
	Total int64 `json:"total"`
}

func TestRemember_LoadsOnceThenHits(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	calls := 0
	load := func(context.Context) (stats, error) {
		calls++
		return stats{Total: 7}, nil
	}

	v, err := Remember(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.EqualValues(t, 7, v.Total)

	v, err = Remember(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.EqualValues(t, 7, v.Total)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = Remember(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRemember_LoadErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	boom := errors.New("boom")

	_, err := Remember(ctx, c, "k", time.Minute, func(context.Context) (stats, error) { return stats{}, boom })
	require.ErrorIs(t, err, boom)

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Nanosecond))
	time.Sleep(time.Millisecond)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNoop(t *testing.T) {
	_, err := Noop{}.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrMiss)
}
