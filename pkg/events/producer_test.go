package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()

	require.NoError(t, r.PublishEvent(ctx, TopicUsers, "1", New("user_created", "1", nil)))
	require.NoError(t, r.PublishEvent(ctx, TopicOrders, "2", New("order_created", "2", nil)))
	require.NoError(t, r.PublishEvent(ctx, TopicUsers, "1", New("user_deleted", "1", nil)))

	assert.Equal(t, []string{"user_created", "user_deleted"}, r.Types(TopicUsers))
	assert.Len(t, r.Messages, 3)
}

func TestNew(t *testing.T) {
	ev := New("product_created", "abc", map[string]any{"sku": "X"})
	assert.Equal(t, "product_created", ev.Type)
	assert.Equal(t, "abc", ev.EntityID)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	require.NoError(t, p.PublishEvent(context.Background(), TopicUsers, "k", nil))
	require.NoError(t, p.Close())
}
