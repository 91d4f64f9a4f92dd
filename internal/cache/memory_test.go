package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type page struct {
	Names []string `json:"names"`
	Total int      `json:"total"`
}

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory(time.Minute, time.Hour)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "products:public:1", page{Names: []string{"Laptop"}, Total: 1}))

	var got page
	found, err := c.Get(ctx, "products:public:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"Laptop"}, got.Names)

	found, err = c.Get(ctx, "products:public:2", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Expiration(t *testing.T) {
	c := NewMemory(time.Millisecond, time.Hour)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1))
	time.Sleep(5 * time.Millisecond)

	var v int
	found, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)

	c.purge(time.Now())
	assert.Equal(t, 0, c.Size())
}

func TestMemory_DeleteByPrefix(t *testing.T) {
	c := NewMemory(time.Minute, time.Hour)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "products:public:a", 1))
	require.NoError(t, c.Set(ctx, "products:recommendations:b", 2))
	require.NoError(t, c.Set(ctx, "settings", 3))

	require.NoError(t, c.DeleteByPrefix(ctx, "products:"))

	assert.Equal(t, 1, c.Size())
}

func TestMemory_CloseStopsJanitor(t *testing.T) {
	c := NewMemory(time.Minute, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestNew_FallsBackToMemory(t *testing.T) {
	store := New(context.Background(), "", time.Minute, zap.NewNop())
	defer store.Close()

	_, ok := store.(*Memory)
	assert.True(t, ok)
}

// requiere un Redis real: REDIS_TEST_URL=redis://localhost:6379/15
func TestRedis_DeleteByPrefix(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	ctx := context.Background()

	r, err := NewRedis(ctx, url, time.Minute)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Set(ctx, "test:products:a", page{Total: 1}))
	require.NoError(t, r.Set(ctx, "test:products:b", page{Total: 2}))

	var got page
	found, err := r.Get(ctx, "test:products:a", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, got.Total)

	require.NoError(t, r.DeleteByPrefix(ctx, "test:products:"))

	found, err = r.Get(ctx, "test:products:b", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
