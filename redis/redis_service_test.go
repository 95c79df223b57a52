package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestService(t *testing.T) (*miniredis.Miniredis, *Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	svc := NewService(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = svc.Close() })
	return mr, svc
}

func TestServiceSetGet(t *testing.T) {
	mr, svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Ping(ctx))
	require.NoError(t, svc.Set(ctx, "k", sample{Name: "a", Count: 2}, time.Minute))

	raw, err := mr.Get("k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","count":2}`, raw)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	var got sample
	require.NoError(t, svc.Get(ctx, "k", &got))
	assert.Equal(t, sample{Name: "a", Count: 2}, got)
}

func TestServiceGetMissing(t *testing.T) {
	_, svc := newTestService(t)

	var got sample
	err := svc.Get(context.Background(), "missing", &got)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestServiceSetNXAndDelete(t *testing.T) {
	mr, svc := newTestService(t)
	ctx := context.Background()

	ok, err := svc.SetNX(ctx, "k", "first", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.SetNX(ctx, "k", "second", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	var got string
	require.NoError(t, svc.Get(ctx, "k", &got))
	assert.Equal(t, "first", got)

	require.NoError(t, svc.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}
