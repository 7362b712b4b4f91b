//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"vendimax/internal/infra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestIntegration_RedisPlanCache(t *testing.T) {
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(rdURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisPlanCache(rdb, time.Minute)
	tenant := uuid.New()

	_, ok, err := c.Get(ctx, tenant)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, tenant, &Plan{
		Nombre: "pro", Features: map[string]bool{"ventas": true, "caja": false}, MaxVentasMes: 500,
	}))
	p, ok, err := c.Get(ctx, tenant)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pro", p.Nombre)
	assert.True(t, p.Features["ventas"])
	assert.False(t, p.Features["caja"])
	assert.Equal(t, 500, p.MaxVentasMes)

	ttl, err := rdb.TTL(ctx, planKey(tenant)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute, "ttl %s", ttl)

	require.NoError(t, c.Invalidate(ctx, tenant))
	_, ok, err = c.Get(ctx, tenant)
	require.NoError(t, err)
	assert.False(t, ok)
}
