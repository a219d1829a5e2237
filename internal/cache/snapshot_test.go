package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *SnapshotCache) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	kv := NewRedisKVStore(redisClient)
	snapshotCache := NewSnapshotCache(kv, time.Minute, zap.NewNop())

	return mr, snapshotCache
}

func testNetworkView() *domain.NetworkView {
	sensorView := &domain.SensorView{
		Sensor: domain.Sensor{IP: "bbbb::1", Name: "sensor-1", BorderRouterIP: "aaaa::1"},
		Readings: []domain.SensorReading{
			{
				SensorIP:  "bbbb::1",
				Timestamp: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
				Values:    map[string]string{"temperature": "21.5"},
			},
		},
	}
	routerView := &domain.BorderRouterView{
		BorderRouter: domain.BorderRouter{IP: "aaaa::1", Name: "router-1"},
		Sensors:      []*domain.SensorView{sensorView},
	}
	return domain.NewNetworkView([]*domain.BorderRouterView{routerView})
}

func TestSnapshotCache_StoreAndGet(t *testing.T) {
	_, snapshotCache := setupTestRedis(t)
	ctx := context.Background()

	err := snapshotCache.StoreNetworkSnapshot(ctx, testNetworkView())
	require.NoError(t, err)

	view, err := snapshotCache.GetNetworkSnapshot(ctx)

	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, 1, view.TotalReadings)
	require.Len(t, view.BorderRouters, 1)
	assert.Equal(t, "aaaa::1", view.BorderRouters[0].BorderRouter.IP)
	require.Len(t, view.BorderRouters[0].Sensors, 1)
	assert.Equal(t, "21.5", view.BorderRouters[0].Sensors[0].Readings[0].Values["temperature"])
}

func TestSnapshotCache_Miss(t *testing.T) {
	_, snapshotCache := setupTestRedis(t)

	_, err := snapshotCache.GetNetworkSnapshot(context.Background())

	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSnapshotCache_TTLExpiry(t *testing.T) {
	mr, snapshotCache := setupTestRedis(t)
	ctx := context.Background()

	err := snapshotCache.StoreNetworkSnapshot(ctx, testNetworkView())
	require.NoError(t, err)

	// miniredis 手动推进时间触发过期
	mr.FastForward(2 * time.Minute)

	_, err = snapshotCache.GetNetworkSnapshot(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisKVStore_SetGet(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	kv := NewRedisKVStore(redisClient)
	ctx := context.Background()

	err := kv.Set(ctx, "k", "v", 0)
	require.NoError(t, err)

	value, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	_, err = kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
