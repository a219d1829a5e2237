package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"

	"go.uber.org/zap"
)

// NetworkSnapshotKey 最新网络视图在 Redis 中的键
const NetworkSnapshotKey = "housemon:network:snapshot"

// SnapshotCache 网络视图快照缓存
//
// 定期把最新的 NetworkView 序列化后写入 Redis，供外部消费方读取。
// 核心查询路径不读缓存，快照只是旁路产物。
type SnapshotCache struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotCache 创建快照缓存
func NewSnapshotCache(kv KVStore, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
	}
}

// StoreNetworkSnapshot 写入最新的网络视图快照
func (c *SnapshotCache) StoreNetworkSnapshot(ctx context.Context, view *domain.NetworkView) error {
	jsonData, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal network view: %w", err)
	}

	if err := c.kv.Set(ctx, NetworkSnapshotKey, string(jsonData), c.ttl); err != nil {
		return fmt.Errorf("failed to set snapshot cache: %w", err)
	}

	c.logger.Debug("Updated network snapshot cache",
		zap.String("key", NetworkSnapshotKey),
		zap.Int("total_readings", view.TotalReadings),
	)

	return nil
}

// GetNetworkSnapshot 读取最新的网络视图快照
// 缓存不存在或已过期时返回 ErrCacheMiss
func (c *SnapshotCache) GetNetworkSnapshot(ctx context.Context) (*domain.NetworkView, error) {
	value, err := c.kv.Get(ctx, NetworkSnapshotKey)
	if err != nil {
		return nil, err
	}

	var view domain.NetworkView
	if err := json.Unmarshal([]byte(value), &view); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network view: %w", err)
	}

	return &view, nil
}
