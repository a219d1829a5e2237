package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rrsc/House-Monitor-IoT-System/internal/cache"
	"github.com/rrsc/House-Monitor-IoT-System/internal/config"
	"github.com/rrsc/House-Monitor-IoT-System/internal/consumer"
	"github.com/rrsc/House-Monitor-IoT-System/internal/database"
	"github.com/rrsc/House-Monitor-IoT-System/internal/export"
	"github.com/rrsc/House-Monitor-IoT-System/internal/mqtt"
	redisutil "github.com/rrsc/House-Monitor-IoT-System/internal/redis"
	"github.com/rrsc/House-Monitor-IoT-System/internal/repository"

	"go.uber.org/zap"
)

// Service housemon-data 服务：组装存储、schema 注册表、聚合查询、
// MQTT 采集和网络快照缓存
type Service struct {
	config        *config.Config
	logger        *zap.Logger
	db            *sql.DB
	redisClient   *redisutil.Client
	mqttClient    *mqtt.Client
	registry      *SchemaRegistry
	dataService   *DataService
	mqttConsumer  *consumer.MQTTConsumer
	snapshotCache *cache.SnapshotCache
}

// NewService 创建服务
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	// 初始化数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 初始化 Redis（用于网络快照缓存）
	redisClient := redisutil.NewRedisClient(&cfg.Redis)
	if err := redisutil.Ping(context.Background(), redisClient); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// 创建 Repository
	topologyRepo := repository.NewPostgresTopologyRepository(db, logger)
	telemetryRepo := repository.NewPostgresTelemetryRepository(db, logger)
	propertiesRepo := repository.NewPostgresPropertiesRepository(db)

	// 创建 SchemaRegistry（从 properties 表恢复 data type 列表）
	registry, err := NewSchemaRegistry(context.Background(), propertiesRepo, telemetryRepo, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema registry: %w", err)
	}

	dataService := NewDataService(topologyRepo, telemetryRepo, logger)

	// 连接 MQTT 并创建采集消费者
	mqttClient, err := mqtt.NewClient(&cfg.MQTT, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	mqttConsumer := consumer.NewMQTTConsumer(cfg, mqttClient, registry, topologyRepo, telemetryRepo, logger)

	// 创建快照缓存（如果启用）
	var snapshotCache *cache.SnapshotCache
	if cfg.Snapshot.Enabled {
		kv := cache.NewRedisKVStore(redisClient)
		snapshotCache = cache.NewSnapshotCache(kv, time.Duration(cfg.Snapshot.TTL)*time.Second, logger)
	}

	return &Service{
		config:        cfg,
		logger:        logger,
		db:            db,
		redisClient:   redisClient,
		mqttClient:    mqttClient,
		registry:      registry,
		dataService:   dataService,
		mqttConsumer:  mqttConsumer,
		snapshotCache: snapshotCache,
	}, nil
}

// Registry 返回 schema 注册表
func (s *Service) Registry() *SchemaRegistry {
	return s.registry
}

// Data 返回聚合查询服务
func (s *Service) Data() *DataService {
	return s.dataService
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting housemon-data service",
		zap.String("ingest_topic", s.config.Ingest.Topic),
		zap.Bool("snapshot_enabled", s.config.Snapshot.Enabled),
	)

	// 启动快照刷新任务（如果启用）
	if s.snapshotCache != nil {
		go s.runSnapshotLoop(ctx)
	}

	// MQTT 消费者阻塞到上下文取消
	return s.mqttConsumer.Start(ctx)
}

// runSnapshotLoop 周期性重建网络视图快照并写入 Redis
func (s *Service) runSnapshotLoop(ctx context.Context) {
	interval := time.Duration(s.config.Snapshot.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			view, err := s.dataService.GetAllData(ctx, nil)
			if err != nil {
				s.logger.Error("Failed to build network snapshot", zap.Error(err))
				continue
			}
			if view == nil {
				// 网络无数据，不覆盖上一份快照
				continue
			}
			if err := s.snapshotCache.StoreNetworkSnapshot(ctx, view); err != nil {
				s.logger.Error("Failed to store network snapshot", zap.Error(err))
			}
		}
	}
}

// ExportReadings 导出 since 时刻及之后的全部读数为 Excel 文件
// 网络无数据时导出只含表头的文件
func (s *Service) ExportReadings(ctx context.Context, since *time.Time) ([]byte, error) {
	view, err := s.dataService.GetAllData(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to build network view: %w", err)
	}

	return export.GenerateReadingsExport(view, s.registry.DataTypes())
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if err := s.mqttConsumer.Stop(ctx); err != nil {
		s.logger.Error("Error stopping MQTT consumer", zap.Error(err))
	}
	s.mqttClient.Disconnect()

	if err := redisutil.Close(s.redisClient); err != nil {
		s.logger.Error("Error closing redis client", zap.Error(err))
	}

	if err := database.Close(s.db); err != nil {
		s.logger.Error("Error closing database", zap.Error(err))
	}

	return nil
}
