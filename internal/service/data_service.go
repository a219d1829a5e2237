package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"
	"github.com/rrsc/House-Monitor-IoT-System/internal/repository"

	"go.uber.org/zap"
)

// DataService 只读聚合层：组合拓扑和读数仓库，按需构建
// 网络 → 边界路由器 → 传感器 → 读数 的三级视图
//
// 所有查询方法共享同一条约定：结果为空时返回 (nil, nil)，
// "实体不存在"和"实体存在但无符合条件的数据"对调用方不可区分。
// 需要区分时单独调用 GetBorderRouter 等存在性查询。
//
// 各级查询相互独立，不构成跨级一致性快照。
type DataService struct {
	topology  repository.TopologyRepository
	telemetry repository.TelemetryRepository
	logger    *zap.Logger
}

// NewDataService 创建DataService
func NewDataService(
	topology repository.TopologyRepository,
	telemetry repository.TelemetryRepository,
	logger *zap.Logger,
) *DataService {
	return &DataService{
		topology:  topology,
		telemetry: telemetry,
		logger:    logger,
	}
}

// GetSensorData 获取单个传感器的读数视图
//
// since 为 nil 时返回全部读数，否则返回 timestamp >= since 的读数。
// 传感器不存在或读数为空时返回 (nil, nil)。
func (s *DataService) GetSensorData(ctx context.Context, sensorIP string, since *time.Time) (*domain.SensorView, error) {
	sensor, err := s.topology.GetSensor(ctx, sensorIP)
	if err != nil {
		return nil, fmt.Errorf("failed to get sensor: %w", err)
	}
	if sensor == nil {
		s.logger.Debug("GetSensorData: sensor not found",
			zap.String("sensor_ip", sensorIP),
		)
		return nil, nil
	}

	var readings []domain.SensorReading
	if since == nil {
		readings, err = s.telemetry.ListBySensor(ctx, sensorIP)
	} else {
		readings, err = s.telemetry.ListBySensorSince(ctx, sensorIP, *since)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}

	if len(readings) == 0 {
		s.logger.Debug("GetSensorData: no readings",
			zap.String("sensor_ip", sensorIP),
		)
		return nil, nil
	}

	return &domain.SensorView{
		Sensor:   *sensor,
		Readings: readings,
	}, nil
}

// GetBorderRouterData 获取单个边界路由器的聚合视图
//
// 仅包含有符合条件读数的传感器；路由器不存在、无传感器或所有
// 传感器均无数据时返回 (nil, nil)。
func (s *DataService) GetBorderRouterData(ctx context.Context, routerIP string, since *time.Time) (*domain.BorderRouterView, error) {
	router, err := s.topology.GetBorderRouter(ctx, routerIP)
	if err != nil {
		return nil, fmt.Errorf("failed to get border router: %w", err)
	}
	if router == nil {
		s.logger.Debug("GetBorderRouterData: border router not found",
			zap.String("border_router_ip", routerIP),
		)
		return nil, nil
	}

	sensors, err := s.topology.ListSensorsByBorderRouter(ctx, routerIP)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	if len(sensors) == 0 {
		s.logger.Debug("GetBorderRouterData: no sensors attached",
			zap.String("border_router_ip", routerIP),
		)
		return nil, nil
	}

	readingCount := 0
	var sensorViews []*domain.SensorView
	for _, sensor := range sensors {
		view, err := s.GetSensorData(ctx, sensor.IP, since)
		if err != nil {
			return nil, err
		}
		if view != nil {
			readingCount += view.Size()
			sensorViews = append(sensorViews, view)
		}
	}

	if len(sensorViews) == 0 {
		s.logger.Debug("GetBorderRouterData: no data found",
			zap.String("border_router_ip", routerIP),
		)
		return nil, nil
	}

	s.logger.Debug("GetBorderRouterData: readings found",
		zap.String("border_router_ip", routerIP),
		zap.Int("reading_count", readingCount),
	)

	return &domain.BorderRouterView{
		BorderRouter: *router,
		Sensors:      sensorViews,
	}, nil
}

// GetAllData 获取整个网络的聚合视图
//
// 仅包含非空的边界路由器视图；没有任何数据时返回 (nil, nil)。
func (s *DataService) GetAllData(ctx context.Context, since *time.Time) (*domain.NetworkView, error) {
	routers, err := s.topology.ListBorderRouters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list border routers: %w", err)
	}

	var routerViews []*domain.BorderRouterView
	for _, router := range routers {
		view, err := s.GetBorderRouterData(ctx, router.IP, since)
		if err != nil {
			return nil, err
		}
		if view != nil {
			routerViews = append(routerViews, view)
		}
	}

	if len(routerViews) == 0 {
		s.logger.Debug("GetAllData: no data found")
		return nil, nil
	}

	network := domain.NewNetworkView(routerViews)
	s.logger.Debug("GetAllData: total readings",
		zap.Int("total_readings", network.TotalReadings),
	)

	return network, nil
}

// GetBorderRouterCount 统计边界路由器数量
func (s *DataService) GetBorderRouterCount(ctx context.Context) (int64, error) {
	return s.topology.CountBorderRouters(ctx)
}

// UpdateSensorName 更新传感器名称，传感器不存在时返回 false
func (s *DataService) UpdateSensorName(ctx context.Context, sensorIP, sensorName string) (bool, error) {
	return s.topology.UpdateSensorName(ctx, sensorIP, sensorName)
}

// ListBorderRouterAddresses 获取所有边界路由器的 IP/名称对
// 无路由器时返回空列表
func (s *DataService) ListBorderRouterAddresses(ctx context.Context) ([][2]string, error) {
	routers, err := s.topology.ListBorderRouters(ctx)
	if err != nil {
		return nil, err
	}

	pairs := make([][2]string, 0, len(routers))
	for _, router := range routers {
		pairs = append(pairs, [2]string{router.IP, router.Name})
	}

	s.logger.Debug("ListBorderRouterAddresses: list size",
		zap.Int("size", len(pairs)),
	)

	return pairs, nil
}

// ListSensorIPs 获取所有传感器IP，无传感器时返回空列表
// 原始列表查询，不做空→缺失折叠
func (s *DataService) ListSensorIPs(ctx context.Context) ([]string, error) {
	return s.topology.ListSensorIPs(ctx)
}

// ListSensorIPsByBorderRouter 获取挂接在指定边界路由器下的传感器IP
// 路由器不存在或无传感器时返回空列表；过滤掉IP为空的传感器记录
func (s *DataService) ListSensorIPsByBorderRouter(ctx context.Context, routerIP string) ([]string, error) {
	sensors, err := s.topology.ListSensorsByBorderRouter(ctx, routerIP)
	if err != nil {
		return nil, err
	}

	ips := make([]string, 0, len(sensors))
	for _, sensor := range sensors {
		if sensor.IP != "" {
			ips = append(ips, sensor.IP)
		}
	}

	return ips, nil
}

// ClearTopology 清空拓扑（边界路由器表，传感器级联删除）
// 不单独清理读数，遗留读数成为孤儿数据
func (s *DataService) ClearTopology(ctx context.Context) error {
	return s.topology.ClearBorderRouters(ctx)
}

// ClearReadings 清空全部读数，返回删除条数
// 独立于 data type 变更的显式清理入口
func (s *DataService) ClearReadings(ctx context.Context) (int, error) {
	return s.telemetry.Clear(ctx)
}

// GetBorderRouter 按IP获取边界路由器，不存在时返回 (nil, nil)
func (s *DataService) GetBorderRouter(ctx context.Context, routerIP string) (*domain.BorderRouter, error) {
	s.logger.Debug("GetBorderRouter",
		zap.String("border_router_ip", routerIP),
	)
	return s.topology.GetBorderRouter(ctx, routerIP)
}
