package repository

import (
	"context"

	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"
)

// TopologyRepository 网络拓扑Repository接口（边界路由器 + 传感器）
// 注意：拓扑实体的注册由边界路由器接入流程负责，此接口不提供创建方法
type TopologyRepository interface {
	// GetBorderRouter 按IP获取边界路由器，不存在时返回 (nil, nil)
	GetBorderRouter(ctx context.Context, routerIP string) (*domain.BorderRouter, error)

	// ListBorderRouters 获取所有边界路由器
	ListBorderRouters(ctx context.Context) ([]*domain.BorderRouter, error)

	// CountBorderRouters 统计边界路由器数量
	CountBorderRouters(ctx context.Context) (int64, error)

	// GetSensor 按IP获取传感器，不存在时返回 (nil, nil)
	GetSensor(ctx context.Context, sensorIP string) (*domain.Sensor, error)

	// ListSensorsByBorderRouter 获取挂接在指定边界路由器下的所有传感器
	ListSensorsByBorderRouter(ctx context.Context, routerIP string) ([]*domain.Sensor, error)

	// ListSensorIPs 获取所有传感器IP
	ListSensorIPs(ctx context.Context) ([]string, error)

	// UpdateSensorName 更新传感器名称，传感器不存在时返回 false
	UpdateSensorName(ctx context.Context, sensorIP, sensorName string) (bool, error)

	// ClearBorderRouters 清空边界路由器表（级联删除传感器）
	ClearBorderRouters(ctx context.Context) error
}
