package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"

	"go.uber.org/zap"
)

// PostgresTopologyRepository 网络拓扑Repository实现
type PostgresTopologyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresTopologyRepository 创建网络拓扑Repository
func NewPostgresTopologyRepository(db *sql.DB, logger *zap.Logger) *PostgresTopologyRepository {
	return &PostgresTopologyRepository{
		db:     db,
		logger: logger,
	}
}

// 确保实现了接口
var _ TopologyRepository = (*PostgresTopologyRepository)(nil)

// GetBorderRouter 按IP获取边界路由器
func (r *PostgresTopologyRepository) GetBorderRouter(ctx context.Context, routerIP string) (*domain.BorderRouter, error) {
	query := `
		SELECT border_router_ip, border_router_name
		FROM border_routers
		WHERE border_router_ip = $1
	`

	var router domain.BorderRouter
	err := r.db.QueryRowContext(ctx, query, routerIP).Scan(&router.IP, &router.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query border router: %w", err)
	}

	return &router, nil
}

// ListBorderRouters 获取所有边界路由器
func (r *PostgresTopologyRepository) ListBorderRouters(ctx context.Context) ([]*domain.BorderRouter, error) {
	query := `
		SELECT border_router_ip, border_router_name
		FROM border_routers
		ORDER BY border_router_ip
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query border routers: %w", err)
	}
	defer rows.Close()

	var routers []*domain.BorderRouter
	for rows.Next() {
		var router domain.BorderRouter
		if err := rows.Scan(&router.IP, &router.Name); err != nil {
			return nil, fmt.Errorf("failed to scan border router: %w", err)
		}
		routers = append(routers, &router)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate border routers: %w", err)
	}

	return routers, nil
}

// CountBorderRouters 统计边界路由器数量
func (r *PostgresTopologyRepository) CountBorderRouters(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM border_routers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count border routers: %w", err)
	}
	return count, nil
}

// GetSensor 按IP获取传感器
func (r *PostgresTopologyRepository) GetSensor(ctx context.Context, sensorIP string) (*domain.Sensor, error) {
	query := `
		SELECT sensor_ip, sensor_name, border_router_ip
		FROM sensors
		WHERE sensor_ip = $1
	`

	var sensor domain.Sensor
	err := r.db.QueryRowContext(ctx, query, sensorIP).Scan(&sensor.IP, &sensor.Name, &sensor.BorderRouterIP)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor: %w", err)
	}

	return &sensor, nil
}

// ListSensorsByBorderRouter 获取挂接在指定边界路由器下的所有传感器
func (r *PostgresTopologyRepository) ListSensorsByBorderRouter(ctx context.Context, routerIP string) ([]*domain.Sensor, error) {
	query := `
		SELECT sensor_ip, sensor_name, border_router_ip
		FROM sensors
		WHERE border_router_ip = $1
		ORDER BY sensor_ip
	`

	rows, err := r.db.QueryContext(ctx, query, routerIP)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensors: %w", err)
	}
	defer rows.Close()

	var sensors []*domain.Sensor
	for rows.Next() {
		var sensor domain.Sensor
		if err := rows.Scan(&sensor.IP, &sensor.Name, &sensor.BorderRouterIP); err != nil {
			return nil, fmt.Errorf("failed to scan sensor: %w", err)
		}
		sensors = append(sensors, &sensor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensors: %w", err)
	}

	return sensors, nil
}

// ListSensorIPs 获取所有传感器IP
func (r *PostgresTopologyRepository) ListSensorIPs(ctx context.Context) ([]string, error) {
	query := `SELECT sensor_ip FROM sensors ORDER BY sensor_ip`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor ips: %w", err)
	}
	defer rows.Close()

	var ips []string
	for rows.Next() {
		var ip string
		if err := rows.Scan(&ip); err != nil {
			return nil, fmt.Errorf("failed to scan sensor ip: %w", err)
		}
		ips = append(ips, ip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensor ips: %w", err)
	}

	return ips, nil
}

// UpdateSensorName 更新传感器名称
func (r *PostgresTopologyRepository) UpdateSensorName(ctx context.Context, sensorIP, sensorName string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sensors SET sensor_name = $2 WHERE sensor_ip = $1`,
		sensorIP, sensorName,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update sensor name: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// ClearBorderRouters 清空边界路由器表
// sensors 表通过外键 ON DELETE CASCADE 一并清空
func (r *PostgresTopologyRepository) ClearBorderRouters(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM border_routers`); err != nil {
		return fmt.Errorf("failed to clear border routers: %w", err)
	}

	r.logger.Info("Cleared border routers")
	return nil
}
