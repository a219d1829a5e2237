package repository

import (
	"context"
	"time"

	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"
)

// TelemetryRepository 传感器读数Repository接口
type TelemetryRepository interface {
	// ListBySensor 获取指定传感器的全部读数（按时间升序）
	ListBySensor(ctx context.Context, sensorIP string) ([]domain.SensorReading, error)

	// ListBySensorSince 获取指定传感器在 since 时刻及之后的读数（timestamp >= since）
	ListBySensorSince(ctx context.Context, sensorIP string, since time.Time) ([]domain.SensorReading, error)

	// Insert 写入一条读数（由采集端调用）
	Insert(ctx context.Context, reading *domain.SensorReading) error

	// Clear 清空全部读数，返回删除条数
	Clear(ctx context.Context) (int, error)
}
