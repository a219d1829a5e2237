package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"

	"go.uber.org/zap"
)

// PostgresTelemetryRepository 传感器读数Repository实现
// 读数的动态字段集合存储在 values JSONB 列中
type PostgresTelemetryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresTelemetryRepository 创建传感器读数Repository
func NewPostgresTelemetryRepository(db *sql.DB, logger *zap.Logger) *PostgresTelemetryRepository {
	return &PostgresTelemetryRepository{
		db:     db,
		logger: logger,
	}
}

// 确保实现了接口
var _ TelemetryRepository = (*PostgresTelemetryRepository)(nil)

// ListBySensor 获取指定传感器的全部读数
func (r *PostgresTelemetryRepository) ListBySensor(ctx context.Context, sensorIP string) ([]domain.SensorReading, error) {
	query := `
		SELECT sensor_ip, timestamp, reading_values
		FROM sensor_readings
		WHERE sensor_ip = $1
		ORDER BY timestamp
	`

	rows, err := r.db.QueryContext(ctx, query, sensorIP)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	return r.scanReadings(rows)
}

// ListBySensorSince 获取指定传感器在 since 时刻及之后的读数
func (r *PostgresTelemetryRepository) ListBySensorSince(ctx context.Context, sensorIP string, since time.Time) ([]domain.SensorReading, error) {
	query := `
		SELECT sensor_ip, timestamp, reading_values
		FROM sensor_readings
		WHERE sensor_ip = $1 AND timestamp >= $2
		ORDER BY timestamp
	`

	rows, err := r.db.QueryContext(ctx, query, sensorIP, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	return r.scanReadings(rows)
}

// Insert 写入一条读数
func (r *PostgresTelemetryRepository) Insert(ctx context.Context, reading *domain.SensorReading) error {
	valuesJSON, err := json.Marshal(reading.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal reading values: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sensor_readings (sensor_ip, timestamp, reading_values) VALUES ($1, $2, $3)`,
		reading.SensorIP, reading.Timestamp, valuesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}

// Clear 清空全部读数
func (r *PostgresTelemetryRepository) Clear(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sensor_readings`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear readings: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.Info("Cleared sensor readings", zap.Int64("deleted", affected))
	return int(affected), nil
}

// scanReadings 扫描读数结果集
func (r *PostgresTelemetryRepository) scanReadings(rows *sql.Rows) ([]domain.SensorReading, error) {
	var readings []domain.SensorReading
	for rows.Next() {
		var reading domain.SensorReading
		var valuesJSON []byte

		if err := rows.Scan(&reading.SensorIP, &reading.Timestamp, &valuesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}

		if len(valuesJSON) > 0 {
			if err := json.Unmarshal(valuesJSON, &reading.Values); err != nil {
				return nil, fmt.Errorf("failed to unmarshal reading values: %w", err)
			}
		}

		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	return readings, nil
}
