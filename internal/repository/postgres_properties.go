package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresPropertiesRepository 键值属性Repository实现（properties 表）
type PostgresPropertiesRepository struct {
	db *sql.DB
}

// NewPostgresPropertiesRepository 创建键值属性Repository
func NewPostgresPropertiesRepository(db *sql.DB) *PostgresPropertiesRepository {
	return &PostgresPropertiesRepository{db: db}
}

// 确保实现了接口
var _ PropertiesRepository = (*PostgresPropertiesRepository)(nil)

// Get 读取属性值，键不存在时返回空字符串
func (r *PostgresPropertiesRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM properties WHERE key = $1`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query property %s: %w", key, err)
	}

	return value, nil
}

// Set 写入属性值（upsert）
func (r *PostgresPropertiesRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO properties (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set property %s: %w", key, err)
	}

	return nil
}
