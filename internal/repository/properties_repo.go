package repository

import "context"

// PropertiesRepository 键值属性Repository接口（properties 表）
// 用于持久化 data type 列表等服务级配置项
type PropertiesRepository interface {
	// Get 读取属性值，键不存在时返回空字符串
	Get(ctx context.Context, key string) (string, error)

	// Set 写入属性值（upsert）
	Set(ctx context.Context, key, value string) error
}
