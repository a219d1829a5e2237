package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rrsc/House-Monitor-IoT-System/internal/repository"

	"go.uber.org/zap"
)

// DataTypeListProperty properties 表中 data type 列表的持久化键
const DataTypeListProperty = "dataTypeListString"

// 合法的 data type 名称：纯 ASCII 字母数字，区分大小写
var dataTypePattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)

var (
	// ErrEmptyDataTypes 输入的 data type 列表为空
	ErrEmptyDataTypes = errors.New("data type list is empty")

	// ErrInvalidDataType 输入包含非法的 data type 名称
	ErrInvalidDataType = errors.New("invalid data type")
)

// SchemaRegistry 管理当前 data type 列表（读数字段集合）
//
// 列表在内存中保持去重、字典序升序，并以逗号拼接的形式镜像到
// properties 表的 dataTypeListString 键。列表一旦变更，已存读数的
// 字段集合即与新列表不一致，必须整表清空。
type SchemaRegistry struct {
	mu        sync.RWMutex
	dataTypes []string

	props     repository.PropertiesRepository
	telemetry repository.TelemetryRepository
	logger    *zap.Logger
}

// NewSchemaRegistry 创建SchemaRegistry并从 properties 表恢复持久化列表
// 键不存在时以空列表启动，等待首次 SetDataTypes
func NewSchemaRegistry(
	ctx context.Context,
	props repository.PropertiesRepository,
	telemetry repository.TelemetryRepository,
	logger *zap.Logger,
) (*SchemaRegistry, error) {
	value, err := props.Get(ctx, DataTypeListProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to restore data type list: %w", err)
	}

	var dataTypes []string
	if value != "" {
		dataTypes = strings.Split(value, ",")
	}

	logger.Info("Schema registry initialized",
		zap.Strings("data_types", dataTypes),
	)

	return &SchemaRegistry{
		dataTypes: dataTypes,
		props:     props,
		telemetry: telemetry,
		logger:    logger,
	}, nil
}

// DataTypes 返回当前 data type 列表的副本（已排序、去重）
func (r *SchemaRegistry) DataTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.dataTypes))
	copy(out, r.dataTypes)
	return out
}

// HasDataType 判断名称是否在当前列表中（精确匹配，区分大小写）
func (r *SchemaRegistry) HasDataType(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, dt := range r.dataTypes {
		if dt == name {
			return true
		}
	}
	return false
}

// SetDataTypes 原子地替换 data type 列表
//
// 输入为空或包含非法名称时返回错误，不产生任何副作用。输入与当前
// 列表集合相等（忽略顺序和重复）时为幂等空操作，直接返回当前列表。
// 否则：去重、排序、持久化到 properties 表、清空全部已存读数，
// 最后替换内存列表并返回新列表。
//
// 整个操作持有注册表级互斥锁，任何时刻最多一个 SetDataTypes 在执行。
// 持久化失败时在清空读数之前中止，读数和内存列表保持不变；清空失败
// 时属性已持久化但内存列表不替换，重试同一调用会重复持久化和清空，
// 两者均幂等。
func (r *SchemaRegistry) SetDataTypes(ctx context.Context, input []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(input) == 0 {
		r.logger.Error("SetDataTypes: empty input")
		return nil, ErrEmptyDataTypes
	}

	for _, dt := range input {
		if !dataTypePattern.MatchString(dt) {
			r.logger.Error("SetDataTypes: invalid data type string",
				zap.String("data_type", dt),
			)
			return nil, fmt.Errorf("%w: %q", ErrInvalidDataType, dt)
		}
	}

	if sameElements(r.dataTypes, input) {
		r.logger.Debug("SetDataTypes: input data types equal current data types")
		return r.copyDataTypes(), nil
	}

	// 去重并按字典序排序，得到规范形式
	seen := make(map[string]struct{}, len(input))
	next := make([]string, 0, len(input))
	for _, dt := range input {
		if _, ok := seen[dt]; !ok {
			seen[dt] = struct{}{}
			next = append(next, dt)
		}
	}
	sort.Strings(next)

	// 先持久化属性再清空读数：持久化失败时读数不丢失
	if err := r.props.Set(ctx, DataTypeListProperty, strings.Join(next, ",")); err != nil {
		return nil, fmt.Errorf("failed to persist data type list: %w", err)
	}

	deleted, err := r.telemetry.Clear(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear readings after schema change: %w", err)
	}

	r.dataTypes = next

	r.logger.Info("Data type list updated",
		zap.Strings("data_types", next),
		zap.Int("readings_cleared", deleted),
	)

	return r.copyDataTypes(), nil
}

// copyDataTypes 返回当前列表的副本（调用方需持有锁）
func (r *SchemaRegistry) copyDataTypes() []string {
	out := make([]string, len(r.dataTypes))
	copy(out, r.dataTypes)
	return out
}

// sameElements 判断两个列表的元素集合是否相等（忽略顺序和重复）
func sameElements(a, b []string) bool {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}

	if len(setA) != len(setB) {
		return false
	}
	for s := range setA {
		if _, ok := setB[s]; !ok {
			return false
		}
	}
	return true
}
