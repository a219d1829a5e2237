package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rrsc/House-Monitor-IoT-System/internal/config"
	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"
	"github.com/rrsc/House-Monitor-IoT-System/internal/mqtt"
	"github.com/rrsc/House-Monitor-IoT-System/internal/repository"

	"go.uber.org/zap"
)

// SchemaChecker 当前 data type 列表的只读校验入口
type SchemaChecker interface {
	HasDataType(name string) bool
}

// readingMessage MQTT 读数消息
// 主题格式: housemon/{sensor_ip}/data
type readingMessage struct {
	Timestamp int64             `json:"timestamp"` // unix 秒，0 表示使用服务端时间
	Values    map[string]string `json:"values"`
}

// MQTTConsumer 传感器读数MQTT消费者
//
// 读数字段集合在入库前按当前 data type 列表校验，这是读数与
// schema 契约的唯一执行点；查询层不再二次校验。
// 未注册的传感器直接丢弃消息，拓扑注册不在此处发生。
type MQTTConsumer struct {
	config     *config.Config
	mqttClient *mqtt.Client
	schema     SchemaChecker
	topology   repository.TopologyRepository
	telemetry  repository.TelemetryRepository
	logger     *zap.Logger
}

// NewMQTTConsumer 创建MQTT消费者
func NewMQTTConsumer(
	cfg *config.Config,
	mqttClient *mqtt.Client,
	schema SchemaChecker,
	topology repository.TopologyRepository,
	telemetry repository.TelemetryRepository,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:     cfg,
		mqttClient: mqttClient,
		schema:     schema,
		topology:   topology,
		telemetry:  telemetry,
		logger:     logger,
	}
}

// Start 启动消费者
func (c *MQTTConsumer) Start(ctx context.Context) error {
	if err := c.mqttClient.Subscribe(c.config.Ingest.Topic, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to ingest topic: %w", err)
	}

	c.logger.Info("MQTT consumer started",
		zap.String("topic", c.config.Ingest.Topic),
	)

	// 等待上下文取消
	<-ctx.Done()
	return nil
}

// Stop 停止消费者
func (c *MQTTConsumer) Stop(ctx context.Context) error {
	if err := c.mqttClient.Unsubscribe(c.config.Ingest.Topic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}

	c.logger.Info("MQTT consumer stopped")
	return nil
}

// handleMessage 处理MQTT消息
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	// 1. 从主题中提取传感器IP
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return fmt.Errorf("invalid topic format: %s", topic)
	}
	sensorIP := parts[1]

	// 2. 解析消息
	var msg readingMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Error("Failed to unmarshal MQTT message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	// 3. 传感器必须已注册
	sensor, err := c.topology.GetSensor(context.Background(), sensorIP)
	if err != nil {
		return fmt.Errorf("failed to look up sensor: %w", err)
	}
	if sensor == nil {
		c.logger.Warn("Sensor not registered, dropping reading",
			zap.String("sensor_ip", sensorIP),
		)
		return fmt.Errorf("sensor not registered: %s", sensorIP)
	}

	// 4. 字段集合按当前 data type 列表校验
	if len(msg.Values) == 0 {
		return fmt.Errorf("reading has no values, sensor_ip = %s", sensorIP)
	}
	for field := range msg.Values {
		if !c.schema.HasDataType(field) {
			c.logger.Warn("Reading field not in data type list, dropping reading",
				zap.String("sensor_ip", sensorIP),
				zap.String("field", field),
			)
			return fmt.Errorf("unknown data type in reading: %s", field)
		}
	}

	// 5. 入库
	timestamp := time.Now()
	if msg.Timestamp > 0 {
		timestamp = time.Unix(msg.Timestamp, 0).UTC()
	}

	reading := &domain.SensorReading{
		SensorIP:  sensorIP,
		Timestamp: timestamp,
		Values:    msg.Values,
	}
	if err := c.telemetry.Insert(context.Background(), reading); err != nil {
		c.logger.Error("Failed to insert reading",
			zap.String("sensor_ip", sensorIP),
			zap.Error(err),
		)
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	c.logger.Debug("Reading stored",
		zap.String("sensor_ip", sensorIP),
		zap.Time("timestamp", timestamp),
		zap.Int("field_count", len(msg.Values)),
	)

	return nil
}
