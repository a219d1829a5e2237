package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/rrsc/House-Monitor-IoT-System/internal/config"
	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 仅用于单元测试的内存实现

type fakeSchema struct {
	dataTypes map[string]bool
}

func (f *fakeSchema) HasDataType(name string) bool {
	return f.dataTypes[name]
}

type fakeTopology struct {
	sensors map[string]*domain.Sensor
}

func (f *fakeTopology) GetBorderRouter(ctx context.Context, routerIP string) (*domain.BorderRouter, error) {
	return nil, nil
}

func (f *fakeTopology) ListBorderRouters(ctx context.Context) ([]*domain.BorderRouter, error) {
	return nil, nil
}

func (f *fakeTopology) CountBorderRouters(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeTopology) GetSensor(ctx context.Context, sensorIP string) (*domain.Sensor, error) {
	return f.sensors[sensorIP], nil
}

func (f *fakeTopology) ListSensorsByBorderRouter(ctx context.Context, routerIP string) ([]*domain.Sensor, error) {
	return nil, nil
}

func (f *fakeTopology) ListSensorIPs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeTopology) UpdateSensorName(ctx context.Context, sensorIP, sensorName string) (bool, error) {
	return false, nil
}

func (f *fakeTopology) ClearBorderRouters(ctx context.Context) error {
	return nil
}

type fakeTelemetry struct {
	inserted []domain.SensorReading
}

func (f *fakeTelemetry) ListBySensor(ctx context.Context, sensorIP string) ([]domain.SensorReading, error) {
	return nil, nil
}

func (f *fakeTelemetry) ListBySensorSince(ctx context.Context, sensorIP string, since time.Time) ([]domain.SensorReading, error) {
	return nil, nil
}

func (f *fakeTelemetry) Insert(ctx context.Context, reading *domain.SensorReading) error {
	f.inserted = append(f.inserted, *reading)
	return nil
}

func (f *fakeTelemetry) Clear(ctx context.Context) (int, error) {
	deleted := len(f.inserted)
	f.inserted = nil
	return deleted, nil
}

func setupConsumer(t *testing.T) (*MQTTConsumer, *fakeTelemetry) {
	cfg := &config.Config{}
	cfg.Ingest.Topic = "housemon/+/data"
	cfg.MQTT.QoS = 1

	schema := &fakeSchema{dataTypes: map[string]bool{
		"temperature": true,
		"humidity":    true,
	}}
	topology := &fakeTopology{sensors: map[string]*domain.Sensor{
		"bbbb::1": {IP: "bbbb::1", Name: "sensor-1", BorderRouterIP: "aaaa::1"},
	}}
	telemetry := &fakeTelemetry{}

	c := NewMQTTConsumer(cfg, nil, schema, topology, telemetry, zap.NewNop())
	return c, telemetry
}

func TestHandleMessage_StoresValidReading(t *testing.T) {
	c, telemetry := setupConsumer(t)

	payload := []byte(`{"timestamp": 1756713600, "values": {"temperature": "21.5", "humidity": "40"}}`)

	err := c.handleMessage("housemon/bbbb::1/data", payload)

	require.NoError(t, err)
	require.Len(t, telemetry.inserted, 1)
	reading := telemetry.inserted[0]
	assert.Equal(t, "bbbb::1", reading.SensorIP)
	assert.Equal(t, time.Unix(1756713600, 0).UTC(), reading.Timestamp)
	assert.Equal(t, "21.5", reading.Values["temperature"])
}

func TestHandleMessage_MissingTimestampUsesServerTime(t *testing.T) {
	c, telemetry := setupConsumer(t)

	before := time.Now().Add(-time.Second)
	payload := []byte(`{"values": {"temperature": "21.5"}}`)

	err := c.handleMessage("housemon/bbbb::1/data", payload)

	require.NoError(t, err)
	require.Len(t, telemetry.inserted, 1)
	assert.True(t, telemetry.inserted[0].Timestamp.After(before))
}

func TestHandleMessage_UnknownSensorDropped(t *testing.T) {
	c, telemetry := setupConsumer(t)

	payload := []byte(`{"values": {"temperature": "21.5"}}`)

	err := c.handleMessage("housemon/bbbb::ff/data", payload)

	require.Error(t, err)
	assert.Empty(t, telemetry.inserted)
}

func TestHandleMessage_UnknownFieldDropped(t *testing.T) {
	c, telemetry := setupConsumer(t)

	payload := []byte(`{"values": {"pressure": "1013"}}`)

	err := c.handleMessage("housemon/bbbb::1/data", payload)

	require.Error(t, err)
	assert.Empty(t, telemetry.inserted)
}

func TestHandleMessage_EmptyValuesDropped(t *testing.T) {
	c, telemetry := setupConsumer(t)

	payload := []byte(`{"values": {}}`)

	err := c.handleMessage("housemon/bbbb::1/data", payload)

	require.Error(t, err)
	assert.Empty(t, telemetry.inserted)
}

func TestHandleMessage_InvalidTopic(t *testing.T) {
	c, telemetry := setupConsumer(t)

	err := c.handleMessage("housemon", []byte(`{}`))

	require.Error(t, err)
	assert.Empty(t, telemetry.inserted)
}

func TestHandleMessage_MalformedPayload(t *testing.T) {
	c, telemetry := setupConsumer(t)

	err := c.handleMessage("housemon/bbbb::1/data", []byte(`not json`))

	require.Error(t, err)
	assert.Empty(t, telemetry.inserted)
}
