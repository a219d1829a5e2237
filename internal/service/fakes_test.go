package service

import (
	"context"
	"sync"
	"time"

	"github.com/rrsc/House-Monitor-IoT-System/internal/domain"
)

// 仅用于单元测试的内存仓库实现

type fakeTopologyRepo struct {
	routers []*domain.BorderRouter
	sensors []*domain.Sensor
}

func (f *fakeTopologyRepo) GetBorderRouter(ctx context.Context, routerIP string) (*domain.BorderRouter, error) {
	for _, r := range f.routers {
		if r.IP == routerIP {
			router := *r
			return &router, nil
		}
	}
	return nil, nil
}

func (f *fakeTopologyRepo) ListBorderRouters(ctx context.Context) ([]*domain.BorderRouter, error) {
	return f.routers, nil
}

func (f *fakeTopologyRepo) CountBorderRouters(ctx context.Context) (int64, error) {
	return int64(len(f.routers)), nil
}

func (f *fakeTopologyRepo) GetSensor(ctx context.Context, sensorIP string) (*domain.Sensor, error) {
	for _, s := range f.sensors {
		if s.IP == sensorIP {
			sensor := *s
			return &sensor, nil
		}
	}
	return nil, nil
}

func (f *fakeTopologyRepo) ListSensorsByBorderRouter(ctx context.Context, routerIP string) ([]*domain.Sensor, error) {
	var out []*domain.Sensor
	for _, s := range f.sensors {
		if s.BorderRouterIP == routerIP {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeTopologyRepo) ListSensorIPs(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(f.sensors))
	for _, s := range f.sensors {
		out = append(out, s.IP)
	}
	return out, nil
}

func (f *fakeTopologyRepo) UpdateSensorName(ctx context.Context, sensorIP, sensorName string) (bool, error) {
	for _, s := range f.sensors {
		if s.IP == sensorIP {
			s.Name = sensorName
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTopologyRepo) ClearBorderRouters(ctx context.Context) error {
	f.routers = nil
	f.sensors = nil
	return nil
}

type fakeTelemetryRepo struct {
	mu         sync.Mutex
	readings   []domain.SensorReading
	clearCalls int
	clearErr   error
}

func (f *fakeTelemetryRepo) ListBySensor(ctx context.Context, sensorIP string) ([]domain.SensorReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.SensorReading
	for _, r := range f.readings {
		if r.SensorIP == sensorIP {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeTelemetryRepo) ListBySensorSince(ctx context.Context, sensorIP string, since time.Time) ([]domain.SensorReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.SensorReading
	for _, r := range f.readings {
		if r.SensorIP == sensorIP && !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeTelemetryRepo) Insert(ctx context.Context, reading *domain.SensorReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.readings = append(f.readings, *reading)
	return nil
}

func (f *fakeTelemetryRepo) Clear(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.clearErr != nil {
		return 0, f.clearErr
	}
	deleted := len(f.readings)
	f.readings = nil
	f.clearCalls++
	return deleted, nil
}

func (f *fakeTelemetryRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.readings)
}

type fakePropertiesRepo struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
}

func newFakePropertiesRepo() *fakePropertiesRepo {
	return &fakePropertiesRepo{values: make(map[string]string)}
}

func (f *fakePropertiesRepo) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key], nil
}

func (f *fakePropertiesRepo) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

func (f *fakePropertiesRepo) get(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key]
}
