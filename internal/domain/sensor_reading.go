package domain

import "time"

// SensorReading 传感器读数领域模型（对应 sensor_readings 表）
// Values 的字段集合由当前 data type 列表约定，入库时由采集端校验，
// 查询层原样透传，不再二次校验
type SensorReading struct {
	SensorIP  string            `db:"sensor_ip" json:"sensor_ip"`
	Timestamp time.Time         `db:"timestamp" json:"timestamp"`
	Values    map[string]string `db:"reading_values" json:"values"`
}
