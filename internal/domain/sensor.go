package domain

// Sensor 传感器领域模型（对应 sensors 表）
// 每个传感器挂接在一个边界路由器下（外键 border_router_ip）
type Sensor struct {
	IP             string `db:"sensor_ip" json:"sensor_ip"`
	Name           string `db:"sensor_name" json:"sensor_name"`
	BorderRouterIP string `db:"border_router_ip" json:"border_router_ip"`
}
