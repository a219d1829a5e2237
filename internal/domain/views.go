package domain

// 查询期聚合视图。仅在单次查询内构建和返回，不落库。

// SensorView 单个传感器及其符合过滤条件的读数
type SensorView struct {
	Sensor   Sensor          `json:"sensor"`
	Readings []SensorReading `json:"readings"`
}

// Size 读数条数
func (v *SensorView) Size() int {
	return len(v.Readings)
}

// BorderRouterView 单个边界路由器及其有数据的传感器视图
type BorderRouterView struct {
	BorderRouter BorderRouter  `json:"border_router"`
	Sensors      []*SensorView `json:"sensors"`
}

// Size 该路由器下所有传感器的读数总条数
func (v *BorderRouterView) Size() int {
	total := 0
	for _, s := range v.Sensors {
		total += s.Size()
	}
	return total
}

// NetworkView 整个网络的聚合视图
type NetworkView struct {
	BorderRouters []*BorderRouterView `json:"border_routers"`
	TotalReadings int                 `json:"total_readings"`
}

// NewNetworkView 构建网络视图并预计算读数总数
func NewNetworkView(routers []*BorderRouterView) *NetworkView {
	total := 0
	for _, r := range routers {
		total += r.Size()
	}
	return &NetworkView{
		BorderRouters: routers,
		TotalReadings: total,
	}
}
