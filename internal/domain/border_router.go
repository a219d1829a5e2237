package domain

// BorderRouter 边界路由器领域模型（对应 border_routers 表）
// 拓扑的顶层实体，下挂零个或多个传感器
type BorderRouter struct {
	IP   string `db:"border_router_ip" json:"border_router_ip"`
	Name string `db:"border_router_name" json:"border_router_name"`
}
