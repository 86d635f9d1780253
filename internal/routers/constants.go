package routers

// HTTP 路由路径常量
const (
	// 基础路由组
	RouteGroupAssets     = "/assets"
	RouteGroupWorkOrders = "/work-orders"
	RouteGroupPM         = "/pm"

	// 路由参数路径
	RouteParamID       = "/:id"
	RouteParamIDStatus = "/:id/status"

	// 子路由路径
	SubRouteGenerate        = "/generate"
	SubRouteStatus          = "/status"
	SubRouteRuns            = "/runs"
	SubRouteComplianceStats = "/compliance-stats"
	SubRouteNotifications   = "/ws/notifications"
)

// 错误消息常量
const (
	MsgInvalidWorkOrderRequest = "无效的工单请求: "
	MsgInvalidPageParams       = "无效的分页参数"
	MsgInvalidWorkOrderID      = "无效的工单ID"
	MsgInvalidAssetID          = "无效的资产ID"
	MsgAssetNotFound           = "资产不存在"
	MsgPMRunAlreadyActive      = "PM生成任务正在运行中"
)
