package routers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cmms-ng/internal/service"
	"cmms-ng/pkg/middleware/render"
)

// WorkOrderHandler 工单处理器
type WorkOrderHandler struct {
	service *service.WorkOrderService
}

// NewWorkOrderHandler 创建工单处理器
func NewWorkOrderHandler(db *gorm.DB, logger *zap.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{
		service: service.NewWorkOrderService(db, logger),
	}
}

// RegisterRoutes 注册路由
func (h *WorkOrderHandler) RegisterRoutes(api *gin.RouterGroup) {
	workOrderGroup := api.Group(RouteGroupWorkOrders)

	workOrderGroup.POST("", h.CreateWorkOrder)
	workOrderGroup.GET("", h.ListWorkOrders)
	workOrderGroup.POST(RouteParamIDStatus, h.UpdateWorkOrderStatus)
}

// CreateWorkOrder 创建工单
func (h *WorkOrderHandler) CreateWorkOrder(c *gin.Context) {
	var dto service.WorkOrderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		render.BadRequest(c, MsgInvalidWorkOrderRequest+err.Error())
		return
	}

	if dto.AssetID == 0 {
		render.BadRequest(c, "资产ID不能为空")
		return
	}

	id, err := h.service.CreateWorkOrder(c.Request.Context(), dto)
	if err != nil {
		render.Fail(c, http.StatusInternalServerError, "创建工单失败: "+err.Error())
		return
	}

	render.Success(c, gin.H{"id": id})
}

// ListWorkOrders 分页查询工单列表
func (h *WorkOrderHandler) ListWorkOrders(c *gin.Context) {
	assetID, _ := strconv.ParseInt(c.DefaultQuery("assetId", "0"), 10, 64)
	status := c.Query("status")
	woType := c.Query("type")

	page, err1 := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(service.DefaultPage)))
	pageSize, err2 := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(service.DefaultSize)))
	if err1 != nil || err2 != nil {
		render.BadRequest(c, MsgInvalidPageParams)
		return
	}

	items, total, err := h.service.ListWorkOrders(c.Request.Context(), assetID, status, woType, page, pageSize)
	if err != nil {
		render.Fail(c, http.StatusInternalServerError, "查询工单列表失败: "+err.Error())
		return
	}

	render.Success(c, gin.H{
		"items": items,
		"total": total,
	})
}

// UpdateWorkOrderStatusRequest 更新工单状态请求
type UpdateWorkOrderStatusRequest struct {
	Status   string `json:"status" binding:"required"` // 目标状态
	Executor string `json:"executor"`                  // 执行人
	Reason   string `json:"reason"`                    // 取消/失败原因
}

// UpdateWorkOrderStatus 更新工单状态
func (h *WorkOrderHandler) UpdateWorkOrderStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		render.BadRequest(c, MsgInvalidWorkOrderID)
		return
	}

	var req UpdateWorkOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		render.BadRequest(c, MsgInvalidWorkOrderRequest+err.Error())
		return
	}

	if err := h.service.UpdateWorkOrderStatus(c.Request.Context(), id, req.Status, req.Executor, req.Reason); err != nil {
		render.Fail(c, http.StatusInternalServerError, "更新工单状态失败: "+err.Error())
		return
	}

	render.SuccessWithMessage(c, "工单状态已更新", nil)
}
