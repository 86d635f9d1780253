package routers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cmms-ng/internal/service"
	"cmms-ng/pkg/middleware/render"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 前端与API不同源，此处放开来源检查
	CheckOrigin: func(r *http.Request) bool { return true },
}

// PMHandler 预防性维护生成任务处理器
type PMHandler struct {
	pmService *service.PMGeneratorService
	wsManager *service.WebSocketManager
	logger    *zap.Logger
}

// NewPMHandler 创建PM处理器。生成服务由外部注入，
// 保证手动触发与启动自动触发共用同一个运行状态。
func NewPMHandler(pmService *service.PMGeneratorService, wsManager *service.WebSocketManager, logger *zap.Logger) *PMHandler {
	return &PMHandler{
		pmService: pmService,
		wsManager: wsManager,
		logger:    logger,
	}
}

// RegisterRoutes 注册路由
func (h *PMHandler) RegisterRoutes(api *gin.RouterGroup) {
	pmGroup := api.Group(RouteGroupPM)

	pmGroup.POST(SubRouteGenerate, h.GenerateWorkOrders)
	pmGroup.GET(SubRouteStatus, h.GetStatus)
	pmGroup.GET(SubRouteRuns, h.ListRuns)
	pmGroup.GET(SubRouteNotifications, h.Notifications)
}

// GenerateWorkOrders 手动触发一次PM工单生成
func (h *PMHandler) GenerateWorkOrders(c *gin.Context) {
	summary, err := h.pmService.GeneratePreventiveWorkOrders(c.Request.Context())
	if err != nil {
		render.Fail(c, http.StatusInternalServerError, "PM工单生成失败: "+err.Error())
		return
	}

	if summary.Result == service.PMRunResultSkippedRunning {
		render.Conflict(c, MsgPMRunAlreadyActive)
		return
	}

	render.Success(c, summary)
}

// GetStatus 查询PM生成任务状态
func (h *PMHandler) GetStatus(c *gin.Context) {
	render.Success(c, h.pmService.Status())
}

// ListRuns 分页查询PM运行历史
func (h *PMHandler) ListRuns(c *gin.Context) {
	page, err1 := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(service.DefaultPage)))
	pageSize, err2 := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(service.DefaultSize)))
	if err1 != nil || err2 != nil {
		render.BadRequest(c, MsgInvalidPageParams)
		return
	}

	items, total, err := h.pmService.ListRunHistories(c.Request.Context(), page, pageSize)
	if err != nil {
		render.Fail(c, http.StatusInternalServerError, "查询运行历史失败: "+err.Error())
		return
	}

	render.Success(c, gin.H{
		"items": items,
		"total": total,
	})
}

// Notifications WebSocket 订阅PM运行通知
func (h *PMHandler) Notifications(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket connection", zap.Error(err))
		return
	}

	client := service.NewWebSocketClient(conn)
	h.wsManager.AddClient(client)
	h.logger.Info("Notification websocket client connected")

	// 只推送不接收，读循环仅用于感知连接关闭
	go func() {
		defer h.wsManager.RemoveClient(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
