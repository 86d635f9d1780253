package routers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cmms-ng/internal/service"
	"cmms-ng/pkg/middleware/render"
	cmmsredis "cmms-ng/pkg/redis"
)

// AssetHandler 资产处理器
type AssetHandler struct {
	service *service.AssetService
}

// NewAssetHandler 创建资产处理器
func NewAssetHandler(db *gorm.DB, redisHandler service.RedisHandlerInterface, logger *zap.Logger) *AssetHandler {
	cache := service.NewAssetCache(redisHandler, cmmsredis.NewKeyBuilder(cmmsredis.GlobalPrefix, "v1"))
	return &AssetHandler{
		service: service.NewAssetService(db, logger, cache),
	}
}

// RegisterRoutes 注册路由
func (h *AssetHandler) RegisterRoutes(api *gin.RouterGroup) {
	assetGroup := api.Group(RouteGroupAssets)

	assetGroup.GET("", h.ListAssets)
	assetGroup.GET(SubRouteComplianceStats, h.GetComplianceStats)
	assetGroup.GET(RouteParamID, h.GetAsset)
}

// ListAssets 分页查询资产列表
func (h *AssetHandler) ListAssets(c *gin.Context) {
	status := c.Query("status")
	compliance := c.Query("complianceStatus")

	page, err1 := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(service.DefaultPage)))
	pageSize, err2 := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(service.DefaultSize)))
	if err1 != nil || err2 != nil {
		render.BadRequest(c, MsgInvalidPageParams)
		return
	}

	items, total, err := h.service.ListAssets(c.Request.Context(), status, compliance, page, pageSize)
	if err != nil {
		render.Fail(c, http.StatusInternalServerError, "查询资产列表失败: "+err.Error())
		return
	}

	render.Success(c, gin.H{
		"items": items,
		"total": total,
	})
}

// GetAsset 查询单个资产详情
func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		render.BadRequest(c, MsgInvalidAssetID)
		return
	}

	asset, err := h.service.GetAsset(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.NotFound(c, MsgAssetNotFound)
			return
		}
		render.Fail(c, http.StatusInternalServerError, "查询资产失败: "+err.Error())
		return
	}

	render.Success(c, asset)
}

// GetComplianceStats 查询在用资产的合规统计
func (h *AssetHandler) GetComplianceStats(c *gin.Context) {
	stats, err := h.service.GetComplianceStats(c.Request.Context())
	if err != nil {
		render.Fail(c, http.StatusInternalServerError, "查询合规统计失败: "+err.Error())
		return
	}

	render.Success(c, stats)
}
