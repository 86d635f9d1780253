package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cmms-ng/models/maintenance"
	"cmms-ng/pkg/utils"
)

var (
	validAssetStatuses = []string{
		string(maintenance.AssetStatusActive),
		string(maintenance.AssetStatusInactive),
		string(maintenance.AssetStatusMaintenance),
		string(maintenance.AssetStatusRetired),
	}
	validComplianceStatuses = []string{
		string(maintenance.ComplianceStatusCompliant),
		string(maintenance.ComplianceStatusNeedsAttention),
		string(maintenance.ComplianceStatusNonCompliant),
	}
)

// AssetService 资产查询服务，列表与详情查询走缓存
type AssetService struct {
	db     *gorm.DB
	logger *zap.Logger
	cache  *AssetCache
}

// NewAssetService 创建资产查询服务
func NewAssetService(db *gorm.DB, logger *zap.Logger, cache *AssetCache) *AssetService {
	return &AssetService{db: db, logger: logger, cache: cache}
}

// ListAssets 分页查询资产列表
func (s *AssetService) ListAssets(ctx context.Context, status string, compliance string, page, pageSize int) ([]AssetListItemDTO, int64, error) {
	if page < DefaultPage {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultSize
	}
	if pageSize > MaxSize {
		pageSize = MaxSize
	}

	if status != "" && !utils.StringInSlice(status, validAssetStatuses) {
		return nil, 0, fmt.Errorf("无效的资产状态: %s", status)
	}
	if compliance != "" && !utils.StringInSlice(compliance, validComplianceStatuses) {
		return nil, 0, fmt.Errorf("无效的合规状态: %s", compliance)
	}

	queryHash := fmt.Sprintf("status=%s&compliance=%s&page=%d&size=%d", status, compliance, page, pageSize)
	if cached, err := s.cache.GetAssetList(queryHash); err == nil {
		return cached.Items, cached.Total, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, repositoryCallTimeout)
	defer cancel()

	query := s.db.WithContext(queryCtx).Model(&maintenance.Asset{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if compliance != "" {
		query = query.Where("compliance_status = ?", compliance)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询资产总数失败: %w", err)
	}

	var assets []maintenance.Asset
	if err := query.Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("查询资产列表失败: %w", err)
	}

	items := make([]AssetListItemDTO, 0, len(assets))
	for _, asset := range assets {
		items = append(items, AssetListItemDTO{
			ID:               asset.ID,
			Name:             asset.Name,
			SerialNumber:     asset.SerialNumber,
			Location:         asset.Location,
			Status:           asset.Status,
			AutoGenerateWO:   asset.AutoGenerateWO,
			NextMaintenance:  asset.NextMaintenance,
			ComplianceStatus: asset.ComplianceStatus,
		})
	}

	if err := s.cache.SetAssetList(queryHash, &AssetListResponse{Items: items, Total: total}); err != nil {
		s.logger.Warn("Failed to cache asset list", zap.Error(err))
	}

	return items, total, nil
}

// GetAsset 查询单个资产详情
func (s *AssetService) GetAsset(ctx context.Context, id int64) (*AssetDetailDTO, error) {
	if cached, err := s.cache.GetAsset(id); err == nil {
		return cached, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, repositoryCallTimeout)
	defer cancel()

	var asset maintenance.Asset
	if err := s.db.WithContext(queryCtx).First(&asset, id).Error; err != nil {
		return nil, fmt.Errorf("查询资产失败: %w", err)
	}

	detail := &AssetDetailDTO{
		ID:                asset.ID,
		Name:              asset.Name,
		SerialNumber:      asset.SerialNumber,
		Location:          asset.Location,
		Status:            asset.Status,
		AutoGenerateWO:    asset.AutoGenerateWO,
		NextMaintenance:   asset.NextMaintenance,
		PMScheduleType:    asset.PMScheduleType,
		PMIntervalDays:    asset.PMIntervalDays,
		ComplianceStatus:  asset.ComplianceStatus,
		PMLastGeneratedAt: asset.PMLastGeneratedAt,
		LastMaintenance:   asset.LastMaintenance,
		CreatedAt:         asset.CreatedAt,
	}

	if err := s.cache.SetAsset(id, detail); err != nil {
		s.logger.Warn("Failed to cache asset", zap.Int64("assetID", id), zap.Error(err))
	}

	return detail, nil
}

// GetComplianceStats 统计在用资产的维护合规状况
func (s *AssetService) GetComplianceStats(ctx context.Context) (*ComplianceStatsDTO, error) {
	queryCtx, cancel := context.WithTimeout(ctx, repositoryCallTimeout)
	defer cancel()

	stats := &ComplianceStatsDTO{}
	base := s.db.WithContext(queryCtx).Model(&maintenance.Asset{}).
		Where("status = ?", maintenance.AssetStatusActive)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalAssets).Error; err != nil {
		return nil, fmt.Errorf("统计资产总数失败: %w", err)
	}

	type complianceCount struct {
		ComplianceStatus string
		Count            int64
	}
	var counts []complianceCount
	if err := base.Session(&gorm.Session{}).
		Select("compliance_status, count(*) as count").
		Group("compliance_status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("统计合规状态失败: %w", err)
	}

	for _, c := range counts {
		switch maintenance.ComplianceStatus(c.ComplianceStatus) {
		case maintenance.ComplianceStatusCompliant:
			stats.Compliant = c.Count
		case maintenance.ComplianceStatusNeedsAttention:
			stats.NeedsAttention = c.Count
		case maintenance.ComplianceStatusNonCompliant:
			stats.NonCompliant = c.Count
		}
	}

	today := now.New(time.Now()).BeginningOfDay()
	if err := base.Session(&gorm.Session{}).
		Where("next_maintenance IS NOT NULL AND next_maintenance < ?", today).
		Count(&stats.OverdueAssets).Error; err != nil {
		return nil, fmt.Errorf("统计逾期资产失败: %w", err)
	}

	return stats, nil
}
