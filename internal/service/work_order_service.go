package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cmms-ng/models/maintenance"
)

// WorkOrderService 工单服务
type WorkOrderService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWorkOrderService 创建工单服务
func NewWorkOrderService(db *gorm.DB, logger *zap.Logger) *WorkOrderService {
	return &WorkOrderService{db: db, logger: logger}
}

// CreateWorkOrder 创建工单并返回工单ID
func (s *WorkOrderService) CreateWorkOrder(ctx context.Context, dto WorkOrderDTO) (int64, error) {
	if dto.AssetID == 0 {
		return 0, fmt.Errorf("资产ID不能为空")
	}

	workOrder := maintenance.WorkOrder{
		WorkOrderNumber: s.generateWorkOrderNumber(),
		AssetID:         dto.AssetID,
		Title:           dto.Title,
		Description:     dto.Description,
		Type:            dto.Type,
		Status:          maintenance.WorkOrderStatusOpen,
		Priority:        dto.Priority,
		DueDate:         dto.DueDate,
		EstimatedHours:  dto.EstimatedHours,
		CreatedBy:       dto.CreatedBy,
	}

	queryCtx, cancel := context.WithTimeout(ctx, repositoryCallTimeout)
	defer cancel()

	if err := s.db.WithContext(queryCtx).Create(&workOrder).Error; err != nil {
		s.logger.Error("Failed to create work order",
			zap.Int64("assetID", dto.AssetID),
			zap.String("type", string(dto.Type)),
			zap.Error(err))
		return 0, fmt.Errorf("创建工单失败: %w", err)
	}

	s.logger.Info("Work order created",
		zap.Int64("workOrderID", workOrder.ID),
		zap.String("workOrderNumber", workOrder.WorkOrderNumber),
		zap.Int64("assetID", workOrder.AssetID),
		zap.String("priority", string(workOrder.Priority)))

	return workOrder.ID, nil
}

// ListWorkOrders 分页查询工单列表
func (s *WorkOrderService) ListWorkOrders(ctx context.Context, assetID int64, status string, woType string, page, pageSize int) ([]WorkOrderListItemDTO, int64, error) {
	if page < DefaultPage {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultSize
	}
	if pageSize > MaxSize {
		pageSize = MaxSize
	}

	queryCtx, cancel := context.WithTimeout(ctx, repositoryCallTimeout)
	defer cancel()

	query := s.db.WithContext(queryCtx).Model(&maintenance.WorkOrder{})
	if assetID > 0 {
		query = query.Where("asset_id = ?", assetID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if woType != "" {
		query = query.Where("type = ?", woType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询工单总数失败: %w", err)
	}

	var workOrders []maintenance.WorkOrder
	if err := query.Preload("Asset").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&workOrders).Error; err != nil {
		return nil, 0, fmt.Errorf("查询工单列表失败: %w", err)
	}

	items := make([]WorkOrderListItemDTO, 0, len(workOrders))
	for i := range workOrders {
		wo := &workOrders[i]
		item := WorkOrderListItemDTO{
			ID:              wo.ID,
			WorkOrderNumber: wo.WorkOrderNumber,
			AssetID:         wo.AssetID,
			Title:           wo.Title,
			Type:            wo.Type,
			Status:          wo.Status,
			Priority:        wo.Priority,
			DueDate:         wo.DueDate,
			CreatedAt:       wo.CreatedAt,
		}
		if wo.Asset != nil {
			item.AssetName = wo.Asset.DisplayName()
		}
		items = append(items, item)
	}

	return items, total, nil
}

// UpdateWorkOrderStatus 更新工单状态
func (s *WorkOrderService) UpdateWorkOrderStatus(ctx context.Context, id int64, status string, executor string, reason string) error {
	newStatus := maintenance.WorkOrderStatus(status)
	switch newStatus {
	case maintenance.WorkOrderStatusOpen,
		maintenance.WorkOrderStatusInProgress,
		maintenance.WorkOrderStatusCompleted,
		maintenance.WorkOrderStatusCancelled:
	default:
		return fmt.Errorf("无效的工单状态: %s", status)
	}

	queryCtx, cancel := context.WithTimeout(ctx, repositoryCallTimeout)
	defer cancel()

	var workOrder maintenance.WorkOrder
	if err := s.db.WithContext(queryCtx).First(&workOrder, id).Error; err != nil {
		return fmt.Errorf("工单不存在: %w", err)
	}

	updates := map[string]interface{}{
		"status": newStatus,
	}
	if executor != "" {
		updates["executor"] = executor
	}
	if reason != "" {
		updates["failure_reason"] = reason
	}
	if newStatus == maintenance.WorkOrderStatusCompleted {
		updates["completion_time"] = maintenance.MaintTime(time.Now())
	}

	if err := s.db.WithContext(queryCtx).Model(&workOrder).Updates(updates).Error; err != nil {
		s.logger.Error("Failed to update work order status",
			zap.Int64("workOrderID", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("更新工单状态失败: %w", err)
	}

	s.logger.Info("Work order status updated",
		zap.Int64("workOrderID", id),
		zap.String("from", string(workOrder.Status)),
		zap.String("to", status))

	return nil
}

// generateWorkOrderNumber 生成格式为 "WO-" + 年月日 + "-" + 6位随机数的工单号
func (s *WorkOrderService) generateWorkOrderNumber() string {
	dateStr := time.Now().Format("20060102")
	randomStr := fmt.Sprintf("%06d", rand.Intn(1000000))
	return "WO-" + dateStr + "-" + randomStr
}
