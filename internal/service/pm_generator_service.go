package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jinzhu/now"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cmms-ng/models/maintenance"
	"cmms-ng/pkg/redis"
)

// RedisHandlerInterface 定义服务层所需的Redis操作
type RedisHandlerInterface interface {
	AcquireLock(key string, value string, expiry time.Duration) (bool, error)
	Get(key string) string
	SetWithExpireTime(key string, value string, expiry time.Duration)
	ScanKeys(pattern string) ([]string, error)
	Delete(key string)
	Pub(channel string, message string) error
}

// PMGeneratorService 预防性维护工单自动生成服务。
// 扫描符合条件的资产，按到期状态生成紧急或计划工单，并保证同一资产
// 最多只有一个 open/in-progress 状态的预防性维护工单。
type PMGeneratorService struct {
	db            *gorm.DB
	redisHandler  RedisHandlerInterface
	logger        *zap.Logger
	workOrderSvc  *WorkOrderService
	keyBuilder    *redis.KeyBuilder
	assetCache    *AssetCache
	running       atomic.Bool
	lastRunMux    sync.Mutex
	lastRunResult *PMRunSummaryDTO
}

// NewPMGeneratorService 创建PM工单自动生成服务
func NewPMGeneratorService(db *gorm.DB, redisHandler RedisHandlerInterface, logger *zap.Logger) *PMGeneratorService {
	keyBuilder := redis.NewKeyBuilder(redis.GlobalPrefix, "v1")
	return &PMGeneratorService{
		db:           db,
		redisHandler: redisHandler,
		logger:       logger,
		workOrderSvc: NewWorkOrderService(db, logger),
		keyBuilder:   keyBuilder,
		assetCache:   NewAssetCache(redisHandler, keyBuilder),
	}
}

// GeneratePreventiveWorkOrders 执行一次PM工单生成。
// 同一服务实例内不允许并发运行：已有任务在执行时本次请求直接跳过，
// 不排队也不重试。返回的汇总中 Generated/Overdue 对应本次生成的
// 工单总数与其中的紧急工单数。
func (s *PMGeneratorService) GeneratePreventiveWorkOrders(ctx context.Context) (*PMRunSummaryDTO, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Info("PM generation already running, request ignored")
		return &PMRunSummaryDTO{Result: PMRunResultSkippedRunning}, nil
	}
	defer s.running.Store(false)

	runTime := time.Now()
	// 整个运行过程使用同一个评估日，所有资产以相同的时间基准分类
	today := now.New(runTime).BeginningOfDay()

	// 跨实例提示锁：进程内标志挡不住多实例并发，用 SetNX 缩小竞争窗口。
	// 锁本身是尽力而为的，获取出错时照常执行并记录告警。
	lockKey := s.keyBuilder.PMRunLockKey()
	lockValue := fmt.Sprintf("pm_run:%d", runTime.UnixNano())
	locked, lockErr := s.redisHandler.AcquireLock(lockKey, lockValue, pmRunLockTTL)
	if lockErr != nil {
		s.logger.Warn("Failed to acquire cross-instance PM run lock, continuing with in-process guard only",
			zap.String("lockKey", lockKey),
			zap.Error(lockErr))
	} else if !locked {
		s.logger.Info("PM run lock held by another instance, skipping run",
			zap.String("lockKey", lockKey))
		summary := &PMRunSummaryDTO{
			Result:  PMRunResultSkippedLockHeld,
			RunTime: maintenance.MaintTime(runTime),
		}
		s.recordRunHistory(summary, "另一实例正在执行PM生成任务")
		return summary, nil
	} else {
		defer s.redisHandler.Delete(lockKey)
	}

	s.logger.Info("Starting PM work order generation",
		zap.Time("today", today),
		zap.Int("dueSoonWindowDays", DueSoonWindowDays))

	assets, err := s.loadEligibleAssets(ctx)
	if err != nil {
		s.logger.Error("Failed to load eligible assets, aborting PM run", zap.Error(err))
		summary := &PMRunSummaryDTO{
			Result:  PMRunResultLoadFailed,
			RunTime: maintenance.MaintTime(runTime),
		}
		s.recordRunHistory(summary, fmt.Sprintf("加载资产失败: %v", err))
		s.storeLastRun(summary)
		return summary, err
	}
	s.logger.Info("Loaded eligible assets for PM evaluation", zap.Int("count", len(assets)))

	summary := &PMRunSummaryDTO{
		Result:  PMRunResultCompleted,
		RunTime: maintenance.MaintTime(runTime),
	}

	// 按仓库返回顺序逐个处理，单个资产失败只影响自身
	for i := range assets {
		asset := &assets[i]
		if asset.NextMaintenance == nil {
			// 查询条件已排除，此处只是防御空指针
			continue
		}

		eval := ClassifyDueDate(time.Time(*asset.NextMaintenance), today, DueSoonWindowDays)
		if eval.Classification == DueStatusNotDue {
			continue
		}

		// 重复检查必须紧贴生成执行，不跨整轮缓存
		hasOpen, err := s.hasOpenPMWorkOrder(ctx, asset.ID)
		if err != nil {
			// 检查失败时按已存在工单处理，宁可漏生成也不能生成重复工单
			s.logger.Error("Open PM work order check failed, skipping asset",
				zap.Int64("assetID", asset.ID),
				zap.Error(err))
			summary.GuardFailures++
			continue
		}
		if hasOpen {
			s.logger.Debug("Asset already has an open PM work order, skipping",
				zap.Int64("assetID", asset.ID))
			continue
		}

		outcome, err := s.generatePMWorkOrder(ctx, asset, eval, runTime)
		if err != nil {
			s.logger.Error("Failed to generate PM work order",
				zap.Int64("assetID", asset.ID),
				zap.String("classification", string(eval.Classification)),
				zap.Error(err))
			summary.GenerationFailures++
			continue
		}

		summary.Generated++
		if eval.Classification == DueStatusOverdue {
			summary.Overdue++
		}
		if outcome.assetUpdateErr != nil {
			// 工单已生成，资产回写失败不回滚，只计入汇总并告警
			summary.AssetUpdateFailures++
			s.logger.Warn("Work order created but asset update failed",
				zap.Int64("assetID", asset.ID),
				zap.Int64("workOrderID", outcome.workOrderID),
				zap.Error(outcome.assetUpdateErr))
		} else {
			s.assetCache.InvalidateAsset(asset.ID)
		}
	}

	if summary.Generated > 0 {
		// 运行期间回写了资产合规状态，列表缓存整体失效
		if err := s.assetCache.InvalidateAssetLists(); err != nil {
			s.logger.Warn("Failed to invalidate asset list cache", zap.Error(err))
		}
	}

	if summary.GuardFailures > 0 || summary.GenerationFailures > 0 || summary.AssetUpdateFailures > 0 {
		summary.Result = PMRunResultCompletedWithErrors
	}

	s.recordRunHistory(summary, "")
	if summary.Generated > 0 {
		s.publishRunSummary(summary)
	}
	s.storeLastRun(summary)

	s.logger.Info("PM work order generation finished",
		zap.Int("generated", summary.Generated),
		zap.Int("overdue", summary.Overdue),
		zap.Int("guardFailures", summary.GuardFailures),
		zap.Int("generationFailures", summary.GenerationFailures),
		zap.Int("assetUpdateFailures", summary.AssetUpdateFailures))

	return summary, nil
}

// Status 返回运行状态与最近一次运行汇总
func (s *PMGeneratorService) Status() PMStatusDTO {
	s.lastRunMux.Lock()
	defer s.lastRunMux.Unlock()
	return PMStatusDTO{
		Running: s.running.Load(),
		LastRun: s.lastRunResult,
	}
}

// ListRunHistories 分页查询运行历史
func (s *PMGeneratorService) ListRunHistories(ctx context.Context, page, pageSize int) ([]PMRunHistoryItemDTO, int64, error) {
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

	var total int64
	if err := s.db.WithContext(queryCtx).Model(&maintenance.PMRunHistory{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询运行历史总数失败: %w", err)
	}

	var histories []maintenance.PMRunHistory
	if err := s.db.WithContext(queryCtx).
		Order("run_time DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&histories).Error; err != nil {
		return nil, 0, fmt.Errorf("查询运行历史失败: %w", err)
	}

	items := make([]PMRunHistoryItemDTO, 0, len(histories))
	for _, h := range histories {
		items = append(items, PMRunHistoryItemDTO{
			ID:                  h.ID,
			RunTime:             h.RunTime,
			Result:              h.Result,
			GeneratedCount:      h.GeneratedCount,
			UrgentCount:         h.UrgentCount,
			AssetUpdateFailures: h.AssetUpdateFailures,
			Reason:              h.Reason,
		})
	}

	return items, total, nil
}

// loadEligibleAssets 加载待评估资产：启用自动生成、状态在用、已排期
func (s *PMGeneratorService) loadEligibleAssets(ctx context.Context) ([]maintenance.Asset, error) {
	queryCtx, cancel := context.WithTimeout(ctx, repositoryCallTimeout)
	defer cancel()

	var assets []maintenance.Asset
	err := s.db.WithContext(queryCtx).
		Where("auto_generate_wo = ? AND status = ? AND next_maintenance IS NOT NULL",
			true, maintenance.AssetStatusActive).
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// hasOpenPMWorkOrder 检查资产是否已有 open/in-progress 的预防性维护工单
func (s *PMGeneratorService) hasOpenPMWorkOrder(ctx context.Context, assetID int64) (bool, error) {
	queryCtx, cancel := context.WithTimeout(ctx, repositoryCallTimeout)
	defer cancel()

	var count int64
	err := s.db.WithContext(queryCtx).
		Model(&maintenance.WorkOrder{}).
		Where("asset_id = ? AND type = ? AND status IN (?)",
			assetID,
			maintenance.WorkOrderTypePreventive,
			[]string{
				string(maintenance.WorkOrderStatusOpen),
				string(maintenance.WorkOrderStatusInProgress),
			}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// pmGenerationOutcome 单个资产的生成结果。工单创建成功后资产回写
// 失败不回滚，回写错误单独携带。
type pmGenerationOutcome struct {
	workOrderID    int64
	assetUpdateErr error
}

// generatePMWorkOrder 根据到期分类生成紧急或计划工单，并回写资产状态
func (s *PMGeneratorService) generatePMWorkOrder(
	ctx context.Context,
	asset *maintenance.Asset,
	eval DueEvaluation,
	runTime time.Time,
) (pmGenerationOutcome, error) {
	displayName := asset.DisplayName()

	var dto WorkOrderDTO
	var compliance maintenance.ComplianceStatus
	stampGeneratedAt := false

	switch eval.Classification {
	case DueStatusOverdue:
		dueDate := maintenance.MaintTime(runTime)
		dto = WorkOrderDTO{
			AssetID:        asset.ID,
			Title:          fmt.Sprintf("PM Overdue - %s", displayName),
			Description:    fmt.Sprintf("Preventive maintenance for %s is overdue by %d day(s). Urgent work order generated automatically.", displayName, eval.DaysOverdue),
			Type:           maintenance.WorkOrderTypePreventive,
			Priority:       maintenance.WorkOrderPriorityCritical,
			DueDate:        &dueDate,
			EstimatedHours: DefaultEstimatedHours,
			CreatedBy:      SystemAutoCreator,
		}
		compliance = maintenance.ComplianceStatusNonCompliant
	case DueStatusDueSoon:
		dto = WorkOrderDTO{
			AssetID:        asset.ID,
			Title:          fmt.Sprintf("PM Scheduled - %s", displayName),
			Description:    fmt.Sprintf("Preventive maintenance for %s is due on %s. Work order generated automatically.", displayName, time.Time(*asset.NextMaintenance).Format(time.DateOnly)),
			Type:           maintenance.WorkOrderTypePreventive,
			Priority:       maintenance.WorkOrderPriorityMedium,
			DueDate:        asset.NextMaintenance,
			EstimatedHours: DefaultEstimatedHours,
			CreatedBy:      SystemAutoCreator,
		}
		compliance = maintenance.ComplianceStatusNeedsAttention
		stampGeneratedAt = true
	default:
		return pmGenerationOutcome{}, fmt.Errorf("unexpected due classification: %s", eval.Classification)
	}

	workOrderID, err := s.workOrderSvc.CreateWorkOrder(ctx, dto)
	if err != nil {
		return pmGenerationOutcome{}, err
	}

	assetUpdateErr := s.updateAssetAfterGeneration(ctx, asset.ID, compliance, stampGeneratedAt, runTime)
	return pmGenerationOutcome{workOrderID: workOrderID, assetUpdateErr: assetUpdateErr}, nil
}

// updateAssetAfterGeneration 工单生成后的资产字段回写，尽力而为
func (s *PMGeneratorService) updateAssetAfterGeneration(
	ctx context.Context,
	assetID int64,
	compliance maintenance.ComplianceStatus,
	stampGeneratedAt bool,
	runTime time.Time,
) error {
	queryCtx, cancel := context.WithTimeout(ctx, repositoryCallTimeout)
	defer cancel()

	updates := map[string]interface{}{
		"compliance_status": compliance,
	}
	if stampGeneratedAt {
		updates["pm_last_generated_at"] = maintenance.MaintTime(runTime)
	}

	return s.db.WithContext(queryCtx).
		Model(&maintenance.Asset{}).
		Where("id = ?", assetID).
		Updates(updates).Error
}

// recordRunHistory 记录运行历史，写入失败只记日志
func (s *PMGeneratorService) recordRunHistory(summary *PMRunSummaryDTO, reason string) {
	history := maintenance.PMRunHistory{
		RunTime:             summary.RunTime,
		Result:              summary.Result,
		GeneratedCount:      summary.Generated,
		UrgentCount:         summary.Overdue,
		AssetUpdateFailures: summary.AssetUpdateFailures,
		Reason:              reason,
	}

	if err := s.db.Create(&history).Error; err != nil {
		s.logger.Error("Failed to record PM run history",
			zap.String("result", summary.Result),
			zap.Error(err))
	}
}

// publishRunSummary 发布单条运行汇总通知，整轮只发一条，不按资产逐条发
func (s *PMGeneratorService) publishRunSummary(summary *PMRunSummaryDTO) {
	payload, err := json.Marshal(summary)
	if err != nil {
		s.logger.Error("Failed to marshal PM run summary", zap.Error(err))
		return
	}
	if err := s.redisHandler.Pub(redis.PMNotificationsChannel, string(payload)); err != nil {
		s.logger.Warn("Failed to publish PM run summary notification", zap.Error(err))
	}
}

func (s *PMGeneratorService) storeLastRun(summary *PMRunSummaryDTO) {
	s.lastRunMux.Lock()
	s.lastRunResult = summary
	s.lastRunMux.Unlock()
}
