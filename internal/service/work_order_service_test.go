package service_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cmms-ng/internal/service"
	"cmms-ng/models/maintenance"
)

func setupWorkOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := fmt.Sprintf("test_wo_db_%d.db", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&maintenance.Asset{}, &maintenance.WorkOrder{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())
		require.NoError(t, os.Remove(dbPath))
	})
	return db
}

func TestCreateWorkOrder(t *testing.T) {
	db := setupWorkOrderTestDB(t)
	svc := service.NewWorkOrderService(db, zap.NewNop())

	asset := maintenance.Asset{Name: "HVAC-001", SerialNumber: "SN-001", Status: maintenance.AssetStatusActive}
	require.NoError(t, db.Create(&asset).Error)

	due := maintenance.MaintTime(time.Now().AddDate(0, 0, 3))
	id, err := svc.CreateWorkOrder(context.Background(), service.WorkOrderDTO{
		AssetID:        asset.ID,
		Title:          "季度保养",
		Type:           maintenance.WorkOrderTypePreventive,
		Priority:       maintenance.WorkOrderPriorityMedium,
		DueDate:        &due,
		EstimatedHours: 4,
		CreatedBy:      "tester",
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	var wo maintenance.WorkOrder
	require.NoError(t, db.First(&wo, id).Error)
	// 新建工单总是待处理状态
	assert.Equal(t, maintenance.WorkOrderStatusOpen, wo.Status)
	assert.Regexp(t, `^WO-\d{8}-\d{6}$`, wo.WorkOrderNumber)
}

func TestCreateWorkOrderRequiresAsset(t *testing.T) {
	db := setupWorkOrderTestDB(t)
	svc := service.NewWorkOrderService(db, zap.NewNop())

	_, err := svc.CreateWorkOrder(context.Background(), service.WorkOrderDTO{Title: "无资产工单"})
	assert.Error(t, err)
}

func TestUpdateWorkOrderStatus(t *testing.T) {
	db := setupWorkOrderTestDB(t)
	svc := service.NewWorkOrderService(db, zap.NewNop())

	wo := maintenance.WorkOrder{
		WorkOrderNumber: "WO-20250110-000001",
		AssetID:         1,
		Title:           "测试工单",
		Type:            maintenance.WorkOrderTypePreventive,
		Status:          maintenance.WorkOrderStatusOpen,
		Priority:        maintenance.WorkOrderPriorityMedium,
	}
	require.NoError(t, db.Create(&wo).Error)

	err := svc.UpdateWorkOrderStatus(context.Background(), wo.ID, "completed", "张三", "")
	require.NoError(t, err)

	var updated maintenance.WorkOrder
	require.NoError(t, db.First(&updated, wo.ID).Error)
	assert.Equal(t, maintenance.WorkOrderStatusCompleted, updated.Status)
	assert.Equal(t, "张三", updated.Executor)
	assert.NotNil(t, updated.CompletionTime)

	// 非法状态被拒绝
	err = svc.UpdateWorkOrderStatus(context.Background(), wo.ID, "done", "", "")
	assert.Error(t, err)
}

func TestListWorkOrdersFilters(t *testing.T) {
	db := setupWorkOrderTestDB(t)
	svc := service.NewWorkOrderService(db, zap.NewNop())

	asset := maintenance.Asset{Name: "GEN-002", SerialNumber: "SN-002", Status: maintenance.AssetStatusActive}
	require.NoError(t, db.Create(&asset).Error)

	orders := []maintenance.WorkOrder{
		{WorkOrderNumber: "WO-20250110-000010", AssetID: asset.ID, Title: "PM工单", Type: maintenance.WorkOrderTypePreventive, Status: maintenance.WorkOrderStatusOpen, Priority: maintenance.WorkOrderPriorityMedium},
		{WorkOrderNumber: "WO-20250110-000011", AssetID: asset.ID, Title: "维修工单", Type: maintenance.WorkOrderTypeCorrective, Status: maintenance.WorkOrderStatusCompleted, Priority: maintenance.WorkOrderPriorityHigh},
	}
	require.NoError(t, db.Create(&orders).Error)

	items, total, err := svc.ListWorkOrders(context.Background(), asset.ID, "open", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "PM工单", items[0].Title)
	assert.Equal(t, "GEN-002", items[0].AssetName)

	items, total, err = svc.ListWorkOrders(context.Background(), 0, "", string(maintenance.WorkOrderTypeCorrective), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "维修工单", items[0].Title)
}
