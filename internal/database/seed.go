package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"cmms-ng/models/maintenance"
)

// ClearAndSeedDatabase 清空现有数据并插入样例资产，用于本地开发与演示。
// 样例覆盖逾期、即将到期、未到期以及各种不参与自动生成的情况。
func ClearAndSeedDatabase(db *gorm.DB) error {
	log.Println("Starting database clearing and seeding...")

	tablesToClear := []string{
		"work_orders",      // 依赖 assets
		"pm_run_histories", // 独立
		"assets",           // 独立
	}

	log.Println("Clearing tables...")
	for _, table := range tablesToClear {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			log.Printf("Warning: failed to clear table %s: %v. Seeding might be incomplete.", table, err)
		}
	}

	now := time.Now()
	maintDate := func(t time.Time) *maintenance.MaintTime {
		mt := maintenance.MaintTime(t)
		return &mt
	}

	assets := []maintenance.Asset{
		{
			Name:             "中央空调主机组",
			SerialNumber:     "HVAC-001",
			Location:         "B1机房",
			Status:           maintenance.AssetStatusActive,
			AutoGenerateWO:   true,
			NextMaintenance:  maintDate(now.AddDate(0, 0, -9)), // 已逾期9天
			PMScheduleType:   maintenance.PMScheduleTypeMonthly,
			ComplianceStatus: maintenance.ComplianceStatusCompliant,
		},
		{
			Name:             "备用柴油发电机",
			SerialNumber:     "GEN-002",
			Location:         "地下车库",
			Status:           maintenance.AssetStatusActive,
			AutoGenerateWO:   true,
			NextMaintenance:  maintDate(now.AddDate(0, 0, 3)), // 3天后到期
			PMScheduleType:   maintenance.PMScheduleTypeQuarterly,
			ComplianceStatus: maintenance.ComplianceStatusCompliant,
		},
		{
			Name:             "客梯1号",
			SerialNumber:     "ELEV-003",
			Location:         "A座大堂",
			Status:           maintenance.AssetStatusActive,
			AutoGenerateWO:   true,
			NextMaintenance:  maintDate(now.AddDate(0, 0, 7)), // 窗口边界日
			PMScheduleType:   maintenance.PMScheduleTypeMonthly,
			ComplianceStatus: maintenance.ComplianceStatusCompliant,
		},
		{
			Name:             "消防水泵",
			SerialNumber:     "PUMP-004",
			Location:         "B1泵房",
			Status:           maintenance.AssetStatusActive,
			AutoGenerateWO:   true,
			NextMaintenance:  maintDate(now.AddDate(0, 0, 30)), // 未到期
			PMScheduleType:   maintenance.PMScheduleTypeYearly,
			ComplianceStatus: maintenance.ComplianceStatusCompliant,
		},
		{
			Name:             "老旧货梯",
			SerialNumber:     "ELEV-005",
			Location:         "C座后场",
			Status:           maintenance.AssetStatusActive,
			AutoGenerateWO:   false, // 不参与自动生成
			NextMaintenance:  maintDate(now.AddDate(0, 0, -30)),
			PMScheduleType:   maintenance.PMScheduleTypeMonthly,
			ComplianceStatus: maintenance.ComplianceStatusNonCompliant,
		},
		{
			Name:             "已退役冷却塔",
			SerialNumber:     "CT-006",
			Location:         "屋顶",
			Status:           maintenance.AssetStatusRetired, // 非在用
			AutoGenerateWO:   true,
			NextMaintenance:  maintDate(now.AddDate(0, 0, -60)),
			PMScheduleType:   maintenance.PMScheduleTypeMonthly,
			ComplianceStatus: maintenance.ComplianceStatusNonCompliant,
		},
		{
			Name:             "新装新风机组",
			SerialNumber:     "AHU-007",
			Location:         "A座屋面",
			Status:           maintenance.AssetStatusActive,
			AutoGenerateWO:   true,
			NextMaintenance:  nil, // 尚未排期
			PMScheduleType:   maintenance.PMScheduleTypeCustom,
			PMIntervalDays:   45,
			ComplianceStatus: maintenance.ComplianceStatusCompliant,
		},
	}

	log.Println("Seeding assets...")
	if err := db.Create(&assets).Error; err != nil {
		return fmt.Errorf("failed to seed assets: %w", err)
	}

	// 为消防水泵插入一条已完成的历史工单，已完成工单不阻塞后续自动生成
	completion := maintenance.MaintTime(now.AddDate(0, 0, -20))
	due := maintenance.MaintTime(now.AddDate(0, 0, -21))
	workOrder := maintenance.WorkOrder{
		WorkOrderNumber: "WO-" + now.AddDate(0, 0, -21).Format("20060102") + "-000001",
		AssetID:         assets[3].ID,
		Title:           "PM Scheduled - 消防水泵",
		Description:     "上一周期的预防性维护工单，已完成。",
		Type:            maintenance.WorkOrderTypePreventive,
		Status:          maintenance.WorkOrderStatusCompleted,
		Priority:        maintenance.WorkOrderPriorityMedium,
		DueDate:         &due,
		EstimatedHours:  4,
		CreatedBy:       "pm-auto-generator",
		CompletionTime:  &completion,
	}
	if err := db.Create(&workOrder).Error; err != nil {
		return fmt.Errorf("failed to seed work order: %w", err)
	}

	log.Println("Database seeding finished.")
	return nil
}
