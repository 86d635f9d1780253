package pm_report

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cmms-ng/internal/service"
	"cmms-ng/models/maintenance"
)

// 工作表与列名常量
const (
	sheetNameOverview = "合规概览"
	sheetNameDetail   = "资产明细"

	colAssetID         = "资产ID"
	colAssetName       = "资产名称"
	colSerialNumber    = "序列号"
	colLocation        = "位置"
	colCompliance      = "合规状态"
	colNextMaintenance = "下次维护日期"
	colDueStatus       = "到期分类"
	colDaysOverdue     = "逾期天数"
	colOpenWorkOrders  = "未关闭PM工单数"
)

var detailColumns = []string{
	colAssetID,
	colAssetName,
	colSerialNumber,
	colLocation,
	colCompliance,
	colNextMaintenance,
	colDueStatus,
	colDaysOverdue,
	colOpenWorkOrders,
}

// ExcelGenerator 生成PM合规Excel报表
type ExcelGenerator struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewExcelGenerator 创建Excel报表生成器
func NewExcelGenerator(db *gorm.DB, logger *zap.Logger) *ExcelGenerator {
	return &ExcelGenerator{db: db, logger: logger}
}

// Run 汇总在用资产的合规数据并写出Excel文件
func (g *ExcelGenerator) Run(ctx context.Context, outputPath string) (*ComplianceReport, error) {
	report, err := g.collect(ctx)
	if err != nil {
		return nil, err
	}

	if err := g.write(report, outputPath); err != nil {
		return nil, err
	}

	g.logger.Info("PM compliance report generated",
		zap.String("output", outputPath),
		zap.Int("assets", report.TotalAssets))

	return report, nil
}

// collect 查询资产并按到期状态汇总
func (g *ExcelGenerator) collect(ctx context.Context) (*ComplianceReport, error) {
	var assets []maintenance.Asset
	if err := g.db.WithContext(ctx).
		Where("status = ?", maintenance.AssetStatusActive).
		Order("id ASC").
		Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to load active assets: %w", err)
	}

	today := now.New(time.Now()).BeginningOfDay()
	report := &ComplianceReport{
		GeneratedAt: time.Now().Format(time.DateTime),
		TotalAssets: len(assets),
	}

	for i := range assets {
		asset := &assets[i]

		row := AssetComplianceRow{
			AssetID:          asset.ID,
			Name:             asset.DisplayName(),
			SerialNumber:     asset.SerialNumber,
			Location:         asset.Location,
			ComplianceStatus: asset.ComplianceStatus,
			DueStatus:        string(service.DueStatusNotDue),
		}

		switch asset.ComplianceStatus {
		case maintenance.ComplianceStatusCompliant:
			report.Compliant++
		case maintenance.ComplianceStatusNeedsAttention:
			report.NeedsAttention++
		case maintenance.ComplianceStatusNonCompliant:
			report.NonCompliant++
		}

		if asset.NextMaintenance != nil {
			nextMaintenance := time.Time(*asset.NextMaintenance)
			row.NextMaintenance = nextMaintenance.Format(time.DateOnly)

			eval := service.ClassifyDueDate(nextMaintenance, today, service.DueSoonWindowDays)
			row.DueStatus = string(eval.Classification)
			row.DaysOverdue = eval.DaysOverdue
			if eval.Classification == service.DueStatusOverdue {
				report.OverdueAssets++
			}
		}

		var openCount int64
		if err := g.db.WithContext(ctx).
			Model(&maintenance.WorkOrder{}).
			Where("asset_id = ? AND type = ? AND status IN (?)",
				asset.ID,
				maintenance.WorkOrderTypePreventive,
				[]string{
					string(maintenance.WorkOrderStatusOpen),
					string(maintenance.WorkOrderStatusInProgress),
				}).
			Count(&openCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count open PM work orders for asset %d: %w", asset.ID, err)
		}
		row.OpenPMWorkOrders = openCount

		report.Rows = append(report.Rows, row)
	}

	return report, nil
}

// write 写出两个工作表：合规概览与资产明细
func (g *ExcelGenerator) write(report *ComplianceReport, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	// 概览表
	if _, err := f.NewSheet(sheetNameOverview); err != nil {
		return fmt.Errorf("failed to create overview sheet: %w", err)
	}
	overviewRows := [][]interface{}{
		{"生成时间", report.GeneratedAt},
		{"在用资产总数", report.TotalAssets},
		{"合规", report.Compliant},
		{"需关注", report.NeedsAttention},
		{"不合规", report.NonCompliant},
		{"已逾期", report.OverdueAssets},
	}
	for i, row := range overviewRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetNameOverview, cell, &row); err != nil {
			return err
		}
	}

	// 明细表
	if _, err := f.NewSheet(sheetNameDetail); err != nil {
		return fmt.Errorf("failed to create detail sheet: %w", err)
	}
	header := make([]interface{}, len(detailColumns))
	for i, col := range detailColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetNameDetail, "A1", &header); err != nil {
		return err
	}
	for i, row := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.AssetID,
			row.Name,
			row.SerialNumber,
			row.Location,
			string(row.ComplianceStatus),
			row.NextMaintenance,
			row.DueStatus,
			row.DaysOverdue,
			row.OpenPMWorkOrders,
		}
		if err := f.SetSheetRow(sheetNameDetail, cell, &values); err != nil {
			return err
		}
	}

	// 删除默认工作表，概览表设为首页
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	index, err := f.GetSheetIndex(sheetNameOverview)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	return f.SaveAs(outputPath)
}
