package pm_report

import "cmms-ng/models/maintenance"

// AssetComplianceRow 报表中的单行资产合规数据
type AssetComplianceRow struct {
	AssetID          int64                        // 资产ID
	Name             string                       // 资产名称
	SerialNumber     string                       // 序列号
	Location         string                       // 位置
	ComplianceStatus maintenance.ComplianceStatus // 合规状态
	NextMaintenance  string                       // 下次维护日期
	DueStatus        string                       // 到期分类
	DaysOverdue      int                          // 逾期天数
	OpenPMWorkOrders int64                        // 未关闭的PM工单数
}

// ComplianceReport 完整的合规报表数据
type ComplianceReport struct {
	GeneratedAt    string               // 报表生成时间
	TotalAssets    int                  // 在用资产总数
	Compliant      int                  // 合规数
	NeedsAttention int                  // 需关注数
	NonCompliant   int                  // 不合规数
	OverdueAssets  int                  // 逾期资产数
	Rows           []AssetComplianceRow // 明细行
}
