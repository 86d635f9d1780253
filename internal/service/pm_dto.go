package service

import "cmms-ng/models/maintenance"

// PMRunSummaryDTO PM生成任务单次运行汇总
type PMRunSummaryDTO struct {
	Generated           int                   `json:"generated"`           // 生成工单总数
	Overdue             int                   `json:"overdue"`             // 其中逾期(紧急)工单数
	GuardFailures       int                   `json:"guardFailures"`       // 重复检查失败而跳过的资产数
	GenerationFailures  int                   `json:"generationFailures"`  // 工单创建失败的资产数
	AssetUpdateFailures int                   `json:"assetUpdateFailures"` // 工单已创建但资产回写失败数
	Result              string                `json:"result"`              // 运行结果
	RunTime             maintenance.MaintTime `json:"runTime"`             // 运行时间
}

// PMStatusDTO PM生成任务状态
type PMStatusDTO struct {
	Running bool             `json:"running"`           // 是否正在运行
	LastRun *PMRunSummaryDTO `json:"lastRun,omitempty"` // 最近一次运行汇总
}

// PMRunHistoryItemDTO 运行历史列表项
type PMRunHistoryItemDTO struct {
	ID                  int64                 `json:"id"`
	RunTime             maintenance.MaintTime `json:"runTime"`
	Result              string                `json:"result"`
	GeneratedCount      int                   `json:"generatedCount"`
	UrgentCount         int                   `json:"urgentCount"`
	AssetUpdateFailures int                   `json:"assetUpdateFailures"`
	Reason              string                `json:"reason,omitempty"`
}

// WorkOrderDTO 创建工单的数据传输对象
type WorkOrderDTO struct {
	AssetID        int64                         `json:"assetId"`        // 关联资产ID
	Title          string                        `json:"title"`          // 工单标题
	Description    string                        `json:"description"`    // 工单描述
	Type           maintenance.WorkOrderType     `json:"type"`           // 工单类型
	Priority       maintenance.WorkOrderPriority `json:"priority"`       // 优先级
	DueDate        *maintenance.MaintTime        `json:"dueDate"`        // 截止时间
	EstimatedHours float64                       `json:"estimatedHours"` // 预估工时
	CreatedBy      string                        `json:"createdBy"`      // 创建人
}

// WorkOrderListItemDTO 工单列表项
type WorkOrderListItemDTO struct {
	ID              int64                         `json:"id"`
	WorkOrderNumber string                        `json:"workOrderNumber"`
	AssetID         int64                         `json:"assetId"`
	AssetName       string                        `json:"assetName,omitempty"`
	Title           string                        `json:"title"`
	Type            maintenance.WorkOrderType     `json:"type"`
	Status          maintenance.WorkOrderStatus   `json:"status"`
	Priority        maintenance.WorkOrderPriority `json:"priority"`
	DueDate         *maintenance.MaintTime        `json:"dueDate"`
	CreatedAt       maintenance.MaintTime         `json:"createdAt"`
}

// AssetListItemDTO 资产列表项
type AssetListItemDTO struct {
	ID               int64                        `json:"id"`
	Name             string                       `json:"name"`
	SerialNumber     string                       `json:"serialNumber"`
	Location         string                       `json:"location"`
	Status           maintenance.AssetStatus      `json:"status"`
	AutoGenerateWO   bool                         `json:"autoGenerateWo"`
	NextMaintenance  *maintenance.MaintTime       `json:"nextMaintenance"`
	ComplianceStatus maintenance.ComplianceStatus `json:"complianceStatus"`
}

// AssetDetailDTO 单个资产详情
type AssetDetailDTO struct {
	ID                int64                        `json:"id"`
	Name              string                       `json:"name"`
	SerialNumber      string                       `json:"serialNumber"`
	Location          string                       `json:"location"`
	Status            maintenance.AssetStatus      `json:"status"`
	AutoGenerateWO    bool                         `json:"autoGenerateWo"`
	NextMaintenance   *maintenance.MaintTime       `json:"nextMaintenance"`
	PMScheduleType    maintenance.PMScheduleType   `json:"pmScheduleType"`
	PMIntervalDays    int                          `json:"pmIntervalDays"`
	ComplianceStatus  maintenance.ComplianceStatus `json:"complianceStatus"`
	PMLastGeneratedAt *maintenance.MaintTime       `json:"pmLastGeneratedAt"`
	LastMaintenance   *maintenance.MaintTime       `json:"lastMaintenance,omitempty"`
	CreatedAt         maintenance.MaintTime        `json:"createdAt"`
}

// ComplianceStatsDTO 合规状态统计
type ComplianceStatsDTO struct {
	TotalAssets    int64 `json:"totalAssets"`    // 参与统计的在用资产数
	Compliant      int64 `json:"compliant"`      // 合规
	NeedsAttention int64 `json:"needsAttention"` // 需关注
	NonCompliant   int64 `json:"nonCompliant"`   // 不合规
	OverdueAssets  int64 `json:"overdueAssets"`  // 下次维护日期已过期的资产数
}
