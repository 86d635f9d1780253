package maintenance

import "fmt"

// AssetStatus 资产状态枚举
type AssetStatus string

const (
	AssetStatusActive      AssetStatus = "active"      // 在用
	AssetStatusInactive    AssetStatus = "inactive"    // 停用
	AssetStatusMaintenance AssetStatus = "maintenance" // 维护中
	AssetStatusRetired     AssetStatus = "retired"     // 已退役
)

// ComplianceStatus 维护合规状态枚举
type ComplianceStatus string

const (
	ComplianceStatusCompliant      ComplianceStatus = "compliant"       // 合规
	ComplianceStatusNeedsAttention ComplianceStatus = "needs-attention" // 需关注
	ComplianceStatusNonCompliant   ComplianceStatus = "non-compliant"   // 不合规
)

// PMScheduleType 预防性维护排期类型枚举
type PMScheduleType string

const (
	PMScheduleTypeDaily     PMScheduleType = "daily"     // 每日
	PMScheduleTypeWeekly    PMScheduleType = "weekly"    // 每周
	PMScheduleTypeMonthly   PMScheduleType = "monthly"   // 每月
	PMScheduleTypeQuarterly PMScheduleType = "quarterly" // 每季度
	PMScheduleTypeYearly    PMScheduleType = "yearly"    // 每年
	PMScheduleTypeCustom    PMScheduleType = "custom"    // 自定义间隔
)

// Asset 资产模型
type Asset struct {
	BaseModel
	Name              string           `gorm:"column:name;type:varchar(255)" json:"name"`                               // 资产名称
	SerialNumber      string           `gorm:"column:serial_number;type:varchar(100);unique" json:"serialNumber"`       // 序列号
	Location          string           `gorm:"column:location;type:varchar(255)" json:"location"`                       // 所在位置
	Status            AssetStatus      `gorm:"column:status;type:varchar(50)" json:"status"`                            // 资产状态
	AutoGenerateWO    bool             `gorm:"column:auto_generate_wo" json:"autoGenerateWo"`                           // 是否自动生成工单
	NextMaintenance   *MaintTime       `gorm:"column:next_maintenance;type:datetime" json:"nextMaintenance"`            // 下次维护日期
	PMScheduleType    PMScheduleType   `gorm:"column:pm_schedule_type;type:varchar(50)" json:"pmScheduleType"`          // 维护排期类型
	PMIntervalDays    int              `gorm:"column:pm_interval_days;type:int" json:"pmIntervalDays"`                  // 自定义维护间隔(天)
	ComplianceStatus  ComplianceStatus `gorm:"column:compliance_status;type:varchar(50)" json:"complianceStatus"`       // 维护合规状态
	PMLastGeneratedAt *MaintTime       `gorm:"column:pm_last_generated_at;type:datetime" json:"pmLastGeneratedAt"`      // 最近一次自动生成工单时间
	LastMaintenance   *MaintTime       `gorm:"column:last_maintenance;type:datetime" json:"lastMaintenance,omitempty"`  // 最近一次完成维护时间

	// 关联关系
	WorkOrders []WorkOrder `gorm:"foreignKey:AssetID" json:"workOrders,omitempty"` // 关联的工单列表
}

// TableName 指定表名
func (Asset) TableName() string {
	return "assets"
}

// DisplayName 返回资产的展示名称，名称为空时退化为资产ID
func (a *Asset) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.SerialNumber != "" {
		return a.SerialNumber
	}
	return fmt.Sprintf("asset-%d", a.ID)
}
