package maintenance

// WorkOrderType 工单类型枚举
type WorkOrderType string

const (
	WorkOrderTypePreventive WorkOrderType = "preventive_maintenance" // 预防性维护
	WorkOrderTypeCorrective WorkOrderType = "corrective_maintenance" // 故障维修
	WorkOrderTypeInspection WorkOrderType = "inspection"             // 巡检
	// 可扩展更多类型...
)

// WorkOrderStatus 工单状态枚举
type WorkOrderStatus string

const (
	WorkOrderStatusOpen       WorkOrderStatus = "open"        // 待处理
	WorkOrderStatusInProgress WorkOrderStatus = "in-progress" // 处理中
	WorkOrderStatusCompleted  WorkOrderStatus = "completed"   // 已完成
	WorkOrderStatusCancelled  WorkOrderStatus = "cancelled"   // 已取消
)

// WorkOrderPriority 工单优先级枚举
type WorkOrderPriority string

const (
	WorkOrderPriorityCritical WorkOrderPriority = "critical" // 紧急
	WorkOrderPriorityHigh     WorkOrderPriority = "high"     // 高
	WorkOrderPriorityMedium   WorkOrderPriority = "medium"   // 中
	WorkOrderPriorityLow      WorkOrderPriority = "low"      // 低
)

// WorkOrder 工单模型
type WorkOrder struct {
	BaseModel
	WorkOrderNumber string            `gorm:"column:work_order_number;type:varchar(50);unique" json:"workOrderNumber"` // 唯一工单号
	AssetID         int64             `gorm:"column:asset_id;type:bigint;index" json:"assetId"`                        // 关联资产ID
	Title           string            `gorm:"column:title;type:varchar(255)" json:"title"`                             // 工单标题
	Description     string            `gorm:"column:description;type:text" json:"description"`                         // 工单描述
	Type            WorkOrderType     `gorm:"column:type;type:varchar(50)" json:"type"`                                // 工单类型
	Status          WorkOrderStatus   `gorm:"column:status;type:varchar(50)" json:"status"`                            // 工单状态
	Priority        WorkOrderPriority `gorm:"column:priority;type:varchar(50)" json:"priority"`                        // 优先级
	DueDate         *MaintTime        `gorm:"column:due_date;type:datetime" json:"dueDate"`                            // 截止时间
	EstimatedHours  float64           `gorm:"column:estimated_hours;type:decimal(10,2)" json:"estimatedHours"`         // 预估工时
	Executor        string            `gorm:"column:executor;type:varchar(100)" json:"executor"`                       // 执行人
	CreatedBy       string            `gorm:"column:created_by;type:varchar(100)" json:"createdBy"`                    // 创建人
	CompletionTime  *MaintTime        `gorm:"column:completion_time;type:datetime" json:"completionTime"`              // 完成时间
	FailureReason   string            `gorm:"column:failure_reason;type:text" json:"failureReason"`                    // 取消/失败原因

	// 关联关系
	Asset *Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"` // 关联的资产
}

// TableName 指定表名
func (WorkOrder) TableName() string {
	return "work_orders"
}
