package maintenance

// PMRunHistory 预防性维护生成任务执行历史
type PMRunHistory struct {
	BaseModel
	RunTime             MaintTime `gorm:"column:run_time;type:datetime" json:"runTime"`                   // 执行时间
	Result              string    `gorm:"column:result;type:varchar(50)" json:"result"`                   // 执行结果
	GeneratedCount      int       `gorm:"column:generated_count;type:int" json:"generatedCount"`          // 生成工单数
	UrgentCount         int       `gorm:"column:urgent_count;type:int" json:"urgentCount"`                // 其中紧急工单数
	AssetUpdateFailures int       `gorm:"column:asset_update_failures;type:int" json:"assetUpdateFailures"` // 资产回写失败数
	Reason              string    `gorm:"column:reason;type:text" json:"reason"`                          // 补充说明
}

// TableName 指定表名
func (PMRunHistory) TableName() string {
	return "pm_run_histories"
}
