/*
Package maintenance 提供维护管理数据模型定义.
*/
package maintenance

// BaseModel 基础模型.
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`        // 主键ID
	CreatedAt MaintTime `gorm:"column:created_at;type:datetime"` // 创建时间
	UpdatedAt MaintTime `gorm:"column:updated_at;type:datetime"` // 更新时间
}
