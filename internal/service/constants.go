package service

import "time"

// 通用常量
const (
	// 分页相关常量
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// PM 自动生成相关常量
const (
	// DueSoonWindowDays 即将到期窗口(天)，窗口边界日按即将到期处理
	DueSoonWindowDays = 7

	// DefaultEstimatedHours 自动生成工单的默认预估工时
	DefaultEstimatedHours = 4

	// SystemAutoCreator 自动生成工单的创建人标识
	SystemAutoCreator = "pm-auto-generator"

	// repositoryCallTimeout 单次数据库调用超时，避免后端挂起导致任务卡死
	repositoryCallTimeout = 5 * time.Second

	// pmRunLockTTL 跨实例运行锁的过期时间
	pmRunLockTTL = 5 * time.Minute
)

// PM 运行结果
const (
	PMRunResultCompleted           = "completed"               // 正常完成
	PMRunResultCompletedWithErrors = "completed_with_errors"   // 完成但存在单项失败
	PMRunResultSkippedRunning      = "skipped_already_running" // 进程内已有任务在执行
	PMRunResultSkippedLockHeld     = "skipped_lock_held"       // 其他实例持有运行锁
	PMRunResultLoadFailed          = "load_failed"             // 加载资产失败
)
