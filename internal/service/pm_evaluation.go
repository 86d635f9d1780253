package service

import (
	"time"

	"github.com/jinzhu/now"
)

// DueClassification 资产维护到期分类
type DueClassification string

const (
	DueStatusNotDue  DueClassification = "not_due"  // 未到期
	DueStatusDueSoon DueClassification = "due_soon" // 即将到期
	DueStatusOverdue DueClassification = "overdue"  // 已逾期
)

// DueEvaluation 到期分类结果
type DueEvaluation struct {
	Classification DueClassification // 分类
	DaysOverdue    int               // 逾期天数，仅 overdue 时非零
}

// ClassifyDueDate 根据下次维护日期与评估日分类资产的到期状态。
// today 由调用方传入，评估器内部不读取时钟；两个日期都先截断到当日零点，
// 避免同一天不同时刻产生差一天的结果。窗口边界日（today+windowDays）按
// due_soon 处理，等于 today 的日期同样是 due_soon 而不是 overdue。
func ClassifyDueDate(nextMaintenance time.Time, today time.Time, windowDays int) DueEvaluation {
	next := now.New(nextMaintenance).BeginningOfDay()
	day := now.New(today).BeginningOfDay()

	if next.Before(day) {
		return DueEvaluation{Classification: DueStatusOverdue, DaysOverdue: calendarDaysBetween(next, day)}
	}

	if !next.After(day.AddDate(0, 0, windowDays)) {
		return DueEvaluation{Classification: DueStatusDueSoon}
	}

	return DueEvaluation{Classification: DueStatusNotDue}
}

// calendarDaysBetween 计算两个零点时刻之间的日历天数。
// 先把两个日期归一化到UTC零点再相减，夏令时造成的23/25小时天不影响计数。
func calendarDaysBetween(from, to time.Time) int {
	fromUTC := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toUTC := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toUTC.Sub(fromUTC).Hours() / 24)
}
