package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestClassifyDueDate_Boundaries(t *testing.T) {
	today := date(2025, time.January, 10)

	tests := []struct {
		name           string
		next           time.Time
		classification DueClassification
		daysOverdue    int
	}{
		{"equal to today is due soon", today, DueStatusDueSoon, 0},
		{"one day past is overdue by 1", date(2025, time.January, 9), DueStatusOverdue, 1},
		{"window boundary day is due soon", date(2025, time.January, 17), DueStatusDueSoon, 0},
		{"one day past window is not due", date(2025, time.January, 18), DueStatusNotDue, 0},
		{"nine days past is overdue by 9", date(2025, time.January, 1), DueStatusOverdue, 9},
		{"far future is not due", date(2025, time.March, 1), DueStatusNotDue, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := ClassifyDueDate(tt.next, today, DueSoonWindowDays)
			assert.Equal(t, tt.classification, eval.Classification)
			assert.Equal(t, tt.daysOverdue, eval.DaysOverdue)
		})
	}
}

func TestClassifyDueDate_TruncatesToMidnight(t *testing.T) {
	// 同一天的不同时刻不应产生差一天的结果
	today := time.Date(2025, time.January, 10, 23, 30, 0, 0, time.Local)
	next := time.Date(2025, time.January, 10, 1, 15, 0, 0, time.Local)

	eval := ClassifyDueDate(next, today, DueSoonWindowDays)
	assert.Equal(t, DueStatusDueSoon, eval.Classification)
	assert.Equal(t, 0, eval.DaysOverdue)

	// 前一天深夜仍然是逾期1天
	previousEvening := time.Date(2025, time.January, 9, 23, 59, 0, 0, time.Local)
	eval = ClassifyDueDate(previousEvening, today, DueSoonWindowDays)
	assert.Equal(t, DueStatusOverdue, eval.Classification)
	assert.Equal(t, 1, eval.DaysOverdue)
}

func TestClassifyDueDate_DaylightSavingTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	// 2025-03-09 凌晨进入夏令时，3月8日零点到3月10日零点只有47小时，
	// 逾期天数按日历日计算，仍然是2天
	today := time.Date(2025, time.March, 10, 0, 0, 0, 0, loc)
	next := time.Date(2025, time.March, 8, 0, 0, 0, 0, loc)

	eval := ClassifyDueDate(next, today, DueSoonWindowDays)
	assert.Equal(t, DueStatusOverdue, eval.Classification)
	assert.Equal(t, 2, eval.DaysOverdue)

	// 秋季切换日有25小时，同样不应多算一天
	today = time.Date(2025, time.November, 3, 0, 0, 0, 0, loc)
	next = time.Date(2025, time.November, 1, 0, 0, 0, 0, loc)

	eval = ClassifyDueDate(next, today, DueSoonWindowDays)
	assert.Equal(t, DueStatusOverdue, eval.Classification)
	assert.Equal(t, 2, eval.DaysOverdue)
}

func TestClassifyDueDate_CustomWindow(t *testing.T) {
	today := date(2025, time.June, 1)

	eval := ClassifyDueDate(date(2025, time.June, 4), today, 3)
	assert.Equal(t, DueStatusDueSoon, eval.Classification)

	eval = ClassifyDueDate(date(2025, time.June, 5), today, 3)
	assert.Equal(t, DueStatusNotDue, eval.Classification)
}
