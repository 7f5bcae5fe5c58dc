package service

import (
	"time"
)

// MonthLayout 月份字符串格式
const MonthLayout = "2006-01"

// ParseMonth 解析 2006-01 格式的月份，返回该自然月的起止时间
// 起点为当月1日 00:00:00，终点为当月最后一秒（与列表筛选口径一致）
func ParseMonth(month string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, month, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end, nil
}

// CurrentMonth 当前自然月，2006-01 格式
func CurrentMonth() string {
	return time.Now().Format(MonthLayout)
}
