package service

import (
	"errors"
	"fmt"
)

// 预算/目标核心操作的错误分类
// 全部为可恢复的业务错误，由 api 层映射到 HTTP 状态码；
// 存储层故障不在此列，按内部错误处理
var (
	// ErrInvalidAmount 金额非法（负数或零）
	ErrInvalidAmount = errors.New("金额必须大于0")
	// ErrInvalidMonth 月份格式非法，应为 2006-01
	ErrInvalidMonth = errors.New("月份格式错误，应为: 2006-01")
	// ErrUnknownCategory 类别不存在
	ErrUnknownCategory = errors.New("无效的交易类别")
	// ErrInvalidGoalModel 目标类型非法
	ErrInvalidGoalModel = errors.New("无效的目标类型，应为 annual 或 savings")
	// ErrDuplicateCategory 该类别预算已存在
	ErrDuplicateCategory = errors.New("该类别的预算已存在")
	// ErrDuplicateSalaryContribution 该目标当月已有工资转入
	ErrDuplicateSalaryContribution = errors.New("该目标当月已有一笔工资转入")
	// ErrInsufficientAvailableIncome 可用收入不足
	ErrInsufficientAvailableIncome = errors.New("当月可用收入不足")
	// ErrHasTransactions 类别下当月仍有交易记录
	ErrHasTransactions = errors.New("该类别当月仍有交易记录，不能删除")
	// ErrNotFound 记录不存在或不属于当前用户
	ErrNotFound = errors.New("记录不存在")
)

// InsufficientIncomeError 可用收入不足，携带实际可用金额方便调用方修正请求
type InsufficientIncomeError struct {
	Requested float64
	Available float64
}

func (e *InsufficientIncomeError) Error() string {
	return fmt.Sprintf("当月可用收入不足：请求 %.2f，可用 %.2f", e.Requested, e.Available)
}

// Unwrap 支持 errors.Is(err, ErrInsufficientAvailableIncome)
func (e *InsufficientIncomeError) Unwrap() error {
	return ErrInsufficientAvailableIncome
}
