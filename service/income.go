package service

import (
	"budget/database"
	"budget/models"

	"gorm.io/gorm"
)

// IncomeSummary 月度收入汇总
type IncomeSummary struct {
	Month          string  `json:"month"`
	TotalIncome    float64 `json:"total_income"`    // 当月收入总额（正向交易求和）
	TotalAllocated float64 `json:"total_allocated"` // 当月已划转到目标的工资转入总额
	Available      float64 `json:"available"`       // max(0, 收入 - 已划转)
}

// IncomeService 收入分配服务
// 所有数值为读取时重新聚合的派生值，无副作用
type IncomeService struct{}

// NewIncomeService 创建收入分配服务
func NewIncomeService() *IncomeService {
	return &IncomeService{}
}

// GetIncomeSummary 计算指定月份的收入汇总
// Available 只在展示口径上钳为非负，不能阻止并发划转造成的实际超配
func (s *IncomeService) GetIncomeSummary(userID uint, month string) (*IncomeSummary, error) {
	return s.getIncomeSummary(database.DB, userID, month)
}

// getIncomeSummary 支持传入事务句柄，划转流程在同一事务内取最新值
func (s *IncomeService) getIncomeSummary(db *gorm.DB, userID uint, month string) (*IncomeSummary, error) {
	start, end, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}

	var totalIncome float64
	if err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND amount > 0 AND transaction_time >= ? AND transaction_time <= ?",
			userID, start, end).
		Scan(&totalIncome).Error; err != nil {
		return nil, err
	}

	var totalAllocated float64
	if err := db.Model(&models.Contribution{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND month = ? AND source = ?",
			userID, month, models.ContributionSourceSalary).
		Scan(&totalAllocated).Error; err != nil {
		return nil, err
	}

	available := totalIncome - totalAllocated
	if available < 0 {
		available = 0
	}

	return &IncomeSummary{
		Month:          month,
		TotalIncome:    totalIncome,
		TotalAllocated: totalAllocated,
		Available:      available,
	}, nil
}

// HasCurrentMonthIncome 当前自然月是否有收入记录
func (s *IncomeService) HasCurrentMonthIncome(userID uint) (bool, error) {
	summary, err := s.GetIncomeSummary(userID, CurrentMonth())
	if err != nil {
		return false, err
	}
	return summary.TotalIncome > 0, nil
}
