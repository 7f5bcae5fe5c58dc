package service

import (
	"errors"

	"budget/database"
	"budget/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetService 预算服务：月度总预算上限 + 分类预算
//
// 注意职责边界：总预算上限与分类预算限额之和的校验（sum(limit) <= total）
// 由 api 层在写入前基于快照完成，本服务不做跨类别校验。
// 并发修改不同类别时快照可能过期，属于已知的 TOCTOU 窗口
type BudgetService struct{}

// NewBudgetService 创建预算服务
func NewBudgetService() *BudgetService {
	return &BudgetService{}
}

// SetTotalBudget 设置月度总预算上限（upsert）
// 调低上限不会回溯校验或等比缩放已有分类预算，由用户自行重新分配
func (s *BudgetService) SetTotalBudget(userID uint, year, month int, amount float64) (*models.TotalBudget, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	tb := models.TotalBudget{
		UserID: userID,
		Year:   year,
		Month:  month,
		Amount: amount,
	}
	// 唯一索引 (user_id, year, month) 上的原子 upsert
	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&tb).Error; err != nil {
		return nil, err
	}
	// Create 走了 upsert 分支时 ID 可能为旧记录的，重新读一次返回权威数据
	var saved models.TotalBudget
	if err := database.DB.Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetTotalBudget 查询月度总预算上限，未设置时返回金额为 0 的默认值
func (s *BudgetService) GetTotalBudget(userID uint, year, month int) (*models.TotalBudget, error) {
	var tb models.TotalBudget
	err := database.DB.Where("user_id = ? AND year = ? AND month = ?", userID, year, month).First(&tb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.TotalBudget{UserID: userID, Year: year, Month: month, Amount: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return &tb, nil
}

// CreateCategoryBudget 创建分类预算
// 不校验限额与总预算的关系（该校验在 api 层），只保证 (用户, 类别, 类型) 唯一
func (s *BudgetService) CreateCategoryBudget(userID uint, category, budgetType string, limit float64, color string) (*models.CategoryBudget, error) {
	if limit < 0 {
		return nil, ErrInvalidAmount
	}
	if budgetType == "" {
		budgetType = models.BudgetTypeMonthly
	}
	if !models.IsValidBudgetType(budgetType) {
		return nil, ErrInvalidGoalModel
	}

	// 类别必须在类别表中维护过
	var cat models.TransactionCategory
	if err := database.DB.Where("name = ?", category).First(&cat).Error; err != nil {
		return nil, ErrUnknownCategory
	}

	cb := models.CategoryBudget{
		UserID:     userID,
		Category:   category,
		BudgetType: budgetType,
		Limit:      limit,
		Color:      color,
	}
	if cb.Color == "" {
		cb.Color = cat.Color
	}
	if err := database.DB.Create(&cb).Error; err != nil {
		// 唯一索引 (user_id, category, budget_type) 冲突
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	return &cb, nil
}

// GetCategoryBudget 查询单条分类预算
func (s *BudgetService) GetCategoryBudget(userID, id uint) (*models.CategoryBudget, error) {
	var cb models.CategoryBudget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&cb).Error; err != nil {
		return nil, ErrNotFound
	}
	return &cb, nil
}

// UpdateCategoryBudget 覆盖分类预算限额
// 调用方需在调用前重新校验总预算约束，本方法不做跨类别校验
func (s *BudgetService) UpdateCategoryBudget(userID, id uint, limit float64) (*models.CategoryBudget, error) {
	if limit < 0 {
		return nil, ErrInvalidAmount
	}
	var cb models.CategoryBudget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&cb).Error; err != nil {
		return nil, ErrNotFound
	}
	if err := database.DB.Model(&cb).Update("limit_amount", limit).Error; err != nil {
		return nil, err
	}
	cb.Limit = limit
	return &cb, nil
}

// DeleteCategoryBudget 删除分类预算
// 当月该类别下仍有交易记录时拒绝删除，避免悄悄孤立消费历史
func (s *BudgetService) DeleteCategoryBudget(userID, id uint) error {
	var cb models.CategoryBudget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&cb).Error; err != nil {
		return ErrNotFound
	}

	start, end, err := ParseMonth(CurrentMonth())
	if err != nil {
		return err
	}
	var count int64
	if err := database.DB.Model(&models.Transaction{}).
		Where("user_id = ? AND category = ? AND transaction_time >= ? AND transaction_time <= ?",
			userID, cb.Category, start, end).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrHasTransactions
	}

	return database.DB.Delete(&cb).Error
}

// GetSpent 聚合某类别在指定月份的支出总额（取绝对值求和）
// 纯派生计算，每次调用都从交易表重新统计
func (s *BudgetService) GetSpent(userID uint, category, month string) (float64, error) {
	start, end, err := ParseMonth(month)
	if err != nil {
		return 0, err
	}
	var spent float64
	if err := database.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(-amount), 0)").
		Where("user_id = ? AND category = ? AND amount < 0 AND transaction_time >= ? AND transaction_time <= ?",
			userID, category, start, end).
		Scan(&spent).Error; err != nil {
		return 0, err
	}
	return spent, nil
}

// ListCategoryBudgets 查询用户全部分类预算，并为每条补充当月已花费金额
func (s *BudgetService) ListCategoryBudgets(userID uint, month string) ([]models.CategoryBudget, error) {
	var budgets []models.CategoryBudget
	if err := database.DB.Where("user_id = ?", userID).
		Order("budget_type ASC, category ASC").
		Find(&budgets).Error; err != nil {
		return nil, err
	}
	for i := range budgets {
		spent, err := s.GetSpent(userID, budgets[i].Category, month)
		if err != nil {
			return nil, err
		}
		budgets[i].Spent = spent
	}
	return budgets, nil
}

// SumMonthlyLimits 统计用户月度分类预算限额之和
// excludeID 非 0 时排除指定记录（用于更新前校验），供 api 层做总预算校验
func (s *BudgetService) SumMonthlyLimits(userID, excludeID uint) (float64, error) {
	query := database.DB.Model(&models.CategoryBudget{}).
		Select("COALESCE(SUM(limit_amount), 0)").
		Where("user_id = ? AND budget_type = ?", userID, models.BudgetTypeMonthly)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var sum float64
	if err := query.Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}
