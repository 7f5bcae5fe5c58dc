package models

import (
	"time"

	"gorm.io/gorm"
)

// 分类预算类型
const (
	BudgetTypeMonthly = "monthly"
	BudgetTypeAnnual  = "annual"
	BudgetTypeSavings = "savings"
)

// BudgetTypes 所有合法的预算类型
func BudgetTypes() []string {
	return []string{BudgetTypeMonthly, BudgetTypeAnnual, BudgetTypeSavings}
}

// IsValidBudgetType 校验预算类型是否合法
func IsValidBudgetType(t string) bool {
	switch t {
	case BudgetTypeMonthly, BudgetTypeAnnual, BudgetTypeSavings:
		return true
	}
	return false
}

// CategoryBudget 分类预算
// 每个用户每个（类别, 类型）组合一条记录
// Spent 为派生值：每次读取时从交易记录重新聚合，不落库
type CategoryBudget struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_category_budget_user_cat_type"`
	Category   string         `json:"category" gorm:"size:50;not null;uniqueIndex:idx_category_budget_user_cat_type"`
	BudgetType string         `json:"budget_type" gorm:"size:20;not null;default:monthly;uniqueIndex:idx_category_budget_user_cat_type"`
	Limit      float64        `json:"limit" gorm:"column:limit_amount;type:decimal(10,2);not null;default:0"`
	Color      string         `json:"color" gorm:"size:20;default:#64748b"` // 仅用于前端展示
	Spent      float64        `json:"spent" gorm:"-"`                       // 派生字段，读取时计算
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	User       User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (CategoryBudget) TableName() string {
	return "category_budgets"
}
