package models

import (
	"time"

	"gorm.io/gorm"
)

// 目标账户类型
const (
	GoalModelAnnual  = "annual"
	GoalModelSavings = "savings"
)

// IsValidGoalModel 校验目标类型是否合法
func IsValidGoalModel(m string) bool {
	return m == GoalModelAnnual || m == GoalModelSavings
}

// AnnualGoal 年度目标
// Current 只会单调递增，且任何时刻满足 Current <= TargetAmount
type AnnualGoal struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	UserID              uint           `json:"user_id" gorm:"index;not null"`
	Name                string         `json:"name" gorm:"size:100;not null"`
	Description         string         `json:"description" gorm:"size:255"`
	StartDate           time.Time      `json:"start_date"`
	EndDate             time.Time      `json:"end_date"`
	TargetAmount        float64        `json:"target_amount" gorm:"type:decimal(10,2);not null;default:0"`
	MonthlyContribution float64        `json:"monthly_contribution" gorm:"type:decimal(10,2);not null;default:0"` // 建议值，不会自动执行
	Current             float64        `json:"current" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
	User                User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (AnnualGoal) TableName() string {
	return "annual_goals"
}

// SavingsGoal 储蓄目标，与年度目标同构，单独成表
type SavingsGoal struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	UserID              uint           `json:"user_id" gorm:"index;not null"`
	Name                string         `json:"name" gorm:"size:100;not null"`
	Description         string         `json:"description" gorm:"size:255"`
	StartDate           time.Time      `json:"start_date"`
	EndDate             time.Time      `json:"end_date"`
	TargetAmount        float64        `json:"target_amount" gorm:"type:decimal(10,2);not null;default:0"`
	MonthlyContribution float64        `json:"monthly_contribution" gorm:"type:decimal(10,2);not null;default:0"` // 建议值，不会自动执行
	Current             float64        `json:"current" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
	User                User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (SavingsGoal) TableName() string {
	return "savings_goals"
}

// Progress 目标完成进度（0~100）
func (g *AnnualGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return g.Current / g.TargetAmount * 100
}

// Progress 目标完成进度（0~100）
func (g *SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return g.Current / g.TargetAmount * 100
}
