package models

import (
	"time"

	"gorm.io/gorm"
)

// TotalBudget 月度总预算上限
// 每个用户每个自然月一条记录，只做 upsert，不做删除
type TotalBudget struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_total_budget_user_month"`
	Year      int            `json:"year" gorm:"not null;uniqueIndex:idx_total_budget_user_month"`
	Month     int            `json:"month" gorm:"not null;uniqueIndex:idx_total_budget_user_month"`
	Amount    float64        `json:"amount" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (TotalBudget) TableName() string {
	return "total_budgets"
}
