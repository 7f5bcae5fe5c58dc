package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction 交易记录模型
// 金额带符号：正数为收入，负数为支出，不允许为 0
type Transaction struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	Amount          float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category        string         `json:"category" gorm:"size:50;not null;index"`
	Description     string         `json:"description" gorm:"size:255"`
	TransactionTime time.Time      `json:"transaction_time" gorm:"not null;index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
	User            User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// IsIncome 是否为收入记录
func (t *Transaction) IsIncome() bool {
	return t.Amount > 0
}

// IsExpense 是否为支出记录
func (t *Transaction) IsExpense() bool {
	return t.Amount < 0
}
