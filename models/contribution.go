package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// 转入来源
const (
	ContributionSourceSalary = "salary" // 从当月可用收入划转，每个目标每月最多一笔
	ContributionSourceManual = "manual" // 手动补款，不受每月一笔限制
)

// Contribution 目标转入流水
// 只增不改：每条记录对应目标账户 Current 的一次变更，构成审计轨迹
//
// SalaryKey 承载“每个目标每月最多一笔工资转入”的存储级唯一约束：
// salary 来源的记录写入 "goalModel:goalID:month"，manual 来源写 NULL。
// MySQL 唯一索引允许多个 NULL，因此约束只作用于 salary 记录，
// 并发写入时由唯一索引保证恰好一个成功
type Contribution struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	GoalID    uint           `json:"goal_id" gorm:"index;not null"`
	GoalModel string         `json:"goal_model" gorm:"size:20;not null"` // annual/savings
	Amount    float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Source    string         `json:"source" gorm:"size:20;not null"` // salary/manual
	Month     string         `json:"month" gorm:"size:7;not null;index"`
	SalaryKey *string        `json:"-" gorm:"size:64;uniqueIndex"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Contribution) TableName() string {
	return "contributions"
}

// BuildSalaryKey 构造工资转入的唯一键
func BuildSalaryKey(goalModel string, goalID uint, month string) string {
	return fmt.Sprintf("%s:%d:%s", goalModel, goalID, month)
}

// BeforeCreate 写入前补齐唯一键：仅 salary 来源需要
func (ct *Contribution) BeforeCreate(tx *gorm.DB) error {
	if ct.Source == ContributionSourceSalary && ct.SalaryKey == nil {
		key := BuildSalaryKey(ct.GoalModel, ct.GoalID, ct.Month)
		ct.SalaryKey = &key
	}
	return nil
}
