package service

import (
	"errors"

	"budget/database"
	"budget/models"

	"gorm.io/gorm"
)

// ContributionService 目标划转服务：从当月可用收入向目标账户的单向转账
type ContributionService struct {
	income *IncomeService
	goals  *GoalService
}

// NewContributionService 创建目标划转服务
func NewContributionService() *ContributionService {
	return &ContributionService{
		income: NewIncomeService(),
		goals:  NewGoalService(),
	}
}

// CreateContribution 创建一笔工资转入
//
// 在同一个数据库事务内完成：可用收入校验（取事务内最新聚合值）、
// 流水写入、目标余额的钳顶递增。任何一步失败整体回滚，
// 不会出现有流水没余额或有余额没流水的中间态。
//
// “每个目标每月最多一笔工资转入”由 contributions.salary_key 上的
// 唯一索引兜底：并发双写时恰好一个成功，落败方从存储冲突拿到
// ErrDuplicateSalaryContribution，而不是依赖先查后写的应用级检查。
//
// 可用收入校验本身未跨实例串行化：两笔并发划转都可能通过校验导致
// 当月超配。超配被容忍，展示口径把可用额钳为 0，不在此处硬阻断
func (s *ContributionService) CreateContribution(userID, goalID uint, goalModel string, amount float64, month string) (*models.Contribution, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !models.IsValidGoalModel(goalModel) {
		return nil, ErrInvalidGoalModel
	}
	if _, _, err := ParseMonth(month); err != nil {
		return nil, err
	}

	var created models.Contribution
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// 目标必须存在且属于当前用户
		if _, err := s.goals.findGoal(tx, userID, goalModel, goalID); err != nil {
			return err
		}

		// 事务内重新聚合可用收入，不信任调用方携带的旧值
		summary, err := s.income.getIncomeSummary(tx, userID, month)
		if err != nil {
			return err
		}
		if amount > summary.Available {
			return &InsufficientIncomeError{Requested: amount, Available: summary.Available}
		}

		created = models.Contribution{
			UserID:    userID,
			GoalID:    goalID,
			GoalModel: goalModel,
			Amount:    amount,
			Source:    models.ContributionSourceSalary,
			Month:     month,
		}
		if err := tx.Create(&created).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateSalaryContribution
			}
			return err
		}

		// 钳顶递增目标余额；失败则整个事务回滚，流水不会孤立存在
		return s.goals.addFundsTx(tx, userID, goalModel, goalID, amount)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetGoalContributions 查询某目标的全部转入流水，按时间倒序
func (s *ContributionService) GetGoalContributions(userID, goalID uint, goalModel string) ([]models.Contribution, error) {
	if !models.IsValidGoalModel(goalModel) {
		return nil, ErrInvalidGoalModel
	}
	var list []models.Contribution
	if err := database.DB.
		Where("user_id = ? AND goal_id = ? AND goal_model = ?", userID, goalID, goalModel).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
