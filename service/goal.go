package service

import (
	"errors"

	"budget/database"
	"budget/models"

	"gorm.io/gorm"
)

// GoalSnapshot 目标账户的统一视图（年度目标与储蓄目标同构）
type GoalSnapshot struct {
	ID                  uint    `json:"id"`
	GoalModel           string  `json:"goal_model"`
	Name                string  `json:"name"`
	TargetAmount        float64 `json:"target_amount"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	Current             float64 `json:"current"`
}

// GoalService 目标账户服务
// Current 的所有增量都经过 addFundsTx 的单条钳顶 UPDATE，
// 保证任何入口下都满足 current <= target_amount，且并发转入不丢失更新
type GoalService struct{}

// NewGoalService 创建目标账户服务
func NewGoalService() *GoalService {
	return &GoalService{}
}

// FindGoal 按类型查找目标账户
func (s *GoalService) FindGoal(userID uint, goalModel string, goalID uint) (*GoalSnapshot, error) {
	return s.findGoal(database.DB, userID, goalModel, goalID)
}

func (s *GoalService) findGoal(db *gorm.DB, userID uint, goalModel string, goalID uint) (*GoalSnapshot, error) {
	switch goalModel {
	case models.GoalModelAnnual:
		var g models.AnnualGoal
		if err := db.Where("id = ? AND user_id = ?", goalID, userID).First(&g).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return &GoalSnapshot{
			ID:                  g.ID,
			GoalModel:           models.GoalModelAnnual,
			Name:                g.Name,
			TargetAmount:        g.TargetAmount,
			MonthlyContribution: g.MonthlyContribution,
			Current:             g.Current,
		}, nil
	case models.GoalModelSavings:
		var g models.SavingsGoal
		if err := db.Where("id = ? AND user_id = ?", goalID, userID).First(&g).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return &GoalSnapshot{
			ID:                  g.ID,
			GoalModel:           models.GoalModelSavings,
			Name:                g.Name,
			TargetAmount:        g.TargetAmount,
			MonthlyContribution: g.MonthlyContribution,
			Current:             g.Current,
		}, nil
	default:
		return nil, ErrInvalidGoalModel
	}
}

// addFundsTx 目标余额的钳顶递增，目标不存在时返回 ErrNotFound
// 用单条 UPDATE 完成“读取-递增-钳顶”：LEAST(target_amount, current + ?)
// 由数据库原子执行，两笔并发转入不会互相覆盖，封顶只生效一次
func (s *GoalService) addFundsTx(tx *gorm.DB, userID uint, goalModel string, goalID uint, amount float64) error {
	// 先确认目标存在：余额已达上限时 UPDATE 影响行数为 0，不能用它判断存在性
	if _, err := s.findGoal(tx, userID, goalModel, goalID); err != nil {
		return err
	}

	expr := gorm.Expr("LEAST(target_amount, current + ?)", amount)
	switch goalModel {
	case models.GoalModelAnnual:
		return tx.Model(&models.AnnualGoal{}).
			Where("id = ? AND user_id = ?", goalID, userID).
			Update("current", expr).Error
	case models.GoalModelSavings:
		return tx.Model(&models.SavingsGoal{}).
			Where("id = ? AND user_id = ?", goalID, userID).
			Update("current", expr).Error
	default:
		return ErrInvalidGoalModel
	}
}

// AddFunds 手动补款
// 不受“每月一笔工资转入”约束，但同样走钳顶递增；
// 同时落一条 manual 来源的转入流水，保证余额变更有审计轨迹
func (s *GoalService) AddFunds(userID uint, goalModel string, goalID uint, amount float64) (*GoalSnapshot, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !models.IsValidGoalModel(goalModel) {
		return nil, ErrInvalidGoalModel
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.addFundsTx(tx, userID, goalModel, goalID, amount); err != nil {
			return err
		}
		ct := models.Contribution{
			UserID:    userID,
			GoalID:    goalID,
			GoalModel: goalModel,
			Amount:    amount,
			Source:    models.ContributionSourceManual,
			Month:     CurrentMonth(),
		}
		return tx.Create(&ct).Error
	})
	if err != nil {
		return nil, err
	}

	return s.FindGoal(userID, goalModel, goalID)
}
