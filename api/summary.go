package api

import (
	"time"

	"budget/database"
	"budget/middleware"
	"budget/models"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// SummaryHandler 汇总统计处理器
type SummaryHandler struct {
	budgets *service.BudgetService
	income  *service.IncomeService
}

// NewSummaryHandler 创建汇总统计处理器
func NewSummaryHandler() *SummaryHandler {
	return &SummaryHandler{
		budgets: service.NewBudgetService(),
		income:  service.NewIncomeService(),
	}
}

// GetIncomeSummary 获取月度收入汇总
// @Summary 获取月度收入汇总
// @Description 返回指定月份的收入总额、已划转到目标的金额以及可用余额（max(0, 收入-已划转)）。每次调用重新聚合，无副作用
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份（格式：2024-06），默认当前月"
// @Success 200 {object} Response{data=service.IncomeSummary} "获取成功"
// @Failure 400 {object} Response "月份格式错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/income [get]
func (h *SummaryHandler) GetIncomeSummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month := c.Query("month")
	if month == "" {
		month = service.CurrentMonth()
	}

	summary, err := h.income.GetIncomeSummary(userID, month)
	if err != nil {
		ServiceError(c, err, "查询收入汇总失败")
		return
	}

	Success(c, summary)
}

// HasCurrentMonthIncome 当月是否有收入
// @Summary 当月是否有收入
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/has-income [get]
func (h *SummaryHandler) HasCurrentMonthIncome(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	has, err := h.income.HasCurrentMonthIncome(userID)
	if err != nil {
		ServiceError(c, err, "查询失败")
		return
	}

	Success(c, gin.H{"has_income": has})
}

// goalOverview 月度总览中的目标条目
type goalOverview struct {
	ID              uint    `json:"id"`
	GoalModel       string  `json:"goal_model"`
	Name            string  `json:"name"`
	TargetAmount    float64 `json:"target_amount"`
	Current         float64 `json:"current"`
	SuggestedAmount float64 `json:"suggested_amount"` // 建议本月转入金额（取自 monthly_contribution，仅供参考）
}

// GetMonthOverview 获取月度预算总览
// @Summary 获取月度预算总览
// @Description 一次返回指定月份的总预算、分类预算（带已花费）、收入汇总以及各目标进度和建议转入金额
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份（格式：2024-06），默认当前月"
// @Success 200 {object} Response "获取成功"
// @Failure 400 {object} Response "月份格式错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/overview [get]
func (h *SummaryHandler) GetMonthOverview(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month := c.Query("month")
	if month == "" {
		month = service.CurrentMonth()
	}
	monthTime, err := time.ParseInLocation(service.MonthLayout, month, time.Local)
	if err != nil {
		BadRequest(c, service.ErrInvalidMonth.Error())
		return
	}

	totalBudget, err := h.budgets.GetTotalBudget(userID, monthTime.Year(), int(monthTime.Month()))
	if err != nil {
		ServiceError(c, err, "查询总预算失败")
		return
	}

	categoryBudgets, err := h.budgets.ListCategoryBudgets(userID, month)
	if err != nil {
		ServiceError(c, err, "查询分类预算失败")
		return
	}

	incomeSummary, err := h.income.GetIncomeSummary(userID, month)
	if err != nil {
		ServiceError(c, err, "查询收入汇总失败")
		return
	}

	// 目标进度与建议转入金额
	var goals []goalOverview
	var annualGoals []models.AnnualGoal
	if err := database.DB.Where("user_id = ?", userID).Find(&annualGoals).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询目标失败"))
		return
	}
	for _, g := range annualGoals {
		goals = append(goals, goalOverview{
			ID:              g.ID,
			GoalModel:       models.GoalModelAnnual,
			Name:            g.Name,
			TargetAmount:    g.TargetAmount,
			Current:         g.Current,
			SuggestedAmount: suggestedAmount(g.MonthlyContribution, g.TargetAmount, g.Current),
		})
	}
	var savingsGoals []models.SavingsGoal
	if err := database.DB.Where("user_id = ?", userID).Find(&savingsGoals).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询目标失败"))
		return
	}
	for _, g := range savingsGoals {
		goals = append(goals, goalOverview{
			ID:              g.ID,
			GoalModel:       models.GoalModelSavings,
			Name:            g.Name,
			TargetAmount:    g.TargetAmount,
			Current:         g.Current,
			SuggestedAmount: suggestedAmount(g.MonthlyContribution, g.TargetAmount, g.Current),
		})
	}

	Success(c, gin.H{
		"month":            month,
		"total_budget":     totalBudget,
		"category_budgets": categoryBudgets,
		"income_summary":   incomeSummary,
		"goals":            goals,
	})
}

// suggestedAmount 建议转入金额：建议值不超过距离目标的剩余缺口
func suggestedAmount(monthly, target, current float64) float64 {
	remaining := target - current
	if remaining <= 0 {
		return 0
	}
	if monthly > remaining {
		return remaining
	}
	return monthly
}
