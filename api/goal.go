package api

import (
	"strconv"
	"time"

	"budget/database"
	"budget/middleware"
	"budget/models"
	"budget/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GoalHandler 目标账户处理器（年度目标/储蓄目标）
type GoalHandler struct {
	goals *service.GoalService
}

// NewGoalHandler 创建目标账户处理器
func NewGoalHandler() *GoalHandler {
	return &GoalHandler{goals: service.NewGoalService()}
}

// CreateGoalRequest 创建目标请求
type CreateGoalRequest struct {
	Name                string  `json:"name" binding:"required,max=100" example:"旅行基金"`
	Description         string  `json:"description" example:"明年夏天的旅行"`
	StartDate           string  `json:"start_date" example:"2024-01-01"`
	EndDate             string  `json:"end_date" example:"2024-12-31"`
	TargetAmount        float64 `json:"target_amount" binding:"required,gt=0" example:"10000"`
	MonthlyContribution float64 `json:"monthly_contribution" binding:"min=0" example:"800"` // 建议每月转入金额，不会自动执行
}

// AddFundsRequest 手动补款请求
type AddFundsRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"500"`
}

// goalModelParam 解析并校验路径中的目标类型
func goalModelParam(c *gin.Context) (string, bool) {
	model := c.Param("model")
	if !models.IsValidGoalModel(model) {
		BadRequest(c, "无效的目标类型，应为 annual 或 savings")
		return "", false
	}
	return model, true
}

// Create 创建目标
// @Summary 创建目标
// @Description 创建年度目标或储蓄目标。monthly_contribution 仅为建议值，不会自动划转
// @Tags 目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param model path string true "目标类型：annual/savings"
// @Param request body CreateGoalRequest true "目标信息"
// @Success 200 {object} Response "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/goals/{model} [post]
func (h *GoalHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	model, ok := goalModelParam(c)
	if !ok {
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var startDate, endDate time.Time
	var err error
	if req.StartDate != "" {
		if startDate, err = time.ParseInLocation("2006-01-02", req.StartDate, time.Local); err != nil {
			BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
			return
		}
	}
	if req.EndDate != "" {
		if endDate, err = time.ParseInLocation("2006-01-02", req.EndDate, time.Local); err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
			return
		}
	}

	if model == models.GoalModelAnnual {
		goal := models.AnnualGoal{
			UserID:              userID,
			Name:                req.Name,
			Description:         req.Description,
			StartDate:           startDate,
			EndDate:             endDate,
			TargetAmount:        req.TargetAmount,
			MonthlyContribution: req.MonthlyContribution,
		}
		if err := database.DB.Create(&goal).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "创建目标失败"))
			return
		}
		SuccessWithMessage(c, "创建成功", goal)
		return
	}

	goal := models.SavingsGoal{
		UserID:              userID,
		Name:                req.Name,
		Description:         req.Description,
		StartDate:           startDate,
		EndDate:             endDate,
		TargetAmount:        req.TargetAmount,
		MonthlyContribution: req.MonthlyContribution,
	}
	if err := database.DB.Create(&goal).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建目标失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", goal)
}

// List 获取目标列表
// @Summary 获取目标列表
// @Tags 目标
// @Produce json
// @Security BearerAuth
// @Param model path string true "目标类型：annual/savings"
// @Success 200 {object} Response "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/goals/{model} [get]
func (h *GoalHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	model, ok := goalModelParam(c)
	if !ok {
		return
	}

	if model == models.GoalModelAnnual {
		var goals []models.AnnualGoal
		if err := database.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&goals).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
			return
		}
		Success(c, goals)
		return
	}

	var goals []models.SavingsGoal
	if err := database.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&goals).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, goals)
}

// Get 获取单个目标
// @Summary 获取单个目标
// @Tags 目标
// @Produce json
// @Security BearerAuth
// @Param model path string true "目标类型：annual/savings"
// @Param id path int true "目标ID"
// @Success 200 {object} Response{data=service.GoalSnapshot} "获取成功"
// @Failure 404 {object} Response "目标不存在"
// @Router /api/v1/goals/{model}/{id} [get]
func (h *GoalHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	model, ok := goalModelParam(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	goal, err := h.goals.FindGoal(userID, model, uint(id))
	if err != nil {
		ServiceError(c, err, "查询目标失败")
		return
	}

	Success(c, goal)
}

// Delete 删除目标
// @Summary 删除目标
// @Tags 目标
// @Produce json
// @Security BearerAuth
// @Param model path string true "目标类型：annual/savings"
// @Param id path int true "目标ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "目标不存在"
// @Router /api/v1/goals/{model}/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	model, ok := goalModelParam(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var result *gorm.DB
	if model == models.GoalModelAnnual {
		result = database.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.AnnualGoal{})
	} else {
		result = database.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.SavingsGoal{})
	}
	if result.Error != nil {
		InternalError(c, SafeErrorMessage(result.Error, "删除失败"))
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "目标不存在")
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// AddFunds 手动补款
// @Summary 手动补款
// @Description 直接向目标余额补款，不受“每月一笔工资转入”限制，余额在目标金额处封顶
// @Tags 目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param model path string true "目标类型：annual/savings"
// @Param id path int true "目标ID"
// @Param request body AddFundsRequest true "补款金额"
// @Success 200 {object} Response{data=service.GoalSnapshot} "补款成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "目标不存在"
// @Router /api/v1/goals/{model}/{id}/add-funds [post]
func (h *GoalHandler) AddFunds(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	model, ok := goalModelParam(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	goal, err := h.goals.AddFunds(userID, model, uint(id), req.Amount)
	if err != nil {
		ServiceError(c, err, "补款失败")
		return
	}

	SuccessWithMessage(c, "补款成功", goal)
}
