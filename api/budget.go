package api

import (
	"fmt"
	"strconv"
	"time"

	"budget/middleware"
	"budget/models"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct {
	budgets *service.BudgetService
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{budgets: service.NewBudgetService()}
}

// SetTotalBudgetRequest 设置总预算请求
type SetTotalBudgetRequest struct {
	Year   int     `json:"year" binding:"required,min=2000,max=2100" example:"2024"`
	Month  int     `json:"month" binding:"required,min=1,max=12" example:"6"`
	Amount float64 `json:"amount" binding:"min=0" example:"5000"`
}

// CreateCategoryBudgetRequest 创建分类预算请求
type CreateCategoryBudgetRequest struct {
	Category   string  `json:"category" binding:"required" example:"餐饮"`
	BudgetType string  `json:"budget_type" example:"monthly"` // monthly/annual/savings，默认 monthly
	Limit      float64 `json:"limit" binding:"min=0" example:"800"`
	Color      string  `json:"color" example:"#ef4444"`
}

// UpdateCategoryBudgetRequest 更新分类预算请求
type UpdateCategoryBudgetRequest struct {
	Limit float64 `json:"limit" binding:"min=0" example:"600"`
}

// SetTotalBudget 设置月度总预算上限
// @Summary 设置月度总预算上限
// @Description 按 (年, 月) upsert 总预算上限。调低上限不会自动缩放已有分类预算，需要用户自行重新分配
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetTotalBudgetRequest true "总预算信息"
// @Success 200 {object} Response{data=models.TotalBudget} "设置成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets/total [put]
func (h *BudgetHandler) SetTotalBudget(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req SetTotalBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	tb, err := h.budgets.SetTotalBudget(userID, req.Year, req.Month, req.Amount)
	if err != nil {
		ServiceError(c, err, "设置总预算失败")
		return
	}

	SuccessWithMessage(c, "设置成功", tb)
}

// GetTotalBudget 查询月度总预算上限
// @Summary 查询月度总预算上限
// @Description 查询指定月份的总预算上限，未设置时返回金额为0的默认值。不传参数默认当前月
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param year query int false "年份，默认当前年"
// @Param month query int false "月份，默认当前月"
// @Success 200 {object} Response{data=models.TotalBudget} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets/total [get]
func (h *BudgetHandler) GetTotalBudget(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if y := c.Query("year"); y != "" {
		if v, err := strconv.Atoi(y); err == nil {
			year = v
		}
	}
	if m := c.Query("month"); m != "" {
		if v, err := strconv.Atoi(m); err == nil && v >= 1 && v <= 12 {
			month = v
		}
	}

	tb, err := h.budgets.GetTotalBudget(userID, year, month)
	if err != nil {
		ServiceError(c, err, "查询总预算失败")
		return
	}

	Success(c, tb)
}

// checkCeiling 总预算校验：全部月度分类预算限额之和不得超过总预算上限
// 这一校验属于编排层职责，ledger 本身不做跨类别校验；
// 校验基于快照读取，并发修改不同类别时存在已知的 TOCTOU 窗口
func (h *BudgetHandler) checkCeiling(c *gin.Context, userID, excludeID uint, newLimit float64) bool {
	now := time.Now()
	tb, err := h.budgets.GetTotalBudget(userID, now.Year(), int(now.Month()))
	if err != nil {
		ServiceError(c, err, "查询总预算失败")
		return false
	}
	// 未设置总预算时不限制
	if tb.Amount <= 0 {
		return true
	}

	sum, err := h.budgets.SumMonthlyLimits(userID, excludeID)
	if err != nil {
		ServiceError(c, err, "统计分类预算失败")
		return false
	}
	if sum+newLimit > tb.Amount {
		BadRequest(c, fmt.Sprintf("分类预算总和 %.2f 超过总预算上限 %.2f", sum+newLimit, tb.Amount))
		return false
	}
	return true
}

// CreateCategoryBudget 创建分类预算
// @Summary 创建分类预算
// @Description 为某类别创建预算限额。月度类型会先校验全部月度限额之和不超过总预算上限
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryBudgetRequest true "分类预算信息"
// @Success 200 {object} Response{data=models.CategoryBudget} "创建成功"
// @Failure 400 {object} Response "请求参数错误或超过总预算"
// @Failure 409 {object} Response "该类别预算已存在"
// @Router /api/v1/budgets/categories [post]
func (h *BudgetHandler) CreateCategoryBudget(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateCategoryBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.BudgetType == "" {
		req.BudgetType = models.BudgetTypeMonthly
	}

	// 总预算校验只约束月度预算
	if req.BudgetType == models.BudgetTypeMonthly {
		if !h.checkCeiling(c, userID, 0, req.Limit) {
			return
		}
	}

	cb, err := h.budgets.CreateCategoryBudget(userID, req.Category, req.BudgetType, req.Limit, req.Color)
	if err != nil {
		ServiceError(c, err, "创建分类预算失败")
		return
	}

	SuccessWithMessage(c, "创建成功", cb)
}

// ListCategoryBudgets 获取分类预算列表
// @Summary 获取分类预算列表
// @Description 返回当前用户全部分类预算，带指定月份的已花费金额（每次读取重新聚合）
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份（格式：2024-06），默认当前月"
// @Success 200 {object} Response{data=[]models.CategoryBudget} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets/categories [get]
func (h *BudgetHandler) ListCategoryBudgets(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month := c.Query("month")
	if month == "" {
		month = service.CurrentMonth()
	}

	budgets, err := h.budgets.ListCategoryBudgets(userID, month)
	if err != nil {
		ServiceError(c, err, "查询分类预算失败")
		return
	}

	Success(c, budgets)
}

// UpdateCategoryBudget 更新分类预算限额
// @Summary 更新分类预算限额
// @Description 月度类型会重新校验全部月度限额之和不超过总预算上限，年度与储蓄类型不参与该校验
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类预算ID"
// @Param request body UpdateCategoryBudgetRequest true "新限额"
// @Success 200 {object} Response{data=models.CategoryBudget} "更新成功"
// @Failure 400 {object} Response "请求参数错误或超过总预算"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/budgets/categories/{id} [put]
func (h *BudgetHandler) UpdateCategoryBudget(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var req UpdateCategoryBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	existing, err := h.budgets.GetCategoryBudget(userID, uint(id))
	if err != nil {
		ServiceError(c, err, "查询分类预算失败")
		return
	}

	// 与创建时一致：总预算校验只约束月度预算，排除本条记录旧值
	if existing.BudgetType == models.BudgetTypeMonthly {
		if !h.checkCeiling(c, userID, uint(id), req.Limit) {
			return
		}
	}

	cb, err := h.budgets.UpdateCategoryBudget(userID, uint(id), req.Limit)
	if err != nil {
		ServiceError(c, err, "更新分类预算失败")
		return
	}

	SuccessWithMessage(c, "更新成功", cb)
}

// DeleteCategoryBudget 删除分类预算
// @Summary 删除分类预算
// @Description 当月该类别下仍有交易记录时拒绝删除
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "该类别当月仍有交易记录"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/budgets/categories/{id} [delete]
func (h *BudgetHandler) DeleteCategoryBudget(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	if err := h.budgets.DeleteCategoryBudget(userID, uint(id)); err != nil {
		ServiceError(c, err, "删除分类预算失败")
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
