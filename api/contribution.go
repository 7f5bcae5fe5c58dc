package api

import (
	"strconv"

	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// ContributionHandler 目标划转处理器
type ContributionHandler struct {
	contributions *service.ContributionService
}

// NewContributionHandler 创建目标划转处理器
func NewContributionHandler() *ContributionHandler {
	return &ContributionHandler{contributions: service.NewContributionService()}
}

// CreateContributionRequest 创建工资转入请求
type CreateContributionRequest struct {
	GoalID    uint    `json:"goal_id" binding:"required" example:"1"`
	GoalModel string  `json:"goal_model" binding:"required" example:"savings"` // annual/savings
	Amount    float64 `json:"amount" binding:"required,gt=0" example:"500"`
	Month     string  `json:"month" binding:"required" example:"2024-06"`
}

// Create 创建一笔工资转入
// @Summary 创建工资转入
// @Description 从当月可用收入向目标划转。每个目标每月最多一笔工资转入；金额超过可用收入时拒绝；目标余额在目标金额处封顶
// @Tags 目标划转
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateContributionRequest true "划转信息"
// @Success 200 {object} Response{data=models.Contribution} "划转成功"
// @Failure 400 {object} Response "可用收入不足或参数错误"
// @Failure 404 {object} Response "目标不存在"
// @Failure 409 {object} Response "该目标当月已有工资转入"
// @Router /api/v1/contributions [post]
func (h *ContributionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	ct, err := h.contributions.CreateContribution(userID, req.GoalID, req.GoalModel, req.Amount, req.Month)
	if err != nil {
		ServiceError(c, err, "划转失败")
		return
	}

	SuccessWithMessage(c, "划转成功", ct)
}

// ListByGoal 查询某目标的转入流水
// @Summary 查询目标转入流水
// @Description 按时间倒序返回某目标的全部转入记录（含工资转入与手动补款）
// @Tags 目标划转
// @Produce json
// @Security BearerAuth
// @Param model path string true "目标类型：annual/savings"
// @Param id path int true "目标ID"
// @Success 200 {object} Response{data=[]models.Contribution} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/goals/{model}/{id}/contributions [get]
func (h *ContributionHandler) ListByGoal(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	model := c.Param("model")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	list, err := h.contributions.GetGoalContributions(userID, uint(id), model)
	if err != nil {
		ServiceError(c, err, "查询失败")
		return
	}

	Success(c, list)
}
