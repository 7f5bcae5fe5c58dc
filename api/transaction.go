package api

import (
	"strconv"
	"strings"
	"time"

	"budget/database"
	"budget/middleware"
	"budget/models"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 交易记录处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建交易记录处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// CreateTransactionRequest 创建交易记录请求
// 金额带符号：正数为收入，负数为支出
type CreateTransactionRequest struct {
	Amount          float64 `json:"amount" binding:"required" example:"-99.99"`
	Category        string  `json:"category" binding:"required" example:"餐饮"`
	Description     string  `json:"description" example:"午餐"`
	TransactionTime string  `json:"transaction_time" binding:"required" example:"2024-01-15 12:30:00"`
}

// UpdateTransactionRequest 更新交易记录请求
type UpdateTransactionRequest struct {
	Amount          *float64 `json:"amount"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	TransactionTime string   `json:"transaction_time"`
}

// TransactionListRequest 交易记录列表请求
type TransactionListRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
	Category  string `form:"category" example:"餐饮"`
	Kind      string `form:"kind" example:"expense"` // income/expense，不传则全部
	StartTime string `form:"start_time" example:"2024-01-01"`
	EndTime   string `form:"end_time" example:"2024-12-31"`
}

// checkCategory 校验类别是否在类别表中维护过
func checkCategory(name string) bool {
	var cat models.TransactionCategory
	return database.DB.Where("name = ?", name).First(&cat).Error == nil
}

// Create 创建交易记录
// @Summary 创建交易记录
// @Description 创建一条新的交易记录，正数金额为收入，负数为支出，不允许为0
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易记录信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.Amount == 0 {
		BadRequest(c, "金额不能为0")
		return
	}

	// 校验类别是否存在（来源于数据库）
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		BadRequest(c, "类别不能为空")
		return
	}
	if !checkCategory(req.Category) {
		BadRequest(c, "无效的交易类别，请先维护类别")
		return
	}

	// 解析时间
	transactionTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.TransactionTime, time.Local)
	if err != nil {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	transaction := models.Transaction{
		UserID:          userID,
		Amount:          req.Amount,
		Category:        req.Category,
		Description:     req.Description,
		TransactionTime: transactionTime,
	}

	if err := database.DB.Create(&transaction).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建交易记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", transaction)
}

// List 获取交易记录列表
// @Summary 获取交易记录列表
// @Description 获取当前用户的交易记录列表，支持分页、收支方向和类别筛选
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category query string false "类别筛选"
// @Param kind query string false "income（收入）/expense（支出）"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

	// 类别筛选
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	// 收支方向筛选
	switch req.Kind {
	case "income":
		query = query.Where("amount > 0")
	case "expense":
		query = query.Where("amount < 0")
	}

	// 时间范围筛选
	if req.StartTime != "" {
		startTime, err := time.ParseInLocation("2006-01-02", req.StartTime, time.Local)
		if err == nil {
			query = query.Where("transaction_time >= ?", startTime)
		}
	}
	if req.EndTime != "" {
		endTime, err := time.ParseInLocation("2006-01-02", req.EndTime, time.Local)
		if err == nil {
			// 包含结束日期当天
			endTime = endTime.Add(24*time.Hour - time.Second)
			query = query.Where("transaction_time <= ?", endTime)
		}
	}

	// 获取总数
	var total int64
	query.Count(&total)

	// 获取列表
	var transactions []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("transaction_time DESC").Offset(offset).Limit(req.PageSize).Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     transactions,
	})
}

// Get 获取单条交易记录
// @Summary 获取单条交易记录
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var transaction models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, transaction)
}

// Update 更新交易记录
// @Summary 更新交易记录
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Param request body UpdateTransactionRequest true "交易记录信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var transaction models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 更新字段
	updates := make(map[string]interface{})
	if req.Amount != nil {
		if *req.Amount == 0 {
			BadRequest(c, "金额不能为0")
			return
		}
		updates["amount"] = *req.Amount
	}
	if req.Category != "" {
		req.Category = strings.TrimSpace(req.Category)
		if !checkCategory(req.Category) {
			BadRequest(c, "无效的交易类别，请先维护类别")
			return
		}
		updates["category"] = req.Category
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.TransactionTime != "" {
		transactionTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.TransactionTime, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		updates["transaction_time"] = transactionTime
	}

	if err := database.DB.Model(&transaction).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	// 重新获取更新后的记录
	database.DB.First(&transaction, transaction.ID)
	SuccessWithMessage(c, "更新成功", transaction)
}

// Delete 删除交易记录
// @Summary 删除交易记录
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var transaction models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&transaction).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&transaction).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// GetCategories 获取交易类别列表
// @Summary 获取交易类别列表
// @Description 获取所有可用的交易类别，按排序字段升序排列
// @Tags 交易记录
// @Produce json
// @Success 200 {object} Response{data=[]models.TransactionCategory} "获取成功"
// @Failure 500 {object} Response "服务器内部错误"
// @Router /api/v1/categories [get]
func (h *TransactionHandler) GetCategories(c *gin.Context) {
	var list []models.TransactionCategory
	if err := database.DB.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}

// GetMonthStatistics 获取月度支出统计
// @Summary 获取月度支出统计
// @Description 按类别统计指定月份的支出，返回各类别金额与占比，适合绘制饼图
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param month query string true "月份（格式：2024-06）"
// @Success 200 {object} Response "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions/statistics [get]
func (h *TransactionHandler) GetMonthStatistics(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month := c.Query("month")
	if month == "" {
		BadRequest(c, "month参数必填（格式：2024-06）")
		return
	}
	startTime, err := time.ParseInLocation("2006-01", month, time.Local)
	if err != nil {
		BadRequest(c, "month格式错误，应为：2024-06")
		return
	}
	startTime = time.Date(startTime.Year(), startTime.Month(), 1, 0, 0, 0, 0, time.Local)
	endTime := startTime.AddDate(0, 1, 0).Add(-time.Second)

	// 当月支出总额（取绝对值）
	var totalExpense float64
	database.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(-amount), 0)").
		Where("user_id = ? AND amount < 0 AND transaction_time >= ? AND transaction_time <= ?",
			userID, startTime, endTime).
		Scan(&totalExpense)

	// 按类别统计
	type CategoryStat struct {
		Category   string  `json:"category"`
		Total      float64 `json:"total"`
		Count      int64   `json:"count"`
		Percentage float64 `json:"percentage"`
	}
	var categoryStats []CategoryStat

	database.DB.Model(&models.Transaction{}).
		Select("category, SUM(-amount) as total, COUNT(*) as count").
		Where("user_id = ? AND amount < 0 AND transaction_time >= ? AND transaction_time <= ?",
			userID, startTime, endTime).
		Group("category").
		Order("total DESC").
		Scan(&categoryStats)

	// 计算每个类别的占比
	for i := range categoryStats {
		if totalExpense > 0 {
			categoryStats[i].Percentage = (categoryStats[i].Total / totalExpense) * 100
		}
	}

	Success(c, gin.H{
		"month":          month,
		"total_expense":  totalExpense,
		"category_stats": categoryStats,
	})
}
