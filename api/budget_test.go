package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalBudgetRows(id uint, year, month int, amount float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "year", "month", "amount", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, 1, year, month, amount, time.Now(), time.Now(), nil)
}

func TestBudgetHandler_SetTotalBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// upsert 走事务 + ON DUPLICATE KEY UPDATE
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `total_budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	// 写入后重新读取权威数据
	mock.ExpectQuery("SELECT .* FROM `total_budgets`").
		WillReturnRows(totalBudgetRows(1, 2024, 6, 5000))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/budgets/total", NewBudgetHandler().SetTotalBudget)

	body := `{"year":2024,"month":6,"amount":5000}`
	req := httptest.NewRequest("PUT", "/budgets/total", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "设置成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 5000.0, data["amount"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_GetTotalBudget_DefaultWhenUnset(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `total_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/budgets/total", NewBudgetHandler().GetTotalBudget)

	req := httptest.NewRequest("GET", "/budgets/total?year=2024&month=6", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 0.0, data["amount"])
	assert.Equal(t, 2024.0, data["year"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_CreateCategoryBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	// 总预算 5000
	mock.ExpectQuery("SELECT .* FROM `total_budgets`").
		WillReturnRows(totalBudgetRows(1, now.Year(), int(now.Month()), 5000))
	// 已有月度限额之和 1000，加上新的 800 未超
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(limit_amount\\), 0\\) FROM `category_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1000.0))
	// 类别存在
	mock.ExpectQuery("SELECT .* FROM `transaction_categories`").
		WithArgs("餐饮").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sort", "color", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "餐饮", 10, "#ef4444", now, now, nil))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `category_budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets/categories", NewBudgetHandler().CreateCategoryBudget)

	body := `{"category":"餐饮","limit":800}`
	req := httptest.NewRequest("POST", "/budgets/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_CreateCategoryBudget_ExceedsCeiling(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	// 总预算 1000，已有月度限额之和 800，新建 300 会超出上限
	mock.ExpectQuery("SELECT .* FROM `total_budgets`").
		WillReturnRows(totalBudgetRows(1, now.Year(), int(now.Month()), 1000))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(limit_amount\\), 0\\) FROM `category_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(800.0))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets/categories", NewBudgetHandler().CreateCategoryBudget)

	body := `{"category":"餐饮","limit":300}`
	req := httptest.NewRequest("POST", "/budgets/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 校验失败时不应产生任何写入
	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "超过总预算上限")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_CreateCategoryBudget_NoCeilingWhenUnset(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	// 未设置总预算：不限制限额之和
	mock.ExpectQuery("SELECT .* FROM `total_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectQuery("SELECT .* FROM `transaction_categories`").
		WithArgs("交通").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sort", "color", "created_at", "updated_at", "deleted_at"}).
			AddRow(2, "交通", 20, "#3b82f6", now, now, nil))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `category_budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets/categories", NewBudgetHandler().CreateCategoryBudget)

	body := `{"category":"交通","limit":99999}`
	req := httptest.NewRequest("POST", "/budgets/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func categoryBudgetRows(id uint, category, budgetType string, limit float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "category", "budget_type", "limit_amount", "color", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, 1, category, budgetType, limit, "#ef4444", now, now, nil)
}

func TestBudgetHandler_UpdateCategoryBudget_ExceedsCeiling(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	// 待更新记录为月度类型
	mock.ExpectQuery("SELECT .* FROM `category_budgets`").
		WillReturnRows(categoryBudgetRows(3, "餐饮", "monthly", 300))
	// 总预算 1000，排除本条记录后其余限额之和 700，更新为 400 会超出
	mock.ExpectQuery("SELECT .* FROM `total_budgets`").
		WillReturnRows(totalBudgetRows(1, now.Year(), int(now.Month()), 1000))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(limit_amount\\), 0\\) FROM `category_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(700.0))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/budgets/categories/:id", NewBudgetHandler().UpdateCategoryBudget)

	body := `{"limit":400}`
	req := httptest.NewRequest("PUT", "/budgets/categories/3", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_UpdateCategoryBudget_NonMonthlySkipsCeiling(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 储蓄类型预算不参与月度总预算校验：
	// 即使月度限额之和已贴近上限，更新储蓄限额也应成功
	mock.ExpectQuery("SELECT .* FROM `category_budgets`").
		WillReturnRows(categoryBudgetRows(5, "储蓄", "savings", 300))
	// 不应出现 total_budgets 查询，直接进入更新
	mock.ExpectQuery("SELECT .* FROM `category_budgets`").
		WillReturnRows(categoryBudgetRows(5, "储蓄", "savings", 300))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `category_budgets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/budgets/categories/:id", NewBudgetHandler().UpdateCategoryBudget)

	body := `{"limit":500}`
	req := httptest.NewRequest("PUT", "/budgets/categories/5", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "更新成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 500.0, data["limit"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_DeleteCategoryBudget_HasTransactions(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `category_budgets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category", "budget_type", "limit_amount", "color", "created_at", "updated_at", "deleted_at"}).
			AddRow(3, 1, "餐饮", "monthly", 500.0, "#ef4444", now, now, nil))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/budgets/categories/:id", NewBudgetHandler().DeleteCategoryBudget)

	req := httptest.NewRequest("DELETE", "/budgets/categories/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "仍有交易记录")
	require.NoError(t, mock.ExpectationsWereMet())
}
