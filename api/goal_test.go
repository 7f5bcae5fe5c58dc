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

func savingsGoalRows(id uint, target, current float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "description", "start_date", "end_date",
		"target_amount", "monthly_contribution", "current", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, 1, "应急储备", "", time.Now(), time.Now(), target, 500.0, current, time.Now(), time.Now(), nil)
}

func TestGoalHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `annual_goals`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/goals/:model", NewGoalHandler().Create)

	body := `{"name":"旅行基金","target_amount":10000,"monthly_contribution":800,"start_date":"2024-01-01","end_date":"2024-12-31"}`
	req := httptest.NewRequest("POST", "/goals/annual", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Create_InvalidModel(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/goals/:model", NewGoalHandler().Create)

	body := `{"name":"养老金","target_amount":10000}`
	req := httptest.NewRequest("POST", "/goals/retirement", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "无效的目标类型")
}

func TestGoalHandler_Get(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WillReturnRows(savingsGoalRows(2, 10000, 1500))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/goals/:model/:id", NewGoalHandler().Get)

	req := httptest.NewRequest("GET", "/goals/savings/2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 1500.0, data["current"])
	assert.Equal(t, "savings", data["goal_model"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `annual_goals`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/goals/:model/:id", NewGoalHandler().Get)

	req := httptest.NewRequest("GET", "/goals/annual/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_Delete_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 软删除 UPDATE 影响 0 行
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `savings_goals` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/goals/:model/:id", NewGoalHandler().Delete)

	req := httptest.NewRequest("DELETE", "/goals/savings/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHandler_AddFunds(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WillReturnRows(savingsGoalRows(2, 10000, 1000))
	mock.ExpectExec("UPDATE `savings_goals` SET .*LEAST\\(target_amount, current \\+ \\?\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `contributions`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WillReturnRows(savingsGoalRows(2, 10000, 1500))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/goals/:model/:id/add-funds", NewGoalHandler().AddFunds)

	body := `{"amount":500}`
	req := httptest.NewRequest("POST", "/goals/savings/2/add-funds", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "补款成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 1500.0, data["current"])
	require.NoError(t, mock.ExpectationsWereMet())
}
