package service

import (
	"testing"
	"time"

	"budget/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annualGoalRows(id uint, target, current float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "description", "start_date", "end_date",
		"target_amount", "monthly_contribution", "current", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, 1, "旅行基金", "", time.Now(), time.Now(), target, 800.0, current, time.Now(), time.Now(), nil)
}

func TestFindGoal_InvalidModel(t *testing.T) {
	s := NewGoalService()
	_, err := s.FindGoal(1, "retirement", 1)
	assert.ErrorIs(t, err, ErrInvalidGoalModel)
}

func TestFindGoal_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `annual_goals`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	s := NewGoalService()
	_, err := s.FindGoal(1, models.GoalModelAnnual, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddFunds(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "description", "start_date", "end_date",
			"target_amount", "monthly_contribution", "current", "created_at", "updated_at", "deleted_at"}).
			AddRow(2, 1, "应急储备", "", time.Now(), time.Now(), 10000.0, 500.0, 1000.0, time.Now(), time.Now(), nil))
	// 钳顶递增由单条 UPDATE 完成
	mock.ExpectExec("UPDATE `savings_goals` SET .*LEAST\\(target_amount, current \\+ \\?\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// 手动补款同样落流水
	mock.ExpectExec("INSERT INTO `contributions`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	// 返回补款后的最新快照
	mock.ExpectQuery("SELECT .* FROM `savings_goals`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "description", "start_date", "end_date",
			"target_amount", "monthly_contribution", "current", "created_at", "updated_at", "deleted_at"}).
			AddRow(2, 1, "应急储备", "", time.Now(), time.Now(), 10000.0, 500.0, 1500.0, time.Now(), time.Now(), nil))

	s := NewGoalService()
	goal, err := s.AddFunds(1, models.GoalModelSavings, 2, 500)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, goal.Current)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddFunds_InvalidAmount(t *testing.T) {
	s := NewGoalService()
	_, err := s.AddFunds(1, models.GoalModelAnnual, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.AddFunds(1, models.GoalModelAnnual, 1, -100)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAddFunds_GoalNotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `annual_goals`").
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectRollback()

	s := NewGoalService()
	_, err := s.AddFunds(1, models.GoalModelAnnual, 99, 500)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
