package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

func TestResponseRepo_Upsert_OnConflictOverwritesSelection(t *testing.T) {
	// Arrange
	db, mock := newMockDB(t)
	repo := NewResponseRepo(db)

	option := uint(7)
	correct := true
	points := 5
	response := &entity.QuizResponse{
		AttemptID:        10,
		QuestionID:       4,
		SelectedOptionID: &option,
		IsCorrect:        &correct,
		PointsEarned:     &points,
	}

	mock.ExpectQuery(`INSERT INTO "quiz_responses" .*` +
		`ON CONFLICT \("attempt_id","question_id"\) DO UPDATE SET ` +
		`"selected_option_id"="excluded"\."selected_option_id",` +
		`"answer_text"="excluded"\."answer_text",` +
		`"time_spent_seconds"="excluded"\."time_spent_seconds",` +
		`"is_correct"="excluded"\."is_correct",` +
		`"points_earned"="excluded"\."points_earned",` +
		`"updated_at"="excluded"\."updated_at"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))

	// Act
	err := repo.Upsert(context.Background(), response)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(31), response.ID)
	assert.Nil(t, response.IsCorrect, "прежняя оценка сбрасывается при перезаписи ответа")
	assert.Nil(t, response.PointsEarned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseRepo_ApplyGrade_GuardsSelectedOption(t *testing.T) {
	tests := []struct {
		name        string
		affected    int64
		wantApplied bool
	}{
		{name: "выбор не изменился", affected: 1, wantApplied: true},
		{name: "выбор успели поменять", affected: 0, wantApplied: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewResponseRepo(db)

			mock.ExpectExec(`UPDATE "quiz_responses" SET .*"is_correct"=.*"points_earned"=.* ` +
				`WHERE attempt_id = \$\d+ AND question_id = \$\d+ AND selected_option_id = \$\d+`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			applied, err := repo.ApplyGrade(context.Background(), 10, 4, 7, true, 5)

			require.NoError(t, err)
			assert.Equal(t, tt.wantApplied, applied)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
