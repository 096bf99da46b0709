package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// reverse переставляет элементы в обратном порядке, чтобы результат был детерминированным
func reverse(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func sampleBank() *entity.QuizBank {
	return &entity.QuizBank{
		ID:    1,
		Title: "Go basics",
		Questions: []entity.QuizQuestion{
			{ID: 10, QuestionText: "q1", Points: 1, Options: []entity.QuizOption{
				{ID: 100, OptionText: "a", IsCorrect: true},
				{ID: 101, OptionText: "b"},
			}},
			{ID: 11, QuestionText: "q2", Points: 2},
		},
	}
}

func questionIDs(resp *StudentQuizBankResponse) []uint {
	ids := make([]uint, len(resp.Questions))
	for i, q := range resp.Questions {
		ids[i] = q.ID
	}
	return ids
}

func TestNewStudentQuizBankResponse_NoShuffleFlags(t *testing.T) {
	resp := NewStudentQuizBankResponse(sampleBank(), reverse)

	assert.Equal(t, 2, resp.QuestionCount)
	assert.Equal(t, []uint{10, 11}, questionIDs(resp))
	require.Len(t, resp.Questions[0].Options, 2)
	assert.Equal(t, uint(100), resp.Questions[0].Options[0].ID)
}

func TestNewStudentQuizBankResponse_ShufflesByFlags(t *testing.T) {
	tests := []struct {
		name          string
		questions     bool
		options       bool
		wantQuestions []uint
		wantFirstOpt  uint
	}{
		{"только вопросы", true, false, []uint{11, 10}, 100},
		{"только варианты", false, true, []uint{10, 11}, 101},
		{"оба флага", true, true, []uint{11, 10}, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := sampleBank()
			bank.ShuffleQuestions = tt.questions
			bank.ShuffleOptions = tt.options

			resp := NewStudentQuizBankResponse(bank, reverse)

			assert.Equal(t, tt.wantQuestions, questionIDs(resp))
			for _, q := range resp.Questions {
				if q.ID == 10 {
					assert.Equal(t, tt.wantFirstOpt, q.Options[0].ID)
				}
			}
			// исходный банк не меняется
			assert.Equal(t, uint(10), bank.Questions[0].ID)
			assert.Equal(t, uint(100), bank.Questions[0].Options[0].ID)
		})
	}
}

func TestNewAttemptResponse(t *testing.T) {
	correct := true
	points := 3
	completed := &entity.QuizAttempt{
		ID:     5,
		Status: entity.AttemptStatusCompleted,
		Responses: []entity.QuizResponse{
			{QuestionID: 10, IsCorrect: &correct, PointsEarned: &points},
		},
	}

	t.Run("показывает правильность завершенной попытки", func(t *testing.T) {
		resp := NewAttemptResponse(completed, true, false)

		require.NotNil(t, resp.Responses[0].IsCorrect)
		assert.Equal(t, 3, *resp.Responses[0].PointsEarned)
	})

	t.Run("скрывает, если банк запрещает", func(t *testing.T) {
		resp := NewAttemptResponse(completed, false, false)

		assert.Nil(t, resp.Responses[0].IsCorrect)
		assert.Nil(t, resp.Responses[0].PointsEarned)
		assert.NotNil(t, completed.Responses[0].IsCorrect, "оригинал не должен меняться")
	})

	t.Run("скрывает у незавершенной попытки", func(t *testing.T) {
		inProgress := *completed
		inProgress.Status = entity.AttemptStatusInProgress

		resp := NewAttemptResponse(&inProgress, true, true)

		assert.Nil(t, resp.Responses[0].IsCorrect)
		assert.True(t, resp.Expired)
	})
}
