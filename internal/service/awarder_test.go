package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/domain/repository"
)

func scoredAttempt(number int, pct float64, passed bool) *entity.QuizAttempt {
	return &entity.QuizAttempt{
		ID:            10,
		QuizBankID:    1,
		UserID:        42,
		AttemptNumber: number,
		Status:        entity.AttemptStatusCompleted,
		Percentage:    floatPtr(pct),
		Passed:        boolPtr(passed),
	}
}

func TestCalculateAwardPoints(t *testing.T) {
	tests := []struct {
		name    string
		attempt *entity.QuizAttempt
		want    int
	}{
		{"perfect first attempt", scoredAttempt(1, 100, true), 40},
		{"perfect retry", scoredAttempt(2, 100, true), 30},
		{"passed first attempt", scoredAttempt(1, 85.5, true), 18},
		{"passed retry floors", scoredAttempt(3, 79.99, true), 7},
		{"failed first attempt", scoredAttempt(1, 50, false), 2},
		{"failed zero", scoredAttempt(4, 0, false), 2},
		{"unscored", &entity.QuizAttempt{AttemptNumber: 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateAwardPoints(tt.attempt))
		})
	}
}

func TestAward_RecordsLedgerEntry(t *testing.T) {
	// Arrange
	ledger := new(MockGamificationRepository)
	var recorded *entity.GamificationPoint
	ledger.On("Create", mock.Anything, mock.AnythingOfType("*entity.GamificationPoint")).
		Run(func(args mock.Arguments) { recorded = args.Get(1).(*entity.GamificationPoint) }).
		Return(nil)

	// Act
	outcome := NewAwarder(ledger).Award(context.Background(), scoredAttempt(1, 100, true))

	// Assert
	require.NoError(t, outcome.Err)
	assert.Equal(t, 40, outcome.Points)
	require.NotNil(t, recorded)
	assert.Equal(t, uint(42), recorded.UserID)
	assert.Equal(t, "quiz", recorded.ActivityType)
	assert.Equal(t, uint(10), recorded.ActivityID)
	assert.Contains(t, recorded.Reason, "Passed")

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(recorded.Metadata, &meta))
	assert.Equal(t, 100.0, meta["percentage"])
	assert.Equal(t, true, meta["passed"])
	assert.Equal(t, 1.0, meta["attempt_number"])
}

func TestAward_FailureYieldsZeroPoints(t *testing.T) {
	ledger := new(MockGamificationRepository)
	ledger.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateLedgerEntry)

	outcome := NewAwarder(ledger).Award(context.Background(), scoredAttempt(1, 90, true))

	assert.Equal(t, 0, outcome.Points)
	assert.True(t, errors.Is(outcome.Err, repository.ErrDuplicateLedgerEntry))
}
