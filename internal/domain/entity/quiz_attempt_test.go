package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuizAttempt_CanBeFinalized(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		status      string
		completedAt *time.Time
		want        bool
	}{
		{"in progress", AttemptStatusInProgress, nil, true},
		{"timed out without result", AttemptStatusTimedOut, nil, true},
		{"timed out already scored", AttemptStatusTimedOut, &now, false},
		{"completed", AttemptStatusCompleted, &now, false},
		{"abandoned", AttemptStatusAbandoned, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := &QuizAttempt{Status: tt.status, CompletedAt: tt.completedAt}
			assert.Equal(t, tt.want, attempt.CanBeFinalized())
		})
	}
}

func TestQuizAttempt_FinalStatus(t *testing.T) {
	assert.Equal(t, AttemptStatusCompleted, (&QuizAttempt{Status: AttemptStatusInProgress}).FinalStatus())
	assert.Equal(t, AttemptStatusTimedOut, (&QuizAttempt{Status: AttemptStatusTimedOut}).FinalStatus(),
		"истекшая попытка сохраняет статус timed_out после подсчета")
}

func TestQuizAttempt_IsTerminal(t *testing.T) {
	assert.False(t, (&QuizAttempt{Status: AttemptStatusInProgress}).IsTerminal())
	assert.True(t, (&QuizAttempt{Status: AttemptStatusCompleted}).IsTerminal())
	assert.True(t, (&QuizAttempt{Status: AttemptStatusAbandoned}).IsTerminal())
	assert.True(t, (&QuizAttempt{Status: AttemptStatusTimedOut}).IsTerminal())
}

func TestQuizAttempt_IsExpired(t *testing.T) {
	// Arrange
	started := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	attempt := &QuizAttempt{Status: AttemptStatusInProgress, StartedAt: started}

	// Act & Assert
	assert.False(t, attempt.IsExpired(0, started.Add(time.Hour)), "без лимита попытка не истекает")
	assert.False(t, attempt.IsExpired(30*time.Minute, started.Add(29*time.Minute)))
	assert.True(t, attempt.IsExpired(30*time.Minute, started.Add(31*time.Minute)))

	attempt.Status = AttemptStatusCompleted
	assert.False(t, attempt.IsExpired(30*time.Minute, started.Add(31*time.Minute)), "завершенная попытка не истекает")
}

func TestQuizResponse_EarnedPoints(t *testing.T) {
	five := 5
	assert.Equal(t, 0, (&QuizResponse{}).EarnedPoints())
	assert.Equal(t, 5, (&QuizResponse{PointsEarned: &five}).EarnedPoints())
}

func TestQuizBank_TimeLimit(t *testing.T) {
	minutes := 15
	zero := 0
	assert.Equal(t, time.Duration(0), (&QuizBank{}).TimeLimit())
	assert.Equal(t, time.Duration(0), (&QuizBank{TimeLimitMinutes: &zero}).TimeLimit())
	assert.Equal(t, 15*time.Minute, (&QuizBank{TimeLimitMinutes: &minutes}).TimeLimit())
}
