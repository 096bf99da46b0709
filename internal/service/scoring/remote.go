package scoring

import (
	"context"
	"fmt"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/domain/repository"
)

// AttemptReader перечитывает попытку после работы хранимой функции
type AttemptReader interface {
	GetByID(ctx context.Context, id uint) (*entity.QuizAttempt, error)
}

// RemoteScorer делегирует подсчет функции calculate_quiz_score в БД
type RemoteScorer struct {
	routine  repository.ScoringRoutineRepository
	attempts AttemptReader
}

// NewRemoteScorer создает подсчет через хранимую функцию
func NewRemoteScorer(routine repository.ScoringRoutineRepository, attempts AttemptReader) *RemoteScorer {
	return &RemoteScorer{routine: routine, attempts: attempts}
}

// Score вызывает хранимую функцию и читает записанные ею поля
func (s *RemoteScorer) Score(ctx context.Context, attempt *entity.QuizAttempt) (*Result, error) {
	if err := s.routine.CalculateQuizScore(ctx, attempt.ID); err != nil {
		return nil, err
	}

	scored, err := s.attempts.GetByID(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("reload attempt #%d: %w", attempt.ID, err)
	}
	if scored.Score == nil || scored.TotalPoints == nil || scored.Percentage == nil || scored.Passed == nil {
		return nil, fmt.Errorf("calculate_quiz_score left attempt #%d without result", attempt.ID)
	}

	return &Result{
		Score:       *scored.Score,
		TotalPoints: *scored.TotalPoints,
		Percentage:  Round2(*scored.Percentage),
		Passed:      *scored.Passed,
	}, nil
}
