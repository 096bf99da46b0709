package repository

import (
	"context"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// ResponseRepository определяет методы для работы с ответами
type ResponseRepository interface {
	// Upsert вставляет ответ или обновляет существующий по (attempt_id, question_id).
	// Оценка (is_correct, points_earned) при этом сбрасывается.
	Upsert(ctx context.Context, response *entity.QuizResponse) error
	// ApplyGrade выставляет оценку, только если в ответе все еще выбран selectedOptionID
	ApplyGrade(ctx context.Context, attemptID, questionID, selectedOptionID uint, isCorrect bool, points int) (bool, error)
	ListByAttempt(ctx context.Context, attemptID uint) ([]entity.QuizResponse, error)
	ListByQuestion(ctx context.Context, questionID uint) ([]entity.QuizResponse, error)
}

// GamificationRepository записывает начисления во внешний журнал очков
type GamificationRepository interface {
	Create(ctx context.Context, entry *entity.GamificationPoint) error
}

// ScoringRoutineRepository вызывает хранимую функцию подсчета результата
type ScoringRoutineRepository interface {
	CalculateQuizScore(ctx context.Context, attemptID uint) error
}

// StatisticsRoutineRepository вызывает хранимую функцию агрегирования статистики
type StatisticsRoutineRepository interface {
	QuizStatistics(ctx context.Context, bankID uint) (*entity.QuizStatistics, error)
}
