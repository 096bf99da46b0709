package repository

import (
	"context"
	"time"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// AttemptFinalization - поля, записываемые при подсчете результата попытки
type AttemptFinalization struct {
	Status           string
	CompletedAt      time.Time
	TimeTakenSeconds int
	Score            int
	TotalPoints      int
	Percentage       float64
	Passed           bool
}

// AttemptRepository определяет методы для работы с попытками
type AttemptRepository interface {
	// Create вставляет попытку. При конфликте номера возвращает ErrDuplicateAttemptNumber.
	Create(ctx context.Context, attempt *entity.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (*entity.QuizAttempt, error)
	GetWithResponses(ctx context.Context, id uint) (*entity.QuizAttempt, error)
	CountByStatus(ctx context.Context, userID, bankID uint, status string) (int64, error)
	// MaxAttemptNumber возвращает наибольший номер попытки пары (user, bank) или 0
	MaxAttemptNumber(ctx context.Context, userID, bankID uint) (int, error)
	ListByUserAndBank(ctx context.Context, userID, bankID uint) ([]entity.QuizAttempt, error)
	ListCompletedByBank(ctx context.Context, bankID uint) ([]entity.QuizAttempt, error)
	// TransitionStatus атомарно меняет статус from → to. false, если попытка не в статусе from.
	TransitionStatus(ctx context.Context, id uint, from, to string) (bool, error)
	// Finalize записывает результат, только если попытку еще можно финализировать.
	// false означает, что попытка уже была завершена кем-то другим.
	Finalize(ctx context.Context, id uint, fin AttemptFinalization) (bool, error)
}
