package repository

import (
	"context"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами и вариантами
type QuestionRepository interface {
	// Create сохраняет вопрос вместе с q.Options
	Create(ctx context.Context, question *entity.QuizQuestion) error
	// CreateBatch сохраняет вопросы с вариантами одной транзакцией
	CreateBatch(ctx context.Context, questions []entity.QuizQuestion) error
	GetByID(ctx context.Context, id uint) (*entity.QuizQuestion, error)
	GetWithOptions(ctx context.Context, id uint) (*entity.QuizQuestion, error)
	// ListByBank возвращает вопросы банка по order_index, без вариантов
	ListByBank(ctx context.Context, bankID uint) ([]entity.QuizQuestion, error)
	// ListOptions возвращает варианты для набора вопросов по (question_id, order_index)
	ListOptions(ctx context.Context, questionIDs []uint) ([]entity.QuizOption, error)
	GetOption(ctx context.Context, optionID uint) (*entity.QuizOption, error)
	CountByBank(ctx context.Context, bankID uint) (int64, error)
	SumPointsByBank(ctx context.Context, bankID uint) (int, error)
	// Update обновляет колонки вопроса; если options != nil, набор вариантов
	// полностью заменяется (delete-then-insert) в той же транзакции
	Update(ctx context.Context, id uint, updates map[string]interface{}, options []entity.QuizOption) error
	Delete(ctx context.Context, id uint) error
	// Reorder присваивает order_index = позиция в orderedIDs в рамках банка
	Reorder(ctx context.Context, bankID uint, orderedIDs []uint) error
}
