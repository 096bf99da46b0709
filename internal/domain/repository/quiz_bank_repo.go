package repository

import (
	"context"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// QuizBankRepository определяет методы для работы с банками вопросов
type QuizBankRepository interface {
	Create(ctx context.Context, bank *entity.QuizBank) error
	// CreateWithQuestions сохраняет банк вместе с вопросами и вариантами в одной транзакции
	CreateWithQuestions(ctx context.Context, bank *entity.QuizBank) error
	GetByID(ctx context.Context, id uint) (*entity.QuizBank, error)
	// ListByCourse возвращает банки курса, новые первыми
	ListByCourse(ctx context.Context, courseID uint, publishedOnly bool) ([]entity.QuizBank, error)
	// Update точечно обновляет переданные колонки
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	SetPublished(ctx context.Context, id uint, published bool) error
	Delete(ctx context.Context, id uint) error
}
