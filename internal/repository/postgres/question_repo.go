package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает вопрос вместе с вариантами
func (r *QuestionRepo) Create(ctx context.Context, question *entity.QuizQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(question).Error
	})
}

// CreateBatch создает пакет вопросов с вариантами
func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []entity.QuizQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&questions).Error
	})
}

// GetByID возвращает вопрос без вариантов
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.QuizQuestion, error) {
	var question entity.QuizQuestion
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &question, nil
}

// GetWithOptions возвращает вопрос с вариантами по order_index
func (r *QuestionRepo) GetWithOptions(ctx context.Context, id uint) (*entity.QuizQuestion, error) {
	var question entity.QuizQuestion
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		First(&question, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &question, nil
}

// ListByBank возвращает вопросы банка по order_index
func (r *QuestionRepo) ListByBank(ctx context.Context, bankID uint) ([]entity.QuizQuestion, error) {
	var questions []entity.QuizQuestion
	err := r.db.WithContext(ctx).
		Where("quiz_bank_id = ?", bankID).
		Order("order_index ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// ListOptions возвращает варианты для набора вопросов
func (r *QuestionRepo) ListOptions(ctx context.Context, questionIDs []uint) ([]entity.QuizOption, error) {
	var options []entity.QuizOption
	if len(questionIDs) == 0 {
		return options, nil
	}
	err := r.db.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Order("question_id ASC, order_index ASC, id ASC").
		Find(&options).Error
	if err != nil {
		return nil, err
	}
	return options, nil
}

// GetOption возвращает вариант ответа по ID
func (r *QuestionRepo) GetOption(ctx context.Context, optionID uint) (*entity.QuizOption, error) {
	var option entity.QuizOption
	if err := r.db.WithContext(ctx).First(&option, optionID).Error; err != nil {
		return nil, notFound(err)
	}
	return &option, nil
}

// CountByBank возвращает количество вопросов банка
func (r *QuestionRepo) CountByBank(ctx context.Context, bankID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.QuizQuestion{}).
		Where("quiz_bank_id = ?", bankID).
		Count(&count).Error
	return count, err
}

// SumPointsByBank возвращает сумму баллов всех вопросов банка
func (r *QuestionRepo) SumPointsByBank(ctx context.Context, bankID uint) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&entity.QuizQuestion{}).
		Select("COALESCE(SUM(points), 0)").
		Where("quiz_bank_id = ?", bankID).
		Scan(&total).Error
	return total, err
}

// Update обновляет вопрос. options != nil заменяет весь набор вариантов в той же транзакции.
func (r *QuestionRepo) Update(ctx context.Context, id uint, updates map[string]interface{}, options []entity.QuizOption) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&entity.QuizQuestion{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return apperrors.ErrNotFound
		}

		if len(updates) > 0 {
			if err := tx.Model(&entity.QuizQuestion{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return fmt.Errorf("update question #%d: %w", id, err)
			}
		}

		if options == nil {
			return nil
		}

		if err := tx.Where("question_id = ?", id).Delete(&entity.QuizOption{}).Error; err != nil {
			return fmt.Errorf("delete options of question #%d: %w", id, err)
		}
		if len(options) == 0 {
			return nil
		}
		for i := range options {
			options[i].ID = 0
			options[i].QuestionID = id
		}
		if err := tx.Create(&options).Error; err != nil {
			return fmt.Errorf("insert options of question #%d: %w", id, err)
		}
		return nil
	})
}

// Delete удаляет вопрос; варианты удаляются каскадно
func (r *QuestionRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.QuizQuestion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Reorder выставляет order_index = позиция в списке, одной транзакцией
func (r *QuestionRepo) Reorder(ctx context.Context, bankID uint, orderedIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, questionID := range orderedIDs {
			result := tx.Model(&entity.QuizQuestion{}).
				Where("id = ? AND quiz_bank_id = ?", questionID, bankID).
				Update("order_index", position)
			if result.Error != nil {
				return fmt.Errorf("reorder question #%d: %w", questionID, result.Error)
			}
			if result.RowsAffected == 0 {
				return apperrors.NewNotFoundError("question", questionID)
			}
		}
		return nil
	})
}
