package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
)

// QuizBankRepo реализует repository.QuizBankRepository
type QuizBankRepo struct {
	db *gorm.DB
}

// NewQuizBankRepo создает новый репозиторий банков вопросов
func NewQuizBankRepo(db *gorm.DB) *QuizBankRepo {
	return &QuizBankRepo{db: db}
}

// Create создает банк без вопросов
func (r *QuizBankRepo) Create(ctx context.Context, bank *entity.QuizBank) error {
	return r.db.WithContext(ctx).Omit("Questions").Create(bank).Error
}

// CreateWithQuestions создает банк, его вопросы и варианты одной транзакцией.
// GORM сохраняет вложенные ассоциации (Questions → Options) автоматически.
func (r *QuizBankRepo) CreateWithQuestions(ctx context.Context, bank *entity.QuizBank) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(bank).Error; err != nil {
			return fmt.Errorf("create quiz bank with questions: %w", err)
		}
		return nil
	})
}

// GetByID возвращает банк по ID
func (r *QuizBankRepo) GetByID(ctx context.Context, id uint) (*entity.QuizBank, error) {
	var bank entity.QuizBank
	if err := r.db.WithContext(ctx).First(&bank, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &bank, nil
}

// ListByCourse возвращает банки курса по created_at DESC
func (r *QuizBankRepo) ListByCourse(ctx context.Context, courseID uint, publishedOnly bool) ([]entity.QuizBank, error) {
	var banks []entity.QuizBank
	query := r.db.WithContext(ctx).Where("course_id = ?", courseID)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Order("created_at DESC").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

// Update точечно обновляет колонки банка без полного Save
func (r *QuizBankRepo) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&entity.QuizBank{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetPublished переключает флаг публикации
func (r *QuizBankRepo) SetPublished(ctx context.Context, id uint, published bool) error {
	result := r.db.WithContext(ctx).Model(&entity.QuizBank{}).
		Where("id = ?", id).
		Update("is_published", published)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет банк; вопросы, варианты и попытки удаляются каскадно на уровне БД
func (r *QuizBankRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.QuizBank{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
