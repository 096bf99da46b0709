package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/domain/repository"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create вставляет попытку.
// Уникальный индекс uq_quiz_attempts_user_bank_number защищает от дублей номера:
// 23505 (unique violation) → repository.ErrDuplicateAttemptNumber
func (r *AttemptRepo) Create(ctx context.Context, attempt *entity.QuizAttempt) error {
	if err := r.db.WithContext(ctx).Omit("Responses").Create(attempt).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user #%d, bank #%d, number %d",
				repository.ErrDuplicateAttemptNumber, attempt.UserID, attempt.QuizBankID, attempt.AttemptNumber)
		}
		return fmt.Errorf("create attempt: %w", err)
	}
	return nil
}

// GetByID возвращает попытку без ответов
func (r *AttemptRepo) GetByID(ctx context.Context, id uint) (*entity.QuizAttempt, error) {
	var attempt entity.QuizAttempt
	if err := r.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &attempt, nil
}

// GetWithResponses возвращает попытку вместе с ответами
func (r *AttemptRepo) GetWithResponses(ctx context.Context, id uint) (*entity.QuizAttempt, error) {
	var attempt entity.QuizAttempt
	err := r.db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_id ASC")
		}).
		First(&attempt, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &attempt, nil
}

// CountByStatus считает попытки пользователя по банку в заданном статусе
func (r *AttemptRepo) CountByStatus(ctx context.Context, userID, bankID uint, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.QuizAttempt{}).
		Where("user_id = ? AND quiz_bank_id = ? AND status = ?", userID, bankID, status).
		Count(&count).Error
	return count, err
}

// MaxAttemptNumber возвращает максимальный номер попытки, а не количество строк,
// чтобы пропуски в нумерации не приводили к повтору номера
func (r *AttemptRepo) MaxAttemptNumber(ctx context.Context, userID, bankID uint) (int, error) {
	var maxNumber int
	err := r.db.WithContext(ctx).Model(&entity.QuizAttempt{}).
		Select("COALESCE(MAX(attempt_number), 0)").
		Where("user_id = ? AND quiz_bank_id = ?", userID, bankID).
		Scan(&maxNumber).Error
	return maxNumber, err
}

// ListByUserAndBank возвращает все попытки пользователя по банку
func (r *AttemptRepo) ListByUserAndBank(ctx context.Context, userID, bankID uint) ([]entity.QuizAttempt, error) {
	var attempts []entity.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND quiz_bank_id = ?", userID, bankID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// ListCompletedByBank возвращает завершенные попытки банка
func (r *AttemptRepo) ListCompletedByBank(ctx context.Context, bankID uint) ([]entity.QuizAttempt, error) {
	var attempts []entity.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("quiz_bank_id = ? AND status = ?", bankID, entity.AttemptStatusCompleted).
		Order("completed_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// TransitionStatus атомарно переводит попытку из from в to
func (r *AttemptRepo) TransitionStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.QuizAttempt{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("transition attempt #%d %s → %s: %w", id, from, to, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Finalize записывает результат попытки условным UPDATE.
// RowsAffected == 0 → попытка уже финализирована или брошена.
func (r *AttemptRepo) Finalize(ctx context.Context, id uint, fin repository.AttemptFinalization) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.QuizAttempt{}).
		Where("id = ? AND completed_at IS NULL AND status IN ?", id,
			[]string{entity.AttemptStatusInProgress, entity.AttemptStatusTimedOut}).
		Updates(map[string]interface{}{
			"status":             fin.Status,
			"completed_at":       fin.CompletedAt,
			"time_taken_seconds": fin.TimeTakenSeconds,
			"score":              fin.Score,
			"total_points":       fin.TotalPoints,
			"percentage":         fin.Percentage,
			"passed":             fin.Passed,
		})
	if result.Error != nil {
		return false, fmt.Errorf("finalize attempt #%d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
