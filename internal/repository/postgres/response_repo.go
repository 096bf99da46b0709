package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// ResponseRepo реализует repository.ResponseRepository
type ResponseRepo struct {
	db *gorm.DB
}

// NewResponseRepo создает новый репозиторий ответов
func NewResponseRepo(db *gorm.DB) *ResponseRepo {
	return &ResponseRepo{db: db}
}

// Upsert сохраняет ответ одним INSERT ... ON CONFLICT (attempt_id, question_id) DO UPDATE.
// Повторная отправка перезаписывает ответ (last write wins) и сбрасывает прежнюю оценку.
func (r *ResponseRepo) Upsert(ctx context.Context, response *entity.QuizResponse) error {
	response.IsCorrect = nil
	response.PointsEarned = nil

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"selected_option_id",
				"answer_text",
				"time_spent_seconds",
				"is_correct",
				"points_earned",
				"updated_at",
			}),
		}).
		Create(response).Error
	if err != nil {
		return fmt.Errorf("upsert response (attempt #%d, question #%d): %w", response.AttemptID, response.QuestionID, err)
	}
	return nil
}

// ApplyGrade выставляет оценку ответа. Условие на selected_option_id не дает
// устаревшей проверке перезаписать оценку более нового ответа на тот же вопрос.
func (r *ResponseRepo) ApplyGrade(ctx context.Context, attemptID, questionID, selectedOptionID uint, isCorrect bool, points int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.QuizResponse{}).
		Where("attempt_id = ? AND question_id = ? AND selected_option_id = ?", attemptID, questionID, selectedOptionID).
		Updates(map[string]interface{}{
			"is_correct":    isCorrect,
			"points_earned": points,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByAttempt возвращает все ответы попытки
func (r *ResponseRepo) ListByAttempt(ctx context.Context, attemptID uint) ([]entity.QuizResponse, error) {
	var responses []entity.QuizResponse
	err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("question_id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// ListByQuestion возвращает все ответы на вопрос
func (r *ResponseRepo) ListByQuestion(ctx context.Context, questionID uint) ([]entity.QuizResponse, error) {
	var responses []entity.QuizResponse
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}
