package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// RoutineRepo вызывает хранимые функции calculate_quiz_score и get_quiz_statistics
type RoutineRepo struct {
	db *gorm.DB
}

// NewRoutineRepo создает репозиторий хранимых функций
func NewRoutineRepo(db *gorm.DB) *RoutineRepo {
	return &RoutineRepo{db: db}
}

// CalculateQuizScore выполняет calculate_quiz_score(attempt_id).
// Функция сама пишет score/total_points/percentage/passed в quiz_attempts.
func (r *RoutineRepo) CalculateQuizScore(ctx context.Context, attemptID uint) error {
	if err := r.db.WithContext(ctx).Exec("SELECT calculate_quiz_score(?)", attemptID).Error; err != nil {
		return fmt.Errorf("calculate_quiz_score(%d): %w", attemptID, err)
	}
	return nil
}

// QuizStatistics выполняет get_quiz_statistics(quiz_bank_id) и разбирает json-результат
func (r *RoutineRepo) QuizStatistics(ctx context.Context, bankID uint) (*entity.QuizStatistics, error) {
	var raw []byte
	row := r.db.WithContext(ctx).Raw("SELECT get_quiz_statistics(?)", bankID).Row()
	if err := row.Scan(&raw); err != nil {
		return nil, fmt.Errorf("get_quiz_statistics(%d): %w", bankID, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("get_quiz_statistics(%d): empty result", bankID)
	}

	var stats entity.QuizStatistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("decode get_quiz_statistics(%d): %w", bankID, err)
	}
	stats.QuizBankID = bankID
	return &stats, nil
}
