package scoring

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// Result - итог подсчета попытки
type Result struct {
	Score       int
	TotalPoints int
	Percentage  float64
	Passed      bool
}

// Scorer считает результат попытки
type Scorer interface {
	Score(ctx context.Context, attempt *entity.QuizAttempt) (*Result, error)
}

// Config содержит настройки подсчета
type Config struct {
	// RemoteEnabled включает вызов хранимой функции calculate_quiz_score
	RemoteEnabled bool
}

// Round2 округляет до двух знаков, половина - от нуля
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Percentage = score / total * 100 с округлением до сотых, 0 при пустом банке
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(score)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2).
		InexactFloat64()
}

// IsPassed сравнивает процент с порогом прохождения
func IsPassed(percentage float64, passPercentage int) bool {
	return percentage >= float64(passPercentage)
}
