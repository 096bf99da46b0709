package scoring

import (
	"context"
	"fmt"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// BankReader - часть репозитория банков, нужная для порога прохождения
type BankReader interface {
	GetByID(ctx context.Context, id uint) (*entity.QuizBank, error)
}

// PointsReader суммирует баллы вопросов банка
type PointsReader interface {
	SumPointsByBank(ctx context.Context, bankID uint) (int, error)
}

// ResponseLister читает ответы попытки
type ResponseLister interface {
	ListByAttempt(ctx context.Context, attemptID uint) ([]entity.QuizResponse, error)
}

// LocalScorer считает результат на стороне приложения
type LocalScorer struct {
	banks     BankReader
	questions PointsReader
	responses ResponseLister
}

// NewLocalScorer создает локальный подсчет
func NewLocalScorer(banks BankReader, questions PointsReader, responses ResponseLister) *LocalScorer {
	return &LocalScorer{banks: banks, questions: questions, responses: responses}
}

// Score: total - сумма баллов вопросов банка, score - сумма points_earned ответов.
// Неоцененные ответы дают 0.
func (s *LocalScorer) Score(ctx context.Context, attempt *entity.QuizAttempt) (*Result, error) {
	bank, err := s.banks.GetByID(ctx, attempt.QuizBankID)
	if err != nil {
		return nil, fmt.Errorf("load quiz bank #%d: %w", attempt.QuizBankID, err)
	}

	total, err := s.questions.SumPointsByBank(ctx, attempt.QuizBankID)
	if err != nil {
		return nil, fmt.Errorf("sum points for bank #%d: %w", attempt.QuizBankID, err)
	}

	responses, err := s.responses.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("list responses for attempt #%d: %w", attempt.ID, err)
	}

	score := 0
	for i := range responses {
		score += responses[i].EarnedPoints()
	}

	pct := Percentage(score, total)
	return &Result{
		Score:       score,
		TotalPoints: total,
		Percentage:  pct,
		Passed:      IsPassed(pct, bank.PassPercentage),
	}, nil
}
