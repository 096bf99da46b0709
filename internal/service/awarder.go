package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"gorm.io/datatypes"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/domain/repository"
	"github.com/yourusername/quiz-engine/pkg/monitoring"
)

// Правила начисления очков
const (
	participationPoints = 2
	perfectScoreBonus   = 20
	firstAttemptBonus   = 10
)

// AwardOutcome - результат начисления. Err не отменяет завершение попытки,
// вызывающий код только логирует его.
type AwardOutcome struct {
	Points int
	Err    error
}

// Awarder записывает начисление очков за попытку в журнал геймификации
type Awarder struct {
	ledger repository.GamificationRepository
}

// NewAwarder создает сервис начисления очков
func NewAwarder(ledger repository.GamificationRepository) *Awarder {
	return &Awarder{ledger: ledger}
}

// CalculateAwardPoints: пройдено - floor(pct/10), +20 за 100%, +10 за первую попытку;
// не пройдено - 2 очка за участие
func CalculateAwardPoints(attempt *entity.QuizAttempt) int {
	if !attempt.IsPassed() {
		return participationPoints
	}

	var pct float64
	if attempt.Percentage != nil {
		pct = *attempt.Percentage
	}

	points := int(math.Floor(pct / 10))
	if pct == 100 {
		points += perfectScoreBonus
	}
	if attempt.AttemptNumber == 1 {
		points += firstAttemptBonus
	}
	if points < 0 {
		return 0
	}
	return points
}

// Award считает очки и пишет одну запись в журнал. При ошибке записи Points = 0.
func (a *Awarder) Award(ctx context.Context, attempt *entity.QuizAttempt) AwardOutcome {
	points := CalculateAwardPoints(attempt)

	var pct float64
	if attempt.Percentage != nil {
		pct = *attempt.Percentage
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"quiz_bank_id":   attempt.QuizBankID,
		"attempt_number": attempt.AttemptNumber,
		"percentage":     pct,
		"passed":         attempt.IsPassed(),
	})
	if err != nil {
		return AwardOutcome{Err: fmt.Errorf("encode award metadata: %w", err)}
	}

	entry := &entity.GamificationPoint{
		UserID:       attempt.UserID,
		ActivityType: entity.ActivityTypeQuiz,
		ActivityID:   attempt.ID,
		Points:       points,
		Reason:       awardReason(attempt, pct),
		Metadata:     datatypes.JSON(metadata),
	}
	if err := a.ledger.Create(ctx, entry); err != nil {
		return AwardOutcome{Err: fmt.Errorf("record award for attempt #%d: %w", attempt.ID, err)}
	}

	monitoring.PointsAwarded.Add(float64(points))
	return AwardOutcome{Points: points}
}

func awardReason(attempt *entity.QuizAttempt, pct float64) string {
	if attempt.IsPassed() {
		return fmt.Sprintf("Passed quiz attempt #%d with %.2f%%", attempt.AttemptNumber, pct)
	}
	return fmt.Sprintf("Completed quiz attempt #%d (%.2f%%)", attempt.AttemptNumber, pct)
}
