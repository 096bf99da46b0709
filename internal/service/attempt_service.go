package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
	"github.com/yourusername/quiz-engine/internal/service/scoring"
	"github.com/yourusername/quiz-engine/pkg/logger"
	"github.com/yourusername/quiz-engine/pkg/monitoring"
	"github.com/yourusername/quiz-engine/pkg/tracing"
)

// maxStartRetries - сколько раз StartQuiz пересчитывает номер попытки при гонке
const maxStartRetries = 3

// SubmitAnswerInput - ответ на один вопрос попытки
type SubmitAnswerInput struct {
	AttemptID        uint
	QuestionID       uint
	SelectedOptionID *uint
	AnswerText       *string
	TimeSpentSeconds *int
}

// CompleteQuizResult - итог завершения попытки
type CompleteQuizResult struct {
	AttemptID        uint    `json:"attempt_id"`
	Status           string  `json:"status"`
	Score            int     `json:"score"`
	TotalPoints      int     `json:"total_points"`
	Percentage       float64 `json:"percentage"`
	Passed           bool    `json:"passed"`
	TimeTakenSeconds int     `json:"time_taken_seconds"`
	PointsAwarded    int     `json:"points_awarded"`
}

// PointsAwarder начисляет очки за завершенную попытку
type PointsAwarder interface {
	Award(ctx context.Context, attempt *entity.QuizAttempt) AwardOutcome
}

// AttemptService управляет жизненным циклом попытки:
// in_progress → completed | abandoned | timed_out
type AttemptService struct {
	bankRepo     repository.QuizBankRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	responseRepo repository.ResponseRepository
	cacheRepo    repository.CacheRepository
	scorer       scoring.Scorer
	awarder      PointsAwarder
	now          func() time.Time
	log          *zap.Logger
}

// NewAttemptService создает сервис попыток
func NewAttemptService(
	bankRepo repository.QuizBankRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	responseRepo repository.ResponseRepository,
	cacheRepo repository.CacheRepository,
	scorer scoring.Scorer,
	awarder PointsAwarder,
) *AttemptService {
	return &AttemptService{
		bankRepo:     bankRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		responseRepo: responseRepo,
		cacheRepo:    cacheRepo,
		scorer:       scorer,
		awarder:      awarder,
		now:          time.Now,
		log:          logger.Component("AttemptService"),
	}
}

// StartQuiz создает новую попытку пользователя.
// Лимит попыток считает только завершенные (completed) попытки.
func (s *AttemptService) StartQuiz(ctx context.Context, quizBankID, userID uint) (*entity.QuizAttempt, error) {
	ctx, span := tracing.StartSpan(ctx, "AttemptService.StartQuiz")
	defer span.End()
	span.SetAttributes(attribute.Int64("quiz_bank.id", int64(quizBankID)), attribute.Int64("user.id", int64(userID)))

	bank, err := s.getBank(ctx, quizBankID)
	if err != nil {
		return nil, err
	}

	for try := 1; try <= maxStartRetries; try++ {
		if bank.HasAttemptLimit() {
			completed, err := s.attemptRepo.CountByStatus(ctx, userID, quizBankID, entity.AttemptStatusCompleted)
			if err != nil {
				return nil, fmt.Errorf("count completed attempts: %w", err)
			}
			if completed >= int64(*bank.MaxAttempts) {
				return nil, &apperrors.AttemptLimitExceededError{Limit: *bank.MaxAttempts}
			}
		}

		lastNumber, err := s.attemptRepo.MaxAttemptNumber(ctx, userID, quizBankID)
		if err != nil {
			return nil, fmt.Errorf("get last attempt number: %w", err)
		}

		attempt := &entity.QuizAttempt{
			QuizBankID:    quizBankID,
			UserID:        userID,
			AttemptNumber: lastNumber + 1,
			Status:        entity.AttemptStatusInProgress,
			StartedAt:     s.now(),
		}

		err = s.attemptRepo.Create(ctx, attempt)
		if err == nil {
			monitoring.AttemptsStarted.Inc()
			s.log.Info("attempt started",
				zap.Uint("attempt_id", attempt.ID),
				zap.Uint("quiz_bank_id", quizBankID),
				zap.Uint("user_id", userID),
				zap.Int("attempt_number", attempt.AttemptNumber))
			return attempt, nil
		}
		if !errors.Is(err, repository.ErrDuplicateAttemptNumber) {
			tracing.RecordError(span, err)
			return nil, fmt.Errorf("failed to create attempt: %w", err)
		}
		s.log.Warn("attempt number race, retrying",
			zap.Uint("quiz_bank_id", quizBankID),
			zap.Uint("user_id", userID),
			zap.Int("try", try))
	}

	return nil, fmt.Errorf("%w: could not allocate attempt number for user #%d, bank #%d",
		apperrors.ErrConflict, userID, quizBankID)
}

// SubmitAnswer сохраняет ответ (повторная отправка заменяет прежний) и
// для вопросов с вариантами сразу выставляет оценку.
// Ошибка оценки не проваливает отправку: ответ уже сохранен.
func (s *AttemptService) SubmitAnswer(ctx context.Context, input SubmitAnswerInput) (*entity.QuizResponse, error) {
	attempt, err := s.getAttempt(ctx, input.AttemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsInProgress() {
		return nil, &apperrors.InvalidStateError{AttemptID: attempt.ID, Status: attempt.Status, Operation: "answer"}
	}

	question, err := s.questionRepo.GetByID(ctx, input.QuestionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("question", input.QuestionID)
		}
		return nil, fmt.Errorf("load question: %w", err)
	}
	if question.QuizBankID != attempt.QuizBankID {
		return nil, apperrors.NewValidationError("question_id", "question does not belong to the attempt's quiz bank")
	}
	if input.TimeSpentSeconds != nil && *input.TimeSpentSeconds < 0 {
		return nil, apperrors.NewValidationError("time_spent_seconds", "must not be negative")
	}

	response := &entity.QuizResponse{
		AttemptID:        attempt.ID,
		QuestionID:       question.ID,
		SelectedOptionID: input.SelectedOptionID,
		AnswerText:       input.AnswerText,
		TimeSpentSeconds: input.TimeSpentSeconds,
	}
	if err := s.responseRepo.Upsert(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	if input.SelectedOptionID != nil {
		if err := s.gradeResponse(ctx, question, response); err != nil {
			monitoring.BestEffortFailures.WithLabelValues("grade").Inc()
			s.log.Warn("failed to grade response",
				zap.Uint("attempt_id", attempt.ID),
				zap.Uint("question_id", question.ID),
				zap.Error(err))
		}
	}

	return response, nil
}

// gradeResponse выставляет is_correct/points_earned, только пока в ответе
// выбран тот же вариант. Более поздняя отправка не перезаписывается старой оценкой.
func (s *AttemptService) gradeResponse(ctx context.Context, question *entity.QuizQuestion, response *entity.QuizResponse) error {
	option, err := s.questionRepo.GetOption(ctx, *response.SelectedOptionID)
	if err != nil {
		return fmt.Errorf("load option #%d: %w", *response.SelectedOptionID, err)
	}

	grade, ok := scoring.GraderFor(question.QuestionType).Grade(question, option)
	if !ok {
		return nil
	}

	applied, err := s.responseRepo.ApplyGrade(ctx, response.AttemptID, question.ID, option.ID, grade.IsCorrect, grade.Points)
	if err != nil {
		return err
	}
	if !applied {
		s.log.Debug("grade skipped, selection changed concurrently",
			zap.Uint("attempt_id", response.AttemptID), zap.Uint("question_id", question.ID))
		return nil
	}

	response.IsCorrect = &grade.IsCorrect
	response.PointsEarned = &grade.Points
	return nil
}

// CompleteQuiz подсчитывает и фиксирует результат попытки
func (s *AttemptService) CompleteQuiz(ctx context.Context, attemptID uint) (*CompleteQuizResult, error) {
	ctx, span := tracing.StartSpan(ctx, "AttemptService.CompleteQuiz")
	defer span.End()
	span.SetAttributes(attribute.Int64("attempt.id", int64(attemptID)))

	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.CanBeFinalized() {
		return nil, &apperrors.InvalidStateError{AttemptID: attempt.ID, Status: attempt.Status, Operation: "complete"}
	}

	now := s.now()
	elapsed := int(now.Sub(attempt.StartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	result, err := s.scorer.Score(ctx, attempt)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("failed to score attempt #%d: %w", attempt.ID, err)
	}

	fin := repository.AttemptFinalization{
		Status:           attempt.FinalStatus(),
		CompletedAt:      now,
		TimeTakenSeconds: elapsed,
		Score:            result.Score,
		TotalPoints:      result.TotalPoints,
		Percentage:       result.Percentage,
		Passed:           result.Passed,
	}
	finalized, err := s.attemptRepo.Finalize(ctx, attempt.ID, fin)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize attempt: %w", err)
	}
	if !finalized {
		// другой запрос успел завершить или бросить попытку
		current, getErr := s.attemptRepo.GetByID(ctx, attempt.ID)
		status := attempt.Status
		if getErr == nil {
			status = current.Status
		}
		return nil, &apperrors.InvalidStateError{AttemptID: attempt.ID, Status: status, Operation: "complete"}
	}

	attempt.Status = fin.Status
	attempt.CompletedAt = &fin.CompletedAt
	attempt.TimeTakenSeconds = &fin.TimeTakenSeconds
	attempt.Score = &fin.Score
	attempt.TotalPoints = &fin.TotalPoints
	attempt.Percentage = &fin.Percentage
	attempt.Passed = &fin.Passed
	monitoring.AttemptsFinished.WithLabelValues(fin.Status).Inc()

	outcome := s.awarder.Award(ctx, attempt)
	if outcome.Err != nil {
		monitoring.BestEffortFailures.WithLabelValues("award").Inc()
		s.log.Warn("failed to award points",
			zap.Uint("attempt_id", attempt.ID), zap.Error(outcome.Err))
	}

	if err := s.cacheRepo.Delete(ctx, QuizStatisticsCacheKey(attempt.QuizBankID)); err != nil {
		monitoring.BestEffortFailures.WithLabelValues("cache").Inc()
		s.log.Warn("failed to invalidate statistics cache",
			zap.Uint("quiz_bank_id", attempt.QuizBankID), zap.Error(err))
	}

	s.log.Info("attempt finalized",
		zap.Uint("attempt_id", attempt.ID),
		zap.String("status", fin.Status),
		zap.Int("score", fin.Score),
		zap.Int("total_points", fin.TotalPoints),
		zap.Float64("percentage", fin.Percentage),
		zap.Bool("passed", fin.Passed))

	return &CompleteQuizResult{
		AttemptID:        attempt.ID,
		Status:           fin.Status,
		Score:            fin.Score,
		TotalPoints:      fin.TotalPoints,
		Percentage:       fin.Percentage,
		Passed:           fin.Passed,
		TimeTakenSeconds: fin.TimeTakenSeconds,
		PointsAwarded:    outcome.Points,
	}, nil
}

// AbandonQuiz бросает идущую попытку. Для завершенной попытки ничего не делает.
func (s *AttemptService) AbandonQuiz(ctx context.Context, attemptID uint) (*entity.QuizAttempt, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.IsTerminal() {
		return attempt, nil
	}

	changed, err := s.attemptRepo.TransitionStatus(ctx, attempt.ID, entity.AttemptStatusInProgress, entity.AttemptStatusAbandoned)
	if err != nil {
		return nil, err
	}
	if changed {
		attempt.Status = entity.AttemptStatusAbandoned
		monitoring.AttemptsFinished.WithLabelValues(entity.AttemptStatusAbandoned).Inc()
		s.log.Info("attempt abandoned", zap.Uint("attempt_id", attempt.ID))
		return attempt, nil
	}
	// попытку успели перевести в другое конечное состояние
	return s.getAttempt(ctx, attemptID)
}

// HandleTimeout переводит попытку в timed_out и считает результат по уже данным ответам
func (s *AttemptService) HandleTimeout(ctx context.Context, attemptID uint) (*CompleteQuizResult, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if attempt.IsInProgress() {
		changed, err := s.attemptRepo.TransitionStatus(ctx, attempt.ID, entity.AttemptStatusInProgress, entity.AttemptStatusTimedOut)
		if err != nil {
			return nil, err
		}
		if changed {
			s.log.Info("attempt timed out", zap.Uint("attempt_id", attempt.ID))
		}
	}

	return s.CompleteQuiz(ctx, attemptID)
}

// GetAttempt возвращает попытку с ответами
func (s *AttemptService) GetAttempt(ctx context.Context, attemptID uint) (*entity.QuizAttempt, error) {
	attempt, err := s.attemptRepo.GetWithResponses(ctx, attemptID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("attempt", attemptID)
		}
		return nil, err
	}
	return attempt, nil
}

// ListUserAttempts возвращает попытки пользователя по банку по возрастанию номера
func (s *AttemptService) ListUserAttempts(ctx context.Context, userID, quizBankID uint) ([]entity.QuizAttempt, error) {
	if _, err := s.getBank(ctx, quizBankID); err != nil {
		return nil, err
	}
	return s.attemptRepo.ListByUserAndBank(ctx, userID, quizBankID)
}

// AuthorizeAttempt возвращает попытку, если она принадлежит пользователю
func (s *AttemptService) AuthorizeAttempt(ctx context.Context, attemptID, userID uint) (*entity.QuizAttempt, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("attempt #%d belongs to another user: %w", attemptID, apperrors.ErrForbidden)
	}
	return attempt, nil
}

// IsExpired сообщает, истек ли лимит времени идущей попытки
func (s *AttemptService) IsExpired(ctx context.Context, attempt *entity.QuizAttempt) (bool, error) {
	if !attempt.IsInProgress() {
		return false, nil
	}
	bank, err := s.getBank(ctx, attempt.QuizBankID)
	if err != nil {
		return false, err
	}
	return attempt.IsExpired(bank.TimeLimit(), s.now()), nil
}

func (s *AttemptService) getAttempt(ctx context.Context, attemptID uint) (*entity.QuizAttempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("attempt", attemptID)
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	return attempt, nil
}

func (s *AttemptService) getBank(ctx context.Context, bankID uint) (*entity.QuizBank, error) {
	bank, err := s.bankRepo.GetByID(ctx, bankID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("quiz bank", bankID)
		}
		return nil, fmt.Errorf("load quiz bank: %w", err)
	}
	return bank, nil
}
