package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
	"github.com/yourusername/quiz-engine/internal/service/scoring"
	"github.com/yourusername/quiz-engine/pkg/logger"
	"github.com/yourusername/quiz-engine/pkg/monitoring"
)

// QuizStatisticsCacheKey - ключ кеша агрегатов банка
func QuizStatisticsCacheKey(bankID uint) string {
	return fmt.Sprintf("quiz_stats:%d", bankID)
}

// StatisticsConfig содержит настройки агрегатора
type StatisticsConfig struct {
	// RoutineEnabled включает хранимую функцию get_quiz_statistics
	RoutineEnabled bool
	CacheTTL       time.Duration
}

// StatisticsService строит отчеты для преподавателя по завершенным попыткам
type StatisticsService struct {
	bankRepo     repository.QuizBankRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	responseRepo repository.ResponseRepository
	routine      repository.StatisticsRoutineRepository
	cacheRepo    repository.CacheRepository
	config       StatisticsConfig
	log          *zap.Logger
}

// NewStatisticsService создает сервис статистики
func NewStatisticsService(
	bankRepo repository.QuizBankRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	responseRepo repository.ResponseRepository,
	routine repository.StatisticsRoutineRepository,
	cacheRepo repository.CacheRepository,
	config StatisticsConfig,
) *StatisticsService {
	return &StatisticsService{
		bankRepo:     bankRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		responseRepo: responseRepo,
		routine:      routine,
		cacheRepo:    cacheRepo,
		config:       config,
		log:          logger.Component("StatisticsService"),
	}
}

// GetQuizStatistics возвращает агрегаты по завершенным попыткам банка.
// Порядок: кеш → get_quiz_statistics → подсчет в приложении.
func (s *StatisticsService) GetQuizStatistics(ctx context.Context, bankID uint) (*entity.QuizStatistics, error) {
	if err := s.ensureBank(ctx, bankID); err != nil {
		return nil, err
	}

	key := QuizStatisticsCacheKey(bankID)
	var cached entity.QuizStatistics
	err := s.cacheRepo.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.log.Warn("statistics cache read failed", zap.String("key", key), zap.Error(err))
	}

	var stats *entity.QuizStatistics
	if s.config.RoutineEnabled && s.routine != nil {
		stats, err = s.routine.QuizStatistics(ctx, bankID)
		if err != nil {
			monitoring.BestEffortFailures.WithLabelValues("statistics_routine").Inc()
			s.log.Warn("get_quiz_statistics failed, computing locally",
				zap.Uint("quiz_bank_id", bankID), zap.Error(err))
			stats = nil
		}
	}

	if stats == nil {
		attempts, err := s.attemptRepo.ListCompletedByBank(ctx, bankID)
		if err != nil {
			return nil, fmt.Errorf("list completed attempts: %w", err)
		}
		stats = ComputeQuizStatistics(bankID, attempts)
	}

	if s.config.CacheTTL > 0 {
		if err := s.cacheRepo.SetJSON(ctx, key, stats, s.config.CacheTTL); err != nil {
			monitoring.BestEffortFailures.WithLabelValues("cache").Inc()
			s.log.Warn("statistics cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return stats, nil
}

// ComputeQuizStatistics считает агрегаты по списку завершенных попыток
func ComputeQuizStatistics(bankID uint, attempts []entity.QuizAttempt) *entity.QuizStatistics {
	stats := &entity.QuizStatistics{QuizBankID: bankID}
	if len(attempts) == 0 {
		return stats
	}

	students := make(map[uint]struct{})
	scoreSum := decimal.Zero
	pctSum := decimal.Zero
	passed := 0
	timeSum, timeCount := 0, 0

	for i := range attempts {
		a := &attempts[i]
		students[a.UserID] = struct{}{}
		if a.Score != nil {
			scoreSum = scoreSum.Add(decimal.NewFromInt(int64(*a.Score)))
		}
		if a.Percentage != nil {
			pctSum = pctSum.Add(decimal.NewFromFloat(*a.Percentage))
		}
		if a.IsPassed() {
			passed++
		}
		if a.TimeTakenSeconds != nil {
			timeSum += *a.TimeTakenSeconds
			timeCount++
		}
	}

	n := decimal.NewFromInt(int64(len(attempts)))
	stats.TotalAttempts = len(attempts)
	stats.UniqueStudents = len(students)
	stats.AverageScore = scoreSum.Div(n).Round(2).InexactFloat64()
	stats.AveragePercentage = pctSum.Div(n).Round(2).InexactFloat64()
	stats.PassRate = scoring.Percentage(passed, len(attempts))
	if timeCount > 0 {
		avg := int(math.Round(float64(timeSum) / float64(timeCount)))
		stats.AverageTimeSeconds = &avg
	}
	return stats
}

// GetStudentProgress возвращает прогресс пользователя по банку
func (s *StatisticsService) GetStudentProgress(ctx context.Context, userID, bankID uint) (*entity.StudentProgress, error) {
	if err := s.ensureBank(ctx, bankID); err != nil {
		return nil, err
	}

	attempts, err := s.attemptRepo.ListByUserAndBank(ctx, userID, bankID)
	if err != nil {
		return nil, fmt.Errorf("list user attempts: %w", err)
	}

	progress := &entity.StudentProgress{
		UserID:        userID,
		QuizBankID:    bankID,
		AttemptsCount: len(attempts),
	}

	var best *entity.QuizAttempt
	for i := range attempts {
		a := &attempts[i]
		if progress.LastAttemptedAt == nil || a.StartedAt.After(*progress.LastAttemptedAt) {
			started := a.StartedAt
			progress.LastAttemptedAt = &started
		}
		if a.Status != entity.AttemptStatusCompleted || a.Score == nil {
			continue
		}
		if best == nil || *a.Score > *best.Score {
			best = a
		}
	}

	if best != nil {
		progress.BestScore = best.Score
		progress.BestPercentage = best.Percentage
		progress.Passed = best.IsPassed()
	}
	return progress, nil
}

// GetQuestionStatistics возвращает точность и распределение ответов по вопросу
func (s *StatisticsService) GetQuestionStatistics(ctx context.Context, questionID uint) (*entity.QuestionStatistics, error) {
	if _, err := s.questionRepo.GetByID(ctx, questionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("question", questionID)
		}
		return nil, err
	}

	responses, err := s.responseRepo.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return ComputeQuestionStatistics(questionID, responses), nil
}

// ComputeQuestionStatistics считает статистику по ответам на вопрос
func ComputeQuestionStatistics(questionID uint, responses []entity.QuizResponse) *entity.QuestionStatistics {
	stats := &entity.QuestionStatistics{
		QuestionID:     questionID,
		TotalResponses: len(responses),
	}

	timeSum, timeCount := 0, 0
	for i := range responses {
		r := &responses[i]
		if r.IsCorrect != nil && *r.IsCorrect {
			stats.CorrectResponses++
		}
		if r.TimeSpentSeconds != nil {
			timeSum += *r.TimeSpentSeconds
			timeCount++
		}
		if r.SelectedOptionID != nil {
			if stats.OptionDistribution == nil {
				stats.OptionDistribution = make(map[uint]int)
			}
			stats.OptionDistribution[*r.SelectedOptionID]++
		}
	}

	stats.AccuracyPercentage = scoring.Percentage(stats.CorrectResponses, stats.TotalResponses)
	if timeCount > 0 {
		avg := decimal.NewFromInt(int64(timeSum)).
			Div(decimal.NewFromInt(int64(timeCount))).
			Round(2).
			InexactFloat64()
		stats.AverageTimeSeconds = &avg
	}
	return stats
}

// ExportAttempts возвращает банк и его завершенные попытки для выгрузки
func (s *StatisticsService) ExportAttempts(ctx context.Context, bankID uint) (*entity.QuizBank, []entity.QuizAttempt, error) {
	bank, err := s.bankRepo.GetByID(ctx, bankID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.NewNotFoundError("quiz bank", bankID)
		}
		return nil, nil, err
	}

	attempts, err := s.attemptRepo.ListCompletedByBank(ctx, bankID)
	if err != nil {
		return nil, nil, fmt.Errorf("list completed attempts: %w", err)
	}
	return bank, attempts, nil
}

func (s *StatisticsService) ensureBank(ctx context.Context, bankID uint) error {
	if _, err := s.bankRepo.GetByID(ctx, bankID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("quiz bank", bankID)
		}
		return fmt.Errorf("load quiz bank: %w", err)
	}
	return nil
}
