package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
)

type statsMocks struct {
	banks     *MockQuizBankRepository
	questions *MockQuestionRepository
	attempts  *MockAttemptRepository
	responses *MockResponseRepository
	routine   *MockStatisticsRoutine
	cache     *MockCacheRepository
}

func newStatisticsServiceForTest(cfg StatisticsConfig) (*StatisticsService, *statsMocks) {
	m := &statsMocks{
		banks:     new(MockQuizBankRepository),
		questions: new(MockQuestionRepository),
		attempts:  new(MockAttemptRepository),
		responses: new(MockResponseRepository),
		routine:   new(MockStatisticsRoutine),
		cache:     new(MockCacheRepository),
	}
	s := NewStatisticsService(m.banks, m.questions, m.attempts, m.responses, m.routine, m.cache, cfg)
	return s, m
}

func completedAttempt(userID uint, score, total int, pct float64, passed bool, seconds *int) entity.QuizAttempt {
	return entity.QuizAttempt{
		QuizBankID:       1,
		UserID:           userID,
		Status:           entity.AttemptStatusCompleted,
		Score:            intPtr(score),
		TotalPoints:      intPtr(total),
		Percentage:       floatPtr(pct),
		Passed:           boolPtr(passed),
		TimeTakenSeconds: seconds,
	}
}

// ============================================================================
// ComputeQuizStatistics
// ============================================================================

func TestComputeQuizStatistics_NoAttempts(t *testing.T) {
	stats := ComputeQuizStatistics(1, nil)

	assert.Equal(t, uint(1), stats.QuizBankID)
	assert.Zero(t, stats.TotalAttempts)
	assert.Zero(t, stats.UniqueStudents)
	assert.Zero(t, stats.AverageScore)
	assert.Zero(t, stats.PassRate)
	assert.Nil(t, stats.AverageTimeSeconds)
}

func TestComputeQuizStatistics(t *testing.T) {
	attempts := []entity.QuizAttempt{
		completedAttempt(1, 5, 10, 50, false, intPtr(100)),
		completedAttempt(1, 10, 10, 100, true, intPtr(61)),
		completedAttempt(2, 8, 10, 80, true, nil),
	}

	stats := ComputeQuizStatistics(1, attempts)

	assert.Equal(t, 3, stats.TotalAttempts)
	assert.Equal(t, 2, stats.UniqueStudents)
	assert.Equal(t, 7.67, stats.AverageScore)
	assert.Equal(t, 76.67, stats.AveragePercentage)
	assert.Equal(t, 66.67, stats.PassRate)
	require.NotNil(t, stats.AverageTimeSeconds)
	assert.Equal(t, 81, *stats.AverageTimeSeconds)
}

// ============================================================================
// GetQuizStatistics
// ============================================================================

func TestGetQuizStatistics_CacheHit(t *testing.T) {
	s, m := newStatisticsServiceForTest(StatisticsConfig{RoutineEnabled: true, CacheTTL: time.Minute})
	m.banks.On("GetByID", mock.Anything, uint(1)).Return(&entity.QuizBank{ID: 1}, nil)
	m.cache.On("GetJSON", mock.Anything, "quiz_stats:1", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*entity.QuizStatistics)
			dest.QuizBankID = 1
			dest.TotalAttempts = 4
		}).
		Return(nil)

	stats, err := s.GetQuizStatistics(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalAttempts)
	m.routine.AssertNotCalled(t, "QuizStatistics", mock.Anything, mock.Anything)
	m.attempts.AssertNotCalled(t, "ListCompletedByBank", mock.Anything, mock.Anything)
}

func TestGetQuizStatistics_PrefersRoutine(t *testing.T) {
	s, m := newStatisticsServiceForTest(StatisticsConfig{RoutineEnabled: true, CacheTTL: time.Minute})
	m.banks.On("GetByID", mock.Anything, uint(1)).Return(&entity.QuizBank{ID: 1}, nil)
	m.cache.On("GetJSON", mock.Anything, "quiz_stats:1", mock.Anything).Return(apperrors.ErrNotFound)
	routineStats := &entity.QuizStatistics{QuizBankID: 1, TotalAttempts: 9}
	m.routine.On("QuizStatistics", mock.Anything, uint(1)).Return(routineStats, nil)
	m.cache.On("SetJSON", mock.Anything, "quiz_stats:1", routineStats, time.Minute).Return(nil)

	stats, err := s.GetQuizStatistics(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 9, stats.TotalAttempts)
	m.cache.AssertExpectations(t)
	m.attempts.AssertNotCalled(t, "ListCompletedByBank", mock.Anything, mock.Anything)
}

func TestGetQuizStatistics_FallsBackWhenRoutineFails(t *testing.T) {
	// Arrange
	s, m := newStatisticsServiceForTest(StatisticsConfig{RoutineEnabled: true, CacheTTL: time.Minute})
	m.banks.On("GetByID", mock.Anything, uint(1)).Return(&entity.QuizBank{ID: 1}, nil)
	m.cache.On("GetJSON", mock.Anything, "quiz_stats:1", mock.Anything).Return(errors.New("redis down"))
	m.routine.On("QuizStatistics", mock.Anything, uint(1)).Return(nil, errors.New("function get_quiz_statistics does not exist"))
	m.attempts.On("ListCompletedByBank", mock.Anything, uint(1)).Return([]entity.QuizAttempt{
		completedAttempt(1, 5, 10, 50, false, intPtr(30)),
	}, nil)
	m.cache.On("SetJSON", mock.Anything, "quiz_stats:1", mock.Anything, time.Minute).Return(errors.New("redis down"))

	// Act
	stats, err := s.GetQuizStatistics(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalAttempts)
	assert.Equal(t, 50.0, stats.AveragePercentage)
	assert.Equal(t, 0.0, stats.PassRate)
}

func TestGetQuizStatistics_ZeroAttempts(t *testing.T) {
	s, m := newStatisticsServiceForTest(StatisticsConfig{})
	m.banks.On("GetByID", mock.Anything, uint(1)).Return(&entity.QuizBank{ID: 1}, nil)
	m.cache.On("GetJSON", mock.Anything, "quiz_stats:1", mock.Anything).Return(apperrors.ErrNotFound)
	m.attempts.On("ListCompletedByBank", mock.Anything, uint(1)).Return([]entity.QuizAttempt{}, nil)

	stats, err := s.GetQuizStatistics(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, &entity.QuizStatistics{QuizBankID: 1}, stats)
	m.cache.AssertNotCalled(t, "SetJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetQuizStatistics_BankNotFound(t *testing.T) {
	s, m := newStatisticsServiceForTest(StatisticsConfig{})
	m.banks.On("GetByID", mock.Anything, uint(1)).Return(nil, apperrors.ErrNotFound)

	_, err := s.GetQuizStatistics(context.Background(), 1)

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

// ============================================================================
// GetStudentProgress
// ============================================================================

func TestGetStudentProgress_PicksBestCompleted(t *testing.T) {
	s, m := newStatisticsServiceForTest(StatisticsConfig{})
	m.banks.On("GetByID", mock.Anything, uint(1)).Return(&entity.QuizBank{ID: 1}, nil)

	first := completedAttempt(42, 6, 10, 60, false, nil)
	first.StartedAt = testNow.Add(-2 * time.Hour)
	second := completedAttempt(42, 9, 10, 90, true, nil)
	second.StartedAt = testNow.Add(-time.Hour)
	abandoned := entity.QuizAttempt{UserID: 42, Status: entity.AttemptStatusAbandoned, StartedAt: testNow}
	m.attempts.On("ListByUserAndBank", mock.Anything, uint(42), uint(1)).
		Return([]entity.QuizAttempt{first, second, abandoned}, nil)

	progress, err := s.GetStudentProgress(context.Background(), 42, 1)

	require.NoError(t, err)
	assert.Equal(t, 3, progress.AttemptsCount)
	assert.Equal(t, 9, *progress.BestScore)
	assert.Equal(t, 90.0, *progress.BestPercentage)
	assert.True(t, progress.Passed)
	assert.True(t, progress.LastAttemptedAt.Equal(testNow))
}

func TestGetStudentProgress_NoAttempts(t *testing.T) {
	s, m := newStatisticsServiceForTest(StatisticsConfig{})
	m.banks.On("GetByID", mock.Anything, uint(1)).Return(&entity.QuizBank{ID: 1}, nil)
	m.attempts.On("ListByUserAndBank", mock.Anything, uint(42), uint(1)).Return([]entity.QuizAttempt{}, nil)

	progress, err := s.GetStudentProgress(context.Background(), 42, 1)

	require.NoError(t, err)
	assert.Zero(t, progress.AttemptsCount)
	assert.False(t, progress.Passed)
	assert.Nil(t, progress.BestScore)
	assert.Nil(t, progress.LastAttemptedAt)
}

// ============================================================================
// GetQuestionStatistics
// ============================================================================

func TestGetQuestionStatistics(t *testing.T) {
	s, m := newStatisticsServiceForTest(StatisticsConfig{})
	m.questions.On("GetByID", mock.Anything, uint(4)).Return(&entity.QuizQuestion{ID: 4}, nil)
	m.responses.On("ListByQuestion", mock.Anything, uint(4)).Return([]entity.QuizResponse{
		{SelectedOptionID: uintPtr(7), IsCorrect: boolPtr(true), TimeSpentSeconds: intPtr(10)},
		{SelectedOptionID: uintPtr(8), IsCorrect: boolPtr(false), TimeSpentSeconds: intPtr(15)},
		{SelectedOptionID: uintPtr(7), IsCorrect: boolPtr(true)},
	}, nil)

	stats, err := s.GetQuestionStatistics(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalResponses)
	assert.Equal(t, 2, stats.CorrectResponses)
	assert.Equal(t, 66.67, stats.AccuracyPercentage)
	assert.Equal(t, 12.5, *stats.AverageTimeSeconds)
	assert.Equal(t, map[uint]int{7: 2, 8: 1}, stats.OptionDistribution)
}

func TestComputeQuestionStatistics_FreeTextOnly(t *testing.T) {
	stats := ComputeQuestionStatistics(5, []entity.QuizResponse{{AnswerText: strPtr("chan")}})

	assert.Equal(t, 1, stats.TotalResponses)
	assert.Zero(t, stats.AccuracyPercentage)
	assert.Nil(t, stats.AverageTimeSeconds)
	assert.Nil(t, stats.OptionDistribution)
}

func TestExportAttempts(t *testing.T) {
	s, m := newStatisticsServiceForTest(StatisticsConfig{})
	m.banks.On("GetByID", mock.Anything, uint(1)).Return(&entity.QuizBank{ID: 1, Title: "Quiz"}, nil)
	m.attempts.On("ListCompletedByBank", mock.Anything, uint(1)).Return([]entity.QuizAttempt{completedAttempt(1, 5, 10, 50, false, nil)}, nil)

	bank, attempts, err := s.ExportAttempts(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "Quiz", bank.Title)
	assert.Len(t, attempts, 1)
}
