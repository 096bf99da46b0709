package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/domain/repository"
	"github.com/yourusername/quiz-engine/internal/service/scoring"
)

// ============================================================================
// Моки репозиториев, общие для тестов пакета service
// ============================================================================

// MockQuizBankRepository реализует repository.QuizBankRepository
type MockQuizBankRepository struct {
	mock.Mock
}

func (m *MockQuizBankRepository) Create(ctx context.Context, bank *entity.QuizBank) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockQuizBankRepository) CreateWithQuestions(ctx context.Context, bank *entity.QuizBank) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockQuizBankRepository) GetByID(ctx context.Context, id uint) (*entity.QuizBank, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizBank), args.Error(1)
}

func (m *MockQuizBankRepository) ListByCourse(ctx context.Context, courseID uint, publishedOnly bool) ([]entity.QuizBank, error) {
	args := m.Called(ctx, courseID, publishedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizBank), args.Error(1)
}

func (m *MockQuizBankRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockQuizBankRepository) SetPublished(ctx context.Context, id uint, published bool) error {
	args := m.Called(ctx, id, published)
	return args.Error(0)
}

func (m *MockQuizBankRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *entity.QuizQuestion) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []entity.QuizQuestion) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*entity.QuizQuestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizQuestion), args.Error(1)
}

func (m *MockQuestionRepository) GetWithOptions(ctx context.Context, id uint) (*entity.QuizQuestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizQuestion), args.Error(1)
}

func (m *MockQuestionRepository) ListByBank(ctx context.Context, bankID uint) ([]entity.QuizQuestion, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizQuestion), args.Error(1)
}

func (m *MockQuestionRepository) ListOptions(ctx context.Context, questionIDs []uint) ([]entity.QuizOption, error) {
	args := m.Called(ctx, questionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizOption), args.Error(1)
}

func (m *MockQuestionRepository) GetOption(ctx context.Context, optionID uint) (*entity.QuizOption, error) {
	args := m.Called(ctx, optionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizOption), args.Error(1)
}

func (m *MockQuestionRepository) CountByBank(ctx context.Context, bankID uint) (int64, error) {
	args := m.Called(ctx, bankID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) SumPointsByBank(ctx context.Context, bankID uint) (int, error) {
	args := m.Called(ctx, bankID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, id uint, updates map[string]interface{}, options []entity.QuizOption) error {
	args := m.Called(ctx, id, updates, options)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) Reorder(ctx context.Context, bankID uint, orderedIDs []uint) error {
	args := m.Called(ctx, bankID, orderedIDs)
	return args.Error(0)
}

// MockAttemptRepository реализует repository.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *entity.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*entity.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetWithResponses(ctx context.Context, id uint) (*entity.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) CountByStatus(ctx context.Context, userID, bankID uint, status string) (int64, error) {
	args := m.Called(ctx, userID, bankID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) MaxAttemptNumber(ctx context.Context, userID, bankID uint) (int, error) {
	args := m.Called(ctx, userID, bankID)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptRepository) ListByUserAndBank(ctx context.Context, userID, bankID uint) ([]entity.QuizAttempt, error) {
	args := m.Called(ctx, userID, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) ListCompletedByBank(ctx context.Context, bankID uint) ([]entity.QuizAttempt, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) TransitionStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) Finalize(ctx context.Context, id uint, fin repository.AttemptFinalization) (bool, error) {
	args := m.Called(ctx, id, fin)
	return args.Bool(0), args.Error(1)
}

// MockResponseRepository реализует repository.ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Upsert(ctx context.Context, response *entity.QuizResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) ApplyGrade(ctx context.Context, attemptID, questionID, selectedOptionID uint, isCorrect bool, points int) (bool, error) {
	args := m.Called(ctx, attemptID, questionID, selectedOptionID, isCorrect, points)
	return args.Bool(0), args.Error(1)
}

func (m *MockResponseRepository) ListByAttempt(ctx context.Context, attemptID uint) ([]entity.QuizResponse, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizResponse), args.Error(1)
}

func (m *MockResponseRepository) ListByQuestion(ctx context.Context, questionID uint) ([]entity.QuizResponse, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizResponse), args.Error(1)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// MockGamificationRepository реализует repository.GamificationRepository
type MockGamificationRepository struct {
	mock.Mock
}

func (m *MockGamificationRepository) Create(ctx context.Context, entry *entity.GamificationPoint) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockStatisticsRoutine реализует repository.StatisticsRoutineRepository
type MockStatisticsRoutine struct {
	mock.Mock
}

func (m *MockStatisticsRoutine) QuizStatistics(ctx context.Context, bankID uint) (*entity.QuizStatistics, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizStatistics), args.Error(1)
}

// MockScorer реализует scoring.Scorer
type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(ctx context.Context, attempt *entity.QuizAttempt) (*scoring.Result, error) {
	args := m.Called(ctx, attempt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.Result), args.Error(1)
}

// MockAwarder реализует PointsAwarder
type MockAwarder struct {
	mock.Mock
}

func (m *MockAwarder) Award(ctx context.Context, attempt *entity.QuizAttempt) AwardOutcome {
	args := m.Called(ctx, attempt)
	return args.Get(0).(AwardOutcome)
}

func intPtr(v int) *int           { return &v }
func uintPtr(v uint) *uint        { return &v }
func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
