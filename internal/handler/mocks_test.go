package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/middleware"
	"github.com/yourusername/quiz-engine/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockQuizBankManager реализует QuizBankManager
type MockQuizBankManager struct {
	mock.Mock
}

func (m *MockQuizBankManager) CreateQuizBank(ctx context.Context, input service.CreateQuizBankInput, creatorID uint) (*entity.QuizBank, error) {
	args := m.Called(ctx, input, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizBank), args.Error(1)
}

func (m *MockQuizBankManager) UpdateQuizBank(ctx context.Context, id uint, input service.UpdateQuizBankInput) (*entity.QuizBank, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizBank), args.Error(1)
}

func (m *MockQuizBankManager) DeleteQuizBank(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockQuizBankManager) GetQuizBank(ctx context.Context, id uint, includeOptions bool) (*entity.QuizBank, error) {
	args := m.Called(ctx, id, includeOptions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizBank), args.Error(1)
}

func (m *MockQuizBankManager) GetQuizBanksByCourse(ctx context.Context, courseID uint, publishedOnly bool) ([]entity.QuizBank, error) {
	args := m.Called(ctx, courseID, publishedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizBank), args.Error(1)
}

func (m *MockQuizBankManager) CreateQuestion(ctx context.Context, bankID uint, input service.CreateQuestionInput) (*entity.QuizQuestion, error) {
	args := m.Called(ctx, bankID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizQuestion), args.Error(1)
}

func (m *MockQuizBankManager) UpdateQuestion(ctx context.Context, questionID uint, input service.UpdateQuestionInput) (*entity.QuizQuestion, error) {
	args := m.Called(ctx, questionID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizQuestion), args.Error(1)
}

func (m *MockQuizBankManager) DeleteQuestion(ctx context.Context, questionID uint) error {
	return m.Called(ctx, questionID).Error(0)
}

func (m *MockQuizBankManager) ReorderQuestions(ctx context.Context, bankID uint, orderedIDs []uint) error {
	return m.Called(ctx, bankID, orderedIDs).Error(0)
}

func (m *MockQuizBankManager) TogglePublish(ctx context.Context, id uint, isPublished bool) error {
	return m.Called(ctx, id, isPublished).Error(0)
}

func (m *MockQuizBankManager) DuplicateQuizBank(ctx context.Context, id uint, newTitle string, creatorID uint) (*entity.QuizBank, error) {
	args := m.Called(ctx, id, newTitle, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizBank), args.Error(1)
}

func (m *MockQuizBankManager) ImportQuestions(ctx context.Context, bankID uint, r io.Reader) ([]entity.QuizQuestion, error) {
	args := m.Called(ctx, bankID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizQuestion), args.Error(1)
}

// MockAttemptController реализует AttemptController
type MockAttemptController struct {
	mock.Mock
}

func (m *MockAttemptController) StartQuiz(ctx context.Context, quizBankID, userID uint) (*entity.QuizAttempt, error) {
	args := m.Called(ctx, quizBankID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptController) SubmitAnswer(ctx context.Context, input service.SubmitAnswerInput) (*entity.QuizResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizResponse), args.Error(1)
}

func (m *MockAttemptController) CompleteQuiz(ctx context.Context, attemptID uint) (*service.CompleteQuizResult, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CompleteQuizResult), args.Error(1)
}

func (m *MockAttemptController) AbandonQuiz(ctx context.Context, attemptID uint) (*entity.QuizAttempt, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptController) HandleTimeout(ctx context.Context, attemptID uint) (*service.CompleteQuizResult, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CompleteQuizResult), args.Error(1)
}

func (m *MockAttemptController) GetAttempt(ctx context.Context, attemptID uint) (*entity.QuizAttempt, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptController) ListUserAttempts(ctx context.Context, userID, quizBankID uint) ([]entity.QuizAttempt, error) {
	args := m.Called(ctx, userID, quizBankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptController) IsExpired(ctx context.Context, attempt *entity.QuizAttempt) (bool, error) {
	args := m.Called(ctx, attempt)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptController) AuthorizeAttempt(ctx context.Context, attemptID, userID uint) (*entity.QuizAttempt, error) {
	args := m.Called(ctx, attemptID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizAttempt), args.Error(1)
}

// MockStatisticsReader реализует StatisticsReader
type MockStatisticsReader struct {
	mock.Mock
}

func (m *MockStatisticsReader) GetQuizStatistics(ctx context.Context, bankID uint) (*entity.QuizStatistics, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizStatistics), args.Error(1)
}

func (m *MockStatisticsReader) GetStudentProgress(ctx context.Context, userID, bankID uint) (*entity.StudentProgress, error) {
	args := m.Called(ctx, userID, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StudentProgress), args.Error(1)
}

func (m *MockStatisticsReader) GetQuestionStatistics(ctx context.Context, questionID uint) (*entity.QuestionStatistics, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuestionStatistics), args.Error(1)
}

func (m *MockStatisticsReader) ExportAttempts(ctx context.Context, bankID uint) (*entity.QuizBank, []entity.QuizAttempt, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entity.QuizBank), args.Get(1).([]entity.QuizAttempt), args.Error(2)
}

// ============================================================================
// Хелперы HTTP-тестов
// ============================================================================

// newTestRouter имитирует RequireAuth: выставляет пользователя и роль
func newTestRouter(userID uint, role string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

func noShuffle(int, func(i, j int)) {}

// reverseShuffle - детерминированная "перестановка" для проверки флагов перемешивания
func reverseShuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func intPtr(v int) *int           { return &v }
func uintPtr(v uint) *uint        { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func jsonUnmarshal(w *httptest.ResponseRecorder, dest interface{}) error {
	return json.Unmarshal(w.Body.Bytes(), dest)
}
