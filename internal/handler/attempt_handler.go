package handler

import (
	"context"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/handler/dto"
	"github.com/yourusername/quiz-engine/internal/handler/helper"
	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
	"github.com/yourusername/quiz-engine/internal/service"
	"github.com/yourusername/quiz-engine/pkg/logger"
)

// AttemptController - операции жизненного цикла попытки
type AttemptController interface {
	StartQuiz(ctx context.Context, quizBankID, userID uint) (*entity.QuizAttempt, error)
	SubmitAnswer(ctx context.Context, input service.SubmitAnswerInput) (*entity.QuizResponse, error)
	CompleteQuiz(ctx context.Context, attemptID uint) (*service.CompleteQuizResult, error)
	AbandonQuiz(ctx context.Context, attemptID uint) (*entity.QuizAttempt, error)
	HandleTimeout(ctx context.Context, attemptID uint) (*service.CompleteQuizResult, error)
	GetAttempt(ctx context.Context, attemptID uint) (*entity.QuizAttempt, error)
	ListUserAttempts(ctx context.Context, userID, quizBankID uint) ([]entity.QuizAttempt, error)
	IsExpired(ctx context.Context, attempt *entity.QuizAttempt) (bool, error)
	AuthorizeAttempt(ctx context.Context, attemptID, userID uint) (*entity.QuizAttempt, error)
}

// QuizBankReader загружает банк вместе с вопросами
type QuizBankReader interface {
	GetQuizBank(ctx context.Context, id uint, includeOptions bool) (*entity.QuizBank, error)
}

// AttemptHandler обрабатывает прохождение квиза студентом
type AttemptHandler struct {
	attempts AttemptController
	banks    QuizBankReader
	shuffle  helper.Shuffler
	log      *zap.Logger
}

// NewAttemptHandler создает обработчик попыток
func NewAttemptHandler(attempts AttemptController, banks QuizBankReader) *AttemptHandler {
	return &AttemptHandler{
		attempts: attempts,
		banks:    banks,
		shuffle:  rand.Shuffle,
		log:      logger.Component("AttemptHandler"),
	}
}

// StartAttempt POST /api/quiz-banks/:id/attempts
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)
	userID, _ := currentUser(c)
	ctx := c.Request.Context()

	bank, err := h.banks.GetQuizBank(ctx, bankID, true)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	if !bank.IsPublished && !isAuthor(c) {
		handleError(c, h.log, apperrors.NewNotFoundError("quiz bank", bankID))
		return
	}

	attempt, err := h.attempts.StartQuiz(ctx, bankID, userID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.StartAttemptResponse{
		Attempt: attempt,
		Quiz:    dto.NewStudentQuizBankResponse(bank, h.shuffle),
	})
}

// ListMyAttempts GET /api/quiz-banks/:id/attempts/me
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)
	userID, _ := currentUser(c)

	attempts, err := h.attempts.ListUserAttempts(c.Request.Context(), userID, bankID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

// GetAttempt GET /api/attempts/:id
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	userID, _ := currentUser(c)
	ctx := c.Request.Context()

	attempt, err := h.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	author := isAuthor(c)
	if attempt.UserID != userID && !author {
		handleError(c, h.log, apperrors.ErrForbidden)
		return
	}

	bank, err := h.banks.GetQuizBank(ctx, attempt.QuizBankID, false)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	expired, err := h.attempts.IsExpired(ctx, attempt)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt, bank.ShowCorrectAnswers || author, expired))
}

// SubmitAnswer POST /api/attempts/:id/responses
// Если время попытки вышло, попытка завершается по таймауту и ответ не принимается.
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	userID, _ := currentUser(c)
	ctx := c.Request.Context()

	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	attempt, err := h.attempts.AuthorizeAttempt(ctx, attemptID, userID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	expired, err := h.attempts.IsExpired(ctx, attempt)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	if expired {
		result, err := h.attempts.HandleTimeout(ctx, attemptID)
		if err != nil {
			handleError(c, h.log, err)
			return
		}
		c.JSON(http.StatusConflict, gin.H{
			"error":      "time limit exceeded",
			"error_type": "time_limit_exceeded",
			"result":     result,
		})
		return
	}

	response, err := h.attempts.SubmitAnswer(ctx, req.ToInput(attemptID))
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	// Правильность ответа раскрывается только в результатах попытки
	saved := *response
	saved.IsCorrect = nil
	saved.PointsEarned = nil
	c.JSON(http.StatusOK, &saved)
}

// CompleteAttempt POST /api/attempts/:id/complete
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	h.finish(c, h.attempts.CompleteQuiz)
}

// TimeoutAttempt POST /api/attempts/:id/timeout
func (h *AttemptHandler) TimeoutAttempt(c *gin.Context) {
	h.finish(c, h.attempts.HandleTimeout)
}

func (h *AttemptHandler) finish(c *gin.Context, op func(ctx context.Context, attemptID uint) (*service.CompleteQuizResult, error)) {
	attemptID := c.MustGet("attemptID").(uint)
	userID, _ := currentUser(c)
	ctx := c.Request.Context()

	if _, err := h.attempts.AuthorizeAttempt(ctx, attemptID, userID); err != nil {
		handleError(c, h.log, err)
		return
	}

	result, err := op(ctx, attemptID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AbandonAttempt POST /api/attempts/:id/abandon
func (h *AttemptHandler) AbandonAttempt(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	userID, _ := currentUser(c)
	ctx := c.Request.Context()

	if _, err := h.attempts.AuthorizeAttempt(ctx, attemptID, userID); err != nil {
		handleError(c, h.log, err)
		return
	}

	attempt, err := h.attempts.AbandonQuiz(ctx, attemptID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}
