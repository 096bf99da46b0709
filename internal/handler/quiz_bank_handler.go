package handler

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/handler/dto"
	"github.com/yourusername/quiz-engine/internal/handler/helper"
	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
	"github.com/yourusername/quiz-engine/internal/service"
	"github.com/yourusername/quiz-engine/pkg/logger"
)

// maxImportFileSize ограничивает размер xlsx при импорте вопросов
const maxImportFileSize = 10 << 20

// QuizBankManager - операции над банками, которые использует обработчик
type QuizBankManager interface {
	CreateQuizBank(ctx context.Context, input service.CreateQuizBankInput, creatorID uint) (*entity.QuizBank, error)
	UpdateQuizBank(ctx context.Context, id uint, input service.UpdateQuizBankInput) (*entity.QuizBank, error)
	DeleteQuizBank(ctx context.Context, id uint) error
	GetQuizBank(ctx context.Context, id uint, includeOptions bool) (*entity.QuizBank, error)
	GetQuizBanksByCourse(ctx context.Context, courseID uint, publishedOnly bool) ([]entity.QuizBank, error)
	CreateQuestion(ctx context.Context, bankID uint, input service.CreateQuestionInput) (*entity.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, questionID uint, input service.UpdateQuestionInput) (*entity.QuizQuestion, error)
	DeleteQuestion(ctx context.Context, questionID uint) error
	ReorderQuestions(ctx context.Context, bankID uint, orderedIDs []uint) error
	TogglePublish(ctx context.Context, id uint, isPublished bool) error
	DuplicateQuizBank(ctx context.Context, id uint, newTitle string, creatorID uint) (*entity.QuizBank, error)
	ImportQuestions(ctx context.Context, bankID uint, r io.Reader) ([]entity.QuizQuestion, error)
}

// QuizBankHandler обрабатывает запросы авторинга банков вопросов
type QuizBankHandler struct {
	banks   QuizBankManager
	shuffle helper.Shuffler
	log     *zap.Logger
}

// NewQuizBankHandler создает обработчик банков
func NewQuizBankHandler(banks QuizBankManager) *QuizBankHandler {
	return &QuizBankHandler{
		banks:   banks,
		shuffle: rand.Shuffle,
		log:     logger.Component("QuizBankHandler"),
	}
}

// CreateQuizBank POST /api/quiz-banks
func (h *QuizBankHandler) CreateQuizBank(c *gin.Context) {
	var req dto.CreateQuizBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	userID, _ := currentUser(c)
	bank, err := h.banks.CreateQuizBank(c.Request.Context(), req.ToInput(), userID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, bank)
}

// GetQuizBanksByCourse GET /api/courses/:courseId/quiz-banks?published_only=
// Студент всегда видит только опубликованные банки.
func (h *QuizBankHandler) GetQuizBanksByCourse(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	publishedOnly := true
	if isAuthor(c) {
		publishedOnly, _ = strconv.ParseBool(c.DefaultQuery("published_only", "false"))
	}

	banks, err := h.banks.GetQuizBanksByCourse(c.Request.Context(), courseID, publishedOnly)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quiz_banks": dto.NewQuizBankList(banks)})
}

// GetQuizBank GET /api/quiz-banks/:id
func (h *QuizBankHandler) GetQuizBank(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)

	bank, err := h.banks.GetQuizBank(c.Request.Context(), bankID, true)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	if isAuthor(c) {
		c.JSON(http.StatusOK, bank)
		return
	}
	if !bank.IsPublished {
		handleError(c, h.log, apperrors.NewNotFoundError("quiz bank", bankID))
		return
	}
	c.JSON(http.StatusOK, dto.NewStudentQuizBankResponse(bank, h.shuffle))
}

// UpdateQuizBank PATCH /api/quiz-banks/:id
func (h *QuizBankHandler) UpdateQuizBank(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)

	var req dto.UpdateQuizBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	bank, err := h.banks.UpdateQuizBank(c.Request.Context(), bankID, req.ToInput())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, bank)
}

// DeleteQuizBank DELETE /api/quiz-banks/:id
func (h *QuizBankHandler) DeleteQuizBank(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)

	if err := h.banks.DeleteQuizBank(c.Request.Context(), bankID); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// TogglePublish PUT /api/quiz-banks/:id/publish
func (h *QuizBankHandler) TogglePublish(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)

	var req dto.TogglePublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.banks.TogglePublish(c.Request.Context(), bankID, *req.IsPublished); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": bankID, "is_published": *req.IsPublished})
}

// DuplicateQuizBank POST /api/quiz-banks/:id/duplicate
func (h *QuizBankHandler) DuplicateQuizBank(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)

	var req dto.DuplicateQuizBankRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	userID, _ := currentUser(c)
	copied, err := h.banks.DuplicateQuizBank(c.Request.Context(), bankID, req.Title, userID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, copied)
}

// CreateQuestion POST /api/quiz-banks/:id/questions
func (h *QuizBankHandler) CreateQuestion(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)

	var req dto.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	question, err := h.banks.CreateQuestion(c.Request.Context(), bankID, req.ToInput())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// ImportQuestions POST /api/quiz-banks/:id/questions/import (multipart, поле "file")
func (h *QuizBankHandler) ImportQuestions(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "xlsx file is required in form field \"file\"", "error_type": "validation"})
		return
	}
	if fileHeader.Size > maxImportFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	defer file.Close()

	questions, err := h.banks.ImportQuestions(c.Request.Context(), bankID, file)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imported": len(questions), "questions": questions})
}

// ReorderQuestions PUT /api/quiz-banks/:id/questions/order
func (h *QuizBankHandler) ReorderQuestions(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)

	var req dto.ReorderQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.banks.ReorderQuestions(c.Request.Context(), bankID, req.QuestionIDs); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateQuestion PATCH /api/questions/:id
func (h *QuizBankHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req dto.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	question, err := h.banks.UpdateQuestion(c.Request.Context(), questionID, req.ToInput())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion DELETE /api/questions/:id
func (h *QuizBankHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.banks.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
