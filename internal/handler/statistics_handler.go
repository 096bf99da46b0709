package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/pkg/logger"
)

// StatisticsReader - отчеты по банкам и вопросам
type StatisticsReader interface {
	GetQuizStatistics(ctx context.Context, bankID uint) (*entity.QuizStatistics, error)
	GetStudentProgress(ctx context.Context, userID, bankID uint) (*entity.StudentProgress, error)
	GetQuestionStatistics(ctx context.Context, questionID uint) (*entity.QuestionStatistics, error)
	ExportAttempts(ctx context.Context, bankID uint) (*entity.QuizBank, []entity.QuizAttempt, error)
}

// StatisticsHandler отдает статистику и выгрузки попыток
type StatisticsHandler struct {
	stats StatisticsReader
	log   *zap.Logger
}

// NewStatisticsHandler создает обработчик статистики
func NewStatisticsHandler(stats StatisticsReader) *StatisticsHandler {
	return &StatisticsHandler{stats: stats, log: logger.Component("StatisticsHandler")}
}

// GetQuizStatistics GET /api/quiz-banks/:id/statistics
func (h *StatisticsHandler) GetQuizStatistics(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)

	stats, err := h.stats.GetQuizStatistics(c.Request.Context(), bankID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetMyProgress GET /api/quiz-banks/:id/progress/me
func (h *StatisticsHandler) GetMyProgress(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)
	userID, _ := currentUser(c)

	progress, err := h.stats.GetStudentProgress(c.Request.Context(), userID, bankID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetQuestionStatistics GET /api/questions/:id/statistics
func (h *StatisticsHandler) GetQuestionStatistics(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	stats, err := h.stats.GetQuestionStatistics(c.Request.Context(), questionID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

var exportHeaders = []string{"Попытка", "Пользователь", "Статус", "Баллы", "Всего баллов", "Процент", "Сдан", "Время (сек)", "Начата", "Завершена"}

// ExportAttempts выгружает завершенные попытки банка в CSV или Excel
// GET /api/quiz-banks/:id/export?format=csv|xlsx
func (h *StatisticsHandler) ExportAttempts(c *gin.Context) {
	bankID := c.MustGet("quizBankID").(uint)
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx", "error_type": "validation"})
		return
	}

	bank, attempts, err := h.stats.ExportAttempts(c.Request.Context(), bankID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("quiz_bank_%d_attempts_%s", bankID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, bank, attempts, filename)
	default:
		h.exportCSV(c, attempts, filename)
	}
}

// exportCSV пишет CSV с BOM, чтобы Excel корректно открыл UTF-8
func (h *StatisticsHandler) exportCSV(c *gin.Context, attempts []entity.QuizAttempt, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, a := range attempts {
		row := exportRow(&a)
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		writer.Write(record)
	}
}

// exportXLSX пишет Excel через StreamWriter
func (h *StatisticsHandler) exportXLSX(c *gin.Context, bank *entity.QuizBank, attempts []entity.QuizAttempt, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{Title: sanitizeForExcel(bank.Title), Creator: "quiz-engine"}); err != nil {
		h.log.Warn("failed to set document properties", zap.Error(err))
	}

	sheetName := "Попытки"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		h.log.Error("failed to rename sheet", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		h.log.Error("failed to create stream writer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, hdr := range exportHeaders {
		headers[i] = hdr
	}
	if err := sw.SetRow("A1", headers); err != nil {
		h.log.Error("failed to write header row", zap.Error(err))
	}

	for i := range attempts {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, exportRow(&attempts[i])); err != nil {
			h.log.Error("failed to write row", zap.Int("row", i+2), zap.Error(err))
		}
	}

	if err := sw.Flush(); err != nil {
		h.log.Error("failed to flush stream writer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.Error("failed to write xlsx response", zap.Error(err))
	}
}

// exportRow - одна строка выгрузки; nil-поля выводятся пустыми
func exportRow(a *entity.QuizAttempt) []interface{} {
	passed := "Нет"
	if a.IsPassed() {
		passed = "Да"
	}
	completedAt := ""
	if a.CompletedAt != nil {
		completedAt = a.CompletedAt.UTC().Format(time.RFC3339)
	}
	return []interface{}{
		a.AttemptNumber,
		a.UserID,
		a.Status,
		intOrEmpty(a.Score),
		intOrEmpty(a.TotalPoints),
		floatOrEmpty(a.Percentage),
		passed,
		intOrEmpty(a.TimeTakenSeconds),
		a.StartedAt.UTC().Format(time.RFC3339),
		completedAt,
	}
}

func intOrEmpty(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func floatOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
