package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
)

// Колонки листа импорта: текст, тип, баллы, пояснение, затем варианты.
// Вариант с префиксом "*" считается правильным.
const (
	importColText = iota
	importColType
	importColPoints
	importColExplanation
	importColFirstOption
)

// maxImportRows ограничивает размер одного файла импорта
const maxImportRows = 1000

// ImportQuestions загружает вопросы из первого листа xlsx-файла.
// Первая строка - заголовок. Все вопросы сохраняются одной транзакцией.
func (s *QuizBankService) ImportQuestions(ctx context.Context, bankID uint, r io.Reader) ([]entity.QuizQuestion, error) {
	if _, err := s.getBank(ctx, bankID); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewValidationError("file", "not a valid xlsx file")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, apperrors.NewValidationError("file", "workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, apperrors.NewValidationError("file", "no questions found")
	}
	if len(rows)-1 > maxImportRows {
		return nil, apperrors.NewValidationError("file", fmt.Sprintf("at most %d questions per import", maxImportRows))
	}

	count, err := s.questionRepo.CountByBank(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	nextIndex := int(count)

	questions := make([]entity.QuizQuestion, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		q, err := parseImportRow(row, i+2)
		if err != nil {
			return nil, err
		}
		q.QuizBankID = bankID
		q.OrderIndex = nextIndex
		nextIndex++
		questions = append(questions, *q)
	}
	if len(questions) == 0 {
		return nil, apperrors.NewValidationError("file", "no questions found")
	}

	if err := s.questionRepo.CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("failed to import questions: %w", err)
	}

	s.log.Info("questions imported", zap.Uint("quiz_bank_id", bankID), zap.Int("count", len(questions)))
	return questions, nil
}

// parseImportRow разбирает одну строку листа; rowNum - номер строки в Excel
func parseImportRow(row []string, rowNum int) (*entity.QuizQuestion, error) {
	field := fmt.Sprintf("row %d", rowNum)
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	q := &entity.QuizQuestion{
		QuestionText: cell(importColText),
		QuestionType: entity.QuestionType(strings.ToLower(cell(importColType))),
		Points:       1,
	}
	if q.QuestionType == "" {
		q.QuestionType = entity.QuestionTypeMultipleChoice
	}
	if raw := cell(importColPoints); raw != "" {
		points, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(field, fmt.Sprintf("points %q is not a number", raw))
		}
		q.Points = points
	}
	if explanation := cell(importColExplanation); explanation != "" {
		q.Explanation = &explanation
	}

	for idx := importColFirstOption; idx < len(row); idx++ {
		text := cell(idx)
		if text == "" {
			continue
		}
		correct := strings.HasPrefix(text, "*")
		if correct {
			text = strings.TrimSpace(strings.TrimPrefix(text, "*"))
		}
		q.Options = append(q.Options, entity.QuizOption{
			OptionText: text,
			IsCorrect:  correct,
			OrderIndex: len(q.Options),
		})
	}

	if err := validateQuestion(q); err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			return nil, apperrors.NewValidationError(field, verr.Field+" "+verr.Message)
		}
		return nil, err
	}
	if q.QuestionType.IsOptionBased() && len(q.Options) < 2 {
		return nil, apperrors.NewValidationError(field, "option-based question needs at least two options")
	}
	return q, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
