package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-engine/internal/pkg/errors"
	"github.com/yourusername/quiz-engine/pkg/logger"
)

// CreateQuizBankInput - параметры нового банка. nil-поля получают значения по умолчанию.
type CreateQuizBankInput struct {
	CourseID           uint
	Title              string
	Description        string
	Category           string
	DifficultyLevel    string
	PassPercentage     *int
	TimeLimitMinutes   *int
	MaxAttempts        *int
	ShuffleQuestions   *bool
	ShuffleOptions     *bool
	ShowCorrectAnswers *bool
}

// UpdateQuizBankInput - частичное обновление банка, меняются только заданные поля.
// TimeLimitMinutes или MaxAttempts = 0 снимает соответствующее ограничение.
type UpdateQuizBankInput struct {
	Title              *string
	Description        *string
	Category           *string
	DifficultyLevel    *string
	PassPercentage     *int
	TimeLimitMinutes   *int
	MaxAttempts        *int
	ShuffleQuestions   *bool
	ShuffleOptions     *bool
	ShowCorrectAnswers *bool
}

// OptionInput - вариант ответа
type OptionInput struct {
	OptionText string
	IsCorrect  bool
	OrderIndex *int
}

// CreateQuestionInput - параметры нового вопроса
type CreateQuestionInput struct {
	QuestionText string
	QuestionType entity.QuestionType
	Points       *int
	Explanation  *string
	MediaURL     *string
	OrderIndex   *int
	Options      []OptionInput
}

// UpdateQuestionInput - частичное обновление вопроса.
// Options != nil полностью заменяет набор вариантов.
type UpdateQuestionInput struct {
	QuestionText *string
	QuestionType *entity.QuestionType
	Points       *int
	Explanation  *string
	MediaURL     *string
	OrderIndex   *int
	Options      *[]OptionInput
}

// QuizBankService предоставляет методы для работы с банками вопросов
type QuizBankService struct {
	bankRepo     repository.QuizBankRepository
	questionRepo repository.QuestionRepository
	log          *zap.Logger
}

// NewQuizBankService создает новый сервис банков вопросов
func NewQuizBankService(bankRepo repository.QuizBankRepository, questionRepo repository.QuestionRepository) *QuizBankService {
	return &QuizBankService{
		bankRepo:     bankRepo,
		questionRepo: questionRepo,
		log:          logger.Component("QuizBankService"),
	}
}

// CreateQuizBank создает банк с настройками по умолчанию
func (s *QuizBankService) CreateQuizBank(ctx context.Context, input CreateQuizBankInput, creatorID uint) (*entity.QuizBank, error) {
	if input.CourseID == 0 {
		return nil, apperrors.NewValidationError("course_id", "is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "is required")
	}

	bank := &entity.QuizBank{
		CourseID:           input.CourseID,
		Title:              title,
		Description:        input.Description,
		Category:           input.Category,
		DifficultyLevel:    entity.DifficultyIntermediate,
		PassPercentage:     entity.DefaultPassPercentage,
		TimeLimitMinutes:   input.TimeLimitMinutes,
		MaxAttempts:        input.MaxAttempts,
		ShuffleQuestions:   boolOr(input.ShuffleQuestions, true),
		ShuffleOptions:     boolOr(input.ShuffleOptions, true),
		ShowCorrectAnswers: boolOr(input.ShowCorrectAnswers, true),
		CreatedBy:          creatorID,
	}
	if input.DifficultyLevel != "" {
		bank.DifficultyLevel = input.DifficultyLevel
	}
	if input.PassPercentage != nil {
		bank.PassPercentage = *input.PassPercentage
	}
	if err := validateBankSettings(bank); err != nil {
		return nil, err
	}

	if err := s.bankRepo.Create(ctx, bank); err != nil {
		return nil, fmt.Errorf("failed to create quiz bank: %w", err)
	}

	s.log.Info("quiz bank created",
		zap.Uint("quiz_bank_id", bank.ID),
		zap.Uint("course_id", bank.CourseID),
		zap.Uint("created_by", creatorID))
	return bank, nil
}

// UpdateQuizBank обновляет только переданные поля банка
func (s *QuizBankService) UpdateQuizBank(ctx context.Context, id uint, input UpdateQuizBankInput) (*entity.QuizBank, error) {
	bank, err := s.getBank(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title", "must not be empty")
		}
		bank.Title = title
		updates["title"] = title
	}
	if input.Description != nil {
		bank.Description = *input.Description
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		bank.Category = *input.Category
		updates["category"] = *input.Category
	}
	if input.DifficultyLevel != nil {
		bank.DifficultyLevel = *input.DifficultyLevel
		updates["difficulty_level"] = *input.DifficultyLevel
	}
	if input.PassPercentage != nil {
		bank.PassPercentage = *input.PassPercentage
		updates["pass_percentage"] = *input.PassPercentage
	}
	if input.TimeLimitMinutes != nil {
		bank.TimeLimitMinutes = nilIfZero(*input.TimeLimitMinutes)
		updates["time_limit_minutes"] = bank.TimeLimitMinutes
	}
	if input.MaxAttempts != nil {
		bank.MaxAttempts = nilIfZero(*input.MaxAttempts)
		updates["max_attempts"] = bank.MaxAttempts
	}
	if input.ShuffleQuestions != nil {
		bank.ShuffleQuestions = *input.ShuffleQuestions
		updates["shuffle_questions"] = *input.ShuffleQuestions
	}
	if input.ShuffleOptions != nil {
		bank.ShuffleOptions = *input.ShuffleOptions
		updates["shuffle_options"] = *input.ShuffleOptions
	}
	if input.ShowCorrectAnswers != nil {
		bank.ShowCorrectAnswers = *input.ShowCorrectAnswers
		updates["show_correct_answers"] = *input.ShowCorrectAnswers
	}

	if len(updates) == 0 {
		return bank, nil
	}
	if err := validateBankSettings(bank); err != nil {
		return nil, err
	}

	if err := s.bankRepo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("quiz bank", id)
		}
		return nil, fmt.Errorf("failed to update quiz bank: %w", err)
	}
	return bank, nil
}

// DeleteQuizBank удаляет банк вместе с вопросами и вариантами
func (s *QuizBankService) DeleteQuizBank(ctx context.Context, id uint) error {
	if err := s.bankRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("quiz bank", id)
		}
		return fmt.Errorf("failed to delete quiz bank: %w", err)
	}
	s.log.Info("quiz bank deleted", zap.Uint("quiz_bank_id", id))
	return nil
}

// GetQuizBank возвращает банк с вопросами по order_index.
// Варианты загружаются отдельным запросом только при includeOptions.
func (s *QuizBankService) GetQuizBank(ctx context.Context, id uint, includeOptions bool) (*entity.QuizBank, error) {
	bank, err := s.getBank(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.ListByBank(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	if includeOptions && len(questions) > 0 {
		ids := make([]uint, len(questions))
		for i := range questions {
			ids[i] = questions[i].ID
		}
		options, err := s.questionRepo.ListOptions(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load options: %w", err)
		}
		byQuestion := make(map[uint][]entity.QuizOption, len(questions))
		for _, opt := range options {
			byQuestion[opt.QuestionID] = append(byQuestion[opt.QuestionID], opt)
		}
		for i := range questions {
			questions[i].Options = byQuestion[questions[i].ID]
		}
	}

	bank.Questions = questions
	return bank, nil
}

// GetQuizBanksByCourse возвращает банки курса, новые первыми
func (s *QuizBankService) GetQuizBanksByCourse(ctx context.Context, courseID uint, publishedOnly bool) ([]entity.QuizBank, error) {
	return s.bankRepo.ListByCourse(ctx, courseID, publishedOnly)
}

// CreateQuestion добавляет вопрос в банк. Без OrderIndex вопрос встает в конец.
func (s *QuizBankService) CreateQuestion(ctx context.Context, bankID uint, input CreateQuestionInput) (*entity.QuizQuestion, error) {
	if _, err := s.getBank(ctx, bankID); err != nil {
		return nil, err
	}

	question := &entity.QuizQuestion{
		QuizBankID:   bankID,
		QuestionText: strings.TrimSpace(input.QuestionText),
		QuestionType: input.QuestionType,
		Points:       1,
		Explanation:  input.Explanation,
		MediaURL:     input.MediaURL,
		Options:      buildOptions(input.Options),
	}
	if question.QuestionType == "" {
		question.QuestionType = entity.QuestionTypeMultipleChoice
	}
	if input.Points != nil {
		question.Points = *input.Points
	}
	if err := validateQuestion(question); err != nil {
		return nil, err
	}

	if input.OrderIndex != nil {
		question.OrderIndex = *input.OrderIndex
	} else {
		count, err := s.questionRepo.CountByBank(ctx, bankID)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions: %w", err)
		}
		question.OrderIndex = int(count)
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

// UpdateQuestion обновляет вопрос; переданный набор вариантов заменяет прежний целиком
func (s *QuizBankService) UpdateQuestion(ctx context.Context, questionID uint, input UpdateQuestionInput) (*entity.QuizQuestion, error) {
	question, err := s.questionRepo.GetWithOptions(ctx, questionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("question", questionID)
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.QuestionText != nil {
		question.QuestionText = strings.TrimSpace(*input.QuestionText)
		updates["question_text"] = question.QuestionText
	}
	if input.QuestionType != nil {
		question.QuestionType = *input.QuestionType
		updates["question_type"] = question.QuestionType
	}
	if input.Points != nil {
		question.Points = *input.Points
		updates["points"] = question.Points
	}
	if input.Explanation != nil {
		question.Explanation = input.Explanation
		updates["explanation"] = *input.Explanation
	}
	if input.MediaURL != nil {
		question.MediaURL = input.MediaURL
		updates["media_url"] = *input.MediaURL
	}
	if input.OrderIndex != nil {
		question.OrderIndex = *input.OrderIndex
		updates["order_index"] = question.OrderIndex
	}

	var options []entity.QuizOption
	if input.Options != nil {
		options = buildOptions(*input.Options)
		if options == nil {
			options = []entity.QuizOption{}
		}
		question.Options = options
	}

	if err := validateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Update(ctx, questionID, updates, options); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("question", questionID)
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

// DeleteQuestion удаляет вопрос вместе с вариантами
func (s *QuizBankService) DeleteQuestion(ctx context.Context, questionID uint) error {
	if err := s.questionRepo.Delete(ctx, questionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("question", questionID)
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

// ReorderQuestions присваивает order_index по позиции в списке
func (s *QuizBankService) ReorderQuestions(ctx context.Context, bankID uint, orderedIDs []uint) error {
	if len(orderedIDs) == 0 {
		return apperrors.NewValidationError("question_ids", "must not be empty")
	}
	seen := make(map[uint]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return apperrors.NewValidationError("question_ids", fmt.Sprintf("question #%d listed twice", id))
		}
		seen[id] = struct{}{}
	}

	if _, err := s.getBank(ctx, bankID); err != nil {
		return err
	}
	return s.questionRepo.Reorder(ctx, bankID, orderedIDs)
}

// TogglePublish публикует или скрывает банк
func (s *QuizBankService) TogglePublish(ctx context.Context, id uint, isPublished bool) error {
	if err := s.bankRepo.SetPublished(ctx, id, isPublished); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("quiz bank", id)
		}
		return fmt.Errorf("failed to toggle publish: %w", err)
	}
	s.log.Info("quiz bank publish state changed",
		zap.Uint("quiz_bank_id", id), zap.Bool("is_published", isPublished))
	return nil
}

// DuplicateQuizBank делает независимую копию банка с вопросами и вариантами.
// Копия всегда не опубликована.
func (s *QuizBankService) DuplicateQuizBank(ctx context.Context, id uint, newTitle string, creatorID uint) (*entity.QuizBank, error) {
	source, err := s.GetQuizBank(ctx, id, true)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(newTitle)
	if title == "" {
		title = source.Title + " (Copy)"
	}

	clone := &entity.QuizBank{
		CourseID:           source.CourseID,
		Title:              title,
		Description:        source.Description,
		Category:           source.Category,
		DifficultyLevel:    source.DifficultyLevel,
		IsPublished:        false,
		PassPercentage:     source.PassPercentage,
		TimeLimitMinutes:   copyIntPtr(source.TimeLimitMinutes),
		MaxAttempts:        copyIntPtr(source.MaxAttempts),
		ShuffleQuestions:   source.ShuffleQuestions,
		ShuffleOptions:     source.ShuffleOptions,
		ShowCorrectAnswers: source.ShowCorrectAnswers,
		CreatedBy:          creatorID,
		Questions:          make([]entity.QuizQuestion, len(source.Questions)),
	}

	for i, q := range source.Questions {
		copied := entity.QuizQuestion{
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Points:       q.Points,
			Explanation:  copyStringPtr(q.Explanation),
			OrderIndex:   q.OrderIndex,
			MediaURL:     copyStringPtr(q.MediaURL),
		}
		if len(q.Options) > 0 {
			copied.Options = make([]entity.QuizOption, len(q.Options))
			for j, opt := range q.Options {
				copied.Options[j] = entity.QuizOption{
					OptionText: opt.OptionText,
					IsCorrect:  opt.IsCorrect,
					OrderIndex: opt.OrderIndex,
				}
			}
		}
		clone.Questions[i] = copied
	}

	if err := s.bankRepo.CreateWithQuestions(ctx, clone); err != nil {
		return nil, fmt.Errorf("failed to duplicate quiz bank #%d: %w", id, err)
	}

	s.log.Info("quiz bank duplicated",
		zap.Uint("source_id", id),
		zap.Uint("quiz_bank_id", clone.ID),
		zap.Int("questions", len(clone.Questions)))
	return clone, nil
}

func (s *QuizBankService) getBank(ctx context.Context, id uint) (*entity.QuizBank, error) {
	bank, err := s.bankRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("quiz bank", id)
		}
		return nil, fmt.Errorf("failed to load quiz bank: %w", err)
	}
	return bank, nil
}

func validateBankSettings(bank *entity.QuizBank) error {
	if !entity.IsValidDifficulty(bank.DifficultyLevel) {
		return apperrors.NewValidationError("difficulty_level", "must be beginner, intermediate or advanced")
	}
	if bank.PassPercentage < 0 || bank.PassPercentage > 100 {
		return apperrors.NewValidationError("pass_percentage", "must be between 0 and 100")
	}
	if bank.TimeLimitMinutes != nil && *bank.TimeLimitMinutes <= 0 {
		return apperrors.NewValidationError("time_limit_minutes", "must be positive")
	}
	if bank.MaxAttempts != nil && *bank.MaxAttempts <= 0 {
		return apperrors.NewValidationError("max_attempts", "must be positive")
	}
	return nil
}

func validateQuestion(q *entity.QuizQuestion) error {
	if q.QuestionText == "" {
		return apperrors.NewValidationError("question_text", "is required")
	}
	if !q.QuestionType.IsValid() {
		return apperrors.NewValidationError("question_type", fmt.Sprintf("unknown type %q", q.QuestionType))
	}
	if q.Points < 1 {
		return apperrors.NewValidationError("points", "must be a positive integer")
	}
	for i := range q.Options {
		if strings.TrimSpace(q.Options[i].OptionText) == "" {
			return apperrors.NewValidationError("options", fmt.Sprintf("option %d has empty text", i+1))
		}
	}
	return nil
}

// buildOptions переводит входные варианты в сущности; без OrderIndex - позиция в списке
func buildOptions(in []OptionInput) []entity.QuizOption {
	if len(in) == 0 {
		return nil
	}
	out := make([]entity.QuizOption, len(in))
	for i, o := range in {
		out[i] = entity.QuizOption{
			OptionText: o.OptionText,
			IsCorrect:  o.IsCorrect,
			OrderIndex: i,
		}
		if o.OrderIndex != nil {
			out[i].OrderIndex = *o.OrderIndex
		}
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func nilIfZero(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
