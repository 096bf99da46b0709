package dto

import (
	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/service"
)

// CreateQuizBankRequest - тело POST /api/quiz-banks
type CreateQuizBankRequest struct {
	CourseID           uint   `json:"course_id" binding:"required"`
	Title              string `json:"title" binding:"required,max=200"`
	Description        string `json:"description" binding:"omitempty,max=5000"`
	Category           string `json:"category" binding:"omitempty,max=100"`
	DifficultyLevel    string `json:"difficulty_level" binding:"omitempty,oneof=beginner intermediate advanced"`
	PassPercentage     *int   `json:"pass_percentage" binding:"omitempty,min=0,max=100"`
	TimeLimitMinutes   *int   `json:"time_limit_minutes" binding:"omitempty,min=1"`
	MaxAttempts        *int   `json:"max_attempts" binding:"omitempty,min=1"`
	ShuffleQuestions   *bool  `json:"shuffle_questions"`
	ShuffleOptions     *bool  `json:"shuffle_options"`
	ShowCorrectAnswers *bool  `json:"show_correct_answers"`
}

// ToInput конвертирует запрос в параметры сервиса
func (r *CreateQuizBankRequest) ToInput() service.CreateQuizBankInput {
	return service.CreateQuizBankInput{
		CourseID:           r.CourseID,
		Title:              r.Title,
		Description:        r.Description,
		Category:           r.Category,
		DifficultyLevel:    r.DifficultyLevel,
		PassPercentage:     r.PassPercentage,
		TimeLimitMinutes:   r.TimeLimitMinutes,
		MaxAttempts:        r.MaxAttempts,
		ShuffleQuestions:   r.ShuffleQuestions,
		ShuffleOptions:     r.ShuffleOptions,
		ShowCorrectAnswers: r.ShowCorrectAnswers,
	}
}

// UpdateQuizBankRequest - тело PATCH /api/quiz-banks/:id.
// time_limit_minutes или max_attempts = 0 снимает ограничение.
type UpdateQuizBankRequest struct {
	Title              *string `json:"title" binding:"omitempty,max=200"`
	Description        *string `json:"description" binding:"omitempty,max=5000"`
	Category           *string `json:"category" binding:"omitempty,max=100"`
	DifficultyLevel    *string `json:"difficulty_level" binding:"omitempty,oneof=beginner intermediate advanced"`
	PassPercentage     *int    `json:"pass_percentage" binding:"omitempty,min=0,max=100"`
	TimeLimitMinutes   *int    `json:"time_limit_minutes" binding:"omitempty,min=0"`
	MaxAttempts        *int    `json:"max_attempts" binding:"omitempty,min=0"`
	ShuffleQuestions   *bool   `json:"shuffle_questions"`
	ShuffleOptions     *bool   `json:"shuffle_options"`
	ShowCorrectAnswers *bool   `json:"show_correct_answers"`
}

// ToInput конвертирует запрос в параметры сервиса
func (r *UpdateQuizBankRequest) ToInput() service.UpdateQuizBankInput {
	return service.UpdateQuizBankInput{
		Title:              r.Title,
		Description:        r.Description,
		Category:           r.Category,
		DifficultyLevel:    r.DifficultyLevel,
		PassPercentage:     r.PassPercentage,
		TimeLimitMinutes:   r.TimeLimitMinutes,
		MaxAttempts:        r.MaxAttempts,
		ShuffleQuestions:   r.ShuffleQuestions,
		ShuffleOptions:     r.ShuffleOptions,
		ShowCorrectAnswers: r.ShowCorrectAnswers,
	}
}

// OptionRequest - вариант ответа в запросе
type OptionRequest struct {
	OptionText string `json:"option_text" binding:"required"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex *int   `json:"order_index" binding:"omitempty,min=0"`
}

func toOptionInputs(in []OptionRequest) []service.OptionInput {
	out := make([]service.OptionInput, len(in))
	for i, o := range in {
		out[i] = service.OptionInput{OptionText: o.OptionText, IsCorrect: o.IsCorrect, OrderIndex: o.OrderIndex}
	}
	return out
}

// CreateQuestionRequest - тело POST /api/quiz-banks/:id/questions
type CreateQuestionRequest struct {
	QuestionText string          `json:"question_text" binding:"required"`
	QuestionType string          `json:"question_type" binding:"omitempty,oneof=multiple_choice true_false short_answer matching fill_blank"`
	Points       *int            `json:"points" binding:"omitempty,min=1"`
	Explanation  *string         `json:"explanation"`
	MediaURL     *string         `json:"media_url" binding:"omitempty,max=500"`
	OrderIndex   *int            `json:"order_index" binding:"omitempty,min=0"`
	Options      []OptionRequest `json:"options" binding:"omitempty,dive"`
}

// ToInput конвертирует запрос в параметры сервиса
func (r *CreateQuestionRequest) ToInput() service.CreateQuestionInput {
	return service.CreateQuestionInput{
		QuestionText: r.QuestionText,
		QuestionType: entity.QuestionType(r.QuestionType),
		Points:       r.Points,
		Explanation:  r.Explanation,
		MediaURL:     r.MediaURL,
		OrderIndex:   r.OrderIndex,
		Options:      toOptionInputs(r.Options),
	}
}

// UpdateQuestionRequest - тело PATCH /api/questions/:id.
// Переданный options полностью заменяет варианты вопроса.
type UpdateQuestionRequest struct {
	QuestionText *string          `json:"question_text"`
	QuestionType *string          `json:"question_type" binding:"omitempty,oneof=multiple_choice true_false short_answer matching fill_blank"`
	Points       *int             `json:"points" binding:"omitempty,min=1"`
	Explanation  *string          `json:"explanation"`
	MediaURL     *string          `json:"media_url" binding:"omitempty,max=500"`
	OrderIndex   *int             `json:"order_index" binding:"omitempty,min=0"`
	Options      *[]OptionRequest `json:"options" binding:"omitempty,dive"`
}

// ToInput конвертирует запрос в параметры сервиса
func (r *UpdateQuestionRequest) ToInput() service.UpdateQuestionInput {
	input := service.UpdateQuestionInput{
		QuestionText: r.QuestionText,
		Points:       r.Points,
		Explanation:  r.Explanation,
		MediaURL:     r.MediaURL,
		OrderIndex:   r.OrderIndex,
	}
	if r.QuestionType != nil {
		qt := entity.QuestionType(*r.QuestionType)
		input.QuestionType = &qt
	}
	if r.Options != nil {
		opts := toOptionInputs(*r.Options)
		input.Options = &opts
	}
	return input
}

// ReorderQuestionsRequest - новый порядок вопросов банка
type ReorderQuestionsRequest struct {
	QuestionIDs []uint `json:"question_ids" binding:"required,min=1"`
}

// TogglePublishRequest - тело PUT /api/quiz-banks/:id/publish
type TogglePublishRequest struct {
	IsPublished *bool `json:"is_published" binding:"required"`
}

// DuplicateQuizBankRequest - тело POST /api/quiz-banks/:id/duplicate
type DuplicateQuizBankRequest struct {
	Title string `json:"title" binding:"omitempty,max=200"`
}

// SubmitAnswerRequest - тело POST /api/attempts/:id/responses
type SubmitAnswerRequest struct {
	QuestionID       uint    `json:"question_id" binding:"required"`
	SelectedOptionID *uint   `json:"selected_option_id"`
	AnswerText       *string `json:"answer_text"`
	TimeSpentSeconds *int    `json:"time_spent_seconds" binding:"omitempty,min=0"`
}

// ToInput конвертирует запрос в параметры сервиса
func (r *SubmitAnswerRequest) ToInput(attemptID uint) service.SubmitAnswerInput {
	return service.SubmitAnswerInput{
		AttemptID:        attemptID,
		QuestionID:       r.QuestionID,
		SelectedOptionID: r.SelectedOptionID,
		AnswerText:       r.AnswerText,
		TimeSpentSeconds: r.TimeSpentSeconds,
	}
}
