package dto

import (
	"time"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/handler/helper"
)

// StudentQuestionResponse - вопрос в том виде, в каком его видит студент
type StudentQuestionResponse struct {
	ID           uint                   `json:"id"`
	QuestionText string                 `json:"question_text"`
	QuestionType entity.QuestionType    `json:"question_type"`
	Points       int                    `json:"points"`
	MediaURL     *string                `json:"media_url,omitempty"`
	OrderIndex   int                    `json:"order_index"`
	Options      []helper.StudentOption `json:"options,omitempty"`
}

// StudentQuizBankResponse - банк без правильных ответов и пояснений
type StudentQuizBankResponse struct {
	ID               uint                      `json:"id"`
	CourseID         uint                      `json:"course_id"`
	Title            string                    `json:"title"`
	Description      string                    `json:"description,omitempty"`
	Category         string                    `json:"category,omitempty"`
	DifficultyLevel  string                    `json:"difficulty_level"`
	PassPercentage   int                       `json:"pass_percentage"`
	TimeLimitMinutes *int                      `json:"time_limit_minutes,omitempty"`
	MaxAttempts      *int                      `json:"max_attempts,omitempty"`
	QuestionCount    int                       `json:"question_count"`
	Questions        []StudentQuestionResponse `json:"questions,omitempty"`
}

// NewStudentQuizBankResponse строит представление для студента.
// Порядок вопросов и вариантов перемешивается согласно флагам банка.
func NewStudentQuizBankResponse(bank *entity.QuizBank, shuffle helper.Shuffler) *StudentQuizBankResponse {
	resp := &StudentQuizBankResponse{
		ID:               bank.ID,
		CourseID:         bank.CourseID,
		Title:            bank.Title,
		Description:      bank.Description,
		Category:         bank.Category,
		DifficultyLevel:  bank.DifficultyLevel,
		PassPercentage:   bank.PassPercentage,
		TimeLimitMinutes: bank.TimeLimitMinutes,
		MaxAttempts:      bank.MaxAttempts,
		QuestionCount:    len(bank.Questions),
	}

	var optionShuffle helper.Shuffler
	if bank.ShuffleOptions {
		optionShuffle = shuffle
	}

	resp.Questions = make([]StudentQuestionResponse, len(bank.Questions))
	for i, q := range bank.Questions {
		resp.Questions[i] = StudentQuestionResponse{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Points:       q.Points,
			MediaURL:     q.MediaURL,
			OrderIndex:   q.OrderIndex,
			Options:      helper.ConvertOptionsForStudent(q.Options, optionShuffle),
		}
	}

	if bank.ShuffleQuestions && shuffle != nil && len(resp.Questions) > 1 {
		shuffle(len(resp.Questions), func(i, j int) {
			resp.Questions[i], resp.Questions[j] = resp.Questions[j], resp.Questions[i]
		})
	}
	return resp
}

// QuizBankListItem - краткая карточка банка в списке курса
type QuizBankListItem struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Category         string    `json:"category,omitempty"`
	DifficultyLevel  string    `json:"difficulty_level"`
	IsPublished      bool      `json:"is_published"`
	PassPercentage   int       `json:"pass_percentage"`
	TimeLimitMinutes *int      `json:"time_limit_minutes,omitempty"`
	MaxAttempts      *int      `json:"max_attempts,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewQuizBankList конвертирует банки курса в список карточек
func NewQuizBankList(banks []entity.QuizBank) []QuizBankListItem {
	items := make([]QuizBankListItem, len(banks))
	for i, b := range banks {
		items[i] = QuizBankListItem{
			ID:               b.ID,
			Title:            b.Title,
			Category:         b.Category,
			DifficultyLevel:  b.DifficultyLevel,
			IsPublished:      b.IsPublished,
			PassPercentage:   b.PassPercentage,
			TimeLimitMinutes: b.TimeLimitMinutes,
			MaxAttempts:      b.MaxAttempts,
			CreatedAt:        b.CreatedAt,
		}
	}
	return items
}

// StartAttemptResponse - новая попытка и вопросы для нее
type StartAttemptResponse struct {
	Attempt *entity.QuizAttempt      `json:"attempt"`
	Quiz    *StudentQuizBankResponse `json:"quiz"`
}

// AttemptResponse - попытка с ответами. Правильность скрыта, пока банк не разрешает ее показывать.
type AttemptResponse struct {
	*entity.QuizAttempt
	Expired bool `json:"expired,omitempty"`
}

// NewAttemptResponse готовит попытку для владельца
func NewAttemptResponse(attempt *entity.QuizAttempt, showCorrect, expired bool) *AttemptResponse {
	if !showCorrect || attempt.IsInProgress() {
		hidden := *attempt
		hidden.Responses = make([]entity.QuizResponse, len(attempt.Responses))
		for i, r := range attempt.Responses {
			r.IsCorrect = nil
			r.PointsEarned = nil
			hidden.Responses[i] = r
		}
		attempt = &hidden
	}
	return &AttemptResponse{QuizAttempt: attempt, Expired: expired}
}
