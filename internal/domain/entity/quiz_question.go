package entity

import (
	"time"
)

// QuestionType - тип вопроса
type QuestionType string

// Поддерживаемые типы вопросов
const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
	QuestionTypeMatching       QuestionType = "matching"
	QuestionTypeFillBlank      QuestionType = "fill_blank"
)

// IsValid проверяет, что тип вопроса известен
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer,
		QuestionTypeMatching, QuestionTypeFillBlank:
		return true
	}
	return false
}

// IsOptionBased сообщает, отвечают ли на вопрос выбором варианта
func (t QuestionType) IsOptionBased() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// QuizQuestion представляет вопрос банка
type QuizQuestion struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	QuizBankID   uint         `gorm:"not null;index:idx_quiz_questions_bank_order,priority:1" json:"quiz_bank_id"`
	QuestionText string       `gorm:"type:text;not null" json:"question_text"`
	QuestionType QuestionType `gorm:"size:30;not null;default:'multiple_choice'" json:"question_type"`
	Points       int          `gorm:"not null;default:1;check:points > 0" json:"points"`
	Explanation  *string      `gorm:"type:text" json:"explanation,omitempty"`
	OrderIndex   int          `gorm:"not null;default:0;index:idx_quiz_questions_bank_order,priority:2" json:"order_index"`
	MediaURL     *string      `gorm:"size:500" json:"media_url,omitempty"`
	Options      []QuizOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizOption - вариант ответа. Правильных вариантов может быть несколько.
type QuizOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	OptionText string `gorm:"type:text;not null" json:"option_text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"is_correct"`
	OrderIndex int    `gorm:"not null;default:0" json:"order_index"`
}

// TableName определяет имя таблицы для GORM
func (QuizOption) TableName() string {
	return "quiz_options"
}

