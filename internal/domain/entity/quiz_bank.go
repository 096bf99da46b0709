package entity

import (
	"time"
)

// Уровни сложности банка вопросов
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// DefaultPassPercentage используется, когда у банка не задан порог прохождения
const DefaultPassPercentage = 70

// QuizBank представляет набор вопросов курса с настройками прохождения.
// Значения по умолчанию выставляет сервис: GORM подменил бы false и 0 на default из тега.
type QuizBank struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CourseID           uint           `gorm:"not null;index:idx_quiz_banks_course_created,priority:1" json:"course_id"`
	Title              string         `gorm:"size:200;not null" json:"title"`
	Description        string         `gorm:"type:text;not null;default:''" json:"description"`
	Category           string         `gorm:"size:100;not null;default:''" json:"category"`
	DifficultyLevel    string         `gorm:"size:20;not null;default:'intermediate'" json:"difficulty_level"`
	IsPublished        bool           `gorm:"not null;default:false" json:"is_published"`
	PassPercentage     int            `gorm:"not null;check:pass_percentage BETWEEN 0 AND 100" json:"pass_percentage"`
	TimeLimitMinutes   *int           `json:"time_limit_minutes,omitempty"`
	MaxAttempts        *int           `json:"max_attempts,omitempty"`
	ShuffleQuestions   bool           `gorm:"not null" json:"shuffle_questions"`
	ShuffleOptions     bool           `gorm:"not null" json:"shuffle_options"`
	ShowCorrectAnswers bool           `gorm:"not null" json:"show_correct_answers"`
	CreatedBy          uint           `gorm:"not null" json:"created_by"`
	Questions          []QuizQuestion `gorm:"foreignKey:QuizBankID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt          time.Time      `gorm:"index:idx_quiz_banks_course_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizBank) TableName() string {
	return "quiz_banks"
}

// HasAttemptLimit сообщает, ограничено ли число попыток
func (b *QuizBank) HasAttemptLimit() bool {
	return b.MaxAttempts != nil
}

// TimeLimit возвращает лимит времени или 0, если он не задан
func (b *QuizBank) TimeLimit() time.Duration {
	if b.TimeLimitMinutes == nil || *b.TimeLimitMinutes <= 0 {
		return 0
	}
	return time.Duration(*b.TimeLimitMinutes) * time.Minute
}

// IsValidDifficulty проверяет уровень сложности
func IsValidDifficulty(level string) bool {
	switch level {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}
