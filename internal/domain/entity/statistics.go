package entity

import (
	"time"
)

// QuizStatistics - агрегаты по завершенным попыткам банка
type QuizStatistics struct {
	QuizBankID         uint    `json:"quiz_bank_id"`
	TotalAttempts      int     `json:"total_attempts"`
	UniqueStudents     int     `json:"unique_students"`
	AverageScore       float64 `json:"average_score"`
	AveragePercentage  float64 `json:"average_percentage"`
	PassRate           float64 `json:"pass_rate"`
	AverageTimeSeconds *int    `json:"average_time_seconds,omitempty"`
}

// StudentProgress - прогресс пользователя по банку
type StudentProgress struct {
	UserID          uint       `json:"user_id"`
	QuizBankID      uint       `json:"quiz_bank_id"`
	AttemptsCount   int        `json:"attempts_count"`
	BestScore       *int       `json:"best_score,omitempty"`
	BestPercentage  *float64   `json:"best_percentage,omitempty"`
	Passed          bool       `json:"passed"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`
}

// QuestionStatistics - распределение ответов на вопрос
type QuestionStatistics struct {
	QuestionID         uint         `json:"question_id"`
	TotalResponses     int          `json:"total_responses"`
	CorrectResponses   int          `json:"correct_responses"`
	AccuracyPercentage float64      `json:"accuracy_percentage"`
	AverageTimeSeconds *float64     `json:"average_time_seconds,omitempty"`
	OptionDistribution map[uint]int `json:"option_distribution,omitempty"`
}
