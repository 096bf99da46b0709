package entity

import (
	"time"
)

// Статусы попытки
const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusCompleted  = "completed"
	AttemptStatusAbandoned  = "abandoned"
	AttemptStatusTimedOut   = "timed_out"
)

// QuizAttempt - одна попытка пользователя пройти банк вопросов.
// Номер попытки растет строго монотонно в паре (user_id, quiz_bank_id).
type QuizAttempt struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	QuizBankID       uint           `gorm:"not null;uniqueIndex:uq_quiz_attempts_user_bank_number,priority:2;index" json:"quiz_bank_id"`
	UserID           uint           `gorm:"not null;uniqueIndex:uq_quiz_attempts_user_bank_number,priority:1" json:"user_id"`
	AttemptNumber    int            `gorm:"not null;uniqueIndex:uq_quiz_attempts_user_bank_number,priority:3" json:"attempt_number"`
	Status           string         `gorm:"size:20;not null;default:'in_progress';index" json:"status"`
	StartedAt        time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	TimeTakenSeconds *int           `json:"time_taken_seconds,omitempty"`
	Score            *int           `json:"score,omitempty"`
	TotalPoints      *int           `json:"total_points,omitempty"`
	Percentage       *float64       `gorm:"type:numeric(5,2)" json:"percentage,omitempty"`
	Passed           *bool          `json:"passed,omitempty"`
	Responses        []QuizResponse `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"responses,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// IsInProgress проверяет, идет ли попытка
func (a *QuizAttempt) IsInProgress() bool {
	return a.Status == AttemptStatusInProgress
}

// IsTerminal проверяет, находится ли попытка в конечном состоянии
func (a *QuizAttempt) IsTerminal() bool {
	return a.Status == AttemptStatusCompleted ||
		a.Status == AttemptStatusAbandoned ||
		a.Status == AttemptStatusTimedOut
}

// CanBeFinalized сообщает, можно ли подсчитать результат попытки.
// Истекшая попытка финализируется один раз, пока completed_at не выставлен.
func (a *QuizAttempt) CanBeFinalized() bool {
	if a.Status == AttemptStatusInProgress {
		return true
	}
	return a.Status == AttemptStatusTimedOut && a.CompletedAt == nil
}

// FinalStatus - статус после подсчета результата: истекшая попытка остается timed_out
func (a *QuizAttempt) FinalStatus() string {
	if a.Status == AttemptStatusTimedOut {
		return AttemptStatusTimedOut
	}
	return AttemptStatusCompleted
}

// IsPassed безопасно читает флаг прохождения
func (a *QuizAttempt) IsPassed() bool {
	return a.Passed != nil && *a.Passed
}

// IsExpired проверяет, истекло ли время попытки при заданном лимите
func (a *QuizAttempt) IsExpired(limit time.Duration, now time.Time) bool {
	if limit <= 0 || !a.IsInProgress() {
		return false
	}
	return now.After(a.StartedAt.Add(limit))
}

// QuizResponse - ответ на один вопрос в рамках попытки.
// На пару (attempt_id, question_id) существует не более одной записи.
type QuizResponse struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AttemptID        uint      `gorm:"not null;uniqueIndex:uq_quiz_responses_attempt_question,priority:1" json:"attempt_id"`
	QuestionID       uint      `gorm:"not null;uniqueIndex:uq_quiz_responses_attempt_question,priority:2;index" json:"question_id"`
	SelectedOptionID *uint     `json:"selected_option_id,omitempty"`
	AnswerText       *string   `gorm:"type:text" json:"answer_text,omitempty"`
	IsCorrect        *bool     `json:"is_correct,omitempty"`
	PointsEarned     *int      `json:"points_earned,omitempty"`
	TimeSpentSeconds *int      `json:"time_spent_seconds,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizResponse) TableName() string {
	return "quiz_responses"
}

// EarnedPoints возвращает начисленные баллы, неоцененный ответ дает 0
func (r *QuizResponse) EarnedPoints() int {
	if r.PointsEarned == nil {
		return 0
	}
	return *r.PointsEarned
}
