package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityTypeQuiz - тип активности для начислений за попытки
const ActivityTypeQuiz = "quiz"

// GamificationPoint - запись журнала начисления очков.
// Одна завершенная попытка дает не более одной записи.
type GamificationPoint struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	ActivityType string         `gorm:"size:30;not null;uniqueIndex:uq_gamification_activity,priority:1" json:"activity_type"`
	ActivityID   uint           `gorm:"not null;uniqueIndex:uq_gamification_activity,priority:2" json:"activity_id"`
	Points       int            `gorm:"not null;check:points >= 0" json:"points"`
	Reason       string         `gorm:"size:255;not null" json:"reason"`
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (GamificationPoint) TableName() string {
	return "gamification_points"
}
