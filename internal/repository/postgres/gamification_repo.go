package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-engine/internal/domain/entity"
	"github.com/yourusername/quiz-engine/internal/domain/repository"
)

// GamificationRepo реализует repository.GamificationRepository
type GamificationRepo struct {
	db *gorm.DB
}

// NewGamificationRepo создает репозиторий журнала очков
func NewGamificationRepo(db *gorm.DB) *GamificationRepo {
	return &GamificationRepo{db: db}
}

// Create добавляет запись начисления. Повтор по той же активности → ErrDuplicateLedgerEntry.
func (r *GamificationRepo) Create(ctx context.Context, entry *entity.GamificationPoint) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s #%d", repository.ErrDuplicateLedgerEntry, entry.ActivityType, entry.ActivityID)
		}
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}
