package repository

import (
	"github.com/YuriVictoria/KipuBankV2/internal/entity"

	"gorm.io/gorm"
)

// Read side of the notification log. Writes happen inside the ledger, state
// and role transactions; the core never reads the log back.
type EventRepository interface {
	List(afterID uint64, limit int) ([]*entity.Event, error)
}

type SQLiteEventRepository struct {
	db *gorm.DB
}

func NewSQLiteEventRepository(db *gorm.DB) EventRepository {
	return &SQLiteEventRepository{db}
}

func (repo *SQLiteEventRepository) List(afterID uint64, limit int) ([]*entity.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	var events []*entity.Event
	err := repo.db.Where("id > ?", afterID).Order("id ASC").Limit(limit).Find(&events).Error
	return events, err
}
