package repository

import (
	"errors"
	"time"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository for the bank configuration scalars.
// No bound is enforced against current balances on purpose: a manager may set
// the cap below what is already held, or a limit that strands a balance.
type BankStateRepository interface {
	Init(bankCap, withdrawLimit int64) error

	GetBankCap() (int64, error)
	GetWithdrawLimit() (int64, error)

	SetBankCap(requestID string, value int64) (*entity.Event, error)
	SetWithdrawLimit(requestID string, value int64) (*entity.Event, error)
}

type SQLiteBankStateRepository struct {
	db *gorm.DB
}

func NewSQLiteBankStateRepository(db *gorm.DB) BankStateRepository {
	return &SQLiteBankStateRepository{db}
}

// Init creates the singleton state row on first startup. An already existing
// row is left alone, so restarts keep the configured values.
func (repo *SQLiteBankStateRepository) Init(bankCap, withdrawLimit int64) error {
	var state entity.BankState
	err := repo.db.First(&state, 1).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return repo.db.Create(&entity.BankState{
		ID:            1,
		BankCap:       bankCap,
		WithdrawLimit: withdrawLimit,
	}).Error
}

func (repo *SQLiteBankStateRepository) GetBankCap() (int64, error) {
	var state entity.BankState
	err := repo.db.First(&state, 1).Error
	return state.BankCap, err
}

func (repo *SQLiteBankStateRepository) GetWithdrawLimit() (int64, error) {
	var state entity.BankState
	err := repo.db.First(&state, 1).Error
	return state.WithdrawLimit, err
}

func (repo *SQLiteBankStateRepository) SetBankCap(requestID string, value int64) (*entity.Event, error) {
	return repo.set(requestID, entity.EventBankCapChanged, value, func(state *entity.BankState) {
		state.BankCap = value
	})
}

func (repo *SQLiteBankStateRepository) SetWithdrawLimit(requestID string, value int64) (*entity.Event, error) {
	return repo.set(requestID, entity.EventWithdrawLimitChanged, value, func(state *entity.BankState) {
		state.WithdrawLimit = value
	})
}

func (repo *SQLiteBankStateRepository) set(requestID string, kind entity.EventKind, value int64, apply func(*entity.BankState)) (*entity.Event, error) {
	if value < 0 {
		return nil, entity.ErrBadValue
	}
	var event entity.Event
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		var state entity.BankState
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&state, 1).Error; err != nil {
			return err
		}
		apply(&state)
		if err := tx.Save(&state).Error; err != nil {
			return err
		}
		event = entity.Event{
			RequestID: requestID,
			Kind:      kind,
			Amount:    value,
			CreatedAt: time.Now(),
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}
