package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SendFunc pushes the withdrawn amount to the account through the external
// transfer gateway. It runs inside the withdrawal transaction: returning an
// error discards the debit that was already staged.
type SendFunc func(address entity.Address, amount int64) error

// Repository for account balances and operation counters. Every write locks
// the bank state row first, runs the ordered guard chain, and commits the
// balance, the counter, the total and the event record together or not at all.
type LedgerRepository interface {
	Deposit(requestID string, address entity.Address, amount int64) (*entity.Account, *entity.Event, error)
	Withdraw(requestID string, address entity.Address, amount int64, send SendFunc) (*entity.Account, *entity.Event, error)

	GetAccount(address entity.Address) (*entity.Account, error)
	TotalHeld() (int64, error)
}

type SQLiteLedgerRepository struct {
	db *gorm.DB
}

func NewSQLiteLedgerRepository(db *gorm.DB) LedgerRepository {
	return &SQLiteLedgerRepository{db}
}

func (repo *SQLiteLedgerRepository) Deposit(requestID string, address entity.Address, amount int64) (*entity.Account, *entity.Event, error) {
	if amount <= 0 {
		return nil, nil, entity.ErrZeroAmount
	}

	var account entity.Account
	var event entity.Event
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		var state entity.BankState
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&state, 1).Error; err != nil {
			return err
		}

		// Compared without addition: TotalHeld and BankCap are both >= 0, so
		// the remaining headroom cannot overflow, while TotalHeld+amount could
		// wrap negative for a huge amount and slip past the cap.
		if amount > state.BankCap-state.TotalHeld {
			return entity.ErrCapacityExceeded
		}
		state.TotalHeld += amount
		if err := tx.Save(&state).Error; err != nil {
			return err
		}

		firstDeposit := false
		if err := tx.Where("address = ?", address).First(&account).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// First deposit for this address brings the account into existence.
			account = entity.Account{Address: address, CreatedAt: time.Now()}
			firstDeposit = true
		}
		account.Balance += amount
		account.DepositCount++
		if firstDeposit {
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		} else if err := tx.Save(&account).Error; err != nil {
			return err
		}

		event = entity.Event{
			RequestID: requestID,
			Kind:      entity.EventDeposited,
			Address:   address,
			Amount:    amount,
			CreatedAt: time.Now(),
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return &account, &event, nil
}

func (repo *SQLiteLedgerRepository) Withdraw(requestID string, address entity.Address, amount int64, send SendFunc) (*entity.Account, *entity.Event, error) {
	if amount <= 0 {
		return nil, nil, entity.ErrZeroAmount
	}

	var account entity.Account
	var event entity.Event
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		var state entity.BankState
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&state, 1).Error; err != nil {
			return err
		}

		// Guard order matters: balance before limit, so a caller that violates
		// both hears about the insufficient balance.
		if err := tx.Where("address = ?", address).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.ErrInsufficientBalance
			}
			return err
		}
		if amount > account.Balance {
			return entity.ErrInsufficientBalance
		}
		if amount > state.WithdrawLimit {
			return entity.ErrLimitExceeded
		}

		// Debit before the external call, so a reentrant caller sees the
		// reduced balance and cannot withdraw the same funds twice.
		account.Balance -= amount
		account.WithdrawalCount++
		if err := tx.Save(&account).Error; err != nil {
			return err
		}
		state.TotalHeld -= amount
		if err := tx.Save(&state).Error; err != nil {
			return err
		}

		event = entity.Event{
			RequestID: requestID,
			Kind:      entity.EventWithdrawn,
			Address:   address,
			Amount:    amount,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		// The gateway call sits inside the transaction: a refused transfer
		// rolls back the debit, the counter and the event in one go.
		if err := send(address, amount); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrTransferFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &account, &event, nil
}

// GetAccount returns the record for the given address, or a zero-valued one
// if the address never deposited.
func (repo *SQLiteLedgerRepository) GetAccount(address entity.Address) (*entity.Account, error) {
	var account entity.Account
	err := repo.db.Where("address = ?", address).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entity.Account{Address: address}, nil
	}
	return &account, err
}

func (repo *SQLiteLedgerRepository) TotalHeld() (int64, error) {
	var state entity.BankState
	err := repo.db.First(&state, 1).Error
	return state.TotalHeld, err
}
