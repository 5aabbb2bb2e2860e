package entity

// Bank state, represented by a single record (ID = 1).
// Every writing transaction locks this row first, so concurrent deposits or
// withdrawals never interleave between the limit check and the balance update.
type BankState struct {
	ID            uint64 `gorm:"primaryKey"`
	BankCap       int64  `gorm:"not null;default:0"` // max total custodied value
	WithdrawLimit int64  `gorm:"not null;default:0"` // max value per single withdrawal
	TotalHeld     int64  `gorm:"not null;default:0"` // sum of all account balances
}
