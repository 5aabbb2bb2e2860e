package entity

import "time"

// Address of an account. Externally supplied, never minted by this system.
type Address string

// Account holds the custodied balance for one address, plus the counters of
// successful operations. A record appears implicitly on the first deposit.
type Account struct {
	Address         Address   `gorm:"primaryKey" json:"address"`
	Balance         int64     `gorm:"not null;default:0" json:"balance"` // minor units, never negative
	DepositCount    uint64    `gorm:"not null;default:0" json:"deposit-count"`
	WithdrawalCount uint64    `gorm:"not null;default:0" json:"withdrawal-count"`
	CreatedAt       time.Time `gorm:"not null" json:"created-at"`
	UpdatedAt       time.Time `json:"updated-at"`
}
