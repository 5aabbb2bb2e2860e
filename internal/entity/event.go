package entity

import "time"

type EventKind string

const (
	EventDeposited            EventKind = "Deposited"
	EventWithdrawn            EventKind = "Withdrawn"
	EventBankCapChanged       EventKind = "BankCapChanged"
	EventWithdrawLimitChanged EventKind = "WithdrawLimitChanged"
	EventRoleGranted          EventKind = "RoleGranted"
	EventRoleRevoked          EventKind = "RoleRevoked"
)

// Event is one record of the append-only notification log. Rows are created
// inside the same transaction as the state change they describe, so the
// auto-increment ID orders the log exactly like the commits.
type Event struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID string    `gorm:"index" json:"request-id"`
	Kind      EventKind `gorm:"not null;index" json:"kind"`
	Address   Address   `gorm:"index" json:"address,omitempty"`
	Role      Role      `json:"role,omitempty"` // set for RoleGranted/RoleRevoked only
	Amount    int64     `json:"amount"` // operation amount, or the new value for config changes
	CreatedAt time.Time `gorm:"not null" json:"created-at"`
}
