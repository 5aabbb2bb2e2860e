package entity

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// Valid reports whether r is one of the two known roles. No hierarchy exists:
// admin does not imply manager and vice versa.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager
}

// RoleGrant marks one address as holding one role.
type RoleGrant struct {
	Address   Address   `gorm:"primaryKey" json:"address"`
	Role      Role      `gorm:"primaryKey" json:"role"`
	GrantedBy Address   `gorm:"index" json:"granted-by"`
	CreatedAt time.Time `gorm:"not null" json:"created-at"`
}
