package repository

import (
	"errors"
	"time"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"

	"gorm.io/gorm"
)

// Repository for the role table. Authorization policy (who may grant) lives in
// the service layer; this only stores and answers membership.
type RoleRepository interface {
	Grant(requestID string, role entity.Role, address, grantedBy entity.Address) (*entity.Event, error)
	Revoke(requestID string, role entity.Role, address entity.Address) (*entity.Event, error)

	Has(address entity.Address, role entity.Role) (bool, error)
	ListRoles(address entity.Address) ([]entity.Role, error)
}

type SQLiteRoleRepository struct {
	db *gorm.DB
}

func NewSQLiteRoleRepository(db *gorm.DB) RoleRepository {
	return &SQLiteRoleRepository{db}
}

// Grant records the role for the address. Granting a role the address already
// holds is a no-op and emits no event.
func (repo *SQLiteRoleRepository) Grant(requestID string, role entity.Role, address, grantedBy entity.Address) (*entity.Event, error) {
	var event *entity.Event
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		var existing entity.RoleGrant
		err := tx.Where("address = ? AND role = ?", address, role).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&entity.RoleGrant{
			Address:   address,
			Role:      role,
			GrantedBy: grantedBy,
			CreatedAt: time.Now(),
		}).Error; err != nil {
			return err
		}
		event = &entity.Event{
			RequestID: requestID,
			Kind:      entity.EventRoleGranted,
			Address:   address,
			Role:      role,
			CreatedAt: time.Now(),
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Revoke removes the role from the address. Revoking a role the address does
// not hold is a no-op and emits no event.
func (repo *SQLiteRoleRepository) Revoke(requestID string, role entity.Role, address entity.Address) (*entity.Event, error) {
	var event *entity.Event
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("address = ? AND role = ?", address, role).
			Delete(&entity.RoleGrant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		event = &entity.Event{
			RequestID: requestID,
			Kind:      entity.EventRoleRevoked,
			Address:   address,
			Role:      role,
			CreatedAt: time.Now(),
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (repo *SQLiteRoleRepository) Has(address entity.Address, role entity.Role) (bool, error) {
	var count int64
	err := repo.db.Model(&entity.RoleGrant{}).
		Where("address = ? AND role = ?", address, role).
		Count(&count).Error
	return count > 0, err
}

func (repo *SQLiteRoleRepository) ListRoles(address entity.Address) ([]entity.Role, error) {
	var grants []entity.RoleGrant
	if err := repo.db.Where("address = ?", address).Find(&grants).Error; err != nil {
		return nil, err
	}
	roles := make([]entity.Role, 0, len(grants))
	for _, g := range grants {
		roles = append(roles, g.Role)
	}
	return roles, nil
}
